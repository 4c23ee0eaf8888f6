// main package for the anuvad translation client.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/anuvadml/anuvad/internal/backend"
	"github.com/anuvadml/anuvad/internal/client"
	"github.com/anuvadml/anuvad/internal/config"
	"github.com/anuvadml/anuvad/internal/core"
	"github.com/anuvadml/anuvad/internal/eventlog"
	"github.com/anuvadml/anuvad/internal/notify"
	"github.com/anuvadml/anuvad/internal/probe"
	"github.com/anuvadml/anuvad/internal/session"
	"github.com/anuvadml/anuvad/internal/speech"
)

// Flag descriptions.
const (
	flagTextDesc   = "Text to translate (omit for interactive mode)"
	flagFromDesc   = "Source language code"
	flagToDesc     = "Target language code"
	flagHealthDesc = "Check translation service health and exit"
	flagSpeakDesc  = "Speak the translation aloud after translating"
)

const (
	engineRemote = "remote"

	playbackPollInterval = 100 * time.Millisecond
	playbackWaitLimit    = 2 * time.Minute
)

var errNotConnected = errors.New("translation service is not reachable")

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text   string
	from   string
	to     string
	health bool
	speak  bool
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := parseFlags()

	// 1. Create a temporary logger for the bootstrap process.
	bootstrapLog, err := logger.New(os.TempDir(), "anuvad-bootstrap.log")
	if err != nil {
		return fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	// 2. Load configuration using the central configurator.
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 3. Initialize the final logger based on the loaded configuration.
	logDir := cfg.Paths.BaseLogsDir
	if logDir == "" {
		logDir = os.TempDir()
	}

	log, err := logger.New(logDir, "anuvad.log")
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	facade, cleanup, err := buildFacade(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if flags.health {
		return handleHealthCheck(facade)
	}

	status := facade.Start(context.Background())
	fmt.Printf("Service: %s\n", status)

	if flags.text != "" {
		return handleOneShot(facade, flags)
	}

	return runInteractive(facade)
}

func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.text, "text", "", flagTextDesc)
	flag.StringVar(&flags.from, "from", "", flagFromDesc)
	flag.StringVar(&flags.to, "to", "", flagToDesc)
	flag.BoolVar(&flags.health, "health", false, flagHealthDesc)
	flag.BoolVar(&flags.speak, "speak", false, flagSpeakDesc)
	flag.Parse()

	return flags
}

// buildFacade assembles the interaction core from the configuration.
func buildFacade(cfg *config.Config, log *logger.Logger) (*client.Facade, func(), error) {
	languages, err := cfg.Catalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build language catalog: %w", err)
	}

	serviceClient := backend.New(cfg.Backend.BaseURL, cfg.Timeout())
	connectivity := probe.New(serviceClient, log)
	sess := session.New(serviceClient, languages, connectivity, log)

	notifier := notify.New(cfg.Speech.Notifications, log)
	engine := buildEngine(cfg, serviceClient, log)
	playback := speech.NewController(engine, languages, notifier, log)

	events, closeEvents, err := buildPublisher(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	facade := client.New(languages, connectivity, sess, playback, events, log)

	return facade, closeEvents, nil
}

func buildEngine(cfg *config.Config, serviceClient *backend.Client, log *logger.Logger) core.SpeechEngine {
	if cfg.Speech.Engine == engineRemote {
		return speech.NewRemoteEngine(serviceClient, cfg.Speech.PlayerCommand, log)
	}

	return speech.NewExecEngine(cfg.Speech.SynthCommand, log)
}

func buildPublisher(cfg *config.Config, log *logger.Logger) (*eventlog.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		return nil, func() {}, nil
	}

	conn, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}

	log.System("Publishing client events to %s with prefix %s", cfg.NATS.URL, cfg.NATS.SubjectPrefix)

	return eventlog.New(conn, cfg.NATS.SubjectPrefix, log), conn.Close, nil
}

func handleHealthCheck(facade *client.Facade) error {
	status := facade.Start(context.Background())

	fmt.Printf("Service: %s\n", status)

	if status != probe.StatusConnected {
		return errNotConnected
	}

	return nil
}

func handleOneShot(facade *client.Facade, flags appFlags) error {
	if flags.from != "" {
		err := facade.SetSource(flags.from)
		if err != nil {
			return err
		}
	}

	if flags.to != "" {
		err := facade.SetTarget(flags.to)
		if err != nil {
			return err
		}
	}

	facade.SetInput(flags.text)

	err := facade.Translate(context.Background())
	if err != nil {
		return err
	}

	snapshot := facade.Snapshot()
	fmt.Println(snapshot.Result.TranslatedText)

	if !flags.speak {
		return nil
	}

	err = facade.Speak(speech.SlotTranslation)
	if err != nil {
		return err
	}

	waitForPlayback(facade)

	return nil
}

// waitForPlayback blocks until the current utterance finishes, bounded so a
// wedged player cannot hang the process.
func waitForPlayback(facade *client.Facade) {
	deadline := time.Now().Add(playbackWaitLimit)

	for facade.Snapshot().Playback.Playing && time.Now().Before(deadline) {
		time.Sleep(playbackPollInterval)
	}
}

// runInteractive drives the facade the way the mobile UI would, one command
// per line.
func runInteractive(facade *client.Facade) error {
	printHelp()
	printState(facade)

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		command, argument, _ := strings.Cut(line, " ")
		if command == "quit" || command == "q" {
			break
		}

		handleCommand(facade, command, argument)
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return fmt.Errorf("failed to read input: %w", scanErr)
	}

	return nil
}

func handleCommand(facade *client.Facade, command, argument string) {
	switch command {
	case "t", "translate":
		if argument != "" {
			facade.SetInput(argument)
		}

		err := facade.Translate(context.Background())
		if err != nil {
			fmt.Printf("translate: %v\n", err)
		}
	case "in", "input":
		facade.SetInput(argument)
	case "swap":
		facade.Swap()
	case "cs":
		facade.CycleSource()
	case "ct":
		facade.CycleTarget()
	case "say":
		slot := speech.SlotOriginal
		if argument == "t" || argument == "translation" {
			slot = speech.SlotTranslation
		}

		err := facade.Speak(slot)
		if err != nil {
			fmt.Printf("say: %v\n", err)
		}
	case "refresh":
		fmt.Printf("Service: %s\n", facade.Refresh(context.Background()))
	case "langs":
		for _, language := range facade.Languages() {
			fmt.Printf("  %s  %s\n", language.Code, language.DisplayName)
		}
	case "show":
		// State is printed below for every command.
	default:
		printHelp()
	}

	printState(facade)
}

func printHelp() {
	fmt.Println("Commands: t <text> | in <text> | swap | cs | ct | say [o|t] | refresh | langs | show | quit")
}

func printState(facade *client.Facade) {
	snapshot := facade.Snapshot()

	fmt.Printf(
		"[%s -> %s | %s | service %s]\n",
		snapshot.Pair.Source,
		snapshot.Pair.Target,
		snapshot.Status,
		snapshot.Connection,
	)

	if snapshot.Input != "" {
		fmt.Printf("  input: %s\n", snapshot.Input)
	}

	if snapshot.Status == session.StatusFailed {
		fmt.Printf("  error: %s\n", snapshot.FailReason)
	}

	if snapshot.Result != nil {
		fmt.Printf("  translation: %s\n", snapshot.Result.TranslatedText)
	}

	if snapshot.Playback.Playing {
		fmt.Printf("  speaking: %s\n", snapshot.Playback.Active)
	}
}
