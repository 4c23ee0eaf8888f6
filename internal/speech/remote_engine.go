// RemoteEngine renders speech through the translation service's
// text-to-speech endpoint and plays the fetched audio with a local player.
package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/book-expert/logger"

	"github.com/anuvadml/anuvad/internal/backend"
	"github.com/anuvadml/anuvad/internal/core"
)

// DefaultPlayerCommand plays the fetched audio when none is configured.
const DefaultPlayerCommand = "mpv"

const (
	synthesisTimeout = 15 * time.Second
	audioFilePattern = "anuvad-speech-*.mp3"

	// Rate at which speech sounds normal; VoiceSpeed is relative to it.
	normalRateWPM = 175
)

// Synthesizer is the subset of the service client the engine needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, req backend.SynthesisRequest) (backend.SynthesisResult, error)
	FetchAudio(ctx context.Context, audioURL string) ([]byte, error)
}

// RemoteEngine implements core.SpeechEngine against the service's
// text-to-speech endpoint. The synthesized file is written to a temp path and
// handed to a player process; Stop kills the player.
type RemoteEngine struct {
	synth  Synthesizer
	player string
	log    *logger.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewRemoteEngine creates an engine around the service client and a player
// command. An empty player selects DefaultPlayerCommand.
func NewRemoteEngine(synth Synthesizer, player string, log *logger.Logger) *RemoteEngine {
	if player == "" {
		player = DefaultPlayerCommand
	}

	return &RemoteEngine{
		synth:  synth,
		player: player,
		log:    log,
		mu:     sync.Mutex{},
		cmd:    nil,
	}
}

// Speak synthesizes the utterance remotely and starts local playback. It
// returns once the player process is running; done fires when it exits.
func (e *RemoteEngine) Speak(utterance core.Utterance, done func(error)) error {
	e.mu.Lock()
	active := e.cmd != nil
	e.mu.Unlock()

	if active {
		return ErrUtteranceActive
	}

	audioPath, err := e.synthesizeToFile(utterance)
	if err != nil {
		return err
	}

	// #nosec G204 -- the player comes from configuration, the path from
	// os.CreateTemp
	cmd := exec.Command(e.player, audioPath)

	e.mu.Lock()

	if e.cmd != nil {
		e.mu.Unlock()
		removeTemp(audioPath, e.log)

		return ErrUtteranceActive
	}

	startErr := cmd.Start()
	if startErr != nil {
		e.mu.Unlock()
		removeTemp(audioPath, e.log)

		return fmt.Errorf("failed to start %s: %w", e.player, startErr)
	}

	e.cmd = cmd
	e.mu.Unlock()

	go e.wait(cmd, audioPath, done)

	return nil
}

// Stop kills the player process, if any. The stopped utterance does not
// report completion.
func (e *RemoteEngine) Stop() {
	e.mu.Lock()
	cmd := e.cmd
	e.cmd = nil
	e.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}

	killErr := cmd.Process.Kill()
	if killErr != nil {
		e.log.Warn("Failed to kill player process: %v", killErr)
	}
}

// synthesizeToFile requests audio from the service and writes it to a temp
// file, returning the path.
func (e *RemoteEngine) synthesizeToFile(utterance core.Utterance) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), synthesisTimeout)
	defer cancel()

	result, err := e.synth.Synthesize(ctx, backend.SynthesisRequest{
		Text:       utterance.Text,
		Language:   serviceLanguage(utterance.SpeechCode),
		VoiceSpeed: float64(utterance.RateWPM) / normalRateWPM,
	})
	if err != nil {
		return "", fmt.Errorf("remote synthesis failed: %w", err)
	}

	audioData, err := e.synth.FetchAudio(ctx, result.AudioURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch synthesized audio: %w", err)
	}

	tempFile, err := os.CreateTemp("", audioFilePattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio file: %w", err)
	}

	_, writeErr := tempFile.Write(audioData)
	closeErr := tempFile.Close()

	if writeErr != nil {
		removeTemp(tempFile.Name(), e.log)

		return "", fmt.Errorf("failed to write temp audio file: %w", writeErr)
	}

	if closeErr != nil {
		removeTemp(tempFile.Name(), e.log)

		return "", fmt.Errorf("failed to close temp audio file: %w", closeErr)
	}

	e.log.Info("Synthesized %d bytes for playback (%.1fs)", len(audioData), result.Duration)

	return tempFile.Name(), nil
}

// wait reaps the player, removes the temp file, and reports completion for
// utterances that were not stopped.
func (e *RemoteEngine) wait(cmd *exec.Cmd, audioPath string, done func(error)) {
	waitErr := cmd.Wait()

	removeTemp(audioPath, e.log)

	e.mu.Lock()
	stopped := e.cmd != cmd

	if !stopped {
		e.cmd = nil
	}

	e.mu.Unlock()

	if stopped {
		return
	}

	if waitErr != nil {
		done(fmt.Errorf("%s exited: %w", e.player, waitErr))

		return
	}

	done(nil)
}

// serviceLanguage reduces a speech-engine code to the two-letter code the
// service expects ("hi-IN" -> "hi").
func serviceLanguage(speechCode string) string {
	code, _, _ := strings.Cut(speechCode, "-")

	return code
}

func removeTemp(path string, log *logger.Logger) {
	removeErr := os.Remove(path)
	if removeErr != nil {
		log.Warn("Failed to remove temp audio file '%s': %v", path, removeErr)
	}
}
