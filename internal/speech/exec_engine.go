// ExecEngine drives a local speech synthesizer binary (espeak-ng compatible
// flag set). One process at a time; Stop kills the running process.
package speech

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/book-expert/logger"

	"github.com/anuvadml/anuvad/internal/core"
)

// DefaultSynthCommand is the synthesizer binary used when none is configured.
const DefaultSynthCommand = "espeak-ng"

// espeak-ng pitch scale: 0-99, 50 is the voice default.
const (
	neutralPitchScale = 50
	maxPitchScale     = 99
)

// ErrUtteranceActive indicates Speak was called while a process is running.
var ErrUtteranceActive = errors.New("an utterance is already playing")

// ExecEngine implements core.SpeechEngine by spawning a synthesizer process
// per utterance.
type ExecEngine struct {
	command string
	log     *logger.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecEngine creates an engine around the given synthesizer command. An
// empty command selects DefaultSynthCommand.
func NewExecEngine(command string, log *logger.Logger) *ExecEngine {
	if command == "" {
		command = DefaultSynthCommand
	}

	return &ExecEngine{
		command: command,
		log:     log,
		mu:      sync.Mutex{},
		cmd:     nil,
	}
}

// Speak starts the synthesizer for one utterance. done is invoked from a
// background goroutine when the process exits, unless the utterance was
// stopped first.
func (e *ExecEngine) Speak(utterance core.Utterance, done func(error)) error {
	args := []string{
		"-v", utterance.SpeechCode,
		"-p", strconv.Itoa(pitchScale(utterance.Pitch)),
		"-s", strconv.Itoa(utterance.RateWPM),
		utterance.Text,
	}

	// #nosec G204 -- the command comes from configuration, the arguments
	// from the fixed prosody parameters and catalog speech codes
	cmd := exec.Command(e.command, args...)

	e.mu.Lock()

	if e.cmd != nil {
		e.mu.Unlock()

		return ErrUtteranceActive
	}

	err := cmd.Start()
	if err != nil {
		e.mu.Unlock()

		return fmt.Errorf("failed to start %s: %w", e.command, err)
	}

	e.cmd = cmd
	e.mu.Unlock()

	go e.wait(cmd, done)

	return nil
}

// Stop kills the running synthesizer process, if any. The stopped utterance
// does not report completion.
func (e *ExecEngine) Stop() {
	e.mu.Lock()
	cmd := e.cmd
	e.cmd = nil
	e.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}

	killErr := cmd.Process.Kill()
	if killErr != nil {
		e.log.Warn("Failed to kill synthesizer process: %v", killErr)
	}
}

// wait reaps the process and reports completion for utterances that were not
// stopped.
func (e *ExecEngine) wait(cmd *exec.Cmd, done func(error)) {
	waitErr := cmd.Wait()

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
		done(fmt.Errorf("%s exited: %w", e.command, waitErr))

		return
	}

	done(nil)
}

// pitchScale maps the neutral-centered pitch multiplier onto the synthesizer's
// 0-99 scale.
func pitchScale(pitch float64) int {
	if pitch <= 0 {
		return neutralPitchScale
	}

	scaled := int(pitch * neutralPitchScale)
	if scaled > maxPitchScale {
		return maxPitchScale
	}

	return scaled
}
