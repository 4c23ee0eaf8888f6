package speech_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvadml/anuvad/internal/core"
	"github.com/anuvadml/anuvad/internal/speech"
)

// writeStubSynth creates a shell script standing in for the synthesizer
// binary. sleepSeconds keeps the process alive long enough to be stopped.
func writeStubSynth(t *testing.T, sleepSeconds string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stub-synth")
	script := "#!/bin/sh\nsleep " + sleepSeconds + "\n"

	err := os.WriteFile(path, []byte(script), 0o700)
	require.NoError(t, err)

	return path
}

func testUtterance() core.Utterance {
	return core.Utterance{
		Text:       "hello",
		SpeechCode: "en-US",
		Pitch:      1.0,
		RateWPM:    160,
	}
}

func TestExecEngineCompletionCallback(t *testing.T) {
	t.Parallel()

	engine := speech.NewExecEngine(writeStubSynth(t, "0"), newTestLogger(t))

	done := make(chan error, 1)

	err := engine.Speak(testUtterance(), func(doneErr error) {
		done <- doneErr
	})
	require.NoError(t, err)

	select {
	case doneErr := <-done:
		assert.NoError(t, doneErr)
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback never fired")
	}
}

func TestExecEngineStopSuppressesCompletion(t *testing.T) {
	t.Parallel()

	engine := speech.NewExecEngine(writeStubSynth(t, "30"), newTestLogger(t))

	done := make(chan error, 1)

	err := engine.Speak(testUtterance(), func(doneErr error) {
		done <- doneErr
	})
	require.NoError(t, err)

	engine.Stop()

	select {
	case doneErr := <-done:
		t.Fatalf("stopped utterance reported completion: %v", doneErr)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestExecEngineRejectsOverlappingUtterances(t *testing.T) {
	t.Parallel()

	engine := speech.NewExecEngine(writeStubSynth(t, "30"), newTestLogger(t))
	t.Cleanup(engine.Stop)

	require.NoError(t, engine.Speak(testUtterance(), func(error) {}))

	err := engine.Speak(testUtterance(), func(error) {})
	require.ErrorIs(t, err, speech.ErrUtteranceActive)
}

func TestExecEngineMissingBinary(t *testing.T) {
	t.Parallel()

	engine := speech.NewExecEngine(
		filepath.Join(t.TempDir(), "no-such-synth"),
		newTestLogger(t),
	)

	err := engine.Speak(testUtterance(), func(error) {})
	require.Error(t, err)
}
