// Package speech_test tests the playback controller and the exec engine.
package speech_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvadml/anuvad/internal/catalog"
	"github.com/anuvadml/anuvad/internal/core"
	"github.com/anuvadml/anuvad/internal/speech"
)

var errMockStart = errors.New("mock start error")

// mockEngine records Speak/Stop calls and retains the completion callback so
// tests can fire it explicitly.
type mockEngine struct {
	mu         sync.Mutex
	speakCalls int
	stopCalls  int
	startErr   error
	utterances []core.Utterance
	done       func(error)
}

func (m *mockEngine) Speak(utterance core.Utterance, done func(error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.speakCalls++

	if m.startErr != nil {
		return m.startErr
	}

	m.utterances = append(m.utterances, utterance)
	m.done = done

	return nil
}

func (m *mockEngine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopCalls++
}

func (m *mockEngine) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.speakCalls, m.stopCalls
}

func (m *mockEngine) lastUtterance() core.Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.utterances[len(m.utterances)-1]
}

func (m *mockEngine) fireDone(err error) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	done(err)
}

// recordingNotifier captures warnings.
type recordingNotifier struct {
	mu       sync.Mutex
	warnings []string
}

func (n *recordingNotifier) Warn(_, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.warnings = append(n.warnings, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.warnings)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "speech-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = log.Close()
	})

	return log
}

func newTestController(t *testing.T, engine core.SpeechEngine, notifier core.Notifier) *speech.Controller {
	t.Helper()

	return speech.NewController(engine, catalog.Default(), notifier, newTestLogger(t))
}

func TestToggleStartsPlayback(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	controller := newTestController(t, engine, nil)

	err := controller.Toggle(speech.SlotOriginal, "hello", "en")
	require.NoError(t, err)

	state := controller.State()
	assert.True(t, state.Playing)
	assert.Equal(t, speech.SlotOriginal, state.Active)

	utterance := engine.lastUtterance()
	assert.Equal(t, "hello", utterance.Text)
	assert.Equal(t, "en-US", utterance.SpeechCode)
	assert.InEpsilon(t, 1.0, utterance.Pitch, 0.001)
	assert.Positive(t, utterance.RateWPM)
}

func TestToggleTwiceStopsExactlyOnce(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	controller := newTestController(t, engine, nil)

	require.NoError(t, controller.Toggle(speech.SlotOriginal, "hello", "en"))
	require.NoError(t, controller.Toggle(speech.SlotOriginal, "hello", "en"))

	speakCalls, stopCalls := engine.counts()
	assert.Equal(t, 1, speakCalls)
	assert.Equal(t, 1, stopCalls)
	assert.False(t, controller.State().Playing)
}

func TestToggleOnOtherSlotStopsCurrentPlayback(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	controller := newTestController(t, engine, nil)

	require.NoError(t, controller.Toggle(speech.SlotOriginal, "hello", "en"))

	// A tap on the other speak affordance stops, it does not start.
	require.NoError(t, controller.Toggle(speech.SlotTranslation, "नमस्ते", "hi"))

	speakCalls, stopCalls := engine.counts()
	assert.Equal(t, 1, speakCalls)
	assert.Equal(t, 1, stopCalls)
	assert.False(t, controller.State().Playing)
	assert.Equal(t, speech.SlotNone, controller.State().Active)
}

func TestCompletionResetsFlag(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	controller := newTestController(t, engine, nil)

	require.NoError(t, controller.Toggle(speech.SlotTranslation, "नमस्ते", "hi"))
	require.True(t, controller.State().Playing)

	engine.fireDone(nil)

	assert.False(t, controller.State().Playing)
	assert.Equal(t, speech.SlotNone, controller.State().Active)
}

func TestStaleCompletionAfterStopIsNoOp(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	controller := newTestController(t, engine, nil)

	require.NoError(t, controller.Toggle(speech.SlotOriginal, "hello", "en"))
	require.NoError(t, controller.Toggle(speech.SlotOriginal, "hello", "en"))
	require.False(t, controller.State().Playing)

	// The engine delivers the stopped utterance's completion late.
	engine.fireDone(nil)

	assert.False(t, controller.State().Playing)

	// Playback can start again afterwards.
	require.NoError(t, controller.Toggle(speech.SlotOriginal, "hello", "en"))
	assert.True(t, controller.State().Playing)
}

func TestCompletionErrorWarnsUser(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	notifier := &recordingNotifier{}
	controller := newTestController(t, engine, notifier)

	require.NoError(t, controller.Toggle(speech.SlotOriginal, "hello", "en"))

	engine.fireDone(errMockStart)

	assert.False(t, controller.State().Playing)
	assert.Equal(t, 1, notifier.count())
}

func TestStartFailureResetsFlagAndWarns(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{startErr: errMockStart}
	notifier := &recordingNotifier{}
	controller := newTestController(t, engine, notifier)

	err := controller.Toggle(speech.SlotOriginal, "hello", "en")
	require.ErrorIs(t, err, errMockStart)

	assert.False(t, controller.State().Playing)
	assert.Equal(t, 1, notifier.count())
}

func TestBlankTextIsNoOp(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	controller := newTestController(t, engine, nil)

	require.NoError(t, controller.Toggle(speech.SlotOriginal, "   ", "en"))

	speakCalls, stopCalls := engine.counts()
	assert.Equal(t, 0, speakCalls)
	assert.Equal(t, 0, stopCalls)
	assert.False(t, controller.State().Playing)
}

func TestUnmappedLanguageFallsBack(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	controller := newTestController(t, engine, nil)

	require.NoError(t, controller.Toggle(speech.SlotOriginal, "hola", "es"))

	assert.Equal(t, speech.DefaultFallbackSpeechCode, engine.lastUtterance().SpeechCode)
}
