package speech_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvadml/anuvad/internal/backend"
	"github.com/anuvadml/anuvad/internal/speech"
)

var errMockSynthesis = errors.New("mock synthesis error")

// mockSynthesizer answers synthesis calls from memory.
type mockSynthesizer struct {
	mu         sync.Mutex
	failSynth  bool
	requests   []backend.SynthesisRequest
	fetchedURL string
}

func (m *mockSynthesizer) Synthesize(
	_ context.Context,
	req backend.SynthesisRequest,
) (backend.SynthesisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSynth {
		return backend.SynthesisResult{}, errMockSynthesis
	}

	m.requests = append(m.requests, req)

	return backend.SynthesisResult{
		AudioURL: "/api/v1/audio/clip.mp3",
		Duration: 1.2,
	}, nil
}

func (m *mockSynthesizer) FetchAudio(_ context.Context, audioURL string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchedURL = audioURL

	return []byte("fake-mp3-data"), nil
}

func TestRemoteEngineSpeaksThroughPlayer(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{}
	engine := speech.NewRemoteEngine(synth, writeStubSynth(t, "0"), newTestLogger(t))

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

	synth.mu.Lock()
	defer synth.mu.Unlock()

	require.Len(t, synth.requests, 1)
	// The service expects bare two-letter codes, not speech-engine codes.
	assert.Equal(t, "en", synth.requests[0].Language)
	assert.Equal(t, "/api/v1/audio/clip.mp3", synth.fetchedURL)
}

func TestRemoteEngineSynthesisFailure(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{failSynth: true}
	engine := speech.NewRemoteEngine(synth, writeStubSynth(t, "0"), newTestLogger(t))

	err := engine.Speak(testUtterance(), func(error) {})
	require.ErrorIs(t, err, errMockSynthesis)
}

func TestRemoteEngineStopKillsPlayer(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{}
	engine := speech.NewRemoteEngine(synth, writeStubSynth(t, "30"), newTestLogger(t))

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
