// Package speech owns playback state and the engines that produce audio.
//
// The device can speak only one utterance intelligibly at a time, so a single
// Controller guards all speakable texts with one shared playing flag: a tap on
// any speak affordance while audio is sounding stops the current playback, it
// never starts a second stream.
package speech

import (
	"fmt"
	"strings"
	"sync"

	"github.com/book-expert/logger"

	"github.com/anuvadml/anuvad/internal/catalog"
	"github.com/anuvadml/anuvad/internal/core"
)

// Fixed prosody: neutral pitch, rate slightly under normal, tuned for
// intelligibility.
const (
	defaultPitch   = 1.0
	defaultRateWPM = 160
)

// DefaultFallbackSpeechCode is used when a language has no catalog mapping.
const DefaultFallbackSpeechCode = "en-US"

const warnTitle = "Speech unavailable"

// Slot identifies which of the two speakable texts is sounding.
type Slot int

// Speakable slots.
const (
	SlotNone Slot = iota
	SlotOriginal
	SlotTranslation
)

// String implements fmt.Stringer.
func (s Slot) String() string {
	switch s {
	case SlotOriginal:
		return "original"
	case SlotTranslation:
		return "translation"
	case SlotNone:
		return "none"
	default:
		return "none"
	}
}

// PlaybackState is a snapshot of the shared playback flag.
type PlaybackState struct {
	Playing bool
	Active  Slot
}

// noopNotifier preserves controller flow when no notifier is wired.
type noopNotifier struct{}

func (noopNotifier) Warn(string, string) {}

// Controller mediates start/stop across the speakable texts. It owns the only
// PlaybackState in the system.
type Controller struct {
	engine   core.SpeechEngine
	catalog  *catalog.Catalog
	notifier core.Notifier
	fallback string
	log      *logger.Logger

	mu      sync.Mutex
	playing bool
	active  Slot
}

// NewController creates a controller around the given engine. A nil notifier
// is replaced with a no-op.
func NewController(
	engine core.SpeechEngine,
	languages *catalog.Catalog,
	notifier core.Notifier,
	log *logger.Logger,
) *Controller {
	if notifier == nil {
		notifier = noopNotifier{}
	}

	return &Controller{
		engine:   engine,
		catalog:  languages,
		notifier: notifier,
		fallback: DefaultFallbackSpeechCode,
		log:      log,
		mu:       sync.Mutex{},
		playing:  false,
		active:   SlotNone,
	}
}

// State returns the current playback snapshot.
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return PlaybackState{Playing: c.playing, Active: c.active}
}

// Toggle stops the current playback when something is sounding, regardless of
// which slot started it. Otherwise it begins playback of the given text in the
// speech code registered for langCode, falling back to a default code for
// unmapped languages. Blank text is a no-op.
func (c *Controller) Toggle(slot Slot, text, langCode string) error {
	c.mu.Lock()

	if c.playing {
		c.playing = false
		c.active = SlotNone
		c.mu.Unlock()

		c.engine.Stop()
		c.log.Info("Playback stopped by toggle")

		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		c.mu.Unlock()

		return nil
	}

	utterance := core.Utterance{
		Text:       text,
		SpeechCode: c.catalog.SpeechCode(langCode, c.fallback),
		Pitch:      defaultPitch,
		RateWPM:    defaultRateWPM,
	}

	c.playing = true
	c.active = slot
	c.mu.Unlock()

	err := c.engine.Speak(utterance, c.handleDone)
	if err != nil {
		c.mu.Lock()
		c.playing = false
		c.active = SlotNone
		c.mu.Unlock()

		c.log.Warn("Failed to start playback (%s): %v", utterance.SpeechCode, err)
		c.notifier.Warn(warnTitle, "Could not start speech playback.")

		return fmt.Errorf("start playback: %w", err)
	}

	c.log.Info("Playback started: %s slot, %s", slot, utterance.SpeechCode)

	return nil
}

// handleDone clears the playing flag when the engine finishes or errors. A
// stale completion from a stopped utterance finds the flag already false and
// changes nothing.
func (c *Controller) handleDone(err error) {
	c.mu.Lock()
	c.playing = false
	c.active = SlotNone
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("Playback ended with error: %v", err)
		c.notifier.Warn(warnTitle, "Speech playback failed.")
	}
}
