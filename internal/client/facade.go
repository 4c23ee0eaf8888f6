// Package client composes the session, the connectivity probe, and the speech
// controller into the operations a UI layer calls and the state it renders.
package client

import (
	"context"

	"github.com/book-expert/logger"

	"github.com/anuvadml/anuvad/internal/catalog"
	"github.com/anuvadml/anuvad/internal/core"
	"github.com/anuvadml/anuvad/internal/eventlog"
	"github.com/anuvadml/anuvad/internal/probe"
	"github.com/anuvadml/anuvad/internal/session"
	"github.com/anuvadml/anuvad/internal/speech"
)

// Snapshot is everything a UI needs to render one frame of the client.
type Snapshot struct {
	Pair       session.LanguagePair
	Input      string
	Result     *core.Result
	Status     session.Status
	FailReason string
	Connection probe.Status
	Playback   speech.PlaybackState
}

// Facade wires the interaction core together. Guards live in the owning
// components; the facade never relies on a UI disabling affordances.
type Facade struct {
	catalog      *catalog.Catalog
	connectivity *probe.Probe
	session      *session.Session
	speech       *speech.Controller
	events       *eventlog.Publisher
	log          *logger.Logger
}

// New composes a facade. events may be nil when publishing is not configured.
func New(
	languages *catalog.Catalog,
	connectivity *probe.Probe,
	sess *session.Session,
	playback *speech.Controller,
	events *eventlog.Publisher,
	log *logger.Logger,
) *Facade {
	if events != nil {
		sess.SetObserver(events)
	}

	return &Facade{
		catalog:      languages,
		connectivity: connectivity,
		session:      sess,
		speech:       playback,
		events:       events,
		log:          log,
	}
}

// Start resolves the initial connectivity status. Called once when the host
// brings the client up.
func (f *Facade) Start(ctx context.Context) probe.Status {
	status := f.connectivity.Check(ctx)

	f.log.Info("Initial connectivity: %s", status)

	return status
}

// Refresh re-runs the connectivity probe on demand (pull-to-refresh).
func (f *Facade) Refresh(ctx context.Context) probe.Status {
	return f.connectivity.Check(ctx)
}

// Languages returns the catalog entries in cycling order.
func (f *Facade) Languages() []catalog.Language {
	return f.catalog.List()
}

// SetInput replaces the input text.
func (f *Facade) SetInput(text string) {
	f.session.SetInput(text)
}

// SetSource selects the source language directly.
func (f *Facade) SetSource(code string) error {
	return f.session.SetSource(code)
}

// SetTarget selects the target language directly.
func (f *Facade) SetTarget(code string) error {
	return f.session.SetTarget(code)
}

// Translate submits the current input text.
func (f *Facade) Translate(ctx context.Context) error {
	return f.session.Translate(ctx, "")
}

// Swap exchanges the language pair and, when a result exists, the roles of
// the two texts.
func (f *Facade) Swap() {
	f.session.Swap()
}

// CycleSource advances the source language selection.
func (f *Facade) CycleSource() {
	f.session.CycleSource()
}

// CycleTarget advances the target language selection.
func (f *Facade) CycleTarget() {
	f.session.CycleTarget()
}

// Speak toggles playback of one of the two speakable texts: the current input
// in the source language, or the latest translation in the target language.
// Speaking an absent translation is a no-op.
func (f *Facade) Speak(slot speech.Slot) error {
	text, langCode := f.speakable(slot)

	wasPlaying := f.speech.State().Playing

	err := f.speech.Toggle(slot, text, langCode)
	if err != nil {
		return err
	}

	if f.events == nil {
		return nil
	}

	state := f.speech.State()

	switch {
	case wasPlaying:
		f.events.SpeechStopped()
	case state.Playing:
		f.events.SpeechStarted(slot.String(), f.catalog.SpeechCode(langCode, speech.DefaultFallbackSpeechCode))
	}

	return nil
}

// Snapshot returns the current observable state.
func (f *Facade) Snapshot() Snapshot {
	var result *core.Result

	if latest, ok := f.session.Result(); ok {
		result = &latest
	}

	return Snapshot{
		Pair:       f.session.Pair(),
		Input:      f.session.Input(),
		Result:     result,
		Status:     f.session.Status(),
		FailReason: f.session.FailReason(),
		Connection: f.connectivity.Status(),
		Playback:   f.speech.State(),
	}
}

// speakable resolves the text and language for a slot.
func (f *Facade) speakable(slot speech.Slot) (string, string) {
	pair := f.session.Pair()

	switch slot {
	case speech.SlotOriginal:
		return f.session.Input(), pair.Source
	case speech.SlotTranslation:
		result, ok := f.session.Result()
		if !ok {
			return "", pair.Target
		}

		return result.TranslatedText, pair.Target
	case speech.SlotNone:
		return "", pair.Source
	default:
		return "", pair.Source
	}
}
