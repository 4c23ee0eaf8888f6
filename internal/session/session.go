// Package session owns the language pair, the input text, and the translate
// request lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/book-expert/logger"
	"github.com/google/uuid"

	"github.com/anuvadml/anuvad/internal/catalog"
	"github.com/anuvadml/anuvad/internal/core"
	"github.com/anuvadml/anuvad/internal/probe"
)

// Static errors.
var (
	// ErrEmptyInput indicates a blank submission; no request is sent.
	ErrEmptyInput = errors.New("input text is empty")
	// ErrNotConnected indicates the service is unreachable; no request is sent.
	ErrNotConnected = errors.New("translation service is not reachable")
	// ErrTranslationInFlight indicates a request is already outstanding.
	ErrTranslationInFlight = errors.New("a translation request is already in flight")
)

// genericFailureReason is shown when the service gave no usable reason.
const genericFailureReason = "Translation failed. Please try again."

// Status is the lifecycle state of the session. Exactly one is active at a
// time.
type Status int

// Lifecycle states.
const (
	StatusIdle Status = iota
	StatusTranslating
	StatusSucceeded
	StatusFailed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusTranslating:
		return "translating"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LanguagePair is the current source and target selection. Source may equal
// target; the service echoes or translates as it sees fit.
type LanguagePair struct {
	Source string
	Target string
}

// ConnectionSource reports the current connectivity of the translation
// service.
type ConnectionSource interface {
	Status() probe.Status
}

// Observer receives lifecycle notifications for completed requests. All
// methods are called outside the session lock.
type Observer interface {
	TranslationCompleted(req core.Request, res core.Result)
	TranslationFailed(req core.Request, reason string)
}

// reasoner is implemented by service errors that carry a human-readable
// reason for the user.
type reasoner interface {
	Reason() string
}

// Session is the translate request state machine. It starts Idle with the
// first two catalog languages selected, and permits at most one in-flight
// request regardless of what the host UI does.
type Session struct {
	translator core.Translator
	catalog    *catalog.Catalog
	conn       ConnectionSource
	observer   Observer
	log        *logger.Logger

	mu         sync.Mutex
	pair       LanguagePair
	input      string
	result     *core.Result
	status     Status
	failReason string
}

// New creates an idle session. The initial pair is the first two catalog
// entries (or twice the first for a single-entry catalog).
func New(
	translator core.Translator,
	languages *catalog.Catalog,
	conn ConnectionSource,
	log *logger.Logger,
) *Session {
	ordered := languages.List()

	pair := LanguagePair{
		Source: ordered[0].Code,
		Target: ordered[0].Code,
	}
	if len(ordered) > 1 {
		pair.Target = ordered[1].Code
	}

	return &Session{
		translator: translator,
		catalog:    languages,
		conn:       conn,
		observer:   nil,
		log:        log,
		mu:         sync.Mutex{},
		pair:       pair,
		input:      "",
		result:     nil,
		status:     StatusIdle,
		failReason: "",
	}
}

// SetObserver registers a lifecycle observer. Pass nil to remove it.
func (s *Session) SetObserver(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observer = observer
}

// SetInput replaces the current input text.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = text
}

// Input returns the current input text.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.input
}

// Pair returns the current language selection.
func (s *Session) Pair() LanguagePair {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pair
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// FailReason returns the reason of the last failure, empty otherwise.
func (s *Session) FailReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failReason
}

// Result returns the latest translation result, if any.
func (s *Session) Result() (core.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return core.Result{}, false
	}

	return *s.result, true
}

// SetSource selects the source language. Legal in any state; an in-flight
// request is not cancelled.
func (s *Session) SetSource(code string) error {
	_, err := s.catalog.Lookup(code)
	if err != nil {
		return fmt.Errorf("set source: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair.Source = code

	return nil
}

// SetTarget selects the target language. Legal in any state.
func (s *Session) SetTarget(code string) error {
	_, err := s.catalog.Lookup(code)
	if err != nil {
		return fmt.Errorf("set target: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair.Target = code

	return nil
}

// CycleSource advances the source selection to the next catalog entry,
// wrapping after the last.
func (s *Session) CycleSource() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.catalog.Next(s.pair.Source)
	if err != nil {
		// Selection only ever derives from the catalog, so this is
		// unreachable in normal operation.
		s.log.Error("Cycle source from %q failed: %v", s.pair.Source, err)

		return
	}

	s.pair.Source = next
}

// CycleTarget advances the target selection, wrapping after the last entry.
func (s *Session) CycleTarget() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.catalog.Next(s.pair.Target)
	if err != nil {
		s.log.Error("Cycle target from %q failed: %v", s.pair.Target, err)

		return
	}

	s.pair.Target = next
}

// Swap exchanges source and target atomically. When a result exists, the
// previous translation becomes the new input and the previous input takes the
// translation slot; the status stays Succeeded and no request is issued.
func (s *Session) Swap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair.Source, s.pair.Target = s.pair.Target, s.pair.Source

	if s.result == nil {
		return
	}

	previous := *s.result

	s.input = previous.TranslatedText
	s.result = &core.Result{
		OriginalText:   previous.TranslatedText,
		TranslatedText: previous.OriginalText,
		Source:         s.pair.Source,
		Target:         s.pair.Target,
	}
}

// Translate submits the resolved text (override when non-empty, the current
// input otherwise) to the service. Guards, in order: blank text, service not
// connected, request already in flight. On success the result is replaced and
// the status moves to Succeeded; on failure the status moves to Failed with a
// user-facing reason and the prior result is preserved.
func (s *Session) Translate(ctx context.Context, override string) error {
	req, err := s.begin(override)
	if err != nil {
		return err
	}

	s.log.Info(
		"Translate request %s: %s -> %s (%d chars)",
		req.ID, req.Source, req.Target, len(req.Text),
	)

	result, translateErr := s.translator.Translate(ctx, req)

	observer := s.finish(req, result, translateErr)

	if translateErr != nil {
		if observer != nil {
			observer.TranslationFailed(req, failureReason(translateErr))
		}

		return fmt.Errorf("translate: %w", translateErr)
	}

	if observer != nil {
		observer.TranslationCompleted(req, result)
	}

	return nil
}

// begin applies the submission guards and transitions to Translating.
func (s *Session) begin(override string) (core.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := strings.TrimSpace(override)
	if override == "" {
		resolved = strings.TrimSpace(s.input)
	}

	if resolved == "" {
		return core.Request{}, ErrEmptyInput
	}

	if s.conn.Status() != probe.StatusConnected {
		return core.Request{}, ErrNotConnected
	}

	if s.status == StatusTranslating {
		return core.Request{}, ErrTranslationInFlight
	}

	s.status = StatusTranslating

	return core.Request{
		ID:     uuid.NewString(),
		Text:   resolved,
		Source: s.pair.Source,
		Target: s.pair.Target,
	}, nil
}

// finish applies the completion of the single outstanding request and returns
// the observer to notify, if any.
func (s *Session) finish(req core.Request, result core.Result, translateErr error) Observer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if translateErr != nil {
		s.status = StatusFailed
		s.failReason = failureReason(translateErr)

		s.log.Error("Translate request %s failed: %v", req.ID, translateErr)

		return s.observer
	}

	s.status = StatusSucceeded
	s.failReason = ""
	s.result = &result

	return s.observer
}

// failureReason maps a translate error to the reason shown to the user: the
// service's {detail} text verbatim when present, a generic message otherwise.
func failureReason(err error) string {
	var withReason reasoner
	if errors.As(err, &withReason) && withReason.Reason() != "" {
		return withReason.Reason()
	}

	return genericFailureReason
}
