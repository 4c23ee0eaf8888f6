// Package eventlog publishes session lifecycle events to NATS so companion
// tooling (history recorders, dashboards) can follow what the client does.
package eventlog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/anuvadml/anuvad/internal/core"
)

// Event kinds, appended to the configured subject prefix.
const (
	KindTranslationCompleted = "translation.completed"
	KindTranslationFailed    = "translation.failed"
	KindSpeechStarted        = "speech.started"
	KindSpeechStopped        = "speech.stopped"
)

// DefaultSubjectPrefix is used when the configuration names none.
const DefaultSubjectPrefix = "anuvad"

// Event is the JSON payload published for every lifecycle event. Publishing
// is fire-and-forget: a lost event never disturbs the session.
type Event struct {
	Kind       string    `json:"kind"`
	RequestID  string    `json:"request_id,omitempty"`
	Source     string    `json:"source_language,omitempty"`
	Target     string    `json:"target_language,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Slot       string    `json:"slot,omitempty"`
	SpeechCode string    `json:"speech_code,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits events on subjects of the form "<prefix>.<kind>".
type Publisher struct {
	conn   *nats.Conn
	prefix string
	log    *logger.Logger
}

// New creates a publisher on the given connection. An empty prefix selects
// DefaultSubjectPrefix.
func New(conn *nats.Conn, prefix string, log *logger.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	return &Publisher{
		conn:   conn,
		prefix: prefix,
		log:    log,
	}
}

// TranslationCompleted implements session.Observer.
func (p *Publisher) TranslationCompleted(req core.Request, res core.Result) {
	p.publish(Event{
		Kind:       KindTranslationCompleted,
		RequestID:  req.ID,
		Source:     res.Source,
		Target:     res.Target,
		Reason:     "",
		Slot:       "",
		SpeechCode: "",
		OccurredAt: time.Now().UTC(),
	})
}

// TranslationFailed implements session.Observer.
func (p *Publisher) TranslationFailed(req core.Request, reason string) {
	p.publish(Event{
		Kind:       KindTranslationFailed,
		RequestID:  req.ID,
		Source:     req.Source,
		Target:     req.Target,
		Reason:     reason,
		Slot:       "",
		SpeechCode: "",
		OccurredAt: time.Now().UTC(),
	})
}

// SpeechStarted records the start of playback for one of the speakable slots.
func (p *Publisher) SpeechStarted(slot, speechCode string) {
	p.publish(Event{
		Kind:       KindSpeechStarted,
		RequestID:  "",
		Source:     "",
		Target:     "",
		Reason:     "",
		Slot:       slot,
		SpeechCode: speechCode,
		OccurredAt: time.Now().UTC(),
	})
}

// SpeechStopped records that playback was stopped or finished.
func (p *Publisher) SpeechStopped() {
	p.publish(Event{
		Kind:       KindSpeechStopped,
		RequestID:  "",
		Source:     "",
		Target:     "",
		Reason:     "",
		Slot:       "",
		SpeechCode: "",
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal %s event: %v", event.Kind, err)

		return
	}

	subject := fmt.Sprintf("%s.%s", p.prefix, event.Kind)

	publishErr := p.conn.Publish(subject, data)
	if publishErr != nil {
		p.log.Warn("Failed to publish %s event: %v", subject, publishErr)
	}
}
