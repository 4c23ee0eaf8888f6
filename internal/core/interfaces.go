// Package core defines the collaborator interfaces and value types shared by the
// translation client.
package core

import "context"

// Request is a single translation submission. ID is a UUID used to correlate
// logs and published events; it never reaches the wire.
type Request struct {
	ID     string
	Text   string
	Source string
	Target string
}

// Result is the outcome of a successful translation. Each success replaces the
// previous result in full.
type Result struct {
	OriginalText   string
	TranslatedText string
	Source         string
	Target         string
}

// Translator submits a translation request to the backend service.
type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}

// HealthChecker reports whether the backend service is reachable. A nil return
// means reachable; any error means unreachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Utterance is one speech playback request.
type Utterance struct {
	Text       string
	SpeechCode string
	Pitch      float64
	RateWPM    int
}

// SpeechEngine starts and stops audio playback. Speak returns once playback has
// started; done is invoked when the utterance finishes or fails mid-play. Stop
// halts the current utterance. A late done call for a stopped utterance is
// permitted; callers must treat it as a no-op.
type SpeechEngine interface {
	Speak(u Utterance, done func(error)) error
	Stop()
}

// Notifier surfaces non-fatal warnings to the user.
type Notifier interface {
	Warn(title, message string)
}
