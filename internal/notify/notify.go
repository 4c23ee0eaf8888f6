// Package notify surfaces non-fatal warnings as desktop notifications.
package notify

import (
	"github.com/book-expert/logger"
	"github.com/gen2brain/beeep"
)

const appName = "Anuvad"

// Notifier shows desktop notifications for recoverable problems, such as
// speech playback failures. Warnings are always logged; the desktop popup can
// be switched off.
type Notifier struct {
	enabled bool
	log     *logger.Logger
}

// New creates a Notifier.
func New(enabled bool, log *logger.Logger) *Notifier {
	return &Notifier{
		enabled: enabled,
		log:     log,
	}
}

// Warn logs the warning and, when enabled, shows it as a notification.
// Notification delivery failures are not critical and are only logged.
func (n *Notifier) Warn(title, message string) {
	n.log.Warn("%s: %s", title, message)

	if !n.enabled {
		return
	}

	notifyErr := beeep.Notify(appName+": "+title, message, "")
	if notifyErr != nil {
		n.log.Warn("Failed to show notification: %v", notifyErr)
	}
}
