// Package probe tracks reachability of the translation service.
package probe

import (
	"context"
	"sync"

	"github.com/book-expert/logger"

	"github.com/anuvadml/anuvad/internal/core"
)

// Status is the connectivity state of the translation service.
type Status int

// Connectivity states. The probe starts Unknown and resolves to Connected or
// Disconnected after the first check completes.
const (
	StatusUnknown Status = iota
	StatusConnected
	StatusDisconnected
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Probe resolves and caches the connectivity status of the translation
// service. Checks never return errors to the caller: every failure mode
// (timeout, refusal, non-2xx) resolves to Disconnected.
//
// Checks may overlap. Only the most recently issued check may update the
// cached status; completions of superseded checks are discarded so a slow
// stale probe cannot overwrite a fresher result.
type Probe struct {
	checker core.HealthChecker
	log     *logger.Logger

	mu      sync.Mutex
	status  Status
	issued  uint64
	applied uint64
}

// New creates a probe in the Unknown state.
func New(checker core.HealthChecker, log *logger.Logger) *Probe {
	return &Probe{
		checker: checker,
		log:     log,
		mu:      sync.Mutex{},
		status:  StatusUnknown,
		issued:  0,
		applied: 0,
	}
}

// Check runs one health check against the service and returns the resulting
// status. The cached status is updated unless a newer check completed while
// this one was in flight.
func (p *Probe) Check(ctx context.Context) Status {
	p.mu.Lock()
	p.issued++
	generation := p.issued
	p.mu.Unlock()

	next := StatusConnected

	err := p.checker.Health(ctx)
	if err != nil {
		next = StatusDisconnected

		p.log.Warn("Health check failed: %v", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if generation < p.applied {
		return p.status
	}

	p.applied = generation
	p.status = next

	return next
}

// Status returns the most recently resolved connectivity status.
func (p *Probe) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status
}
