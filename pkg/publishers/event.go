package publishers

import (
	"time"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
)

// Run outcomes carried in Event.Status.
const (
	StatusSucceeded = "succeeded"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Event is the run summary published downstream when a sync job ends.
type Event struct {
	Script    string           `json:"script"`
	Env       string           `json:"env,omitempty"`
	Status    string           `json:"status"`
	Error     string           `json:"error,omitempty"`
	Report    domain.RunReport `json:"report"`
	EmittedAt time.Time        `json:"emitted_at"`
}

// NewEvent constructs an Event for a finished run. runErr is the error that
// halted the run, if any.
func NewEvent(env string, report domain.RunReport, runErr error) Event {
	evt := Event{
		Script:    report.Script,
		Env:       env,
		Status:    StatusSucceeded,
		Report:    report,
		EmittedAt: time.Now().UTC(),
	}
	switch {
	case runErr != nil:
		evt.Status = StatusFailed
		evt.Error = runErr.Error()
	case report.Failed > 0 || report.Skipped > 0:
		evt.Status = StatusPartial
	}
	return evt
}

// attributes are attached as message metadata by queue and topic sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"script": e.Script,
		"status": e.Status,
	}
}
