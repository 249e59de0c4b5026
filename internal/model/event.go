package model

import "time"

// Kind discriminates the event categories accepted by the collector.
type Kind string

// Event kinds
const (
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindAudit   Kind = "audit"
	KindMetric  Kind = "metric"
	KindDebug   Kind = "debug"
	KindSuccess Kind = "success"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindInfo, KindWarning, KindError, KindAudit, KindMetric, KindDebug, KindSuccess:
		return true
	}
	return false
}

// Event is one structured log record. Immutable once appended to the buffer;
// the buffer only ever appends or drains.
type Event struct {
	Type        Kind           `json:"type"`
	Message     string         `json:"message"`
	Importance  string         `json:"importance,omitempty"`
	Subsystem   string         `json:"subsystem,omitempty"`
	Operation   string         `json:"operation,omitempty"`
	Track       map[string]any `json:"track,omitempty"`
	Security    map[string]any `json:"security,omitempty"`
	Metrics     map[string]any `json:"metrics,omitempty"`
	AppName     string         `json:"appName,omitempty"`
	Environment string         `json:"environment,omitempty"`
	// Timestamp is the ingestion time, assigned at buffer-append.
	Timestamp time.Time `json:"timestamp"`
}
