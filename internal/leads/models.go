package leads

import "time"

// Lead is one captured inbound call, or the reconciled view of duplicate
// deliveries for the same call.
//
// Invariants:
// - Status is always one of the four Status values.
// - CreatedAt is the server receive time and is immutable.
// - FirstContactedAt, once set, is never overwritten.
// - CallDuration 0 is the canonical "missed call" sentinel.
// - (ClientID, CustomerNumber, CallTimestamp) is the natural key; the schema
//   enforces it with a unique constraint so reconciliation is a single
//   atomic upsert.
type Lead struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`

	CustomerNumber string `json:"customer_number" db:"customer_number"`
	Status         Status `json:"status" db:"status"`
	Notes          string `json:"notes" db:"notes"`

	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	CallTimestamp time.Time `json:"call_timestamp" db:"call_timestamp"`

	// CallDuration is the dial duration in seconds. 0 means no connect.
	CallDuration int `json:"call_duration" db:"call_duration"`

	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`

	FirstContactedAt *time.Time `json:"first_contacted_at,omitempty" db:"first_contacted_at"`
}

// Missed reports whether the call never connected.
func (l Lead) Missed() bool { return l.CallDuration == 0 }

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// ValidStatus reports whether s is one of the four lifecycle values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusContacted, StatusConverted, StatusLost:
		return true
	default:
		return false
	}
}
