package audit

import "time"

type EventType string

const (
	// EventTypeAdminClientUpdate records an operator mutating a client
	// profile, the only write path for clients after creation.
	EventTypeAdminClientUpdate EventType = "admin_client_update"

	// EventTypeLeadStatusChange records a dashboard status transition.
	EventTypeLeadStatusChange EventType = "lead_status_change"
)

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - client_id is required for tenancy isolation.
// - Actor and IP capture are best-effort; never block a business flow on
//   audit failures.
type Event struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`

	Type EventType `json:"type" db:"type"`

	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress is the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// LeadID is set for lead-scoped events.
	LeadID string `json:"lead_id,omitempty" db:"lead_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
