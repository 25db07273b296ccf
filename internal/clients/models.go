package clients

import "time"

// Client is a tenant: one business owning one virtual number and one
// webhook credential.
//
// Invariants:
// - WebhookToken is globally unique and immutable after creation. It is the
//   sole authentication mechanism for inbound webhooks.
// - UserID, when set, is unique: at most one client per user.
// - Rows are created once at onboarding and mutated only through the admin
//   surface afterwards.
type Client struct {
	ID string `json:"id" db:"id"`

	// UserID is the owning dashboard user. Empty for clients provisioned
	// directly by an operator.
	UserID string `json:"user_id,omitempty" db:"user_id"`

	BusinessName string `json:"business_name" db:"business_name"`

	// WebhookToken is a secret capability embedded in the provider-facing
	// webhook URL. Never expose it in list endpoints.
	WebhookToken string `json:"webhook_token,omitempty" db:"webhook_token"`

	VirtualNumber string `json:"virtual_number" db:"virtual_number"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WebhookPath is the provider-facing path for this client's call events.
func (c Client) WebhookPath() string {
	return "/webhook/" + c.WebhookToken + "/"
}
