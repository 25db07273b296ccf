package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. There are no Update or Delete methods.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// Audit is internal-only; do not expose these records to tenant users.
// Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.ClientID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogAdminClientUpdate records an operator editing a client profile.
func (s *Service) LogAdminClientUpdate(ctx context.Context, clientID, actorUserID, actorRole, ip, message string) error {
	return s.Append(ctx, Event{
		ClientID:    clientID,
		Type:        EventTypeAdminClientUpdate,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Message:     message,
	})
}

// LogLeadStatusChange records a dashboard status transition on a lead.
func (s *Service) LogLeadStatusChange(ctx context.Context, clientID, leadID, actorUserID, actorRole, from, to string) error {
	return s.Append(ctx, Event{
		ClientID:    clientID,
		Type:        EventTypeLeadStatusChange,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		LeadID:      leadID,
		Message:     "status " + from + " -> " + to,
	})
}
