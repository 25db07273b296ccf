package leads

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidStatus = errors.New("leads: invalid status")

// Service owns lead lifecycle rules on top of the repository: status
// transitions come from the dashboard, creation/reconciliation from the
// webhook path.
type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Capture records one qualifying call event. ReceivedAt defaults to now.
func (s *Service) Capture(ctx context.Context, p UpsertParams) (Lead, bool, error) {
	if !ValidStatus(p.Status) {
		return Lead{}, false, ErrInvalidStatus
	}
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = s.now().UTC()
	}
	return s.repo.Upsert(ctx, p)
}

func (s *Service) List(ctx context.Context, clientID string, f ListFilter) ([]Lead, error) {
	return s.repo.List(ctx, clientID, f)
}

func (s *Service) Get(ctx context.Context, clientID, id string) (Lead, error) {
	return s.repo.Get(ctx, clientID, id)
}

// UpdateRequest is a partial dashboard edit. Nil fields are left unchanged.
type UpdateRequest struct {
	Status *Status
	Notes  *string
}

// Update applies a dashboard edit to a tenant's lead. Moving to "contacted"
// stamps first_contacted_at exactly once; later transitions leave it alone.
func (s *Service) Update(ctx context.Context, clientID, id string, req UpdateRequest) (Lead, error) {
	cur, err := s.repo.Get(ctx, clientID, id)
	if err != nil {
		return Lead{}, err
	}

	status := cur.Status
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return Lead{}, ErrInvalidStatus
		}
		status = *req.Status
	}
	notes := cur.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	return s.repo.UpdateStatusNotes(ctx, clientID, id, status, notes, s.now().UTC())
}
