package analytics

import (
	"context"
	"errors"
	"sync"

	"leadcapture-platform/internal/leads"
)

// MemoryRepo is a simple in-memory analytics repository for tests.
// It enforces client isolation on reads.
type MemoryRepo struct {
	mu    sync.Mutex
	Leads []leads.Lead
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListLeads(ctx context.Context, clientID string) ([]leads.Lead, error) {
	if clientID == "" {
		return nil, errors.New("client_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]leads.Lead, 0)
	for _, l := range r.Leads {
		if l.ClientID != clientID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
