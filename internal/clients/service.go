package clients

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"leadcapture-platform/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument   = errors.New("clients: invalid argument")
	ErrAlreadyOnboarded  = errors.New("clients: user already has a client")
	ErrNumberUnavailable = errors.New("clients: no virtual number available")
)

// Resolver is the read surface the webhook path needs: token -> tenant.
type Resolver interface {
	FindByToken(ctx context.Context, token string) (Client, error)
}

// Service owns the Client lifecycle. Creation assigns the immutable webhook
// token and a virtual number; everything after creation goes through the
// admin surface.
type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Onboard creates the Client for a user completing signup.
// At most one client per user; a second attempt returns ErrAlreadyOnboarded.
func (s *Service) Onboard(ctx context.Context, userID, businessName string) (Client, error) {
	if userID == "" {
		return Client{}, ErrInvalidArgument
	}
	businessName = strings.TrimSpace(businessName)
	if businessName == "" {
		return Client{}, ErrInvalidArgument
	}

	// Retry number assignment a few times; the unique constraint on
	// virtual_number is the arbiter under concurrency.
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		c := Client{
			ID:            uuid.NewString(),
			UserID:        userID,
			BusinessName:  businessName,
			WebhookToken:  uuid.NewString(),
			VirtualNumber: randomVirtualNumber(),
			CreatedAt:     s.now().UTC(),
		}
		err := s.repo.Create(ctx, c)
		if err == nil {
			return c, nil
		}
		if utils.IsUniqueViolation(err) {
			// Distinguish "user already onboarded" from a number collision:
			// if the user now has a client, the user_id constraint fired.
			if _, uerr := s.repo.FindByUser(ctx, userID); uerr == nil {
				return Client{}, ErrAlreadyOnboarded
			}
			lastErr = err
			continue
		}
		return Client{}, err
	}
	if lastErr != nil {
		return Client{}, ErrNumberUnavailable
	}
	return Client{}, errors.New("clients: onboarding failed")
}

func (s *Service) ForUser(ctx context.Context, userID string) (Client, error) {
	if userID == "" {
		return Client{}, ErrInvalidArgument
	}
	return s.repo.FindByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	if id == "" {
		return Client{}, ErrInvalidArgument
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

// AdminUpdate mutates business_name and/or virtual_number. Empty fields are
// left unchanged. The webhook token cannot be changed through any path.
func (s *Service) AdminUpdate(ctx context.Context, id, businessName, virtualNumber string) (Client, error) {
	if id == "" {
		return Client{}, ErrInvalidArgument
	}
	if strings.TrimSpace(businessName) == "" && strings.TrimSpace(virtualNumber) == "" {
		return Client{}, ErrInvalidArgument
	}
	return s.repo.UpdateProfile(ctx, id, strings.TrimSpace(businessName), strings.TrimSpace(virtualNumber))
}

func randomVirtualNumber() string {
	return fmt.Sprintf("+1555%07d", rand.IntN(10_000_000))
}
