package player

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
	"github.com/iamasit07/tic-tac-toe/backend/pkg/uid"
)

type PlayerRepository interface {
	Create(ctx context.Context, p *domain.Player) error
	Get(ctx context.Context, id string) (*domain.Player, error)
	RefreshExpiry(ctx context.Context, id string) error
}

// Service handles player registration and the flat shared-secret
// credential check every game action goes through.
type Service struct {
	repo PlayerRepository
}

func NewService(repo PlayerRepository) *Service {
	return &Service{repo: repo}
}

// Register creates a player with a fresh id and server-generated
// secret. The secret is returned exactly once, here.
func (s *Service) Register(ctx context.Context, username string) (*domain.Player, error) {
	p := &domain.Player{
		ID:       uid.NewID(),
		Secret:   uid.NewSecret(),
		Username: username,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Player, error) {
	return s.repo.Get(ctx, id)
}

// Validate compares the presented secret against the stored one in
// constant time. An unknown player is simply invalid, not an error.
func (s *Service) Validate(ctx context.Context, id, secret string) (bool, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(p.Secret), []byte(secret)) == 1, nil
}

// RefreshExpiry slides the player's expiry window forward. Called after
// every successful action by that player.
func (s *Service) RefreshExpiry(ctx context.Context, id string) error {
	return s.repo.RefreshExpiry(ctx, id)
}
