package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

const playerKeyPrefix = "player:"

// PlayerRepo stores player records as JSON values with a sliding TTL.
// Redis deletes the record itself once the window elapses; RefreshExpiry
// pushes the window forward after every successful player action.
type PlayerRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlayerRepo(client *redis.Client, ttl time.Duration) *PlayerRepo {
	return &PlayerRepo{client: client, ttl: ttl}
}

func (r *PlayerRepo) Create(ctx context.Context, p *domain.Player) error {
	p.ExpiresAt = time.Now().UTC().Add(r.ttl)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	if err := r.client.Set(ctx, playerKeyPrefix+p.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *PlayerRepo) Get(ctx context.Context, id string) (*domain.Player, error) {
	data, err := r.client.Get(ctx, playerKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var p domain.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player %s: %w", id, err)
	}
	return &p, nil
}

func (r *PlayerRepo) RefreshExpiry(ctx context.Context, id string) error {
	ok, err := r.client.Expire(ctx, playerKeyPrefix+id, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !ok {
		return domain.ErrPlayerNotFound
	}
	return nil
}
