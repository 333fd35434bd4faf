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

const gameKeyPrefix = "game:"

// GameRepo stores game sessions as JSON values. The TTL is fixed when
// the game is created; updates keep it (KEEPTTL), so a game expires on
// schedule no matter how actively it is played.
//
// Writes that depend on previously read state go through WATCH/MULTI/
// EXEC so that of two racing writers exactly one succeeds; the loser
// sees domain.ErrConflict and re-reads.
type GameRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGameRepo(client *redis.Client, ttl time.Duration) *GameRepo {
	return &GameRepo{client: client, ttl: ttl}
}

func (r *GameRepo) Create(ctx context.Context, g *domain.GameSession) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal game %s: %w", g.ID, err)
	}

	if err := r.client.Set(ctx, gameKeyPrefix+g.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *GameRepo) Get(ctx context.Context, id string) (*domain.GameSession, error) {
	return getGame(ctx, r.client, id)
}

// SetPlayerTwo seats a joiner, guarded on the second seat still being
// empty. Two concurrent joiners race on the same key and only one EXEC
// lands; the other gets ErrConflict and, on re-read, ErrSessionFull.
func (r *GameRepo) SetPlayerTwo(ctx context.Context, id, playerID string) (*domain.GameSession, error) {
	var joined *domain.GameSession

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		g, err := getGame(ctx, tx, id)
		if err != nil {
			return err
		}
		if g.PlayerTwo != "" {
			return domain.ErrSessionFull
		}

		g.PlayerTwo = playerID
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("failed to marshal game %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKeyPrefix+id, data, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		joined = g
		return nil
	}, gameKeyPrefix+id)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return joined, nil
}

// UpdateState writes back a mutated session, guarded on the MovesMade
// value the caller read before computing the move. A concurrent move
// bumps MovesMade and fails the guard (or the EXEC), surfacing
// ErrConflict so the caller can rerun its read-compute-write cycle.
func (r *GameRepo) UpdateState(ctx context.Context, expectedMoves int, g *domain.GameSession) (*domain.GameSession, error) {
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getGame(ctx, tx, g.ID)
		if err != nil {
			return err
		}
		if current.MovesMade != expectedMoves {
			return domain.ErrConflict
		}

		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("failed to marshal game %s: %w", g.ID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKeyPrefix+g.ID, data, redis.KeepTTL)
			return nil
		})
		return err
	}, gameKeyPrefix+g.ID)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// getGame works against both the plain client and a WATCH transaction.
func getGame(ctx context.Context, c redis.Cmdable, id string) (*domain.GameSession, error) {
	data, err := c.Get(ctx, gameKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var g domain.GameSession
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", id, err)
	}
	return &g, nil
}
