package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

const (
	connKeyPrefix       = "conn:"
	connObsKeySuffix    = ":obs"
	observableKeyPrefix = "observable:"
)

// EventPublisher receives delete events carrying the old image of the
// removed record, feeding the cleanup cascade.
type EventPublisher interface {
	Publish(ev domain.StoreEvent)
}

// SubscriptionRepo keeps the Connection<->Observable relation as two
// Redis sets per direction. All mutations are SADD/SREM, which commute,
// so concurrent subscribers never clobber each other and every call is
// safe to retry.
//
// Keys: conn:<id> marks a live connection record, conn:<id>:obs holds
// the observable ids it watches, observable:<id> holds the connection
// ids watching that game. Observables are created lazily by the first
// SADD.
type SubscriptionRepo struct {
	client *redis.Client
	events EventPublisher
}

func NewSubscriptionRepo(client *redis.Client, events EventPublisher) *SubscriptionRepo {
	return &SubscriptionRepo{client: client, events: events}
}

func (r *SubscriptionRepo) CreateConnection(ctx context.Context, id string) error {
	err := r.client.Set(ctx, connKeyPrefix+id, time.Now().UTC().Format(time.RFC3339), 0).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *SubscriptionRepo) GetConnection(ctx context.Context, id string) (*domain.Connection, error) {
	_, err := r.client.Get(ctx, connKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrConnectionGone
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	obs, err := r.client.SMembers(ctx, connKeyPrefix+id+connObsKeySuffix).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return &domain.Connection{ID: id, ObservableIDs: obs}, nil
}

func (r *SubscriptionRepo) AddObservablesToConnection(ctx context.Context, connID string, observableIDs ...string) error {
	if len(observableIDs) == 0 {
		return nil
	}
	err := r.client.SAdd(ctx, connKeyPrefix+connID+connObsKeySuffix, toAnySlice(observableIDs)...).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *SubscriptionRepo) RemoveObservablesFromConnection(ctx context.Context, connID string, observableIDs ...string) error {
	if len(observableIDs) == 0 {
		return nil
	}
	err := r.client.SRem(ctx, connKeyPrefix+connID+connObsKeySuffix, toAnySlice(observableIDs)...).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// GetObservable returns the watcher set. A missing key is an empty set,
// matching lazy creation.
func (r *SubscriptionRepo) GetObservable(ctx context.Context, id string) (*domain.Observable, error) {
	conns, err := r.client.SMembers(ctx, observableKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return &domain.Observable{ObservableID: id, ConnectionIDs: conns}, nil
}

func (r *SubscriptionRepo) AddConnectionsToObservable(ctx context.Context, observableID string, connIDs ...string) error {
	if len(connIDs) == 0 {
		return nil
	}
	err := r.client.SAdd(ctx, observableKeyPrefix+observableID, toAnySlice(connIDs)...).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *SubscriptionRepo) RemoveConnectionsFromObservable(ctx context.Context, observableID string, connIDs ...string) error {
	if len(connIDs) == 0 {
		return nil
	}
	err := r.client.SRem(ctx, observableKeyPrefix+observableID, toAnySlice(connIDs)...).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteConnection removes the connection record, capturing the watched
// observable ids first and publishing them as the event's old image so
// the cascade can prune the reverse references.
func (r *SubscriptionRepo) DeleteConnection(ctx context.Context, id string) error {
	oldImage, err := r.client.SMembers(ctx, connKeyPrefix+id+connObsKeySuffix).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	err = r.client.Del(ctx, connKeyPrefix+id, connKeyPrefix+id+connObsKeySuffix).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	r.events.Publish(domain.StoreEvent{
		Type:     domain.EventRemoved,
		Kind:     domain.KindConnection,
		Key:      id,
		OldImage: oldImage,
	})
	return nil
}

// DeleteObservable removes the watcher set, publishing the connection
// ids it held as the old image.
func (r *SubscriptionRepo) DeleteObservable(ctx context.Context, id string) error {
	oldImage, err := r.client.SMembers(ctx, observableKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := r.client.Del(ctx, observableKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	r.events.Publish(domain.StoreEvent{
		Type:     domain.EventRemoved,
		Kind:     domain.KindObservable,
		Key:      id,
		OldImage: oldImage,
	})
	return nil
}

// ListObservables scans the observable keyspace for the periodic
// orphan sweep.
func (r *SubscriptionRepo) ListObservables(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Scan(ctx, 0, observableKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(observableKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return ids, nil
}

func toAnySlice(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
