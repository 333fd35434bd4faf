package subscription

import (
	"context"
	"log"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

// Repository is the set-valued storage behind the registry. Every
// mutation is a commutative set add/remove, so calls are idempotent and
// safe to retry.
type Repository interface {
	CreateConnection(ctx context.Context, id string) error
	GetConnection(ctx context.Context, id string) (*domain.Connection, error)
	AddObservablesToConnection(ctx context.Context, connID string, observableIDs ...string) error
	RemoveObservablesFromConnection(ctx context.Context, connID string, observableIDs ...string) error
	GetObservable(ctx context.Context, id string) (*domain.Observable, error)
	AddConnectionsToObservable(ctx context.Context, observableID string, connIDs ...string) error
	RemoveConnectionsFromObservable(ctx context.Context, observableID string, connIDs ...string) error
	DeleteConnection(ctx context.Context, id string) error
	DeleteObservable(ctx context.Context, id string) error
	ListObservables(ctx context.Context) ([]string, error)
}

// Registry maintains the bidirectional Connection<->Observable relation.
type Registry struct {
	repo Repository
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// OpenConnection records a freshly opened push channel.
func (r *Registry) OpenConnection(ctx context.Context, connID string) error {
	return r.repo.CreateConnection(ctx, connID)
}

// CloseConnection deletes the connection record. The store feed carries
// the delete (with the watched set as its old image) to the cascade,
// which prunes the reverse references asynchronously.
func (r *Registry) CloseConnection(ctx context.Context, connID string) error {
	return r.repo.DeleteConnection(ctx, connID)
}

func (r *Registry) GetConnection(ctx context.Context, connID string) (*domain.Connection, error) {
	return r.repo.GetConnection(ctx, connID)
}

func (r *Registry) GetObservable(ctx context.Context, observableID string) (*domain.Observable, error) {
	return r.repo.GetObservable(ctx, observableID)
}

// Subscribe adds the relation on both sides. Success is only reported
// once both writes land; a partial application surfaces as an error and
// the caller may retry, which is safe because both writes are set-adds.
func (r *Registry) Subscribe(ctx context.Context, connID, observableID string) error {
	if err := r.repo.AddObservablesToConnection(ctx, connID, observableID); err != nil {
		return err
	}
	if err := r.repo.AddConnectionsToObservable(ctx, observableID, connID); err != nil {
		return err
	}
	return nil
}

// UnsubscribeConnection removes the connection id from each named
// observable's watcher set. Used by the disconnect cascade; best-effort
// per observable.
func (r *Registry) UnsubscribeConnection(ctx context.Context, connID string, observableIDs ...string) error {
	var firstErr error
	for _, obsID := range observableIDs {
		if err := r.repo.RemoveConnectionsFromObservable(ctx, obsID, connID); err != nil {
			log.Printf("[SUBS] Failed to remove connection %s from observable %s: %v", connID, obsID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// UnsubscribeObservable removes the observable id from each named
// connection's watched set. Used by the session-expiry cascade;
// best-effort per connection.
func (r *Registry) UnsubscribeObservable(ctx context.Context, observableID string, connIDs ...string) error {
	var firstErr error
	for _, connID := range connIDs {
		if err := r.repo.RemoveObservablesFromConnection(ctx, connID, observableID); err != nil {
			log.Printf("[SUBS] Failed to remove observable %s from connection %s: %v", observableID, connID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// DeleteObservable drops the watcher set itself. No-ops safely when the
// observable is already gone.
func (r *Registry) DeleteObservable(ctx context.Context, observableID string) error {
	return r.repo.DeleteObservable(ctx, observableID)
}

// ListObservables exposes the keyspace for the orphan sweep.
func (r *Registry) ListObservables(ctx context.Context) ([]string, error) {
	return r.repo.ListObservables(ctx)
}
