package cleanup

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

// SubscriptionRegistry is the slice of the registry the cascade needs.
type SubscriptionRegistry interface {
	GetObservable(ctx context.Context, observableID string) (*domain.Observable, error)
	DeleteObservable(ctx context.Context, observableID string) error
	UnsubscribeObservable(ctx context.Context, observableID string, connIDs ...string) error
	UnsubscribeConnection(ctx context.Context, connID string, observableIDs ...string) error
	ListObservables(ctx context.Context) ([]string, error)
}

// GameChecker lets the sweep ask whether a game still exists.
type GameChecker interface {
	Get(ctx context.Context, id string) (*domain.GameSession, error)
}

// Worker runs the cleanup cascade: stateless reactive processors driven
// by the store's change feed. Every step is an idempotent set removal,
// so re-delivered events are harmless (at-least-once is assumed).
//
// A periodic sweep backs the feed up: expiry notifications are
// fire-and-forget, so observables whose game vanished while nobody was
// listening are found by scanning.
type Worker struct {
	registry      SubscriptionRegistry
	games         GameChecker
	events        <-chan domain.StoreEvent
	sweepInterval time.Duration
}

func NewWorker(registry SubscriptionRegistry, games GameChecker, events <-chan domain.StoreEvent, sweepInterval time.Duration) *Worker {
	return &Worker{
		registry:      registry,
		games:         games,
		events:        events,
		sweepInterval: sweepInterval,
	}
}

// Start launches the event loop and the sweep ticker.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
	go w.sweepLoop(ctx)
	log.Println("[CLEANUP] Cascade worker started")
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		}
	}
}

func (w *Worker) handleEvent(ctx context.Context, ev domain.StoreEvent) {
	switch ev.Kind {
	case domain.KindGame:
		// The game record is gone; its observable goes with it.
		log.Printf("[CLEANUP] Game %s %s, tearing down observable", ev.Key, ev.Type)
		w.teardownObservable(ctx, ev.Key)

	case domain.KindObservable:
		// The watcher set was deleted; strip the observable id from
		// every connection that was in it.
		if len(ev.OldImage) == 0 {
			return
		}
		if err := w.registry.UnsubscribeObservable(ctx, ev.Key, ev.OldImage...); err != nil {
			log.Printf("[CLEANUP] Partial unsubscribe of observable %s: %v", ev.Key, err)
		}

	case domain.KindConnection:
		// The connection closed; strip its id from every observable it
		// was watching. Expiry events carry no old image, in which case
		// stale watcher entries are pruned lazily on failed delivery.
		if len(ev.OldImage) == 0 {
			if ev.Type == domain.EventExpired {
				log.Printf("[CLEANUP] Connection %s expired without old image", ev.Key)
			}
			return
		}
		if err := w.registry.UnsubscribeConnection(ctx, ev.Key, ev.OldImage...); err != nil {
			log.Printf("[CLEANUP] Partial unsubscribe of connection %s: %v", ev.Key, err)
		}
	}
}

// teardownObservable removes the forward references, then the watcher
// set itself. Safe to run repeatedly: a missing observable is an empty
// set and every removal is idempotent.
func (w *Worker) teardownObservable(ctx context.Context, observableID string) {
	obs, err := w.registry.GetObservable(ctx, observableID)
	if err != nil {
		log.Printf("[CLEANUP] Failed to load observable %s: %v", observableID, err)
		return
	}

	if len(obs.ConnectionIDs) > 0 {
		if err := w.registry.UnsubscribeObservable(ctx, observableID, obs.ConnectionIDs...); err != nil {
			log.Printf("[CLEANUP] Partial unsubscribe of observable %s: %v", observableID, err)
		}
	}

	if err := w.registry.DeleteObservable(ctx, observableID); err != nil {
		log.Printf("[CLEANUP] Failed to delete observable %s: %v", observableID, err)
	}
}

func (w *Worker) sweepLoop(ctx context.Context) {
	if w.sweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep tears down observables whose backing game no longer exists.
func (w *Worker) sweep(ctx context.Context) {
	ids, err := w.registry.ListObservables(ctx)
	if err != nil {
		log.Printf("[CLEANUP] Sweep failed to list observables: %v", err)
		return
	}

	orphans := 0
	for _, id := range ids {
		_, err := w.games.Get(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			w.teardownObservable(ctx, id)
			orphans++
			continue
		}
		if err != nil {
			log.Printf("[CLEANUP] Sweep failed to check game %s: %v", id, err)
		}
	}

	if orphans > 0 {
		log.Printf("[CLEANUP] Sweep removed %d orphaned observables", orphans)
	}
}
