package cleanup_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/cleanup"
)

// fakeRegistry is a mutex-guarded in-memory registry; the worker hits it
// from its own goroutines.
type fakeRegistry struct {
	mu          sync.Mutex
	connections map[string]map[string]bool // connID -> watched observable ids
	observables map[string]map[string]bool // obsID -> watching connection ids
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		connections: make(map[string]map[string]bool),
		observables: make(map[string]map[string]bool),
	}
}

func (f *fakeRegistry) subscribe(connID, obsID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.connections[connID]; !ok {
		f.connections[connID] = make(map[string]bool)
	}
	if _, ok := f.observables[obsID]; !ok {
		f.observables[obsID] = make(map[string]bool)
	}
	f.connections[connID][obsID] = true
	f.observables[obsID][connID] = true
}

func (f *fakeRegistry) GetObservable(_ context.Context, id string) (*domain.Observable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obs := &domain.Observable{ObservableID: id}
	for connID := range f.observables[id] {
		obs.ConnectionIDs = append(obs.ConnectionIDs, connID)
	}
	return obs, nil
}

func (f *fakeRegistry) DeleteObservable(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.observables, id)
	return nil
}

func (f *fakeRegistry) UnsubscribeObservable(_ context.Context, obsID string, connIDs ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, connID := range connIDs {
		delete(f.connections[connID], obsID)
	}
	return nil
}

func (f *fakeRegistry) UnsubscribeConnection(_ context.Context, connID string, obsIDs ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, obsID := range obsIDs {
		delete(f.observables[obsID], connID)
	}
	return nil
}

func (f *fakeRegistry) ListObservables(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.observables))
	for id := range f.observables {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRegistry) hasObservable(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.observables[id]
	return ok
}

func (f *fakeRegistry) connectionWatches(connID, obsID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connections[connID][obsID]
}

func (f *fakeRegistry) observableHasWatcher(obsID, connID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.observables[obsID][connID]
}

type fakeGames struct {
	mu       sync.Mutex
	existing map[string]bool
}

func (f *fakeGames) Get(_ context.Context, id string) (*domain.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.existing[id] {
		return nil, domain.ErrSessionNotFound
	}
	return &domain.GameSession{ID: id}, nil
}

func startWorker(t *testing.T, registry *fakeRegistry, games *fakeGames, events chan domain.StoreEvent, sweep time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cleanup.NewWorker(registry, games, events, sweep).Start(ctx)
}

func TestWorker_GameRemovalTearsDownObservable(t *testing.T) {
	registry := newFakeRegistry()
	registry.subscribe("c1", "g1")
	registry.subscribe("c2", "g1")
	registry.subscribe("c2", "g2")

	events := make(chan domain.StoreEvent, 4)
	startWorker(t, registry, &fakeGames{}, events, 0)

	events <- domain.StoreEvent{Type: domain.EventExpired, Kind: domain.KindGame, Key: "g1"}

	assert.Eventually(t, func() bool {
		return !registry.hasObservable("g1") &&
			!registry.connectionWatches("c1", "g1") &&
			!registry.connectionWatches("c2", "g1")
	}, 2*time.Second, 10*time.Millisecond)

	// Unrelated subscriptions survive
	assert.True(t, registry.connectionWatches("c2", "g2"))
	assert.True(t, registry.hasObservable("g2"))
}

func TestWorker_ObservableRemovalPrunesConnections(t *testing.T) {
	registry := newFakeRegistry()
	registry.subscribe("c1", "g1")
	registry.subscribe("c2", "g1")

	events := make(chan domain.StoreEvent, 4)
	startWorker(t, registry, &fakeGames{}, events, 0)

	events <- domain.StoreEvent{
		Type:     domain.EventRemoved,
		Kind:     domain.KindObservable,
		Key:      "g1",
		OldImage: []string{"c1", "c2"},
	}

	assert.Eventually(t, func() bool {
		return !registry.connectionWatches("c1", "g1") &&
			!registry.connectionWatches("c2", "g1")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_ConnectionRemovalPrunesObservables(t *testing.T) {
	registry := newFakeRegistry()
	registry.subscribe("c1", "g1")
	registry.subscribe("c1", "g2")
	registry.subscribe("c2", "g1")

	events := make(chan domain.StoreEvent, 4)
	startWorker(t, registry, &fakeGames{}, events, 0)

	events <- domain.StoreEvent{
		Type:     domain.EventRemoved,
		Kind:     domain.KindConnection,
		Key:      "c1",
		OldImage: []string{"g1", "g2"},
	}

	assert.Eventually(t, func() bool {
		return !registry.observableHasWatcher("g1", "c1") &&
			!registry.observableHasWatcher("g2", "c1")
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, registry.observableHasWatcher("g1", "c2"))
}

func TestWorker_RedeliveryIsIdempotent(t *testing.T) {
	registry := newFakeRegistry()
	registry.subscribe("c1", "g1")

	events := make(chan domain.StoreEvent, 4)
	startWorker(t, registry, &fakeGames{}, events, 0)

	ev := domain.StoreEvent{Type: domain.EventExpired, Kind: domain.KindGame, Key: "g1"}
	events <- ev
	events <- ev
	events <- ev

	assert.Eventually(t, func() bool {
		return !registry.hasObservable("g1") && !registry.connectionWatches("c1", "g1")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_SweepRemovesOrphanedObservables(t *testing.T) {
	registry := newFakeRegistry()
	registry.subscribe("c1", "g1")
	registry.subscribe("c1", "g2")

	games := &fakeGames{existing: map[string]bool{"g2": true}}

	events := make(chan domain.StoreEvent)
	startWorker(t, registry, games, events, 20*time.Millisecond)

	// g1's game is gone; the sweep finds and removes its observable
	assert.Eventually(t, func() bool {
		return !registry.hasObservable("g1") && !registry.connectionWatches("c1", "g1")
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, registry.hasObservable("g2"))
	assert.True(t, registry.connectionWatches("c1", "g2"))
}
