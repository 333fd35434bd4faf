package dispatch

import (
	"context"
	"encoding/json"
	"log"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

// ObservableSource resolves a game session id to its current watchers.
type ObservableSource interface {
	GetObservable(ctx context.Context, observableID string) (*domain.Observable, error)
}

// Pusher delivers raw bytes to one connection. A failure means that
// single channel is gone, nothing more.
type Pusher interface {
	Send(connectionID string, data []byte) error
}

// Dispatcher fans a state-change notification out to every connection
// watching a session. Deliveries are independent: one dead connection
// is logged and skipped, never aborting the rest and never failing the
// mutation that triggered the notification. Stale connections are
// pruned by the disconnect cascade, not here.
type Dispatcher struct {
	subs   ObservableSource
	pusher Pusher
}

func NewDispatcher(subs ObservableSource, pusher Pusher) *Dispatcher {
	return &Dispatcher{subs: subs, pusher: pusher}
}

// Notify pushes msg to all watchers of the observable. The returned
// error covers only the watcher lookup; delivery failures are logged.
func (d *Dispatcher) Notify(ctx context.Context, observableID string, msg domain.ServerMessage) error {
	obs, err := d.subs.GetObservable(ctx, observableID)
	if err != nil {
		log.Printf("[DISPATCH] Failed to look up observable %s: %v", observableID, err)
		return err
	}
	if len(obs.ConnectionIDs) == 0 {
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	delivered := 0
	for _, connID := range obs.ConnectionIDs {
		if err := d.pusher.Send(connID, data); err != nil {
			log.Printf("[DISPATCH] Delivery to connection %s failed: %v", connID, err)
			continue
		}
		delivered++
	}

	log.Printf("[DISPATCH] Notified %d/%d watchers of %s (%s)", delivered, len(obs.ConnectionIDs), observableID, msg.Action)
	return nil
}
