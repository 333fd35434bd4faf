package redis

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

// EventFeed merges the store's two change-notification sources into one
// channel: Redis keyspace expiry notifications (key only, no old image)
// and delete events published locally by the repositories, which capture
// the set members that existed just before the delete.
type EventFeed struct {
	client *redis.Client
	db     int
	local  chan domain.StoreEvent
	out    chan domain.StoreEvent
}

func NewEventFeed(client *redis.Client, db int) *EventFeed {
	return &EventFeed{
		client: client,
		db:     db,
		local:  make(chan domain.StoreEvent, 64),
		out:    make(chan domain.StoreEvent, 64),
	}
}

// Events is the merged feed consumed by the cleanup worker.
func (f *EventFeed) Events() <-chan domain.StoreEvent {
	return f.out
}

// Publish is called by repositories when they delete a record. Never
// blocks a request path: if the buffer is full the event is dropped and
// the periodic sweep picks up the slack.
func (f *EventFeed) Publish(ev domain.StoreEvent) {
	select {
	case f.local <- ev:
	default:
		log.Printf("[FEED] Event buffer full, dropping %s %s/%s", ev.Type, ev.Kind, ev.Key)
	}
}

// Start subscribes to expiry notifications and pumps both sources into
// the merged channel until ctx is done.
func (f *EventFeed) Start(ctx context.Context) {
	channel := fmt.Sprintf("__keyevent@%d__:expired", f.db)
	pubsub := f.client.Subscribe(ctx, channel)

	go func() {
		defer pubsub.Close()
		defer close(f.out)

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-f.local:
				if !f.emit(ctx, ev) {
					return
				}
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				ev, ok := eventFromKey(msg.Payload)
				if !ok {
					continue
				}
				if !f.emit(ctx, ev) {
					return
				}
			}
		}
	}()

	log.Println("[FEED] Change-notification feed started")
}

// emit delivers one event to the merged channel, giving up when ctx is
// done so a full buffer with no consumer cannot wedge the pump.
func (f *EventFeed) emit(ctx context.Context, ev domain.StoreEvent) bool {
	select {
	case f.out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// eventFromKey maps an expired key name onto a store event by prefix.
func eventFromKey(key string) (domain.StoreEvent, bool) {
	switch {
	case strings.HasPrefix(key, gameKeyPrefix):
		return domain.StoreEvent{Type: domain.EventExpired, Kind: domain.KindGame, Key: strings.TrimPrefix(key, gameKeyPrefix)}, true
	case strings.HasPrefix(key, playerKeyPrefix):
		return domain.StoreEvent{Type: domain.EventExpired, Kind: domain.KindPlayer, Key: strings.TrimPrefix(key, playerKeyPrefix)}, true
	case strings.HasPrefix(key, observableKeyPrefix):
		return domain.StoreEvent{Type: domain.EventExpired, Kind: domain.KindObservable, Key: strings.TrimPrefix(key, observableKeyPrefix)}, true
	case strings.HasPrefix(key, connKeyPrefix):
		// both conn:<id> and conn:<id>:obs identify the same connection
		id := strings.TrimSuffix(strings.TrimPrefix(key, connKeyPrefix), connObsKeySuffix)
		return domain.StoreEvent{Type: domain.EventExpired, Kind: domain.KindConnection, Key: id}, true
	}
	return domain.StoreEvent{}, false
}
