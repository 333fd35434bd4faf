package domain

// StoreEvent is one entry from the durable store's change feed.
// Expiry events arrive without an old image (the store only tells us
// the key that vanished); explicit deletes capture the set members
// that existed just before the delete.
type StoreEventType string

const (
	EventExpired StoreEventType = "expired"
	EventRemoved StoreEventType = "removed"
)

// Entity kinds carried on the feed, derived from the key prefix.
const (
	KindPlayer     = "player"
	KindGame       = "game"
	KindConnection = "connection"
	KindObservable = "observable"
)

type StoreEvent struct {
	Type     StoreEventType
	Kind     string
	Key      string   // entity id, without the key prefix
	OldImage []string // set members captured before an explicit delete
}
