package services

import (
	"sync"

	"github.com/google/uuid"
)

// MessageChangeEvent tells a subscribed inbox that its message set changed
// and should be re-fetched. The event intentionally carries no row data:
// subscribers always go back to the store for the full set.
type MessageChangeEvent struct {
	Type       string `json:"type"` // insert, update
	ReceiverID uint   `json:"receiverID"`
}

const (
	MessageChangeInsert = "insert"
	MessageChangeUpdate = "update"
)

// Hub fans message-change events out to live inbox subscriptions, keyed by
// receiver user ID. One subscription per mounted inbox; callers must
// Unsubscribe when the view goes away.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[string]chan MessageChangeEvent
}

// MessageHub is the process-wide hub instance.
var MessageHub = NewHub()

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[string]chan MessageChangeEvent)}
}

// Subscribe registers a live channel for the given user and returns its
// handle. The channel is buffered; a subscriber that stops draining loses
// events rather than blocking publishers.
func (h *Hub) Subscribe(userID uint) (string, <-chan MessageChangeEvent) {
	id := uuid.NewString()
	ch := make(chan MessageChangeEvent, 8)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[string]chan MessageChangeEvent)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	return id, ch
}

// Unsubscribe releases a subscription and closes its channel. Safe to call
// with an unknown handle.
func (h *Hub) Unsubscribe(userID uint, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subs[userID]
	if subs == nil {
		return
	}
	if ch, ok := subs[id]; ok {
		delete(subs, id)
		close(ch)
	}
	if len(subs) == 0 {
		delete(h.subs, userID)
	}
}

// Publish delivers the event to every live subscription of its receiver.
// Sends never block: a full subscriber buffer drops the event, which is
// acceptable because subscribers re-fetch the whole set on the next event.
func (h *Hub) Publish(event MessageChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[event.ReceiverID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscriptions for a user.
func (h *Hub) SubscriberCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
