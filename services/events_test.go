package services

import (
	"testing"
	"time"
)

// Without Redis configured, events must still reach local subscribers so a
// send is observed by the receiver's live inbox with no extra calls.
func TestNotifyMessageChangeDeliversLocally(t *testing.T) {
	id, events := MessageHub.Subscribe(77)
	defer MessageHub.Unsubscribe(77, id)

	NotifyMessageChange(MessageChangeEvent{Type: MessageChangeInsert, ReceiverID: 77})

	select {
	case event := <-events:
		if event.Type != MessageChangeInsert || event.ReceiverID != 77 {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("insert was never observed by the live subscription")
	}
}
