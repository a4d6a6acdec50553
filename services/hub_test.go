package services

import (
	"testing"
	"time"
)

func TestHubDeliversToSubscriber(t *testing.T) {
	hub := NewHub()
	id, events := hub.Subscribe(42)
	defer hub.Unsubscribe(42, id)

	hub.Publish(MessageChangeEvent{Type: MessageChangeInsert, ReceiverID: 42})

	select {
	case event := <-events:
		if event.Type != MessageChangeInsert || event.ReceiverID != 42 {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestHubScopesEventsToReceiver(t *testing.T) {
	hub := NewHub()
	id, events := hub.Subscribe(1)
	defer hub.Unsubscribe(1, id)

	hub.Publish(MessageChangeEvent{Type: MessageChangeInsert, ReceiverID: 2})

	select {
	case event := <-events:
		t.Fatalf("received an event for another receiver: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	id, events := hub.Subscribe(7)

	hub.Unsubscribe(7, id)

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed channel after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}

	if hub.SubscriberCount(7) != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.SubscriberCount(7))
	}

	// Unknown handle is a no-op.
	hub.Unsubscribe(7, id)
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	id, _ := hub.Subscribe(9)
	defer hub.Unsubscribe(9, id)

	done := make(chan struct{})
	go func() {
		// Well past the subscriber buffer; the publisher must not stall
		// on a subscriber that stopped draining.
		for i := 0; i < 100; i++ {
			hub.Publish(MessageChangeEvent{Type: MessageChangeInsert, ReceiverID: 9})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHubMultipleSubscriptionsPerUser(t *testing.T) {
	hub := NewHub()
	idA, eventsA := hub.Subscribe(5)
	idB, eventsB := hub.Subscribe(5)
	defer hub.Unsubscribe(5, idA)
	defer hub.Unsubscribe(5, idB)

	hub.Publish(MessageChangeEvent{Type: MessageChangeUpdate, ReceiverID: 5})

	for name, events := range map[string]<-chan MessageChangeEvent{"A": eventsA, "B": eventsB} {
		select {
		case event := <-events:
			if event.Type != MessageChangeUpdate {
				t.Fatalf("subscription %s: unexpected event %+v", name, event)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscription %s never received the event", name)
		}
	}
}
