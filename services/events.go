package services

import (
	"context"
	"encoding/json"
	"log"

	"zerobroker-server/storage"
)

// messagesChannel is the shared Redis channel carrying message-change
// events between instances.
const messagesChannel = "messages:changed"

var bgContext = context.Background()

// NotifyMessageChange announces a committed message mutation. Events travel
// through Redis pub/sub so every instance's hub observes them; when Redis is
// unreachable the event is delivered to the local hub so a single-node
// deployment still refreshes.
func NotifyMessageChange(event MessageChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if storage.Redis == nil {
		MessageHub.Publish(event)
		return
	}

	if err := storage.Redis.Publish(bgContext, messagesChannel, payload).Err(); err != nil {
		log.Printf("message event publish failed, delivering locally: %v", err)
		MessageHub.Publish(event)
	}
}

// RunMessageRelay consumes the shared Redis channel and republishes events
// into the local hub. Run once per process; returns when ctx is cancelled.
func RunMessageRelay(ctx context.Context) {
	pubsub := storage.Redis.Subscribe(ctx, messagesChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var event MessageChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("dropping malformed message event: %v", err)
				continue
			}
			MessageHub.Publish(event)
		}
	}
}
