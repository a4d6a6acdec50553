package routes

import (
	"log"
	"net/http"
	"time"

	"zerobroker-server/services"
	"zerobroker-server/utils"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const socketWriteWait = 10 * time.Second

var inboxUpgrader = websocket.Upgrader{
	// Origins are already filtered by the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MessageSocket upgrades the request to a WebSocket carrying message-change
// events for the authenticated user. One subscription per connection; the
// subscription is released when the socket closes, so a remounted inbox
// never receives duplicate deliveries.
func MessageSocket(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	// The response writer must stay hijackable for the upgrade.
	ctx.CompressWriter(false)

	conn, err := inboxUpgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
	if err != nil {
		log.Printf("inbox socket upgrade failed: %v", err)
		return
	}

	subID, events := services.MessageHub.Subscribe(claims.ID)

	// Writer pump: forwards hub events until the subscription closes.
	go func() {
		for event := range events {
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				conn.Close()
				return
			}
		}
		conn.Close()
	}()

	// Reader loop exists to detect the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	services.MessageHub.Unsubscribe(claims.ID, subID)
	conn.Close()
}
