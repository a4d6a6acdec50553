package routes

import (
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"zerobroker-server/services"
	"zerobroker-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildSocketTestApp mirrors the production wiring for the socket route:
// compression on, JWT verifier with the query-parameter extractor.
func buildSocketTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()
	app.Validator = validator.New()
	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })
	accessTokenVerifier.Extractors = append(accessTokenVerifier.Extractors, func(ctx iris.Context) string {
		return ctx.URLParam("token")
	})

	messages := app.Party("/api/messages")
	{
		messages.Get("/ws", accessTokenVerifierMiddleware, MessageSocket)
	}

	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func waitForSubscribers(t *testing.T, userID uint, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if services.MessageHub.SubscriberCount(userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d subscriber(s) for user %d, got %d",
		want, userID, services.MessageHub.SubscriberCount(userID))
}

func TestMessageSocketDeliversAndReleasesOnClose(t *testing.T) {
	const userID = uint(4242)
	app := buildSocketTestApp()

	server := httptest.NewServer(app)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/api/messages/ws?token=" + signMessagesTestToken(userID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitForSubscribers(t, userID, 1)

	services.MessageHub.Publish(services.MessageChangeEvent{
		Type:       services.MessageChangeInsert,
		ReceiverID: userID,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event services.MessageChangeEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("expected an event over the socket, got error: %v", err)
	}
	if event.Type != services.MessageChangeInsert || event.ReceiverID != userID {
		t.Fatalf("unexpected event %+v", event)
	}

	// Closing the socket must release the subscription.
	conn.Close()
	waitForSubscribers(t, userID, 0)
}

func TestMessageSocketRejectsMissingToken(t *testing.T) {
	app := buildSocketTestApp()

	server := httptest.NewServer(app)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/messages/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected the handshake to fail without a token")
	}
	if resp != nil && resp.StatusCode == iris.StatusSwitchingProtocols {
		t.Fatalf("expected a rejection status, got %d", resp.StatusCode)
	}
}
