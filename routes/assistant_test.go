package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testSnapshot() []assistantProperty {
	return []assistantProperty{
		{
			Title:        "Luxury 3BHK Apartment in Whitefield",
			Location:     "Whitefield, Bangalore",
			Price:        8500000,
			Bedrooms:     3,
			Bathrooms:    2,
			Area:         1450,
			PropertyType: "apartment",
			ListingType:  "sale",
			Amenities:    []string{"Gym", "Swimming Pool"},
		},
	}
}

func TestBuildSystemPromptEmbedsListings(t *testing.T) {
	prompt := buildSystemPrompt(testSnapshot())

	for _, fragment := range []string{
		"Luxury 3BHK Apartment in Whitefield",
		"Whitefield, Bangalore",
		"8500000",
		`"listing_type": "sale"`,
		"Swimming Pool",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing listing data %q", fragment)
		}
	}

	if !strings.Contains(prompt, "ZeroBroker") {
		t.Fatal("prompt missing the assistant persona")
	}
}

func TestBuildGatewayPayloadPrependsSystemMessage(t *testing.T) {
	turns := []ChatTurn{
		{Role: "user", Content: "Show me flats in Pune"},
		{Role: "assistant", Content: "Sure!"},
		{Role: "user", Content: "Under 50 lakh please"},
	}

	payload := buildGatewayPayload(testSnapshot(), turns)

	if payload.Stream {
		t.Fatal("streaming must be disabled")
	}
	if len(payload.Messages) != len(turns)+1 {
		t.Fatalf("expected %d messages, got %d", len(turns)+1, len(payload.Messages))
	}
	if payload.Messages[0].Role != "system" {
		t.Fatalf("first message should be the system prompt, got role %q", payload.Messages[0].Role)
	}
	for i, turn := range turns {
		if payload.Messages[i+1].Role != turn.Role || payload.Messages[i+1].Content != turn.Content {
			t.Fatalf("turn %d not forwarded verbatim", i)
		}
	}
}

func TestMapGatewayFailure(t *testing.T) {
	cases := []struct {
		status     int
		wantStatus int
		wantError  bool
	}{
		{200, 200, false},
		{201, 201, false},
		{429, http.StatusTooManyRequests, true},
		{402, http.StatusPaymentRequired, true},
		{500, http.StatusInternalServerError, true},
		{404, http.StatusInternalServerError, true},
	}

	for _, tc := range cases {
		status, message := mapGatewayFailure(tc.status)
		if status != tc.wantStatus {
			t.Fatalf("status %d: expected mapped %d, got %d", tc.status, tc.wantStatus, status)
		}
		if (message != "") != tc.wantError {
			t.Fatalf("status %d: unexpected error message %q", tc.status, message)
		}
	}
}

func TestForwardToGateway(t *testing.T) {
	var gotAuth, gotContentType string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer gateway.Close()

	payload := buildGatewayPayload(testSnapshot(), []ChatTurn{{Role: "user", Content: "hi"}})
	status, body, err := forwardToGateway(gateway.URL, "test-key", payload)
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200 from gateway, got %d", status)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}
	if !strings.Contains(string(body), "hello") {
		t.Fatalf("gateway body not passed through: %s", string(body))
	}
}

func TestForwardToGatewayRateLimited(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer gateway.Close()

	payload := buildGatewayPayload(nil, []ChatTurn{{Role: "user", Content: "hi"}})
	status, _, err := forwardToGateway(gateway.URL, "test-key", payload)
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}

	mappedStatus, message := mapGatewayFailure(status)
	if mappedStatus != http.StatusTooManyRequests {
		t.Fatalf("expected 429 to map through, got %d", mappedStatus)
	}
	if !strings.Contains(message, "Rate limit") {
		t.Fatalf("expected a rate-limit retry prompt, got %q", message)
	}
}
