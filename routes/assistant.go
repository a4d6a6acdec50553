package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"zerobroker-server/models"
	"zerobroker-server/storage"
	"zerobroker-server/utils"

	"github.com/kataras/iris/v12"
)

const (
	defaultGatewayURL     = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultAssistantModel = "google/gemini-2.5-flash"
	promptSnapshotLimit   = 50
)

type ChatInput struct {
	Messages []ChatTurn `json:"messages" validate:"required,min=1,dive"`
}

type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// assistantProperty is the slice of a listing the assistant is grounded on.
type assistantProperty struct {
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Price        float64  `json:"price"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Area         float64  `json:"area"`
	PropertyType string   `json:"property_type"`
	ListingType  string   `json:"listing_type"`
	Description  string   `json:"description"`
	Amenities    []string `json:"amenities"`
}

// ChatWithAssistant proxies a chat turn to the AI gateway, grounding the
// system prompt on a snapshot of currently active listings. The gateway's
// raw response body is passed through on success.
func ChatWithAssistant(ctx iris.Context) {
	var input ChatInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	apiKey := os.Getenv("AI_GATEWAY_API_KEY")
	if apiKey == "" {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "AI_GATEWAY_API_KEY is not configured"})
		return
	}

	properties, err := fetchPromptSnapshot()
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "Failed to load property data"})
		return
	}

	status, body, err := forwardToGateway(gatewayURL(), apiKey, buildGatewayPayload(properties, input.Messages))
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "AI gateway error"})
		return
	}

	mappedStatus, errorBody := mapGatewayFailure(status)
	if errorBody != "" {
		ctx.StatusCode(mappedStatus)
		ctx.JSON(iris.Map{"error": errorBody})
		return
	}

	ctx.ContentType("application/json")
	ctx.Write(body)
}

func gatewayURL() string {
	if url := os.Getenv("AI_GATEWAY_URL"); url != "" {
		return url
	}
	return defaultGatewayURL
}

func assistantModel() string {
	if model := os.Getenv("AI_GATEWAY_MODEL"); model != "" {
		return model
	}
	return defaultAssistantModel
}

// fetchPromptSnapshot loads up to promptSnapshotLimit active listings for
// grounding.
func fetchPromptSnapshot() ([]assistantProperty, error) {
	var properties []models.Property
	err := storage.DB.
		Where("status = ?", models.PropertyStatusActive).
		Limit(promptSnapshotLimit).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}

	snapshot := make([]assistantProperty, 0, len(properties))
	for _, property := range properties {
		snapshot = append(snapshot, assistantProperty{
			Title:        property.Title,
			Location:     property.Location,
			Price:        property.Price,
			Bedrooms:     property.Bedrooms,
			Bathrooms:    property.Bathrooms,
			Area:         property.Area,
			PropertyType: property.PropertyType,
			ListingType:  property.ListingType,
			Description:  property.Description,
			Amenities:    property.AmenityList(),
		})
	}
	return snapshot, nil
}

// buildSystemPrompt embeds the listing snapshot into the assistant persona.
func buildSystemPrompt(properties []assistantProperty) string {
	snapshotJSON, _ := json.MarshalIndent(properties, "", "  ")

	return fmt.Sprintf(`You are Zara, an enthusiastic and knowledgeable property assistant for ZeroBroker, India's premier commission-free real estate platform.

YOUR PERSONALITY:
- Warm, friendly, and conversational
- Enthusiastic but not pushy
- Use varied, natural responses

AVAILABLE PROPERTIES:
%s

YOUR CORE RESPONSIBILITIES:
1. Understand user needs through conversational questions
2. Match properties based on: location, budget, size, bedrooms, property type
3. Provide accurate, detailed information from the listing data above
4. Highlight the commission-free advantage
5. Answer questions about amenities, pricing, and locations
6. Suggest alternatives if exact matches aren't available

PRICING GUIDANCE:
- Always specify currency as Indian Rupees
- For rentals: clearly state "per month"
- For sales: state total price
- Emphasize: "No brokerage fees" or "Zero commission"

Remember: Be helpful, be human, be varied in your responses.`, string(snapshotJSON))
}

type gatewayMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type gatewayPayload struct {
	Model    string           `json:"model"`
	Messages []gatewayMessage `json:"messages"`
	Stream   bool             `json:"stream"`
}

func buildGatewayPayload(properties []assistantProperty, turns []ChatTurn) gatewayPayload {
	messages := make([]gatewayMessage, 0, len(turns)+1)
	messages = append(messages, gatewayMessage{Role: "system", Content: buildSystemPrompt(properties)})
	for _, turn := range turns {
		messages = append(messages, gatewayMessage{Role: turn.Role, Content: turn.Content})
	}
	return gatewayPayload{Model: assistantModel(), Messages: messages, Stream: false}
}

func forwardToGateway(url, apiKey string, payload gatewayPayload) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode, body, nil
}

// mapGatewayFailure translates gateway status codes into the user-facing
// retry prompts. A 2xx returns an empty message, meaning pass-through.
func mapGatewayFailure(status int) (int, string) {
	switch {
	case status >= 200 && status < 300:
		return status, ""
	case status == http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a moment."
	case status == http.StatusPaymentRequired:
		return http.StatusPaymentRequired, "Service temporarily unavailable. Please try again later."
	default:
		return http.StatusInternalServerError, "AI gateway error"
	}
}
