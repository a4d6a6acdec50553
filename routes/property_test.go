package routes

import (
	"testing"
	"time"

	"zerobroker-server/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestToPropertyResponseMapsFields(t *testing.T) {
	created := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	property := models.Property{
		Model:        gorm.Model{ID: 12, CreatedAt: created},
		UserID:       3,
		Title:        "Cozy 2BHK Near Metro Station",
		ListingType:  models.ListingTypeSale,
		PropertyType: "apartment",
		Price:        4500000,
		Location:     "Baner, Pune",
		Bedrooms:     2,
		Bathrooms:    2,
		Area:         980,
		Featured:     true,
		Status:       models.PropertyStatusActive,
		Images:       datatypes.JSON(`["https://cdn.example/a.jpg","https://cdn.example/b.jpg"]`),
	}

	resp := toPropertyResponse(property)

	if resp.ID != 12 || resp.UserID != 3 {
		t.Fatalf("identifiers lost: %+v", resp)
	}
	if resp.Price != 4500000 {
		t.Fatalf("expected numeric price 4500000, got %v", resp.Price)
	}
	if resp.Type != "sale" || resp.PropertyType != "apartment" {
		t.Fatalf("listing kinds lost: %+v", resp)
	}
	if resp.Image != "https://cdn.example/a.jpg" {
		t.Fatalf("cover should be the first photo, got %q", resp.Image)
	}
	if len(resp.Images) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(resp.Images))
	}
	if resp.CreatedAt != "2025-03-10T08:30:00Z" {
		t.Fatalf("unexpected createdAt format: %q", resp.CreatedAt)
	}
}

func TestToPropertyResponseDefaultsCoverImage(t *testing.T) {
	for name, images := range map[string]datatypes.JSON{
		"nil":     nil,
		"empty":   datatypes.JSON(`[]`),
		"garbage": datatypes.JSON(`not-json`),
	} {
		property := models.Property{Title: "bare", Images: images}
		resp := toPropertyResponse(property)
		if resp.Image != models.DefaultCoverImage {
			t.Fatalf("%s: expected placeholder cover, got %q", name, resp.Image)
		}
		if resp.Images == nil {
			t.Fatalf("%s: images must serialize as an empty list, not null", name)
		}
	}
}

func TestAmenityListDecodes(t *testing.T) {
	property := models.Property{Amenities: datatypes.JSON(`["Gym","Parking"]`)}
	amenities := property.AmenityList()
	if len(amenities) != 2 || amenities[0] != "Gym" || amenities[1] != "Parking" {
		t.Fatalf("unexpected amenities: %v", amenities)
	}

	for name, raw := range map[string]datatypes.JSON{
		"nil":     nil,
		"garbage": datatypes.JSON(`not-json`),
	} {
		if got := (&models.Property{Amenities: raw}).AmenityList(); got == nil || len(got) != 0 {
			t.Fatalf("%s: expected empty list, got %v", name, got)
		}
	}
}

func TestToPropertyResponsesPreservesOrder(t *testing.T) {
	properties := []models.Property{
		{Model: gorm.Model{ID: 3}, Title: "third"},
		{Model: gorm.Model{ID: 1}, Title: "first"},
		{Model: gorm.Model{ID: 2}, Title: "second"},
	}

	responses := toPropertyResponses(properties)

	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	for i := range properties {
		if responses[i].ID != properties[i].ID {
			t.Fatalf("order changed at index %d", i)
		}
	}
}
