package routes

import (
	"strings"

	"zerobroker-server/models"
	"zerobroker-server/services"
	"zerobroker-server/storage"
	"zerobroker-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
)

// SearchProperties loads the active set for one listing kind and applies
// the browse filters in memory, mirroring what the listing pages do
// client-side. GET /api/property/search?listingType=sale&location=...&propertyType=...&priceRange=...
func SearchProperties(ctx iris.Context) {
	listingType := strings.TrimSpace(ctx.URLParamDefault("listingType", models.ListingTypeSale))
	if !slices.Contains(validListingTypes, listingType) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "listingType must be sale or rent", ctx)
		return
	}

	var properties []models.Property
	err := storage.DB.
		Where("listing_type = ? AND status = ?", listingType, models.PropertyStatusActive).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to load properties"})
		return
	}

	criteria := services.FilterCriteria{
		Location:     strings.TrimSpace(ctx.URLParam("location")),
		PropertyType: strings.TrimSpace(ctx.URLParamDefault("propertyType", "all")),
		PriceRange:   strings.TrimSpace(ctx.URLParamDefault("priceRange", "all")),
	}

	filtered := services.FilterProperties(properties, criteria)

	ctx.JSON(iris.Map{
		"count":      len(filtered),
		"properties": toPropertyResponses(filtered),
	})
}
