package routes

import (
	"encoding/json"
	"log"
	"strings"

	"zerobroker-server/models"
	"zerobroker-server/storage"
	"zerobroker-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

var validListingTypes = []string{models.ListingTypeSale, models.ListingTypeRent}

var validPropertyStatuses = []string{
	models.PropertyStatusActive,
	models.PropertyStatusInactive,
	models.PropertyStatusSold,
}

// PropertyResponse is the read model the clients render. Price is always
// numeric and Image always resolves to a usable cover URL.
type PropertyResponse struct {
	ID           uint     `json:"id"`
	UserID       uint     `json:"userID"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Location     string   `json:"location"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Area         float64  `json:"area"`
	Type         string   `json:"type"`
	PropertyType string   `json:"propertyType"`
	Image        string   `json:"image"`
	Images       []string `json:"images"`
	Featured     bool     `json:"featured"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"createdAt"`
}

func toPropertyResponse(property models.Property) PropertyResponse {
	return PropertyResponse{
		ID:           property.ID,
		UserID:       property.UserID,
		Title:        property.Title,
		Description:  property.Description,
		Price:        property.Price,
		Location:     property.Location,
		Bedrooms:     property.Bedrooms,
		Bathrooms:    property.Bathrooms,
		Area:         property.Area,
		Type:         property.ListingType,
		PropertyType: property.PropertyType,
		Image:        property.CoverImage(),
		Images:       property.ImageURLs(),
		Featured:     property.Featured,
		Status:       property.Status,
		CreatedAt:    property.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func toPropertyResponses(properties []models.Property) []PropertyResponse {
	responses := make([]PropertyResponse, 0, len(properties))
	for _, property := range properties {
		responses = append(responses, toPropertyResponse(property))
	}
	return responses
}

func CreateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Ensure arrays are never null
	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	imageURLs := insertImages(input.Images)
	imagesJSON, _ := json.Marshal(imageURLs)

	property := models.Property{
		UserID:       claims.ID,
		Title:        input.Title,
		Description:  input.Description,
		ListingType:  input.ListingType,
		PropertyType: input.PropertyType,
		Price:        input.Price,
		Location:     input.Location,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		Area:         input.Area,
		Amenities:    datatypes.JSON(amenitiesJSON),
		Images:       datatypes.JSON(imagesJSON),
		Status:       models.PropertyStatusActive,
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "Failed to create property"})
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(toPropertyResponse(property))
}

// GetListings returns the active properties of one listing kind, newest
// first. This is the browse-page fetch; filtering happens afterwards, in
// memory, against this set.
func GetListings(ctx iris.Context) {
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

	ctx.JSON(toPropertyResponses(properties))
}

func GetProperty(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var property models.Property
	propertyQuery := storage.DB.Where("id = ?", id).Find(&property)
	if propertyQuery.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if propertyQuery.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(toPropertyResponse(property))
}

// GetMyProperties lists the caller's own listings regardless of status.
func GetMyProperties(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var properties []models.Property
	err := storage.DB.
		Where("user_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to load your properties"})
		return
	}

	ctx.JSON(toPropertyResponses(properties))
}

// UpdateProperty mutates a listing. Owner only.
func UpdateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	property, ok := getOwnedProperty(id, claims.ID, ctx)
	if !ok {
		return
	}

	var input UpdateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	updates := map[string]any{
		"title":         input.Title,
		"description":   input.Description,
		"property_type": input.PropertyType,
		"price":         input.Price,
		"location":      input.Location,
		"bedrooms":      input.Bedrooms,
		"bathrooms":     input.Bathrooms,
		"area":          input.Area,
		"amenities":     datatypes.JSON(amenitiesJSON),
	}

	if len(input.Images) > 0 {
		imageURLs := insertImages(input.Images)
		imagesJSON, _ := json.Marshal(imageURLs)
		updates["images"] = datatypes.JSON(imagesJSON)
	}

	err := storage.DB.Model(property).
		Clauses(clause.Returning{}).
		Updates(updates).Error
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "Failed to update property"})
		return
	}

	ctx.JSON(toPropertyResponse(*property))
}

// UpdatePropertyStatus transitions a listing between active, inactive and
// sold. Listings are never hard-deleted.
func UpdatePropertyStatus(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	property, ok := getOwnedProperty(id, claims.ID, ctx)
	if !ok {
		return
	}

	var input UpdateListingStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !slices.Contains(validPropertyStatuses, input.Status) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid listing status", ctx)
		return
	}

	if err := storage.DB.Model(property).Update("status", input.Status).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "status": input.Status})
}

// getOwnedProperty loads a listing and enforces ownership. On failure it
// writes the response and returns ok=false.
func getOwnedProperty(id string, userID uint, ctx iris.Context) (*models.Property, bool) {
	var property models.Property
	propertyQuery := storage.DB.Where("id = ?", id).Find(&property)
	if propertyQuery.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil, false
	}
	if propertyQuery.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil, false
	}
	if property.UserID != userID {
		ctx.StatusCode(iris.StatusForbidden)
		return nil, false
	}
	return &property, true
}

// insertImages uploads base64 payloads and returns their public URLs.
// Entries that are already URLs pass through untouched; failed uploads are
// skipped so one bad photo does not sink the listing.
func insertImages(images []string) []string {
	urls := []string{}
	for _, image := range images {
		if image == "" {
			continue
		}
		if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
			urls = append(urls, image)
			continue
		}
		uploaded, err := storage.UploadBase64Image(image, uuid.NewString())
		if err != nil {
			log.Printf("listing image upload failed: %v", err)
			continue
		}
		urls = append(urls, uploaded)
	}
	return urls
}

type CreateListingInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=8192"`
	ListingType  string   `json:"listingType" validate:"required,oneof=sale rent"`
	PropertyType string   `json:"propertyType" validate:"required,max=64"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	Location     string   `json:"location" validate:"required,max=256"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int      `json:"bathrooms" validate:"gte=0"`
	Area         float64  `json:"area" validate:"gte=0"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
}

type UpdateListingInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=8192"`
	PropertyType string   `json:"propertyType" validate:"required,max=64"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	Location     string   `json:"location" validate:"required,max=256"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int      `json:"bathrooms" validate:"gte=0"`
	Area         float64  `json:"area" validate:"gte=0"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
}

type UpdateListingStatusInput struct {
	Status string `json:"status" validate:"required"`
}
