package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultCoverImage is shown for listings posted without photos.
const DefaultCoverImage = "https://images.unsplash.com/photo-1560518883-ce09059eeffa?auto=format&fit=crop&w=800"

const (
	ListingTypeSale = "sale"
	ListingTypeRent = "rent"
)

const (
	PropertyStatusActive   = "active"
	PropertyStatusInactive = "inactive"
	PropertyStatusSold     = "sold"
)

type Property struct {
	gorm.Model
	UserID       uint           `json:"userID" gorm:"index"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ListingType  string         `json:"listingType" gorm:"type:varchar(10);index"` // sale, rent
	PropertyType string         `json:"propertyType"`                              // apartment, villa, house, studio
	Price        float64        `json:"price"`
	Location     string         `json:"location"`
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    int            `json:"bathrooms"`
	Area         float64        `json:"area"` // sqft
	Amenities    datatypes.JSON `json:"amenities"`
	Images       datatypes.JSON `json:"images"`
	Featured     bool           `json:"featured" gorm:"default:false"`
	Status       string         `json:"status" gorm:"type:varchar(20);default:'active';index"` // active, inactive, sold
	User         User           `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

// ImageURLs decodes the stored photo list. Never returns nil.
func (p *Property) ImageURLs() []string {
	urls := []string{}
	if p.Images != nil {
		var decoded []string
		if err := json.Unmarshal(p.Images, &decoded); err == nil && decoded != nil {
			urls = decoded
		}
	}
	return urls
}

// AmenityList decodes the stored amenities. Never returns nil.
func (p *Property) AmenityList() []string {
	amenities := []string{}
	if p.Amenities != nil {
		var decoded []string
		if err := json.Unmarshal(p.Amenities, &decoded); err == nil && decoded != nil {
			amenities = decoded
		}
	}
	return amenities
}

// CoverImage returns the first listing photo, or the stock placeholder
// when the listing has none.
func (p *Property) CoverImage() string {
	if urls := p.ImageURLs(); len(urls) > 0 && urls[0] != "" {
		return urls[0]
	}
	return DefaultCoverImage
}
