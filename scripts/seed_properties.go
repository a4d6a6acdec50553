package main

import (
	"encoding/json"
	"fmt"
	"log"

	"zerobroker-server/models"
	"zerobroker-server/storage"

	"gorm.io/datatypes"
)

// Seeds a development database with a small set of Indian-market listings.
// Run with: go run ./scripts

type seedListing struct {
	Title        string
	ListingType  string
	PropertyType string
	Price        float64
	Location     string
	Bedrooms     int
	Bathrooms    int
	Area         float64
	Featured     bool
	Images       []string
}

var seedListings = []seedListing{
	{
		Title:        "Luxury 3BHK Apartment in Whitefield",
		ListingType:  models.ListingTypeSale,
		PropertyType: "apartment",
		Price:        8500000,
		Location:     "Whitefield, Bangalore",
		Bedrooms:     3,
		Bathrooms:    2,
		Area:         1450,
		Featured:     true,
		Images:       []string{"https://images.unsplash.com/photo-1545324418-cc1a3fa10c00?auto=format&fit=crop&w=800"},
	},
	{
		Title:        "Modern Villa with Garden in Koramangala",
		ListingType:  models.ListingTypeSale,
		PropertyType: "villa",
		Price:        25000000,
		Location:     "Koramangala, Bangalore",
		Bedrooms:     4,
		Bathrooms:    4,
		Area:         3200,
		Featured:     true,
		Images:       []string{"https://images.unsplash.com/photo-1580587771525-78b9dba3b914?auto=format&fit=crop&w=800"},
	},
	{
		Title:        "Cozy 2BHK Near Metro Station",
		ListingType:  models.ListingTypeSale,
		PropertyType: "apartment",
		Price:        4500000,
		Location:     "Baner, Pune",
		Bedrooms:     2,
		Bathrooms:    2,
		Area:         980,
	},
	{
		Title:        "Spacious 2BHK for Rent in HSR Layout",
		ListingType:  models.ListingTypeRent,
		PropertyType: "apartment",
		Price:        28000,
		Location:     "HSR Layout, Bangalore",
		Bedrooms:     2,
		Bathrooms:    2,
		Area:         1100,
	},
	{
		Title:        "Fully Furnished Studio in Hinjewadi",
		ListingType:  models.ListingTypeRent,
		PropertyType: "studio",
		Price:        14000,
		Location:     "Hinjewadi, Pune",
		Bedrooms:     1,
		Bathrooms:    1,
		Area:         520,
	},
	{
		Title:        "Independent House with Terrace in Indiranagar",
		ListingType:  models.ListingTypeRent,
		PropertyType: "house",
		Price:        45000,
		Location:     "Indiranagar, Bangalore",
		Bedrooms:     3,
		Bathrooms:    3,
		Area:         1800,
		Featured:     true,
	},
}

func main() {
	storage.InitializeDB()

	owner := models.User{
		FirstName: "Demo",
		LastName:  "Seller",
		Email:     "demo.seller@zerobroker.local",
	}
	if err := storage.DB.Where("email = ?", owner.Email).FirstOrCreate(&owner).Error; err != nil {
		log.Fatalf("Error creating seed owner: %v", err)
	}

	for _, listing := range seedListings {
		imagesJSON, _ := json.Marshal(listing.Images)

		property := models.Property{
			UserID:       owner.ID,
			Title:        listing.Title,
			ListingType:  listing.ListingType,
			PropertyType: listing.PropertyType,
			Price:        listing.Price,
			Location:     listing.Location,
			Bedrooms:     listing.Bedrooms,
			Bathrooms:    listing.Bathrooms,
			Area:         listing.Area,
			Featured:     listing.Featured,
			Images:       datatypes.JSON(imagesJSON),
			Status:       models.PropertyStatusActive,
		}

		if err := storage.DB.Where("title = ?", listing.Title).FirstOrCreate(&property).Error; err != nil {
			log.Fatalf("Error seeding listing %q: %v", listing.Title, err)
		}
	}

	fmt.Println("Seeded sample listings successfully!")
}
