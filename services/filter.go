package services

import (
	"strings"

	"zerobroker-server/models"
)

// FilterCriteria are the browse-page controls: free-text location search,
// a property-type dropdown and a price-range dropdown. The zero value
// (or "all") of any field disables that predicate.
type FilterCriteria struct {
	Location     string
	PropertyType string
	PriceRange   string
}

// priceBucket is a half-open interval [Low, High). High < 0 means unbounded.
type priceBucket struct {
	Low  float64
	High float64
}

// Bucket keys mirror the range labels shown in the browse UI.
// Sale prices are in rupees; rent prices are monthly rupees.
var salePriceBuckets = map[string]priceBucket{
	"0-50":    {0, 5000000},
	"50-100":  {5000000, 10000000},
	"100-150": {10000000, 15000000},
	"150+":    {15000000, -1},
}

var rentPriceBuckets = map[string]priceBucket{
	"0-15":  {0, 15000},
	"15-25": {15000, 25000},
	"25-35": {25000, 35000},
	"35+":   {35000, -1},
}

// FilterProperties returns the subsequence of properties matching every
// criterion, preserving input order. It is deterministic and never mutates
// its input.
func FilterProperties(properties []models.Property, criteria FilterCriteria) []models.Property {
	filtered := make([]models.Property, 0, len(properties))
	for _, property := range properties {
		if !matchesLocation(property.Location, criteria.Location) {
			continue
		}
		if !matchesPropertyType(property.PropertyType, criteria.PropertyType) {
			continue
		}
		if !matchesPriceRange(property.ListingType, property.Price, criteria.PriceRange) {
			continue
		}
		filtered = append(filtered, property)
	}
	return filtered
}

// matchesLocation is a case-insensitive substring match. An empty query
// matches everything.
func matchesLocation(location, query string) bool {
	return strings.Contains(strings.ToLower(location), strings.ToLower(query))
}

func matchesPropertyType(propertyType, filter string) bool {
	return filter == "" || filter == "all" || propertyType == filter
}

// matchesPriceRange resolves the bucket against the listing kind's own
// boundaries. Unknown bucket labels match everything, same as "all".
func matchesPriceRange(listingType string, price float64, priceRange string) bool {
	if priceRange == "" || priceRange == "all" {
		return true
	}

	buckets := salePriceBuckets
	if listingType == models.ListingTypeRent {
		buckets = rentPriceBuckets
	}

	bucket, ok := buckets[priceRange]
	if !ok {
		return true
	}
	if price < bucket.Low {
		return false
	}
	return bucket.High < 0 || price < bucket.High
}
