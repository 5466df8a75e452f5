package models

import "time"

// Product categories as used by the storefront filters.
const (
	CategoryLuxury = "luxo"
	CategorySport  = "desportivo"
	CategoryCasual = "casual"
)

// ValidCategories maps a category slug to its display name.
var ValidCategories = map[string]string{
	CategoryLuxury: "Luxo",
	CategorySport:  "Desportivo",
	CategoryCasual: "Casual",
}

// Product represents a watch listing.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Images      []string  `json:"images"` // extra gallery images
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
