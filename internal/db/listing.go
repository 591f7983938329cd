package db

import "gorm.io/gorm"

// Listing is a user-submitted vehicle sale proposal. It stays invisible to the
// public marketplace until an admin approves it, at which point a Car record
// is materialized from it (see CarID / Car.ExternalID).
type Listing struct {
	gorm.Model
	CreatorID uint `gorm:"index;not null" json:"creator_id"`
	Creator   User `json:"-"`

	Brand              string   `json:"brand"`
	CarModel           string   `gorm:"column:model" json:"model"`
	Year               int      `json:"year"`
	Price              string   `json:"price"`
	Category           string   `gorm:"index" json:"category"`
	BodyType           string   `json:"body_type"`
	EngineType         string   `json:"engine_type"`
	DriveUnit          string   `json:"drive_unit"`
	Color              string   `json:"color"`
	Mileage            int      `json:"mileage"`
	Transmission       string   `json:"transmission"`
	ShortDescription   string   `json:"short_description"`
	Image              string   `json:"image"`
	Gallery            []string `gorm:"serializer:json" json:"gallery"`
	AdditionalFeatures []string `gorm:"serializer:json" json:"additional_features"`

	Status           string  `gorm:"index;default:pending" json:"status"`
	ModeratorID      *uint   `json:"moderator_id"`
	ModeratorComment *string `json:"moderator_comment"`

	// CarID links to the Car materialized from this listing while it is
	// approved. Null in every other state.
	CarID *uint `json:"car_id"`
}
