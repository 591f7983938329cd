package db

import "gorm.io/gorm"

// Car is a published vehicle record, the public read surface of the
// marketplace. Cars are either created directly by an admin (ExternalID nil)
// or materialized from an approved Listing (ExternalID "listing_{id}").
type Car struct {
	gorm.Model
	Brand              string   `gorm:"index" json:"brand"`
	CarModel           string   `gorm:"column:model;index" json:"model"`
	Category           string   `gorm:"index" json:"category"`
	Price              string   `json:"price"`
	ShortDescription   string   `json:"short_description"`
	Image              string   `json:"image"`
	Gallery            []string `gorm:"serializer:json" json:"gallery"`
	Year               int      `gorm:"index" json:"year"`
	BodyType           string   `gorm:"index" json:"body_type"`
	EngineType         string   `gorm:"index" json:"engine_type"`
	DriveUnit          string   `json:"drive_unit"`
	EngineVolume       string   `json:"engine_volume"`
	FuelConsumption    string   `json:"fuel_consumption"`
	Color              string   `json:"color"`
	Mileage            int      `gorm:"index" json:"mileage"`
	BatteryCapacity    string   `json:"battery_capacity"`
	RangeKM            string   `gorm:"column:range_km" json:"range"`
	Transmission       string   `gorm:"index" json:"transmission"`
	AdditionalFeatures []string `gorm:"serializer:json" json:"additional_features"`

	// ExternalID records the listing a car was materialized from, and is the
	// authoritative guard consulted before a cascade delete touches the car.
	ExternalID *string `gorm:"index" json:"external_id"`
}
