package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carmarket/internal/db"
	"gorm.io/gorm"
)

var ErrCarNotFound = errors.New("car not found")

// CarService handles the public car catalogue and the materialization of
// cars from approved listings.
type CarService struct {
	db *gorm.DB
}

// CarFilter describes the catalogue search filters.
type CarFilter struct {
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Category     string `json:"category"`
	YearFrom     int    `json:"year_from"`
	YearTo       int    `json:"year_to"`
	MileageFrom  int    `json:"mileage_from"`
	MileageTo    int    `json:"mileage_to"`
	EngineType   string `json:"engine_type"`
	Transmission string `json:"transmission"`
	BodyType     string `json:"body_type"`
	Color        string `json:"color"`
	Page         int    `json:"-"`
	PerPage      int    `json:"-"`
}

// CarInput represents fields accepted when an admin creates or updates a car
// directly, bypassing the listing workflow.
type CarInput struct {
	Brand              *string  `json:"brand"`
	Model              *string  `json:"model"`
	Category           *string  `json:"category"`
	Price              *string  `json:"price"`
	ShortDescription   *string  `json:"short_description"`
	Image              *string  `json:"image"`
	Gallery            []string `json:"gallery"`
	Year               *int     `json:"year"`
	BodyType           *string  `json:"body_type"`
	EngineType         *string  `json:"engine_type"`
	DriveUnit          *string  `json:"drive_unit"`
	EngineVolume       *string  `json:"engine_volume"`
	FuelConsumption    *string  `json:"fuel_consumption"`
	Color              *string  `json:"color"`
	Mileage            *int     `json:"mileage"`
	BatteryCapacity    *string  `json:"battery_capacity"`
	RangeKM            *string  `json:"range"`
	Transmission       *string  `json:"transmission"`
	AdditionalFeatures []string `json:"additional_features"`
}

// NewCarService creates a CarService instance.
func NewCarService(gdb *gorm.DB) *CarService {
	return &CarService{db: gdb}
}

// ListingExternalID returns the external id a car materialized from the given
// listing carries. It is the guard checked before any cascade touches a car.
func ListingExternalID(listingID uint) string {
	return fmt.Sprintf("listing_%d", listingID)
}

// syncListingCar materializes a car from an approved listing. An existing car
// with the listing's external id is overwritten in place, otherwise a new one
// is created; either way the listing's car_id is pointed at it. Calling it
// twice for the same listing converges to a single car.
func syncListingCar(tx *gorm.DB, listing *db.Listing) error {
	externalID := ListingExternalID(listing.ID)

	var car db.Car
	err := tx.Where("external_id = ?", externalID).First(&car).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		car = db.Car{ExternalID: &externalID}
		copyListingFields(&car, listing)
		if err := tx.Create(&car).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		copyListingFields(&car, listing)
		if err := tx.Save(&car).Error; err != nil {
			return err
		}
	}

	listing.CarID = &car.ID
	return tx.Model(&db.Listing{}).Where("id = ?", listing.ID).
		Update("car_id", car.ID).Error
}

// teardownListingCar reverses materialization when a listing leaves the
// approved state. The linked car is deleted only when its external id still
// matches this listing, so a manually reassigned car survives; the listing's
// car_id is cleared regardless.
func teardownListingCar(tx *gorm.DB, listing *db.Listing) error {
	if listing.CarID == nil {
		return nil
	}

	var car db.Car
	err := tx.First(&car, *listing.CarID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil && car.ExternalID != nil && *car.ExternalID == ListingExternalID(listing.ID) {
		if err := tx.Delete(&car).Error; err != nil {
			return err
		}
	}

	listing.CarID = nil
	return tx.Model(&db.Listing{}).Where("id = ?", listing.ID).
		Update("car_id", nil).Error
}

func copyListingFields(car *db.Car, listing *db.Listing) {
	car.Brand = listing.Brand
	car.CarModel = listing.CarModel
	car.Category = listing.Category
	car.Price = listing.Price
	car.ShortDescription = listing.ShortDescription
	car.Image = listing.Image
	car.Gallery = listing.Gallery
	car.Year = listing.Year
	car.BodyType = listing.BodyType
	car.EngineType = listing.EngineType
	car.DriveUnit = listing.DriveUnit
	car.Transmission = listing.Transmission
	car.Color = listing.Color
	car.Mileage = listing.Mileage
	car.AdditionalFeatures = listing.AdditionalFeatures
}

// Get fetches a car by id.
func (s *CarService) Get(id uint) (*db.Car, error) {
	var car db.Car
	if err := s.db.First(&car, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &car, nil
}

// List returns catalogue cars matching the filter, newest first.
func (s *CarService) List(filter CarFilter) ([]db.Car, error) {
	page := normalizePage(filter.Page)
	perPage := normalizePerPage(filter.PerPage, 20)

	query := s.db.Model(&db.Car{})
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		query = query.Where("brand LIKE ?", "%"+brand+"%")
	}
	if model := strings.TrimSpace(filter.Model); model != "" {
		query = query.Where("model LIKE ?", "%"+model+"%")
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filter.YearFrom > 0 {
		query = query.Where("year >= ?", filter.YearFrom)
	}
	if filter.YearTo > 0 {
		query = query.Where("year <= ?", filter.YearTo)
	}
	if filter.MileageFrom > 0 {
		query = query.Where("mileage >= ?", filter.MileageFrom)
	}
	if filter.MileageTo > 0 {
		query = query.Where("mileage <= ?", filter.MileageTo)
	}
	if engineType := strings.TrimSpace(filter.EngineType); engineType != "" {
		query = query.Where("engine_type = ?", engineType)
	}
	if transmission := strings.TrimSpace(filter.Transmission); transmission != "" {
		query = query.Where("transmission = ?", transmission)
	}
	if bodyType := strings.TrimSpace(filter.BodyType); bodyType != "" {
		query = query.Where("body_type = ?", bodyType)
	}
	if color := strings.TrimSpace(filter.Color); color != "" {
		query = query.Where("color LIKE ?", "%"+color+"%")
	}

	var cars []db.Car
	offset := (page - 1) * perPage
	if err := query.Order("created_at desc").Limit(perPage).Offset(offset).Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

// Create persists an admin-created car. ExternalID stays nil: the car has no
// source listing.
func (s *CarService) Create(input CarInput) (*db.Car, error) {
	var car db.Car
	applyCarInput(&car, input)
	if err := s.db.Create(&car).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

// Update applies only the fields present in the input to an existing car.
func (s *CarService) Update(id uint, input CarInput) (*db.Car, error) {
	var car db.Car
	if err := s.db.First(&car, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}

	applyCarInput(&car, input)
	if err := s.db.Save(&car).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

// Delete removes a car by id.
func (s *CarService) Delete(id uint) error {
	var car db.Car
	if err := s.db.First(&car, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCarNotFound
		}
		return err
	}
	return s.db.Delete(&car).Error
}

func applyCarInput(car *db.Car, input CarInput) {
	if input.Brand != nil {
		car.Brand = *input.Brand
	}
	if input.Model != nil {
		car.CarModel = *input.Model
	}
	if input.Category != nil {
		car.Category = *input.Category
	}
	if input.Price != nil {
		car.Price = *input.Price
	}
	if input.ShortDescription != nil {
		car.ShortDescription = *input.ShortDescription
	}
	if input.Image != nil {
		car.Image = *input.Image
	}
	if input.Gallery != nil {
		car.Gallery = input.Gallery
	}
	if input.Year != nil {
		car.Year = *input.Year
	}
	if input.BodyType != nil {
		car.BodyType = *input.BodyType
	}
	if input.EngineType != nil {
		car.EngineType = *input.EngineType
	}
	if input.DriveUnit != nil {
		car.DriveUnit = *input.DriveUnit
	}
	if input.EngineVolume != nil {
		car.EngineVolume = *input.EngineVolume
	}
	if input.FuelConsumption != nil {
		car.FuelConsumption = *input.FuelConsumption
	}
	if input.Color != nil {
		car.Color = *input.Color
	}
	if input.Mileage != nil {
		car.Mileage = *input.Mileage
	}
	if input.BatteryCapacity != nil {
		car.BatteryCapacity = *input.BatteryCapacity
	}
	if input.RangeKM != nil {
		car.RangeKM = *input.RangeKM
	}
	if input.Transmission != nil {
		car.Transmission = *input.Transmission
	}
	if input.AdditionalFeatures != nil {
		car.AdditionalFeatures = input.AdditionalFeatures
	}
}
