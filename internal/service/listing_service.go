package service

import (
	"errors"
	"strings"

	"github.com/carmarket/internal/db"
	"gorm.io/gorm"
)

var ErrListingNotFound = errors.New("listing not found")

// listingSortColumns whitelists the columns the listing index may sort on.
var listingSortColumns = map[string]bool{
	"created_at": true,
	"year":       true,
	"price":      true,
	"mileage":    true,
}

// ListingService owns the listing submission workflow: creation, owner edits,
// admin moderation and the car materialization side effects.
type ListingService struct {
	db *gorm.DB
}

// ListingInput represents fields accepted when creating a listing.
type ListingInput struct {
	Brand              string   `json:"brand"`
	Model              string   `json:"model"`
	Year               int      `json:"year"`
	Price              string   `json:"price"`
	Category           string   `json:"category"`
	BodyType           string   `json:"body_type"`
	EngineType         string   `json:"engine_type"`
	DriveUnit          string   `json:"drive_unit"`
	Color              string   `json:"color"`
	Mileage            int      `json:"mileage"`
	Transmission       string   `json:"transmission"`
	ShortDescription   string   `json:"short_description"`
	Image              string   `json:"image"`
	Gallery            []string `json:"gallery"`
	AdditionalFeatures []string `json:"additional_features"`
}

// ListingPatch represents a partial update: nil fields are left untouched.
// Status is honored only for admin editors.
type ListingPatch struct {
	Brand              *string  `json:"brand"`
	Model              *string  `json:"model"`
	Year               *int     `json:"year"`
	Price              *string  `json:"price"`
	Category           *string  `json:"category"`
	BodyType           *string  `json:"body_type"`
	EngineType         *string  `json:"engine_type"`
	DriveUnit          *string  `json:"drive_unit"`
	Color              *string  `json:"color"`
	Mileage            *int     `json:"mileage"`
	Transmission       *string  `json:"transmission"`
	ShortDescription   *string  `json:"short_description"`
	Image              *string  `json:"image"`
	Gallery            []string `json:"gallery"`
	AdditionalFeatures []string `json:"additional_features"`
	Status             *string  `json:"status"`
}

// ListingFilter describes filters for the listing index.
type ListingFilter struct {
	Status    string
	Category  string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// ListingUpdateResult reports an edit together with the status transition it
// caused, so re-submission for moderation is visible to the caller instead of
// being a hidden mutation.
type ListingUpdateResult struct {
	Listing        *db.Listing
	PreviousStatus string
	Resubmitted    bool
}

// NewListingService creates a ListingService instance.
func NewListingService(gdb *gorm.DB) *ListingService {
	return &ListingService{db: gdb}
}

// Create persists a new listing for its creator. Listings always start
// pending, whatever the caller claims.
func (s *ListingService) Create(creatorID uint, input ListingInput) (*db.Listing, error) {
	listing := db.Listing{
		CreatorID:          creatorID,
		Brand:              input.Brand,
		CarModel:           input.Model,
		Year:               input.Year,
		Price:              input.Price,
		Category:           input.Category,
		BodyType:           input.BodyType,
		EngineType:         input.EngineType,
		DriveUnit:          input.DriveUnit,
		Color:              input.Color,
		Mileage:            input.Mileage,
		Transmission:       input.Transmission,
		ShortDescription:   input.ShortDescription,
		Image:              input.Image,
		Gallery:            input.Gallery,
		AdditionalFeatures: input.AdditionalFeatures,
		Status:             StatusPending,
	}

	if err := s.db.Create(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Get fetches a listing by id. Listings that are not approved are hidden from
// everyone but their creator and admins; callers without access get the same
// not-found error as a missing id.
func (s *ListingService) Get(id uint, viewer *Actor) (*db.Listing, error) {
	var listing db.Listing
	if err := s.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if listing.Status != StatusApproved {
		if viewer == nil || (viewer.ID != listing.CreatorID && !viewer.Admin) {
			return nil, ErrListingNotFound
		}
	}

	return &listing, nil
}

// List returns listings matching the filter with pagination and a whitelisted
// sort column.
func (s *ListingService) List(filter ListingFilter) ([]db.Listing, error) {
	page := normalizePage(filter.Page)
	perPage := normalizePerPage(filter.PerPage, 20)

	query := s.db.Model(&db.Listing{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}

	sortBy := filter.SortBy
	if !listingSortColumns[sortBy] {
		sortBy = "created_at"
	}
	order := sortBy + " desc"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = sortBy + " asc"
	}

	var listings []db.Listing
	offset := (page - 1) * perPage
	if err := query.Order(order).Limit(perPage).Offset(offset).Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// ListApproved returns the public slice of the listing index.
func (s *ListingService) ListApproved(filter ListingFilter) ([]db.Listing, error) {
	filter.Status = StatusApproved
	return s.List(filter)
}

// ListByCreator returns a user's own listings, newest first, optionally
// filtered by status.
func (s *ListingService) ListByCreator(creatorID uint, status string) ([]db.Listing, error) {
	query := s.db.Where("creator_id = ?", creatorID)
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	var listings []db.Listing
	if err := query.Order("created_at desc").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// Update applies a partial edit under the ownership rules. A non-admin edit
// that does not set a status explicitly re-submits the listing as pending.
// The car link is reconciled in the same transaction: an edit that ends
// approved syncs the materialized car (creating it when an admin approves
// through an edit, refreshing it when the listing was already approved), and
// an edit that leaves approved tears the car down.
func (s *ListingService) Update(id uint, actor Actor, patch ListingPatch) (*ListingUpdateResult, error) {
	var listing db.Listing
	if err := s.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if err := checkEdit(actor, listing.CreatorID, listing.Status); err != nil {
		return nil, err
	}

	previousStatus := listing.Status
	applyListingPatch(&listing, patch)

	if patch.Status != nil {
		if !actor.Admin {
			return nil, ErrForbidden
		}
		if !ValidStatus(*patch.Status) {
			return nil, ErrInvalidStatus
		}
		listing.Status = *patch.Status
	} else if !actor.Admin {
		listing.Status = StatusPending
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&listing).Error; err != nil {
			return err
		}
		if listing.Status == StatusApproved {
			return syncListingCar(tx, &listing)
		}
		if listing.CarID != nil {
			return teardownListingCar(tx, &listing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ListingUpdateResult{
		Listing:        &listing,
		PreviousStatus: previousStatus,
		Resubmitted:    previousStatus != StatusPending && listing.Status == StatusPending,
	}, nil
}

// Delete removes a listing. The materialized car is deleted with it when its
// external id still points back at this listing.
func (s *ListingService) Delete(id uint, actor Actor) error {
	var listing db.Listing
	if err := s.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}

	if listing.CreatorID != actor.ID && !actor.Admin {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := teardownListingCar(tx, &listing); err != nil {
			return err
		}
		return tx.Delete(&listing).Error
	})
}

// Moderate applies an admin decision to a listing. Approval materializes (or
// refreshes) the car; any other status tears an existing car down. Status,
// moderator and comment are written unconditionally, so repeating a decision
// is a no-op transition that still re-runs the side effect.
func (s *ListingService) Moderate(id uint, actor Actor, decision Decision) (*db.Listing, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}

	var listing db.Listing
	if err := s.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return applyModeration(tx, &listing, decision, func(tx *gorm.DB) error {
			listing.Status = decision.Status
			if decision.Status == StatusApproved {
				return syncListingCar(tx, &listing)
			}
			if listing.CarID != nil {
				return teardownListingCar(tx, &listing)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func applyListingPatch(listing *db.Listing, patch ListingPatch) {
	if patch.Brand != nil {
		listing.Brand = *patch.Brand
	}
	if patch.Model != nil {
		listing.CarModel = *patch.Model
	}
	if patch.Year != nil {
		listing.Year = *patch.Year
	}
	if patch.Price != nil {
		listing.Price = *patch.Price
	}
	if patch.Category != nil {
		listing.Category = *patch.Category
	}
	if patch.BodyType != nil {
		listing.BodyType = *patch.BodyType
	}
	if patch.EngineType != nil {
		listing.EngineType = *patch.EngineType
	}
	if patch.DriveUnit != nil {
		listing.DriveUnit = *patch.DriveUnit
	}
	if patch.Color != nil {
		listing.Color = *patch.Color
	}
	if patch.Mileage != nil {
		listing.Mileage = *patch.Mileage
	}
	if patch.Transmission != nil {
		listing.Transmission = *patch.Transmission
	}
	if patch.ShortDescription != nil {
		listing.ShortDescription = *patch.ShortDescription
	}
	if patch.Image != nil {
		listing.Image = *patch.Image
	}
	if patch.Gallery != nil {
		listing.Gallery = patch.Gallery
	}
	if patch.AdditionalFeatures != nil {
		listing.AdditionalFeatures = patch.AdditionalFeatures
	}
}
