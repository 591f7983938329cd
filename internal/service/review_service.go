package service

import (
	"errors"

	"github.com/carmarket/internal/db"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrAlreadyReviewed = errors.New("car already reviewed by this user")
)

// ReviewService handles car reviews.
type ReviewService struct {
	db *gorm.DB
}

// ReviewInput represents fields accepted when creating or updating a review.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// NewReviewService creates a ReviewService instance.
func NewReviewService(gdb *gorm.DB) *ReviewService {
	return &ReviewService{db: gdb}
}

// Create adds a review for a car. A user may review each car once.
func (s *ReviewService) Create(carID, userID uint, input ReviewInput) (*db.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	var car db.Car
	if err := s.db.First(&car, carID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&db.Review{}).
		Where("car_id = ? AND user_id = ?", carID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyReviewed
	}

	review := db.Review{CarID: carID, UserID: userID, Rating: input.Rating, Comment: input.Comment}
	if err := s.db.Create(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Update applies changes to an existing review under the ownership rules.
func (s *ReviewService) Update(id uint, actor Actor, input ReviewInput) (*db.Review, error) {
	var review db.Review
	if err := s.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if review.UserID != actor.ID && !actor.Admin {
		return nil, ErrForbidden
	}

	if input.Rating != 0 {
		if input.Rating < 1 || input.Rating > 5 {
			return nil, ErrInvalidRating
		}
		review.Rating = input.Rating
	}
	if input.Comment != "" {
		review.Comment = input.Comment
	}

	if err := s.db.Save(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes a review under the ownership rules.
func (s *ReviewService) Delete(id uint, actor Actor) error {
	var review db.Review
	if err := s.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if review.UserID != actor.ID && !actor.Admin {
		return ErrForbidden
	}

	return s.db.Delete(&review).Error
}

// ListByCar returns a car's reviews, newest first.
func (s *ReviewService) ListByCar(carID uint) ([]db.Review, error) {
	var reviews []db.Review
	err := s.db.Preload("User").
		Where("car_id = ?", carID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByUser returns a user's reviews, newest first.
func (s *ReviewService) ListByUser(userID uint) ([]db.Review, error) {
	var reviews []db.Review
	err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
