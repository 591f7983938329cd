package service

import (
	"errors"

	"github.com/carmarket/internal/db"
	"gorm.io/gorm"
)

var (
	ErrAlreadyFavorite = errors.New("car already in favorites")
	ErrNotFavorite     = errors.New("car not in favorites")
)

// FavoriteService handles a user's saved cars.
type FavoriteService struct {
	db *gorm.DB
}

// NewFavoriteService creates a FavoriteService instance.
func NewFavoriteService(gdb *gorm.DB) *FavoriteService {
	return &FavoriteService{db: gdb}
}

// Add saves a car to the user's favorites. Adding twice is a conflict.
func (s *FavoriteService) Add(userID, carID uint) error {
	var car db.Car
	if err := s.db.First(&car, carID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCarNotFound
		}
		return err
	}

	var count int64
	if err := s.db.Model(&db.Favorite{}).
		Where("user_id = ? AND car_id = ?", userID, carID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyFavorite
	}

	return s.db.Create(&db.Favorite{UserID: userID, CarID: carID}).Error
}

// Remove drops a car from the user's favorites.
func (s *FavoriteService) Remove(userID, carID uint) error {
	var favorite db.Favorite
	err := s.db.Where("user_id = ? AND car_id = ?", userID, carID).First(&favorite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFavorite
		}
		return err
	}
	return s.db.Delete(&favorite).Error
}

// ListCars returns the cars the user has saved, newest favorite first.
func (s *FavoriteService) ListCars(userID uint) ([]db.Car, error) {
	var cars []db.Car
	err := s.db.
		Joins("JOIN favorites ON favorites.car_id = cars.id AND favorites.deleted_at IS NULL").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at desc").
		Find(&cars).Error
	if err != nil {
		return nil, err
	}
	return cars, nil
}
