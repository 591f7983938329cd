package db

import "gorm.io/gorm"

// Review is a user rating of a published car. A user may review each car at
// most once, enforced by the composite unique index.
type Review struct {
	gorm.Model
	CarID   uint   `gorm:"not null;uniqueIndex:idx_reviews_car_user" json:"car_id"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_reviews_car_user" json:"user_id"`
	User    User   `json:"-"`
	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `json:"comment"`
}
