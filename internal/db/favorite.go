package db

import "gorm.io/gorm"

// Favorite marks a car as saved by a user. One row per (user, car) pair.
type Favorite struct {
	gorm.Model
	UserID uint `gorm:"not null;uniqueIndex:idx_favorites_user_car" json:"user_id"`
	CarID  uint `gorm:"not null;uniqueIndex:idx_favorites_user_car" json:"car_id"`
}

// BlogLike records that a user liked a blog. One row per (user, blog) pair;
// Blog.LikesCount is maintained alongside inserts and deletes of these rows.
type BlogLike struct {
	gorm.Model
	UserID uint `gorm:"not null;uniqueIndex:idx_blog_likes_user_blog" json:"user_id"`
	BlogID uint `gorm:"not null;uniqueIndex:idx_blog_likes_user_blog" json:"blog_id"`
}
