package db

import "gorm.io/gorm"

// Blog is a user-submitted article gated by the same moderation states as
// listings, but with no materialization side effect.
type Blog struct {
	gorm.Model
	AuthorID uint `gorm:"index;not null" json:"author_id"`
	Author   User `json:"-"`

	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	FullContent      string `json:"full_content"`
	Image            string `json:"image"`
	ReadTime         string `json:"read_time"`

	Views      int `gorm:"default:0" json:"views"`
	LikesCount int `gorm:"default:0" json:"likes_count"`

	Status           string  `gorm:"index;default:pending" json:"status"`
	ModeratorID      *uint   `json:"moderator_id"`
	ModeratorComment *string `json:"moderator_comment"`
}
