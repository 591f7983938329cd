package db

import "gorm.io/gorm"

// Comment is a user remark on a blog. Comments are removed together with
// their blog.
type Comment struct {
	gorm.Model
	BlogID  uint   `gorm:"index;not null" json:"blog_id"`
	UserID  uint   `gorm:"index;not null" json:"user_id"`
	User    User   `json:"-"`
	Content string `gorm:"not null" json:"content"`
}
