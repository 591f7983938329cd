package service

import (
	"errors"
	"strings"

	"github.com/carmarket/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentEmpty    = errors.New("comment content is required")
)

// CommentService handles blog comments.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Add attaches a comment to a blog.
func (s *CommentService) Add(blogID, userID uint, content string) (*db.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentEmpty
	}

	var blog db.Blog
	if err := s.db.First(&blog, blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	comment := db.Comment{BlogID: blogID, UserID: userID, Content: content}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByBlog returns a blog's comments, newest first.
func (s *CommentService) ListByBlog(blogID uint) ([]db.Comment, error) {
	var comments []db.Comment
	err := s.db.Preload("User").
		Where("blog_id = ?", blogID).
		Order("created_at desc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment. Only its author or an admin may do so.
func (s *CommentService) Delete(id uint, actor Actor) error {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != actor.ID && !actor.Admin {
		return ErrForbidden
	}

	return s.db.Delete(&comment).Error
}
