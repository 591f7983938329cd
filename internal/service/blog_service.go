package service

import (
	"errors"
	"strings"

	"github.com/carmarket/internal/db"
	"gorm.io/gorm"
)

var (
	ErrBlogNotFound = errors.New("blog not found")
	ErrAlreadyLiked = errors.New("blog already liked by this user")
	ErrNotLiked     = errors.New("blog not liked by this user")
)

// BlogService owns the blog submission workflow. Blogs pass through the same
// moderation states as listings but carry no materialization side effect.
type BlogService struct {
	db *gorm.DB
}

// BlogInput represents fields accepted when creating a blog.
type BlogInput struct {
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	FullContent      string `json:"full_content"`
	Image            string `json:"image"`
	ReadTime         string `json:"read_time"`
}

// BlogPatch represents a partial update: nil fields are left untouched.
// Status is honored only for admin editors.
type BlogPatch struct {
	Title            *string `json:"title"`
	ShortDescription *string `json:"short_description"`
	FullContent      *string `json:"full_content"`
	Image            *string `json:"image"`
	ReadTime         *string `json:"read_time"`
	Status           *string `json:"status"`
}

// BlogDetail aggregates a blog with its comments and the viewer's like state.
type BlogDetail struct {
	Blog        *db.Blog
	Comments    []db.Comment
	ViewerLiked bool
}

// BlogUpdateResult reports an edit together with the status transition it
// caused.
type BlogUpdateResult struct {
	Blog           *db.Blog
	PreviousStatus string
	Resubmitted    bool
}

// NewBlogService creates a BlogService instance.
func NewBlogService(gdb *gorm.DB) *BlogService {
	return &BlogService{db: gdb}
}

// Create persists a new blog for its author, always pending.
func (s *BlogService) Create(authorID uint, input BlogInput) (*db.Blog, error) {
	blog := db.Blog{
		AuthorID:         authorID,
		Title:            input.Title,
		ShortDescription: input.ShortDescription,
		FullContent:      input.FullContent,
		Image:            input.Image,
		ReadTime:         input.ReadTime,
		Status:           StatusPending,
	}

	if err := s.db.Create(&blog).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

// ListApproved returns approved blogs, newest first.
func (s *BlogService) ListApproved(page, perPage int) ([]db.Blog, error) {
	page = normalizePage(page)
	perPage = normalizePerPage(perPage, 10)

	var blogs []db.Blog
	err := s.db.Where("status = ?", StatusApproved).
		Order("created_at desc").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

// Featured returns the most viewed approved blogs.
func (s *BlogService) Featured(limit int) ([]db.Blog, error) {
	if limit <= 0 {
		limit = 3
	}

	var blogs []db.Blog
	err := s.db.Where("status = ?", StatusApproved).
		Order("views desc").
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

// ListByAuthor returns a user's own blogs, newest first, optionally filtered
// by status.
func (s *BlogService) ListByAuthor(authorID uint, status string) ([]db.Blog, error) {
	query := s.db.Where("author_id = ?", authorID)
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	var blogs []db.Blog
	if err := query.Order("created_at desc").Find(&blogs).Error; err != nil {
		return nil, err
	}
	return blogs, nil
}

// List returns blogs matching an optional status filter, newest first,
// for the admin moderation queue.
func (s *BlogService) List(status string, page, perPage int) ([]db.Blog, error) {
	page = normalizePage(page)
	perPage = normalizePerPage(perPage, 20)

	query := s.db.Model(&db.Blog{})
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	var blogs []db.Blog
	err := query.Order("created_at desc").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

// Get fetches a blog with its comments and the viewer's like state.
// Non-approved blogs are hidden from everyone but their author and admins.
func (s *BlogService) Get(id uint, viewer *Actor) (*BlogDetail, error) {
	var blog db.Blog
	if err := s.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	if blog.Status != StatusApproved {
		if viewer == nil || (viewer.ID != blog.AuthorID && !viewer.Admin) {
			return nil, ErrBlogNotFound
		}
	}

	detail := &BlogDetail{Blog: &blog}
	if err := s.db.Preload("User").
		Where("blog_id = ?", id).
		Order("created_at desc").
		Find(&detail.Comments).Error; err != nil {
		return nil, err
	}

	if viewer != nil {
		var count int64
		if err := s.db.Model(&db.BlogLike{}).
			Where("user_id = ? AND blog_id = ?", viewer.ID, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		detail.ViewerLiked = count > 0
	}

	return detail, nil
}

// Update applies a partial edit under the ownership rules. A non-admin edit
// that does not set a status explicitly re-submits the blog as pending.
func (s *BlogService) Update(id uint, actor Actor, patch BlogPatch) (*BlogUpdateResult, error) {
	var blog db.Blog
	if err := s.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	if err := checkEdit(actor, blog.AuthorID, blog.Status); err != nil {
		return nil, err
	}

	previousStatus := blog.Status
	if patch.Title != nil {
		blog.Title = *patch.Title
	}
	if patch.ShortDescription != nil {
		blog.ShortDescription = *patch.ShortDescription
	}
	if patch.FullContent != nil {
		blog.FullContent = *patch.FullContent
	}
	if patch.Image != nil {
		blog.Image = *patch.Image
	}
	if patch.ReadTime != nil {
		blog.ReadTime = *patch.ReadTime
	}

	if patch.Status != nil {
		if !actor.Admin {
			return nil, ErrForbidden
		}
		if !ValidStatus(*patch.Status) {
			return nil, ErrInvalidStatus
		}
		blog.Status = *patch.Status
	} else if !actor.Admin {
		blog.Status = StatusPending
	}

	if err := s.db.Save(&blog).Error; err != nil {
		return nil, err
	}

	return &BlogUpdateResult{
		Blog:           &blog,
		PreviousStatus: previousStatus,
		Resubmitted:    previousStatus != StatusPending && blog.Status == StatusPending,
	}, nil
}

// Delete removes a blog together with its comments and likes.
func (s *BlogService) Delete(id uint, actor Actor) error {
	var blog db.Blog
	if err := s.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlogNotFound
		}
		return err
	}

	if blog.AuthorID != actor.ID && !actor.Admin {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", id).Delete(&db.BlogLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&blog).Error
	})
}

// Moderate applies an admin decision to a blog.
func (s *BlogService) Moderate(id uint, actor Actor, decision Decision) (*db.Blog, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}

	var blog db.Blog
	if err := s.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return applyModeration(tx, &blog, decision, nil)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&blog, id).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

// IncrementViews bumps the view counter by one.
func (s *BlogService) IncrementViews(id uint) error {
	result := s.db.Model(&db.Blog{}).Where("id = ?", id).
		Update("views", gorm.Expr("views + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlogNotFound
	}
	return nil
}

// Like records a like for the viewer. Liking a blog twice is a conflict.
func (s *BlogService) Like(blogID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var blog db.Blog
		if err := tx.First(&blog, blogID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBlogNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&db.BlogLike{}).
			Where("user_id = ? AND blog_id = ?", userID, blogID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyLiked
		}

		if err := tx.Create(&db.BlogLike{UserID: userID, BlogID: blogID}).Error; err != nil {
			return err
		}

		return tx.Model(&db.Blog{}).Where("id = ?", blogID).
			Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
}

// Unlike removes the viewer's like. The counter is floored at zero so a
// drifted count can never go negative.
func (s *BlogService) Unlike(blogID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var like db.BlogLike
		err := tx.Where("user_id = ? AND blog_id = ?", userID, blogID).First(&like).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotLiked
			}
			return err
		}

		if err := tx.Delete(&like).Error; err != nil {
			return err
		}

		return tx.Model(&db.Blog{}).Where("id = ?", blogID).
			Update("likes_count", gorm.Expr(
				"CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error
	})
}
