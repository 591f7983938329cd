package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carmarket/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCommentServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:comment-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Blog{}, &db.Comment{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestCommentAddRequiresContent(t *testing.T) {
	gdb, cleanup := setupCommentServiceTestDB(t)
	defer cleanup()

	svc := NewCommentService(gdb)
	blog := seedBlog(t, gdb, 1, StatusApproved)

	if _, err := svc.Add(blog.ID, 7, "   "); !errors.Is(err, ErrCommentEmpty) {
		t.Fatalf("expected ErrCommentEmpty, got %v", err)
	}
}

func TestCommentAddMissingBlog(t *testing.T) {
	gdb, cleanup := setupCommentServiceTestDB(t)
	defer cleanup()

	svc := NewCommentService(gdb)

	if _, err := svc.Add(999, 7, "Hello"); !errors.Is(err, ErrBlogNotFound) {
		t.Fatalf("expected ErrBlogNotFound, got %v", err)
	}
}

func TestCommentAddTrimsContent(t *testing.T) {
	gdb, cleanup := setupCommentServiceTestDB(t)
	defer cleanup()

	svc := NewCommentService(gdb)
	blog := seedBlog(t, gdb, 1, StatusApproved)

	comment, err := svc.Add(blog.ID, 7, "  Nice write-up  ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if comment.Content != "Nice write-up" {
		t.Fatalf("expected trimmed content, got %q", comment.Content)
	}
}

func TestCommentDeleteOwnership(t *testing.T) {
	gdb, cleanup := setupCommentServiceTestDB(t)
	defer cleanup()

	svc := NewCommentService(gdb)
	blog := seedBlog(t, gdb, 1, StatusApproved)

	comment, err := svc.Add(blog.ID, 7, "Nice")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Delete(comment.ID, Actor{ID: 8}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected stranger delete to be forbidden, got %v", err)
	}
	if err := svc.Delete(comment.ID, Actor{ID: 9, Admin: true}); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(comment.ID, Actor{ID: 7}); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound after delete, got %v", err)
	}
}
