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

func setupReviewServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:review-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Car{}, &db.Review{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestReviewCreateValidatesRating(t *testing.T) {
	gdb, cleanup := setupReviewServiceTestDB(t)
	defer cleanup()

	svc := NewReviewService(gdb)
	car := seedCar(t, gdb, "Toyota", "Camry", 2020, 30000)

	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.Create(car.ID, 1, ReviewInput{Rating: rating}); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

func TestReviewCreateMissingCar(t *testing.T) {
	gdb, cleanup := setupReviewServiceTestDB(t)
	defer cleanup()

	svc := NewReviewService(gdb)

	if _, err := svc.Create(999, 1, ReviewInput{Rating: 4}); !errors.Is(err, ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound, got %v", err)
	}
}

func TestReviewOncePerCarPerUser(t *testing.T) {
	gdb, cleanup := setupReviewServiceTestDB(t)
	defer cleanup()

	svc := NewReviewService(gdb)
	car := seedCar(t, gdb, "Toyota", "Camry", 2020, 30000)

	if _, err := svc.Create(car.ID, 1, ReviewInput{Rating: 5, Comment: "Great car"}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := svc.Create(car.ID, 1, ReviewInput{Rating: 3}); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	// A different user may still review the same car.
	if _, err := svc.Create(car.ID, 2, ReviewInput{Rating: 4}); err != nil {
		t.Fatalf("second user review: %v", err)
	}
}

func TestReviewUpdateOwnership(t *testing.T) {
	gdb, cleanup := setupReviewServiceTestDB(t)
	defer cleanup()

	svc := NewReviewService(gdb)
	car := seedCar(t, gdb, "Toyota", "Camry", 2020, 30000)

	review, err := svc.Create(car.ID, 1, ReviewInput{Rating: 3, Comment: "Okay"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(review.ID, Actor{ID: 2}, ReviewInput{Rating: 1}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected stranger update to be forbidden, got %v", err)
	}

	updated, err := svc.Update(review.ID, Actor{ID: 1}, ReviewInput{Rating: 5})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Rating != 5 || updated.Comment != "Okay" {
		t.Fatalf("expected rating updated and comment preserved, got %+v", updated)
	}

	if _, err := svc.Update(review.ID, Actor{ID: 9, Admin: true}, ReviewInput{Comment: "moderated"}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestReviewDeleteOwnership(t *testing.T) {
	gdb, cleanup := setupReviewServiceTestDB(t)
	defer cleanup()

	svc := NewReviewService(gdb)
	car := seedCar(t, gdb, "Toyota", "Camry", 2020, 30000)

	review, err := svc.Create(car.ID, 1, ReviewInput{Rating: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(review.ID, Actor{ID: 2}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected stranger delete to be forbidden, got %v", err)
	}
	if err := svc.Delete(review.ID, Actor{ID: 1}); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(review.ID, Actor{ID: 1}); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestReviewListByCar(t *testing.T) {
	gdb, cleanup := setupReviewServiceTestDB(t)
	defer cleanup()

	svc := NewReviewService(gdb)
	car := seedCar(t, gdb, "Toyota", "Camry", 2020, 30000)
	other := seedCar(t, gdb, "Honda", "Civic", 2021, 15000)

	if _, err := svc.Create(car.ID, 1, ReviewInput{Rating: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(other.ID, 1, ReviewInput{Rating: 2}); err != nil {
		t.Fatalf("create: %v", err)
	}

	reviews, err := svc.ListByCar(car.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reviews) != 1 || reviews[0].CarID != car.ID {
		t.Fatalf("expected 1 review for the car, got %d", len(reviews))
	}
}
