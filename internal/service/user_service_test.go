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

func setupUserServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:user-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func registerTestUser(t *testing.T, svc *UserService, username, email string) *db.User {
	t.Helper()

	user, err := svc.Register(RegisterInput{
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return user
}

func TestRegisterHashesPassword(t *testing.T) {
	gdb, cleanup := setupUserServiceTestDB(t)
	defer cleanup()

	svc := NewUserService(gdb)
	user := registerTestUser(t, svc, "alice", "alice@example.com")

	if user.Password == "secret123" {
		t.Fatal("expected password to be hashed")
	}
	if user.Role != db.RoleUser {
		t.Fatalf("expected default role user, got %q", user.Role)
	}
	if !user.IsActive {
		t.Fatal("expected new account to be active")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	gdb, cleanup := setupUserServiceTestDB(t)
	defer cleanup()

	svc := NewUserService(gdb)
	registerTestUser(t, svc, "alice", "alice@example.com")

	_, err := svc.Register(RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	_, err = svc.Register(RegisterInput{Username: "bob", Email: "alice@example.com", Password: "secret123"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	gdb, cleanup := setupUserServiceTestDB(t)
	defer cleanup()

	svc := NewUserService(gdb)
	registerTestUser(t, svc, "alice", "alice@example.com")

	user, err := svc.Authenticate("alice", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user %q", user.Username)
	}

	if _, err := svc.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials on bad password, got %v", err)
	}
	if _, err := svc.Authenticate("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials on unknown user, got %v", err)
	}
}

func TestAuthenticateRejectsDeactivated(t *testing.T) {
	gdb, cleanup := setupUserServiceTestDB(t)
	defer cleanup()

	svc := NewUserService(gdb)
	user := registerTestUser(t, svc, "alice", "alice@example.com")

	inactive := false
	if _, err := svc.AdminUpdate(user.ID, UserPatch{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Authenticate("alice", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for deactivated account, got %v", err)
	}
}

func TestAdminUpdateChangesRole(t *testing.T) {
	gdb, cleanup := setupUserServiceTestDB(t)
	defer cleanup()

	svc := NewUserService(gdb)
	user := registerTestUser(t, svc, "alice", "alice@example.com")

	role := db.RoleAdmin
	updated, err := svc.AdminUpdate(user.ID, UserPatch{Role: &role})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsAdmin() {
		t.Fatalf("expected promoted user to be admin, got role %q", updated.Role)
	}
}

func TestAdminDeleteRejectsSelf(t *testing.T) {
	gdb, cleanup := setupUserServiceTestDB(t)
	defer cleanup()

	svc := NewUserService(gdb)
	admin := registerTestUser(t, svc, "root", "root@example.com")
	victim := registerTestUser(t, svc, "alice", "alice@example.com")

	actor := Actor{ID: admin.ID, Admin: true}
	if err := svc.AdminDelete(admin.ID, actor); !errors.Is(err, ErrSelfDelete) {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}

	if err := svc.AdminDelete(victim.ID, actor); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(victim.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}
