package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/carmarket/internal/db"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestAPI(t *testing.T) (*API, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{}, &db.Listing{}, &db.Car{}, &db.Blog{},
		&db.Comment{}, &db.Review{}, &db.BlogLike{}, &db.Favorite{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	api := NewAPI(gdb, "handler-test-secret", "web/static/uploads", "/static/uploads")

	return api, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedTestUser(t *testing.T, gdb *gorm.DB, username, role string) *db.User {
	t.Helper()

	user := db.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return &user
}

func seedTestListing(t *testing.T, gdb *gorm.DB, creatorID uint, status string) *db.Listing {
	t.Helper()

	listing := db.Listing{
		CreatorID: creatorID,
		Brand:     "Toyota",
		CarModel:  "Camry",
		Year:      2020,
		Price:     "25000",
		Category:  "sedan",
		Status:    status,
	}
	if err := gdb.Create(&listing).Error; err != nil {
		t.Fatalf("failed to seed listing: %v", err)
	}
	return &listing
}

func jsonRequest(t *testing.T, method string, payload any) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func testContext(w *httptest.ResponseRecorder, req *http.Request, user *db.User, id uint) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(contextUserKey, user)
	}
	if id != 0 {
		c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(uint64(id), 10)}}
	}
	return c
}

func TestModerateListingApprovalCreatesCar(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	seedTestUser(t, api.db, "owner", db.RoleUser)
	admin := seedTestUser(t, api.db, "admin", db.RoleAdmin)
	listing := seedTestListing(t, api.db, 1, "pending")

	w := httptest.NewRecorder()
	c := testContext(w, jsonRequest(t, http.MethodPut, map[string]any{
		"status":            "approved",
		"moderator_comment": "looks good",
	}), admin, listing.ID)

	api.ModerateListing(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored db.Listing
	if err := api.db.First(&stored, listing.ID).Error; err != nil {
		t.Fatalf("failed to load listing: %v", err)
	}
	if stored.Status != "approved" {
		t.Fatalf("expected listing approved, got %q", stored.Status)
	}
	if stored.CarID == nil {
		t.Fatal("expected approved listing to be linked to a car")
	}

	var car db.Car
	if err := api.db.First(&car, *stored.CarID).Error; err != nil {
		t.Fatalf("failed to load materialized car: %v", err)
	}
	if car.Brand != "Toyota" || car.CarModel != "Camry" {
		t.Fatalf("unexpected car fields: %+v", car)
	}
}

func TestModerateListingForbiddenForNonAdmin(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	owner := seedTestUser(t, api.db, "owner", db.RoleUser)
	listing := seedTestListing(t, api.db, owner.ID, "pending")

	w := httptest.NewRecorder()
	c := testContext(w, jsonRequest(t, http.MethodPut, map[string]any{
		"status": "approved",
	}), owner, listing.ID)

	api.ModerateListing(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestModerateListingRejectsUnknownStatus(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	admin := seedTestUser(t, api.db, "admin", db.RoleAdmin)
	listing := seedTestListing(t, api.db, 1, "pending")

	w := httptest.NewRecorder()
	c := testContext(w, jsonRequest(t, http.MethodPut, map[string]any{
		"status": "archived",
	}), admin, listing.ID)

	api.ModerateListing(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUpdateListingByStrangerForbidden(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	owner := seedTestUser(t, api.db, "owner", db.RoleUser)
	stranger := seedTestUser(t, api.db, "stranger", db.RoleUser)
	listing := seedTestListing(t, api.db, owner.ID, "pending")

	w := httptest.NewRecorder()
	c := testContext(w, jsonRequest(t, http.MethodPut, map[string]any{
		"price": "19000",
	}), stranger, listing.ID)

	api.UpdateListing(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestUpdateListingReportsResubmission(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	owner := seedTestUser(t, api.db, "owner", db.RoleUser)
	listing := seedTestListing(t, api.db, owner.ID, "rejected")

	w := httptest.NewRecorder()
	c := testContext(w, jsonRequest(t, http.MethodPut, map[string]any{
		"price": "19000",
	}), owner, listing.ID)

	api.UpdateListing(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		PreviousStatus string `json:"previous_status"`
		Resubmitted    bool   `json:"resubmitted"`
		Listing        struct {
			Status string `json:"status"`
			Price  string `json:"price"`
		} `json:"listing"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.PreviousStatus != "rejected" || !response.Resubmitted {
		t.Fatalf("expected rejected -> pending re-submission, got %+v", response)
	}
	if response.Listing.Status != "pending" || response.Listing.Price != "19000" {
		t.Fatalf("unexpected listing in response: %+v", response.Listing)
	}
}

func TestUpdateListingStatusRejectedForNonAdmin(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	owner := seedTestUser(t, api.db, "owner", db.RoleUser)
	listing := seedTestListing(t, api.db, owner.ID, "pending")

	w := httptest.NewRecorder()
	c := testContext(w, jsonRequest(t, http.MethodPut, map[string]any{
		"status": "approved",
	}), owner, listing.ID)

	api.UpdateListing(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected self-approval to be rejected with 403, got %d", w.Code)
	}
}

func TestGetListingHidesPendingFromAnonymous(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	owner := seedTestUser(t, api.db, "owner", db.RoleUser)
	listing := seedTestListing(t, api.db, owner.ID, "pending")

	w := httptest.NewRecorder()
	c := testContext(w, httptest.NewRequest(http.MethodGet, "/", nil), nil, listing.ID)

	api.GetListing(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	c = testContext(w, httptest.NewRequest(http.MethodGet, "/", nil), owner, listing.ID)

	api.GetListing(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected owner to see own listing, got %d", w.Code)
	}
}

func TestDeleteListingRemovesCar(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	owner := seedTestUser(t, api.db, "owner", db.RoleUser)
	admin := seedTestUser(t, api.db, "admin", db.RoleAdmin)
	listing := seedTestListing(t, api.db, owner.ID, "pending")

	w := httptest.NewRecorder()
	c := testContext(w, jsonRequest(t, http.MethodPut, map[string]any{
		"status": "approved",
	}), admin, listing.ID)
	api.ModerateListing(c)
	if w.Code != http.StatusOK {
		t.Fatalf("moderation failed: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	c = testContext(w, httptest.NewRequest(http.MethodDelete, "/", nil), owner, listing.ID)
	api.DeleteListing(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	var cars int64
	if err := api.db.Model(&db.Car{}).Count(&cars).Error; err != nil {
		t.Fatalf("failed to count cars: %v", err)
	}
	if cars != 0 {
		t.Fatalf("expected materialized car to be deleted, got %d cars", cars)
	}
}
