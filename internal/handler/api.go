package handler

import (
	"github.com/carmarket/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	listings  *service.ListingService
	cars      *service.CarService
	blogs     *service.BlogService
	comments  *service.CommentService
	reviews   *service.ReviewService
	favorites *service.FavoriteService
	users     *service.UserService
	jwtSecret []byte
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, jwtSecret, uploadDir, uploadURL string) *API {
	return &API{
		db:        gdb,
		listings:  service.NewListingService(gdb),
		cars:      service.NewCarService(gdb),
		blogs:     service.NewBlogService(gdb),
		comments:  service.NewCommentService(gdb),
		reviews:   service.NewReviewService(gdb),
		favorites: service.NewFavoriteService(gdb),
		users:     service.NewUserService(gdb),
		jwtSecret: []byte(jwtSecret),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
