package router

import (
	"time"

	"github.com/carmarket/internal/config"
	"github.com/carmarket/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup configures the gin engine and routes.
func Setup(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := handler.NewAPI(gdb, cfg.JWTSecret, cfg.UploadDir, cfg.UploadURLPath)

	r.Static(cfg.UploadURLPath, cfg.UploadDir)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/register", api.Register)
	r.POST("/login", api.Login)

	// Public marketplace surface
	r.GET("/cars", api.GetCars)
	r.POST("/cars/search", api.SearchCars)
	r.GET("/cars/:id", api.GetCar)
	r.GET("/cars/:id/reviews", api.GetCarReviews)
	r.GET("/listings/approved", api.GetApprovedListings)
	r.GET("/blogs", api.GetBlogs)
	r.GET("/blogs/featured", api.GetFeaturedBlogs)
	r.POST("/blogs/:id/view", api.IncrementBlogViews)

	// Detail endpoints show owners and admins their unapproved content
	optional := r.Group("")
	optional.Use(api.OptionalAuth())
	{
		optional.GET("/listings/:id", api.GetListing)
		optional.GET("/blogs/:id", api.GetBlog)
	}

	// Authenticated routes
	auth := r.Group("")
	auth.Use(api.AuthRequired())
	{
		auth.GET("/me", api.Me)

		auth.POST("/listings", api.CreateListing)
		auth.GET("/listings/user", api.GetUserListings)
		auth.PUT("/listings/:id", api.UpdateListing)
		auth.DELETE("/listings/:id", api.DeleteListing)

		auth.POST("/blogs", api.CreateBlog)
		auth.GET("/blogs/user", api.GetUserBlogs)
		auth.PUT("/blogs/:id", api.UpdateBlog)
		auth.DELETE("/blogs/:id", api.DeleteBlog)
		auth.POST("/blogs/:id/like", api.LikeBlog)
		auth.DELETE("/blogs/:id/like", api.UnlikeBlog)
		auth.POST("/blogs/:id/comments", api.CreateComment)
		auth.DELETE("/comments/:id", api.DeleteComment)

		auth.POST("/reviews", api.CreateReview)
		auth.GET("/reviews/user", api.GetUserReviews)
		auth.PUT("/reviews/:id", api.UpdateReview)
		auth.DELETE("/reviews/:id", api.DeleteReview)

		auth.POST("/favorites/:car_id", api.AddFavorite)
		auth.DELETE("/favorites/:car_id", api.RemoveFavorite)
		auth.GET("/favorites", api.GetFavorites)

		auth.POST("/upload", api.UploadImage)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(api.AuthRequired(), api.AdminRequired())
	{
		admin.GET("/users", api.GetUsers)
		admin.GET("/users/:id", api.GetUser)
		admin.PUT("/users/:id", api.UpdateUser)
		admin.DELETE("/users/:id", api.DeleteUser)

		admin.GET("/listings", api.GetListings)
		admin.PUT("/listings/:id/moderate", api.ModerateListing)

		admin.GET("/blogs", api.GetAdminBlogs)
		admin.PUT("/blogs/:id/moderate", api.ModerateBlog)

		admin.POST("/cars", api.CreateCar)
		admin.PUT("/cars/:id", api.UpdateCar)
		admin.DELETE("/cars/:id", api.DeleteCar)
	}

	return r
}
