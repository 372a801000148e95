package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/handlers"
	"github.com/PicassoPreem-86/subletly-sub000/internal/api/middleware"
	"github.com/PicassoPreem-86/subletly-sub000/internal/config"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
	"github.com/PicassoPreem-86/subletly-sub000/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client, taskClient handlers.IAsynqClient) *gin.Engine {
	// Initialize services needed by API handlers
	userService := services.NewUserService(db)
	propertyService := services.NewPropertyService(db)
	inquiryService := services.NewInquiryService(db)
	savedService := services.NewSavedPropertyService(db)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware(cfg.AppBaseURL))

	// Rate limiter for signup-type endpoints
	authLimiter := middleware.NewRateLimiterMiddleware(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userService)
	propertyHandler := handlers.NewPropertyHandler(cfg, propertyService, s3StorageService, taskClient)
	inquiryHandler := handlers.NewInquiryHandler(cfg, inquiryService, taskClient)
	savedHandler := handlers.NewSavedPropertyHandler(savedService)

	authRequired := middleware.AuthMiddleware(cfg.JwtSecret, cfg.SessionCookieName)
	landlordOnly := middleware.LandlordMiddleware()

	v1 := r.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Auth
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", authLimiter.Limit(), authHandler.Signup)
			authGroup.POST("/login", authLimiter.Limit(), authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", authRequired, authHandler.Me)
		}

		// Public listing routes
		v1.GET("/properties", propertyHandler.Search)
		v1.GET("/properties/:id", propertyHandler.GetByID)

		// Listing mutation (owning landlord)
		v1.POST("/properties", authRequired, landlordOnly, propertyHandler.Create)
		v1.PUT("/properties/:id", authRequired, landlordOnly, propertyHandler.Update)
		v1.DELETE("/properties/:id", authRequired, landlordOnly, propertyHandler.Delete)
		v1.POST("/properties/:id/images", authRequired, landlordOnly, propertyHandler.UploadImage)

		// Saved properties
		saved := v1.Group("/saved-properties", authRequired)
		{
			saved.GET("", savedHandler.List)
			saved.POST("", savedHandler.Save)
			saved.DELETE("/:propertyId", savedHandler.Unsave)
		}

		// Inquiries
		inquiries := v1.Group("/inquiries", authRequired)
		{
			inquiries.POST("", inquiryHandler.Create)
			inquiries.GET("", inquiryHandler.ListRenter)
			inquiries.GET("/:id", inquiryHandler.GetByID)
			inquiries.POST("/:id/messages", inquiryHandler.PostMessage)
			inquiries.PATCH("/:id/read", inquiryHandler.MarkRead)
		}

		// Landlord views
		landlord := v1.Group("/landlord", authRequired, landlordOnly)
		{
			landlord.GET("/inquiries", inquiryHandler.ListLandlord)
			landlord.GET("/properties", propertyHandler.MyProperties)
		}
	}

	return r
}
