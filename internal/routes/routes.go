package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"course-management-server/internal/auth"
	"course-management-server/internal/config"
	"course-management-server/internal/handlers"
	"course-management-server/internal/middleware"
	"course-management-server/internal/models"
	"course-management-server/internal/storage"
	"course-management-server/internal/token"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) error {
	signer := token.NewSigner(cfg.JWTSecret, time.Duration(cfg.JWTExpirationMinutes)*time.Minute)
	ledger := token.NewLedger(db, time.Duration(cfg.JWTRefreshExpirationHours)*time.Hour)
	authService := auth.NewService(db, signer, ledger)

	store, err := storage.NewStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		return err
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(db, ledger)
	courseHandler := handlers.NewCourseHandler(db)
	contentHandler := handlers.NewCourseContentHandler(db, store)

	// Public routes (no authentication required). Refresh and logout are
	// public: the refresh token string is the credential.
	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.RefreshToken)
			authRoutes.POST("/logout", authHandler.Logout)
		}
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(signer))
	{
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/me", userHandler.GetMe)
			userRoutes.PUT("/me", userHandler.UpdateMe)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.GET("/email/:email", userHandler.GetUserByEmail)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		courseRoutes := private.Group("/courses")
		{
			teach := middleware.RoleAuthMiddleware(models.RoleInstructor, models.RoleAdmin)

			courseRoutes.POST("", teach, courseHandler.CreateCourse)
			courseRoutes.GET("", courseHandler.GetCourses)
			courseRoutes.GET("/:id", courseHandler.GetCourseByID)
			courseRoutes.GET("/instructor/:instructorId", courseHandler.GetCoursesByInstructor)
			courseRoutes.PUT("/:id", teach, courseHandler.UpdateCourse)
			// Owner check for instructors happens in the handler
			courseRoutes.DELETE("/:id", teach, courseHandler.DeleteCourse)
		}

		contentRoutes := private.Group("/course-content")
		{
			teach := middleware.RoleAuthMiddleware(models.RoleInstructor, models.RoleAdmin)

			contentRoutes.POST("/upload", teach, contentHandler.Upload)
			contentRoutes.GET("/:id", contentHandler.GetByID)
			contentRoutes.GET("/course/:courseId", contentHandler.GetByCourse)
			contentRoutes.GET("/user/:userId", contentHandler.GetByUser)
			contentRoutes.GET("/download/:id", contentHandler.Download)
			contentRoutes.DELETE("/:id", teach, contentHandler.Delete)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	return nil
}
