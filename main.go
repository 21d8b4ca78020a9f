package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/controllers"
	"github.com/toolrent/toolrent-api/middleware"
	"github.com/toolrent/toolrent-api/models"
	"github.com/toolrent/toolrent-api/services"
	"github.com/toolrent/toolrent-api/utils"
)

func main() {
	log.Info("Starting Tool Rental API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	utils.UploadDir = cfg.UploadDir

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Brand{},
		&models.Tool{},
		&models.WorkerProficiency{},
		&models.WorkerLevel{},
		&models.Worker{},
		&models.PaymentMethod{},
		&models.Order{},
		&models.OrderTool{},
		&models.OrderWorker{},
		&models.AttachedWorker{},
		&models.Comment{},
		&models.Favorite{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database migration completed successfully")

	// Initialize S3-backed image storage when a bucket is configured
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
	} else {
		log.Warn("AWS_S3_BUCKET not set, tool image uploads are disabled")
	}

	// Initialize the Telegram notification dispatcher when a bot token is
	// configured. Orders work without it; notifications are best effort.
	if cfg.TelegramBotToken != "" {
		notifier, err := services.NewTelegramNotifier(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram notifier: %v", err)
		}
		dispatcher := services.InitNotificationDispatcher(notifier)
		defer dispatcher.Stop()
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set, order notifications are disabled")
	}

	router := setupRouter(cfg)

	// Start server
	addr := ":" + cfg.Port
	log.Infof("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the gin engine with all middleware and routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	auth := middleware.EnsureValidToken(cfg)

	v1 := router.Group("/api/v1")
	{
		// Health check endpoints
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		// Users
		v1.POST("/users", auth, controllers.CreateUser)
		v1.GET("/users/me", auth, controllers.GetCurrentUser)
		v1.PATCH("/users/me", auth, controllers.UpdateCurrentUser)

		// Tools (public catalog, admin writes)
		v1.GET("/tools", controllers.ListTools)
		v1.GET("/tools/:id", controllers.GetTool)
		v1.POST("/tools", auth, controllers.CreateTool)
		v1.PATCH("/tools/:id", auth, controllers.UpdateTool)
		v1.DELETE("/tools/:id", auth, controllers.DeleteTool)
		v1.POST("/tools/:id/image", auth, controllers.UploadToolImage)

		// Catalog reference tables
		v1.GET("/brands", controllers.ListBrands)
		v1.POST("/brands", auth, controllers.CreateBrand)
		v1.DELETE("/brands/:id", auth, controllers.DeleteBrand)
		v1.GET("/proficiencies", controllers.ListProficiencies)
		v1.POST("/proficiencies", auth, controllers.CreateProficiency)
		v1.DELETE("/proficiencies/:id", auth, controllers.DeleteProficiency)
		v1.GET("/levels", controllers.ListLevels)
		v1.POST("/levels", auth, controllers.CreateLevel)
		v1.DELETE("/levels/:id", auth, controllers.DeleteLevel)
		v1.GET("/payment-methods", controllers.ListPaymentMethods)
		v1.POST("/payment-methods", auth, controllers.CreatePaymentMethod)
		v1.DELETE("/payment-methods/:id", auth, controllers.DeletePaymentMethod)

		// Workers
		v1.GET("/workers", auth, controllers.ListWorkers)
		v1.POST("/workers", auth, controllers.CreateWorker)
		v1.POST("/workers/:id/photo", auth, controllers.UploadWorkerPhoto)
		v1.POST("/attached-workers", auth, controllers.AttachWorker)

		// Orders
		v1.POST("/orders", auth, controllers.CreateOrder)
		v1.GET("/orders", auth, controllers.ListOrders)
		v1.GET("/orders/:id", auth, controllers.GetOrder)
		v1.PATCH("/orders/:id/status", auth, controllers.UpdateOrderStatus)
		v1.DELETE("/orders/:id", auth, controllers.DeleteOrder)

		// Order comments
		v1.POST("/orders/:id/comments", auth, controllers.CreateComment)
		v1.GET("/orders/:id/comments", auth, controllers.ListComments)

		// Favorites
		v1.POST("/favorites", auth, controllers.CreateFavorite)
		v1.GET("/favorites", auth, controllers.ListFavorites)
		v1.DELETE("/favorites/:id", auth, controllers.DeleteFavorite)

		// Locally stored photos
		v1.GET("/uploads/:filename", controllers.GetUploadedPhoto)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tool Rental API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
