package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/appdotbuilder/purchase-approval-platform/internal/database"
	"github.com/appdotbuilder/purchase-approval-platform/internal/enrichment"
	"github.com/appdotbuilder/purchase-approval-platform/internal/handler"
	"github.com/appdotbuilder/purchase-approval-platform/internal/repository"
	"github.com/appdotbuilder/purchase-approval-platform/internal/service"
	"github.com/appdotbuilder/purchase-approval-platform/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Purchase Approval API
// @version         1.0
// @description     Employees submit purchase requests referencing marketplace listings; approvers decide them.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// External catalog source for item enrichment
	catalogURL := getenv("CATALOG_API_URL", "http://localhost:8081")
	catalogTimeoutMs, err := strconv.Atoi(getenv("CATALOG_TIMEOUT_MS", "3000"))
	if err != nil || catalogTimeoutMs <= 0 {
		catalogTimeoutMs = 3000
	}
	catalog := enrichment.NewCatalogClient(catalogURL, time.Duration(catalogTimeoutMs)*time.Millisecond)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewPurchaseRequestRepository(db)
	txManager := repository.NewTransactionManager(db)

	userService := service.NewUserService(userRepo)
	purchaseService := service.NewPurchaseService(requestRepo, userRepo, txManager, catalog, wsHub)

	userHandler := handler.NewUserHandler(userService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for live purchase request updates
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	purchaseHandler.RegisterRoutes(router.Group(""))

	port := getenv("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
