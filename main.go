// main.go
package main

import (
	"log"
	"os"
	"time"

	"bowlingmanager/database"
	"bowlingmanager/handlers"
	"bowlingmanager/middleware"
	"bowlingmanager/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Connect to the database; the handle is passed down explicitly
	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	// Object storage is optional; nil disables board image uploads
	storage, err := services.NewStorageFromEnv()
	if err != nil {
		log.Fatal("Failed to initialize object storage:", err)
	}
	if storage == nil {
		log.Println("Object storage not configured; board image uploads disabled")
	}

	// Services
	mailer := services.NewMailerFromEnv()
	teamService := services.NewTeamService(db)
	scoreService := services.NewScoreService(db, teamService)
	boardService := services.NewBoardService(db, teamService, storage)
	geminiService := services.NewGeminiService(db)

	cleanup := services.NewCleanupService(db)
	if err := cleanup.Start(); err != nil {
		log.Fatal("Failed to start cleanup service:", err)
	}
	defer cleanup.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(db, mailer, teamService)
	teamHandler := handlers.NewTeamHandler(teamService)
	scoreHandler := handlers.NewScoreHandler(scoreService)
	statsHandler := handlers.NewStatsHandler(teamService, scoreService)
	boardHandler := handlers.NewBoardHandler(boardService)
	aiHandler := handlers.NewAIHandler(geminiService, teamService)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    12 * 1024 * 1024, // image uploads
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/request-verification", authHandler.RequestVerification)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/request-password-reset", authHandler.RequestPasswordReset)
	authGroup.Post("/reset-password", authHandler.ResetPassword)
	authGroup.Post("/find-email", authHandler.FindEmail)
	authGroup.Get("/me", middleware.AuthMiddleware, authHandler.Me)
	authGroup.Post("/change-password", middleware.AuthMiddleware, authHandler.ChangePassword)
	authGroup.Delete("/account", middleware.AuthMiddleware, authHandler.DeleteAccount)

	// Team routes
	teams := api.Group("/teams", middleware.AuthMiddleware)
	teams.Post("/", teamHandler.CreateTeam)
	teams.Get("/", teamHandler.GetMyTeams)
	teams.Post("/join", teamHandler.JoinTeam)
	teams.Get("/:teamId", teamHandler.GetTeam)
	teams.Put("/:teamId", teamHandler.UpdateTeam)
	teams.Delete("/:teamId", teamHandler.DeleteTeam)
	teams.Post("/:teamId/leave", teamHandler.LeaveTeam)
	teams.Delete("/:teamId/members/:userId", teamHandler.RemoveMember)
	teams.Post("/:teamId/members/:userId/toggle-manager", teamHandler.ToggleManager)
	teams.Post("/:teamId/transfer-ownership", teamHandler.TransferOwnership)

	// Guest reconciliation
	teams.Get("/:teamId/guests", teamHandler.ListGuests)
	teams.Post("/:teamId/guests/merge", teamHandler.MergeGuest)
	teams.Post("/:teamId/guests/delete", teamHandler.DeleteGuest)

	// Score routes
	teams.Post("/:teamId/scores", scoreHandler.AddScores)
	teams.Post("/:teamId/scores/import", scoreHandler.ImportWorkbook)
	teams.Get("/:teamId/scores/years", scoreHandler.GetYears)
	teams.Get("/:teamId/scores/activity/:year", scoreHandler.GetActivity)
	teams.Get("/:teamId/scores/day/:day", scoreHandler.GetDay)
	teams.Put("/:teamId/scores/day/:day", scoreHandler.UpdateDay)
	teams.Put("/:teamId/scores/day/:day/meta", scoreHandler.UpdateDayMeta)
	teams.Put("/:teamId/scores/day/:day/member", scoreHandler.SaveMemberDay)
	teams.Delete("/:teamId/scores/day/:day", scoreHandler.DeleteDay)
	teams.Delete("/:teamId/scores/:scoreId", scoreHandler.DeleteScore)

	// Stats routes
	teams.Get("/:teamId/stats/:year", statsHandler.GetYearStats)
	teams.Get("/:teamId/stats/:year/me", statsHandler.GetPersonalStats)
	teams.Get("/:teamId/stats/:year/export", statsHandler.ExportYearStats)

	// Board routes
	teams.Get("/:teamId/posts", boardHandler.ListPosts)
	teams.Post("/:teamId/posts", boardHandler.CreatePost)
	teams.Get("/:teamId/posts/storage", boardHandler.StorageStatus)
	teams.Get("/:teamId/posts/:postId", boardHandler.GetPost)
	teams.Put("/:teamId/posts/:postId", boardHandler.UpdatePost)
	teams.Delete("/:teamId/posts/:postId", boardHandler.DeletePost)
	teams.Post("/:teamId/posts/:postId/images", boardHandler.UploadImage)

	// AI analysis routes, throttled separately
	ai := teams.Group("/:teamId/analyze", middleware.AIRateLimitMiddleware())
	ai.Post("/image", aiHandler.AnalyzeImage)
	ai.Post("/text", aiHandler.AnalyzeText)
	api.Get("/ai/usage", middleware.AuthMiddleware, aiHandler.Usage)
	api.Get("/stats/me/:year", middleware.AuthMiddleware, statsHandler.GetMyYearSummary)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🎳 Server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🤖 AI analysis enabled: %v", geminiService.Enabled())

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
