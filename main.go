package main

import (
	"log"
	"os"
	"time"

	"faltula/database"
	"faltula/handlers"
	"faltula/middleware"
	"faltula/services"

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

	// Initialize database
	database.InitDB()

	// Initialize class handlers
	handlers.InitClassHandlers()

	// Per-user progress sessions, toasts delivered over WebSocket
	services.InitSessionManager(database.GetDB(), handlers.GetNotificationHub())
	defer func() {
		if sm := services.GetSessionManager(); sm != nil {
			sm.CloseAll()
		}
	}()

	// Initialize cleanup service
	services.InitCleanupService()
	services.GetCleanupService().Start()
	defer func() {
		if cleanupService := services.GetCleanupService(); cleanupService != nil {
			cleanupService.Stop()
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
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

	// Apply rate limiting to all routes
	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/upgrade", middleware.AuthMiddleware, handlers.UpgradeGuest)
	authGroup.Post("/logout", middleware.AuthMiddleware, handlers.Logout)
	authGroup.Get("/me", middleware.AuthMiddleware, handlers.Me)

	// Profile routes
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Put("/me", handlers.UpdateProfile)
	userGroup.Put("/me/theme", handlers.UpdateTheme)
	userGroup.Post("/me/sections", handlers.VisitSection)

	// Subject routes
	subjectGroup := api.Group("/subjects")
	subjectGroup.Use(middleware.AuthMiddleware)
	subjectGroup.Get("/", handlers.GetSubjects)
	subjectGroup.Post("/", handlers.CreateSubject)
	subjectGroup.Put("/:id", handlers.UpdateSubject)
	subjectGroup.Delete("/:id", handlers.DeleteSubject)

	// Schedule routes
	scheduleGroup := api.Group("/schedule")
	scheduleGroup.Use(middleware.AuthMiddleware)
	scheduleGroup.Get("/", handlers.GetSchedule)
	scheduleGroup.Post("/", handlers.CreateScheduleSlot)
	scheduleGroup.Delete("/:id", handlers.DeleteScheduleSlot)
	scheduleGroup.Post("/import", handlers.ImportSchedule)

	// Absence routes
	absenceGroup := api.Group("/absences")
	absenceGroup.Use(middleware.AuthMiddleware)
	absenceGroup.Get("/", handlers.GetAbsences)
	absenceGroup.Post("/", handlers.CreateAbsence)
	absenceGroup.Delete("/:id", handlers.DeleteAbsence)
	absenceGroup.Post("/checkin", handlers.CheckInEarlyClass)

	// Note routes
	noteGroup := api.Group("/notes")
	noteGroup.Use(middleware.AuthMiddleware)
	noteGroup.Get("/", handlers.GetNotes)
	noteGroup.Post("/", handlers.CreateNote)
	noteGroup.Delete("/:id", handlers.DeleteNote)

	// Achievement routes
	achievementGroup := api.Group("/achievements")
	achievementGroup.Use(middleware.AuthMiddleware)
	achievementGroup.Get("/", handlers.GetAchievements)
	achievementGroup.Get("/unlocked", handlers.GetUnlockedAchievements)
	achievementGroup.Post("/reset", handlers.ResetAchievements)

	// Progression routes
	progressionGroup := api.Group("/progression")
	progressionGroup.Use(middleware.AuthMiddleware)
	progressionGroup.Get("/", handlers.GetProgression)

	// Leaderboard routes
	leaderboardGroup := api.Group("/leaderboard")
	leaderboardGroup.Get("/", handlers.GetLeaderboard)
	leaderboardGroup.Get("/me", middleware.AuthMiddleware, handlers.GetMyRank)

	// Class routes
	api.Get("/classes/popular", handlers.GetPopularClasses)
	classGroup := api.Group("/classes")
	classGroup.Use(middleware.AuthMiddleware)
	classGroup.Post("/", handlers.CreateClass)
	classGroup.Get("/", handlers.GetMyClasses)
	classGroup.Get("/search", handlers.SearchClasses)
	classGroup.Post("/join", handlers.JoinClass)
	classGroup.Post("/invites/:code/accept", handlers.AcceptClassInvite)
	classGroup.Post("/invites/:code/decline", handlers.DeclineClassInvite)
	classGroup.Get("/:id", handlers.GetClass)
	classGroup.Post("/:id/leave", handlers.LeaveClass)
	classGroup.Post("/:id/transfer", handlers.TransferLeadership)
	classGroup.Post("/:id/invites", handlers.CreateClassInvite)
	classGroup.Delete("/:id/members/:memberId", handlers.RemoveClassMember)

	// Realtime toasts
	app.Use("/ws", handlers.WebSocketUpgrade)
	app.Get("/ws/notifications", middleware.WebSocketAuthMiddleware, handlers.NotificationSocket())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🏆 Achievement engine loaded with static catalog")
	log.Printf("🌐 Toast socket available at ws://localhost:%s/ws/notifications", port)

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

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
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
