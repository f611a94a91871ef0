package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"conservation-tracker/handlers"
	"conservation-tracker/middleware"
	"conservation-tracker/models"
	"conservation-tracker/services"
	"conservation-tracker/utils"
	"conservation-tracker/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB — observation photos
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Best-effort rate limiting; the store's unique constraints are the real guard
	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	app.Use(limiter.Handler())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError makes unique-index violations surface as
	// gorm.ErrDuplicatedKey — the engine's conflict signal.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.ProfileUser{},
		&models.UserProgress{},
		&models.BadgeDefinition{},
		&models.BadgeAward{},
		&models.ActivityLedgerEntry{},
		&models.StreakLedgerEntry{},
		&models.Quiz{},
		&models.QuizStreakState{},
		&models.Event{},
		&models.EventParticipation{},
		&models.Observation{},
		&models.Lesson{},
		&models.LessonCompletion{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedCatalog(db); err != nil {
		log.Fatal("failed to seed badge catalog:", err)
	}

	if err := utils.InitStorage(); err != nil {
		log.Fatal("failed to initialize object storage:", err)
	}
	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	rewardService := services.NewRewardService(db)
	streakService := services.NewStreakService(db, rewardService)
	quizService := services.NewQuizService(db, rewardService)
	eventService := services.NewEventService(db, rewardService)
	observationService := services.NewObservationService(db, rewardService)
	lessonService := services.NewLessonService(db, rewardService)

	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	serviceToken := os.Getenv("SERVICE_TOKEN")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if syncServiceURL != "" {
		syncWorker := workers.NewProfileSyncWorker(db, rewardService, syncServiceURL, "/api/v1/public/profiles", serviceToken)
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  SYNC_SERVICE_URL not set — profile sync worker disabled")
	}

	eventService.StartActivationScheduler()
	rewardService.StartFreezeGrantScheduler()

	handlers.SetupProgressionRoutes(app, rewardService, streakService)
	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupQuizRoutes(app, quizService)
	handlers.SetupObservationRoutes(app, observationService)
	handlers.SetupLessonRoutes(app, lessonService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Event activation scheduler running (every 1m)")
	log.Println("✅ Weekly streak-freeze grant scheduled")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
