package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"game-site-backend/config"
	"game-site-backend/handlers"
	"game-site-backend/services"
	"game-site-backend/store"
	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1024 * 1024, // 1MB, JSON bodies only
	})

	// Trim spaces from each configured origin
	origins := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // admin session cookie
		MaxAge:           86400,
	}))

	// R2 is only needed for admin CSV exports; without it the export
	// endpoint answers 503 and everything else works.
	if os.Getenv("R2_BUCKET_NAME") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set — CSV exports disabled")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	st := store.NewGormStore(db)
	if err := st.AutoMigrate(); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	rankingService := services.NewRankingService(st)
	leaderboardService := services.NewLeaderboardService(st)
	contactService := services.NewContactService(st)
	newsletterService := services.NewNewsletterService(st)
	scoreService := services.NewScoreService(st)
	eventService := services.NewEventService(st)
	exportService := services.NewExportService(st)
	authService := services.NewAuthService(services.AuthConfig{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL(),
	})
	if cfg.AdminEmail == "" || cfg.SessionSecret == "" {
		log.Println("⚠️  Admin identity/secret not configured — admin login will answer 503")
	}

	leaderboardService.StartRefreshScheduler(cfg.RefreshInterval())

	handlers.SetupSiteRoutes(app, rankingService, leaderboardService, contactService, newsletterService, scoreService, eventService)
	handlers.SetupAdminRoutes(app, authService, contactService, newsletterService, scoreService, leaderboardService, eventService, exportService)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", cfg.Addr)
	log.Printf("✅ Leaderboard refresh running (every %s)", cfg.RefreshInterval())
	log.Printf("✅ CORS configured for origins: %s", strings.Join(origins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
