package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"logsight/internal/config"
	"logsight/internal/handlers"
	"logsight/internal/models"
	"logsight/internal/repository"
	"logsight/internal/services"
	"logsight/internal/ws"
	"logsight/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Setup Logger
	var handler slog.Handler
	if cfg.AppEnv == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 3. Initialize Database
	db, err := repository.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// 4. Initialize Redis
	rdb, err := repository.InitRedis(cfg.RedisURL, cfg.RedisPassword, 0)
	if err != nil {
		logger.Warn("Failed to connect to Redis, caching disabled", "error", err)
		rdb = nil
	}

	// 5. Run Migrations
	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		logger.Info("Running database migrations...")
		if err := repository.RunMigrations(cfg.DatabaseURL, ""); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	} else {
		// sqlite is for local runs and tests; let GORM build the schema.
		if err := db.AutoMigrate(
			&models.ApplicationLog{},
			&models.SerilogEntry{},
			&models.AuditLog{},
			&models.AuditLogAction{},
			&models.ApiClient{},
		); err != nil {
			return fmt.Errorf("auto migration failed: %w", err)
		}
	}

	// 6. Initialize Repositories & Services
	appLogRepo := repository.NewApplicationLogRepository(db)
	serilogRepo := repository.NewSerilogEntryRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	hub := ws.NewHub(logger)
	settingsService := services.NewSettingsService(rdb, logger, cfg)
	dashboardService := services.NewDashboardService(auditRepo, rdb, logger, settingsService.CacheTTL)
	serilogService := services.NewSerilogAnalyticsService(serilogRepo, appLogRepo, rdb, logger, settingsService.CacheTTL)
	exportService := services.NewExportService()
	healthService := services.NewHealthService(db, rdb)
	auditService := services.NewAuditService(auditRepo, logger)
	requestLogService := services.NewRequestLogService(appLogRepo, logger)
	geoIPService := services.NewGeoIPService(cfg, logger)
	cleanupService := services.NewCleanupService(appLogRepo, auditRepo, settingsService, logger, hub, cfg.CleanupSchedule)
	rateLimiter := services.NewIPRateLimiter(5, 10, logger)

	if cfg.AppEnv == "local" {
		if err := services.SeedSampleLogs(appLogRepo, logger, 500); err != nil {
			logger.Warn("Sample log seeding failed", "error", err)
		}
		seedAdminClient(db, cfg, logger)
	}

	// 7. Initialize Handler
	h := handlers.NewHandler(cfg, logger, db, rdb,
		dashboardService, serilogService, exportService, settingsService, healthService,
		auditService, requestLogService, geoIPService, hub,
		appLogRepo, serilogRepo, auditRepo,
	)

	// 8. Setup Router
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := h.SetupRouter(rateLimiter)

	// 9. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Background Context for workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Start Background Workers
	go hub.Run(workerCtx)
	go auditService.Start(workerCtx)
	go requestLogService.Start(workerCtx)
	go geoIPService.Init()
	if err := cleanupService.Start(workerCtx); err != nil {
		logger.Warn("Cleanup scheduler not started", "error", err)
	}
	rateLimiter.StartCleanup(10 * time.Minute)

	// Periodic dashboard refresh ping for hub clients
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hub.Notify("dashboard-updated")
			case <-workerCtx.Done():
				return
			}
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	workerCancel()
	// Wait a tiny bit for workers
	time.Sleep(100 * time.Millisecond)

	logger.Info("Server exiting")
	return nil
}

// seedAdminClient makes sure a local environment has at least one credential
// to call the API with.
func seedAdminClient(db *gorm.DB, cfg config.Config, logger *slog.Logger) {
	var count int64
	db.Model(&models.ApiClient{}).Count(&count)
	if count > 0 {
		return
	}

	key := cfg.SeedAdminKey
	if key == "" {
		key = utils.GenerateAPIKey()
	}
	client := models.ApiClient{Name: "admin", APIKey: key, Permissions: "*"}
	if err := db.Create(&client).Error; err != nil {
		logger.Warn("Failed to seed admin client", "error", err)
		return
	}
	logger.Info("Seeded admin API client", "api_key", key)
}
