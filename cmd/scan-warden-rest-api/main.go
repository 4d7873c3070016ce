// cmd/scan-warden-rest-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/MGTheTrain/scan-warden/internal/api/rest/v1"
	"github.com/MGTheTrain/scan-warden/internal/app"
	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/connector"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/export"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/persistence"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/scanner"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/scheduler"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/throttle"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"github.com/gin-contrib/cors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// version is stamped into SARIF reports, overridden with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../../configs/rest-app.yaml"
	}

	restConfig, err := config.InitializeRestConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	// Initialize logger
	if err := logger.InitLogger(&restConfig.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log, err := logger.GetLogger()
	if err != nil {
		return fmt.Errorf("failed to get logger: %w", err)
	}

	// The plan overrides SLA windows and probe inputs before anything is built from them
	var plan *app.Plan
	if restConfig.PlanPath != "" {
		plan, err = app.LoadPlan(restConfig.PlanPath)
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}
		plan.ApplyTo(restConfig)
	}

	ctx := context.Background()

	// Initialize application dependencies
	deps, err := initializeDependencies(ctx, restConfig, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.close(log)

	if err := deps.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	if plan != nil {
		if err := app.SyncPlan(ctx, plan, deps.services.schedule, deps.registry, deps.policy, log); err != nil {
			return fmt.Errorf("failed to sync plan: %w", err)
		}
	}

	// Setup and start server with graceful shutdown
	return startServerWithGracefulShutdown(restConfig, deps, log)
}

// appDependencies holds all initialized application components
type appDependencies struct {
	db            *gorm.DB
	registry      *scanner.Registry
	policy        *sla.Policy
	scheduler     *scheduler.CronScheduler
	closeThrottle func() error
	services      *appServices
}

type appServices struct {
	scan     scans.ScanService
	schedule scans.ScheduleService
	finding  findings.FindingService
	report   reports.ReportService
}

func (d *appDependencies) close(log logger.Logger) {
	if err := d.closeThrottle(); err != nil {
		log.Warn("Failed to close throttle: ", err)
	}
	if err := persistence.CloseDB(d.db); err != nil {
		log.Warn("Failed to close database: ", err)
	}
}

// initializeDependencies sets up all application components
func initializeDependencies(ctx context.Context, cfg *config.RestConfig, log logger.Logger) (*appDependencies, error) {
	// Initialize database
	db, err := persistence.NewDBConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create db connection: %w", err)
	}

	// Run migrations
	if err := persistence.Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database migrations completed successfully")

	// Initialize repositories
	findingRepo, err := persistence.NewGormFindingRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create finding repository: %w", err)
	}

	scanRepo, err := persistence.NewGormScanRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan repository: %w", err)
	}

	scheduleRepo, err := persistence.NewGormScheduleRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule repository: %w", err)
	}

	reportRepo, err := persistence.NewGormReportRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create report repository: %w", err)
	}

	// Initialize connectors, signer and throttle
	reportConnector, err := connector.NewReportConnector(ctx, &cfg.ReportConnector, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report connector: %w", err)
	}

	signer, err := cryptography.LoadOrGenerateSigner(&cfg.Signing, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report signer: %w", err)
	}

	scanThrottle, closeThrottle, err := throttle.NewThrottle(ctx, &cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize throttle: %w", err)
	}

	registry := scanner.NewDefaultRegistry(cfg.Scanners, scanner.NewExecRunner(), log)
	policy := app.PolicyFromSettings(cfg.SLA)

	// Initialize services
	ingestService, err := app.NewIngestService(findingRepo, policy, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest service: %w", err)
	}

	scanService, err := app.NewScanService(registry, scanRepo, ingestService, scanThrottle, cfg.Scanners.Workers, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan service: %w", err)
	}

	findingService, err := app.NewFindingService(findingRepo, policy, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create finding service: %w", err)
	}

	reportService, err := app.NewReportService(
		findingRepo, reportRepo, reportConnector,
		export.NewRenderer(version), signer, policy, log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report service: %w", err)
	}

	cronScheduler := scheduler.NewCronScheduler(scanService, reportService, scheduleRepo, log)

	scheduleService, err := app.NewScheduleService(scheduleRepo, registry, cronScheduler, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule service: %w", err)
	}

	log.Info("Application services initialized with tools ", registry.Names())
	return &appDependencies{
		db:            db,
		registry:      registry,
		policy:        policy,
		scheduler:     cronScheduler,
		closeThrottle: closeThrottle,
		services: &appServices{
			scan:     scanService,
			schedule: scheduleService,
			finding:  findingService,
			report:   reportService,
		},
	}, nil
}

// startServerWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func startServerWithGracefulShutdown(cfg *config.RestConfig, deps *appDependencies, log logger.Logger) error {
	// Setup router
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup API routes
	v1.SetupRoutes(r,
		deps.services.scan,
		deps.services.finding,
		deps.services.report,
		deps.services.schedule,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attack
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting server on port ", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		return err
	case sig := <-quit:
		log.Info("Received signal ", sig, ", initiating graceful shutdown")
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// No new schedules fire once the scheduler stopped; running scans finish before the DB closes
	if err := deps.scheduler.Stop(ctx); err != nil {
		log.Warn("Scheduler did not stop in time: ", err)
	}
	log.Info("Waiting for running scans...")
	deps.services.scan.Wait()

	log.Info("Server stopped gracefully")
	return nil
}
