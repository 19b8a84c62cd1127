package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/repository/postgresql"
	exceptionService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/malfunction"
	partService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/part"
	reportService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/report"
	robotService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/robot"
	statsService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/stats"
	warehouseService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/warehouse"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL()
	if cfg.App.AutoMigrate {
		if err := database.RunMigrations(dsn, cfg.App.MigrationsDir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Migrations applied", "dir", cfg.App.MigrationsDir)
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	var reportCache cache.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to configure redis: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			slog.Warn("Redis unavailable, report caching disabled", "error", err)
		} else {
			reportCache = redisCache
		}
	}

	resolver, err := shift.NewResolver(shift.Boundary{
		DayStartHour:   cfg.Shift.DayStartHour,
		NightStartHour: cfg.Shift.NightStartHour,
	}, clock.NewZones())
	if err != nil {
		return fmt.Errorf("failed to build shift resolver: %w", err)
	}

	accessExpiration, err := time.ParseDuration(cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("invalid access token expiration: %w", err)
	}

	clk := clock.System{}
	hub := sse.NewHub()
	m := metrics.NewDefault()

	warehouseRepo := postgresql.NewWarehouseRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	robotRepo := postgresql.NewRobotRepository(db)
	exceptionRepo := postgresql.NewExceptionRepository(db)
	partRepo := postgresql.NewPartRepository(db)
	scoreRepo := postgresql.NewScoreRepository(db)
	tx := postgresql.NewTransactor(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessExpiration)
	locator := warehouseService.NewScopeLocator(warehouseRepo, resolver, cfg.Shift.Timezone)

	exceptionSvc := exceptionService.NewExceptionService(exceptionRepo, robotRepo, scoreRepo, tx, locator, resolver, clk, hub, reportCache, cfg.Report.PageSize)
	robotSvc := robotService.NewRobotService(robotRepo, tx, locator, resolver, clk, hub)
	partSvc := partService.NewPartService(partRepo, robotRepo, scoreRepo, tx, locator, resolver, clk, hub)
	reportSvc := reportService.NewReportService(
		exceptionRepo,
		robotRepo,
		employeeRepo,
		locator,
		resolver,
		clk,
		reportCache,
		m,
		cfg.Report.PageSize,
		cfg.Report.CacheTTL,
	)
	statsSvc := statsService.NewStatsService(
		exceptionRepo,
		robotRepo,
		partRepo,
		scoreRepo,
		employeeRepo,
		locator,
		resolver,
		clk,
		cfg.Report.PageSize,
	)

	scheduler := cron.NewScheduler(clk)
	if cfg.Cron.RollupInterval > 0 {
		shiftJobs := cron.NewShiftJobs(warehouseRepo, reportSvc, resolver, clk, hub, m)
		shiftJobs.RegisterJobs(scheduler, cfg.Cron.RollupInterval)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:         cfg.App.Env,
			Version:     version,
			FrontendURL: cfg.App.FrontendURL,
			LogLevel:    cfg.SlogLevel(),
		},
		JWTService,
		m,
		appHTTP.Handlers{
			Exception: appHTTP.NewExceptionHandler(exceptionSvc),
			Robot:     appHTTP.NewRobotHandler(robotSvc),
			Part:      appHTTP.NewPartHandler(partSvc),
			Report:    appHTTP.NewReportHandler(reportSvc),
			Stats:     appHTTP.NewStatsHandler(statsSvc),
			Stream:    appHTTP.NewStreamHandler(JWTService, hub),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
