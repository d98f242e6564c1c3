package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carelink/carelink/internal/config"
	"github.com/carelink/carelink/internal/domain/alert"
	"github.com/carelink/carelink/internal/domain/appointment"
	"github.com/carelink/carelink/internal/domain/audit"
	"github.com/carelink/carelink/internal/domain/cancellation"
	"github.com/carelink/carelink/internal/domain/chat"
	"github.com/carelink/carelink/internal/domain/vitals"
	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/internal/platform/db"
	"github.com/carelink/carelink/internal/platform/middleware"
	"github.com/carelink/carelink/internal/platform/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carelink-server",
		Short: "CareLink coordination API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}

			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	// API group with rate limiting
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Live session registry
	registry := ws.NewRegistry(logger)
	wsHandler := ws.NewHandler(registry, cfg.CORSOrigins)
	wsHandler.RegisterRoutes(apiV1)

	// Repositories
	appointmentRepo := appointment.NewRepoPG(pool)
	alertRepo := alert.NewRepoPG(pool)
	chatRepo := chat.NewRepoPG(pool)
	cancellationRepo := cancellation.NewRepoPG(pool)
	auditRepo := audit.NewRepoPG(pool)

	// Services
	auditSvc := audit.NewService(auditRepo, logger)
	appointmentSvc := appointment.NewService(appointmentRepo)
	alertSvc := alert.NewService(alertRepo, registry, appointmentSvc, logger, cfg.SuppressionWindow(), cfg.AlertTTL())
	vitalsSvc := vitals.NewService(alertSvc, appointmentSvc, logger)
	chatSvc := chat.NewService(chatRepo, appointmentSvc, alertSvc, registry, logger)
	refundPolicy := cancellation.TieredRefundPolicy(
		time.Duration(cfg.RefundFullHours)*time.Hour,
		time.Duration(cfg.RefundPartialHours)*time.Hour,
		cfg.RefundPartialPct,
	)
	cancellationSvc := cancellation.NewService(cancellationRepo, appointmentSvc, refundPolicy, auditSvc, logger)

	// Handlers
	appointment.NewHandler(appointmentSvc).RegisterRoutes(apiV1)
	alert.NewHandler(alertSvc).RegisterRoutes(apiV1)
	vitals.NewHandler(vitalsSvc).RegisterRoutes(apiV1)
	chat.NewHandler(chatSvc).RegisterRoutes(apiV1)
	cancellation.NewHandler(cancellationSvc).RegisterRoutes(apiV1)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Optional background sweep; expiry stays lazy at read time either way.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if interval := cfg.SweepInterval(); interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					if _, err := alertSvc.Sweep(sweepCtx); err != nil {
						logger.Error().Err(err).Msg("alert sweep failed")
					}
				}
			}
		}()
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
