package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/dentalops/dentalops/internal/config"
	"github.com/dentalops/dentalops/internal/domain/catalog"
	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/internal/domain/ledger"
	"github.com/dentalops/dentalops/internal/domain/prescription"
	"github.com/dentalops/dentalops/internal/domain/scheduling"
	"github.com/dentalops/dentalops/internal/domain/search"
	"github.com/dentalops/dentalops/internal/platform/auth"
	"github.com/dentalops/dentalops/internal/platform/db"
	"github.com/dentalops/dentalops/internal/platform/middleware"
	"github.com/dentalops/dentalops/internal/platform/reporting"
	"github.com/dentalops/dentalops/internal/platform/telemetry"
)

const version = "0.1.0"

func authMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	jwtCfg := auth.JWTConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
		Skipper:  auth.AuthSkipper,
	}
	if cfg.AuthSigningKey != "" {
		jwtCfg.SigningKey = []byte(cfg.AuthSigningKey)
	}
	if cfg.IsDev() {
		return auth.DevAuthMiddleware(jwtCfg)
	}
	return auth.JWTMiddleware(jwtCfg)
}

// newEcho builds the HTTP server with global middleware, health routes and
// every API route under /api/v1.
func newEcho(a *app, limiter middleware.Limiter) *echo.Echo {
	cfg, logger := a.cfg, a.logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(telemetry.Middleware("dentalops-server"))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(authMiddleware(cfg))
	e.Use(middleware.Logger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(a.pool))

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(limiter, logger))
	apiV1.Use(middleware.RequestTimeout(30 * time.Second))

	identity.NewHandler(a.identity).RegisterRoutes(apiV1)
	catalog.NewHandler(a.catalog).RegisterRoutes(apiV1)
	scheduling.NewHandler(a.scheduling).RegisterRoutes(apiV1)
	ledger.NewHandler(a.ledger).RegisterRoutes(apiV1)
	prescription.NewHandler(a.prescription).RegisterRoutes(apiV1)
	search.NewHandler(a.search).RegisterRoutes(apiV1)
	reporting.NewHandler(a.reporting).RegisterRoutes(apiV1)

	return e
}

func runServer(cfg *config.Config) error {
	logger := newLogger(cfg.Env)
	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:        cfg.OTelEnabled,
		ServiceVersion: version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SampleRatio:    cfg.OTelSamplingRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info().Str("policy", cfg.StatusPolicy).Str("timezone", cfg.PracticeTimezone).Msg("connected to database")

	limiter, closeLimiter, err := newLimiter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	e := newEcho(a, limiter)

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
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
