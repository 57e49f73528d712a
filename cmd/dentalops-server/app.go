package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dentalops/dentalops/internal/config"
	"github.com/dentalops/dentalops/internal/domain/catalog"
	"github.com/dentalops/dentalops/internal/domain/identity"
	"github.com/dentalops/dentalops/internal/domain/ledger"
	"github.com/dentalops/dentalops/internal/domain/prescription"
	"github.com/dentalops/dentalops/internal/domain/scheduling"
	"github.com/dentalops/dentalops/internal/domain/search"
	"github.com/dentalops/dentalops/internal/platform/db"
	"github.com/dentalops/dentalops/internal/platform/events"
	"github.com/dentalops/dentalops/internal/platform/middleware"
	"github.com/dentalops/dentalops/internal/platform/reporting"
)

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func newPublisher(brokers string, logger zerolog.Logger) events.Publisher {
	list := events.SplitBrokers(brokers)
	if len(list) == 0 {
		return events.NopPublisher{}
	}
	logger.Info().Strs("brokers", list).Msg("publishing events to kafka")
	return events.NewKafkaPublisher(events.NewKafkaWriter(list), "dentalops", logger)
}

// newLimiter shares rate limit windows across instances through Redis when
// REDIS_URL is set. Without it each process limits on its own.
func newLimiter(cfg *config.Config, logger zerolog.Logger) (middleware.Limiter, func() error, error) {
	rl := middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, BurstSize: cfg.RateLimitBurst}
	if rl.RequestsPerSecond <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	if cfg.RedisURL == "" {
		return middleware.NewMemoryLimiter(rl), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	logger.Info().Str("addr", opts.Addr).Msg("using redis rate limiter")
	return middleware.NewRedisLimiter(rdb, rl.BurstSize, time.Second, "dentalops:rl"), rdb.Close, nil
}

// app holds the services shared by the server and the CLI commands.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	pool      *pgxpool.Pool
	publisher events.Publisher

	identity     *identity.Service
	catalog      *catalog.Service
	scheduling   *scheduling.Service
	ledger       *ledger.Service
	prescription *prescription.Service
	search       *search.Service
	reporting    *reporting.Composer
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	policy, err := scheduling.ParsePolicy(cfg.StatusPolicy)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, pool: pool, publisher: newPublisher(cfg.KafkaBrokers, logger)}

	a.identity = identity.NewService(identity.NewPatientRepoPG(pool), identity.NewStaffRepoPG(pool))
	a.catalog = catalog.NewService(catalog.NewTreatmentRepoPG(pool))
	refs := db.PoolRefChecker{Pool: pool}
	a.scheduling = scheduling.NewService(
		scheduling.NewEngine(policy, loc),
		scheduling.NewAppointmentRepoPG(pool),
		refs,
		a.publisher,
		logger,
	)
	a.ledger = ledger.NewService(ledger.NewEntryRepoPG(pool), refs, a.publisher, logger)
	a.prescription = prescription.NewService(
		prescription.NewPrescriptionRepoPG(pool),
		refs,
		db.PoolTransactor{Pool: pool},
		a.publisher,
		logger,
	)
	a.search = search.NewService(a.identity, a.scheduling, a.catalog, a.identity, search.Index{Location: loc})
	a.reporting = reporting.NewComposer(a.ledger, a.scheduling, loc)
	return a, nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close event publisher")
	}
	a.pool.Close()
}
