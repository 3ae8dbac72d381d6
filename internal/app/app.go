package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eshoply/catalog-service/internal/auth"
	"github.com/eshoply/catalog-service/internal/config"
	"github.com/eshoply/catalog-service/internal/event"
	handler "github.com/eshoply/catalog-service/internal/handler/http"
	"github.com/eshoply/catalog-service/internal/repository/postgres"
	"github.com/eshoply/catalog-service/internal/service"
	"github.com/eshoply/catalog-service/migrations"
	"github.com/eshoply/catalog-service/pkg/database"
	"github.com/eshoply/catalog-service/pkg/health"
	"github.com/eshoply/catalog-service/pkg/kafka"
	"github.com/eshoply/catalog-service/pkg/tracing"
)

const serviceName = "catalog-service"

// App wires together all catalog service components and owns their lifecycle.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	producer *kafka.Producer
	server   *http.Server

	shutdownTracing func(context.Context) error
}

// New builds the application: database pool, migrations, Kafka producer,
// repositories, services, and the HTTP server. Callers must invoke Shutdown
// when done, including after a failed Run.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampling,
		Enabled:        cfg.TraceEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	if err := prometheus.Register(database.NewPoolStatsCollector(pool, serviceName)); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			pool.Close()
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
	}

	var producer *kafka.Producer
	var publisher service.EventPublisher
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewPublisher(producer, logger)
	}

	productRepo := postgres.NewProductRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)

	catalogSvc := service.NewCatalogService(productRepo, publisher, cfg.PageSize, logger)
	reviewSvc := service.NewReviewService(reviewRepo, productRepo, publisher, cfg.PageSize, logger)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, serviceName)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Products:      handler.NewProductHandler(catalogSvc, logger),
		Reviews:       handler.NewReviewHandler(reviewSvc, logger),
		Health:        healthHandler,
		TokenValidate: jwtManager.ValidateAccessToken,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		producer:        producer,
		server:          server,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening",
			slog.String("addr", a.server.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Shutdown gracefully stops the server and releases all resources.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}

	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}

	a.pool.Close()

	a.logger.Info("catalog service stopped")

	return errors.Join(errs...)
}
