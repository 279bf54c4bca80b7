package app

import (
	"context"
	"errors"
	"fmt"

	"catalogbench/internal/config"
	"catalogbench/internal/database"
	"catalogbench/internal/generator"
	"catalogbench/internal/handlers"
	"catalogbench/internal/logging"
	"catalogbench/internal/metrics"
	"catalogbench/internal/repositories"
	"catalogbench/internal/services"
	"catalogbench/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// App holds every long lived component of the benchmark.
type App struct {
	Config      config.Config
	DB          *gorm.DB
	Repo        *repositories.GORMProductRepository
	Registry    *prometheus.Registry
	Seeder      *services.SeedService
	Coordinator *services.SearchCoordinator

	mq *rabbitmq.Client
}

// LoadConfig reads and validates the configuration held by v and
// initializes logging from it.
func LoadConfig(v *viper.Viper) (config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}
	logging.Init(cfg.Development(), cfg.LogLevel)
	return cfg, nil
}

// New opens the catalog, loads any persisted records into the search index
// and wires the services. The RabbitMQ publisher is only connected when
// RABBITMQ_URL is set.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}

	repo := repositories.NewGORMProductRepository(db)
	if err := repo.Load(ctx); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	a := &App{
		Config:   cfg,
		DB:       db,
		Repo:     repo,
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheus(a.Registry)

	if cfg.RabbitMQURL != "" {
		a.mq, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
	}

	a.Seeder = services.NewSeedService(repo, generator.New(nil), services.SeedOptions{
		Total:     cfg.SeedTotal,
		BatchSize: cfg.SeedBatchSize,
	}, recorder, a.publisher())
	a.Coordinator = services.NewSearchCoordinator(repo, services.CoordinatorOptions{
		Debounce: cfg.SearchDebounce,
		Limit:    cfg.SearchLimit,
	}, recorder, a.publisher())

	logging.Info(ctx).
		Str("driver", cfg.DatabaseDriver).
		Str("catalog", cfg.CatalogPath()).
		Bool("rabbitmq", a.mq != nil).
		Msg("application initialized")
	return a, nil
}

// publisher returns an untyped nil when no broker is configured so that the
// services' nil checks hold.
func (a *App) publisher() services.EventPublisher {
	if a.mq == nil {
		return nil
	}
	return a.mq
}

// Seed runs the seeding controller to completion, logging every progress
// step and the memory footprint before and after.
func (a *App) Seed(ctx context.Context) error {
	logging.LogMemoryUsage(ctx, "before seeding")
	err := a.Seeder.Seed(ctx, func(p int) {
		logging.Info(ctx).Int("progress", p).Msg("seeding progress")
	})
	logging.LogMemoryUsage(ctx, "after seeding")
	return err
}

// HTTP builds the Fiber application with all routes registered.
func (a *App) HTTP() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: !a.Config.Development()})
	app.Use(logger.New())

	handlers.RegisterSystemRoutes(app, a.Registry, a.mq != nil)
	handlers.NewCatalogHandler(a.Seeder, a.Coordinator).RegisterRoutes(app.Group("/api/v1"))
	return app
}

// Serve starts the search coordinator, seeds the catalog in the background
// and serves HTTP until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	coordinatorDone := make(chan struct{})
	go func() {
		a.Coordinator.Run(ctx)
		close(coordinatorDone)
	}()

	go func() {
		if err := a.Seed(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error(ctx).Err(err).Msg("seeding failed")
		}
	}()

	app := a.HTTP()
	listenErr := make(chan error, 1)
	go func() {
		logging.Info(ctx).Str("port", a.Config.AppPort).Msg("starting server")
		listenErr <- app.Listen(a.Config.AppPort)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-listenErr:
		if err != nil {
			err = fmt.Errorf("server failed: %w", err)
		}
	}

	logging.Info(ctx).Msg("shutting down server")
	if shutdownErr := app.Shutdown(); shutdownErr != nil {
		logging.Error(ctx).Err(shutdownErr).Msg("error during Fiber shutdown")
	}
	cancel()
	<-coordinatorDone
	return err
}

// Close releases the broker connection and the database.
func (a *App) Close() error {
	var errs []error
	if a.mq != nil {
		errs = append(errs, a.mq.Close())
	}
	errs = append(errs, database.Close(a.DB))
	return errors.Join(errs...)
}
