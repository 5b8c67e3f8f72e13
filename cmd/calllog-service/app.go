package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"calllog/internal/calllog"
	"calllog/internal/config"
	"calllog/internal/constants"
	"calllog/internal/logger"
	"calllog/internal/source"
	"calllog/pkg/bootstrap"
	"calllog/pkg/health"
	"calllog/pkg/logging"
	"calllog/pkg/metrics"
	"calllog/pkg/middleware"
	"calllog/pkg/migrations"
	"calllog/pkg/ratelimit"
	"calllog/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	conns          *bootstrap.Connections
	service        *calllog.Service
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initService(ctx); err != nil {
		return fmt.Errorf("failed to initialize call log service: %w", err)
	}

	if err := a.InitBroker(constants.ServiceName); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	metrics.RegisterCallLogMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	metrics.RegisterAPIMetrics()

	a.initRouter(ctx)
	a.initServer()
	return nil
}

func (a *App) initService(ctx context.Context) error {
	conns, err := a.dbConnector.Connect(ctx)
	if err != nil {
		return err
	}
	a.conns = conns

	if a.Config.Database.RunMigrations {
		if err := runMigrations(ctx, a.Config, conns); err != nil {
			return err
		}
		a.Logger.InfowCtx(ctx, "Migrations applied", "source", a.Config.Source.Type)
	}

	service, err := buildService(a.Config, conns, a.Logger)
	if err != nil {
		return err
	}
	a.service = service
	return nil
}

// buildService assembles the call log service on top of opened connections.
func buildService(cfg *config.Config, conns *bootstrap.Connections, log logger.Logger) (*calllog.Service, error) {
	src, err := source.New(cfg, conns)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	formatter, err := calllog.NewDateFormatter(cfg.CallLog.Locale, cfg.CallLog.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to create date formatter: %w", err)
	}

	return calllog.NewService(src, calllog.NewEngine(formatter), log)
}

func runMigrations(ctx context.Context, cfg *config.Config, conns *bootstrap.Connections) error {
	switch {
	case conns.Postgres != nil:
		if err := migrations.RunPostgres(conns.Postgres); err != nil {
			return fmt.Errorf("failed to run postgres migrations: %w", err)
		}
	case conns.Mongo != nil:
		collection := conns.Mongo.Database(cfg.Database.MongoDB.Database).Collection(cfg.Source.Collection)
		if err := migrations.EnsureMongoCallIndexes(ctx, collection); err != nil {
			return fmt.Errorf("failed to create mongodb indexes: %w", err)
		}
	}
	return nil
}

func (a *App) initRouter(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))

	if a.Config.API.RateLimit.Enabled {
		rateLimitConfig := ratelimit.FromConfig(a.Config.API.RateLimit)
		router.Use(ratelimit.RateLimitMiddleware(ctx, rateLimitConfig))
		a.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	calllog.NewHandler(a.service, a.Config.CallLog.DefaultLimit, a.Logger).
		WithQueryTimeout(time.Duration(a.Config.CallLog.QueryTimeoutSeconds) * time.Second).
		RegisterRoutes(router)

	router.GET("/health", health.Handler(a.healthRegistry()))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
}

// healthRegistry reports a missing call store as degraded, since queries
// still answer with an empty history. A broken broker is unhealthy.
func (a *App) healthRegistry() *health.CheckerRegistry {
	registry := health.NewCheckerRegistry()
	if a.conns.Postgres != nil {
		registry.RegisterNonCritical(health.NewPostgreSQLChecker(a.conns.Postgres))
	}
	if a.conns.Redis != nil {
		registry.RegisterNonCritical(health.NewRedisChecker(a.conns.Redis))
	}
	if a.conns.Mongo != nil {
		registry.RegisterNonCritical(health.NewMongoDBChecker(a.conns.Mongo))
	}
	if a.BrokerEnabled() {
		registry.Register(health.NewKafkaChecker(a.Config.Broker.Kafka.Brokers))
	}
	return registry
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.Consumer != nil {
		inputTopic := a.Config.Broker.Kafka.InputTopic
		queries := calllog.NewQueryConsumer(a.service, a.Producer, a.Config.Broker.Kafka.OutputTopic, a.Logger)

		g.Go(func() error {
			consumeCtx := logging.WithServiceName(gCtx, constants.ServiceName)
			a.Logger.InfowCtx(consumeCtx, "Starting query consumer", "topic", inputTopic)
			return a.Consumer.Consume(gCtx, inputTopic, queries.Handle)
		})
	}

	err := g.Wait()
	if shutdownErr := a.Shutdown(context.Background()); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, constants.ServiceName)

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.conns)...)
		return errs
	}

	return a.Base.Shutdown(shutdownCtx, additionalShutdown)
}
