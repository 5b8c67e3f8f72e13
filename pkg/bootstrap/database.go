package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"calllog/internal/config"
	"calllog/internal/logger"
	"calllog/pkg/retry"
)

// DatabaseConnector opens the backing store of the configured call log source,
// waiting for it with exponential backoff.
type DatabaseConnector struct {
	Config *config.Config
	Logger logger.Logger
	Policy retry.Policy
}

func NewDatabaseConnector(cfg *config.Config, log logger.Logger) *DatabaseConnector {
	return &DatabaseConnector{
		Config: cfg,
		Logger: log,
		Policy: retry.StartupPolicy(),
	}
}

func (dc *DatabaseConnector) onRetry(store string) func(int, error, time.Duration) {
	return func(attempt int, err error, next time.Duration) {
		dc.Logger.Warnw("Database not reachable yet, retrying",
			"store", store,
			"attempt", attempt,
			"next_delay", next.String(),
			"error", err,
		)
	}
}

func (dc *DatabaseConnector) InitRedis(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", dc.Config.Database.Redis.Host, dc.Config.Database.Redis.Port),
		Password: dc.Config.Database.Redis.Password,
		DB:       dc.Config.Database.Redis.DB,
	})

	err := retry.Retry(ctx, dc.Policy, func() error {
		return rdb.Ping(ctx).Err()
	}, dc.onRetry("redis"))
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	dc.Logger.Info("Redis connected successfully")
	return rdb, nil
}

func PostgresDSN(cfg config.PostgresConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		sslMode,
	)
}

func (dc *DatabaseConnector) InitPostgreSQL(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", PostgresDSN(dc.Config.Database.Postgres))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = retry.Retry(ctx, dc.Policy, func() error {
		return db.PingContext(ctx)
	}, dc.onRetry("postgres"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dc.Logger.Info("PostgreSQL connected successfully")
	return db, nil
}

func (dc *DatabaseConnector) InitMongoDB(ctx context.Context) (*mongo.Client, error) {
	mongoOpts := options.Client().ApplyURI(dc.Config.Database.MongoDB.URI)
	mongoClient, err := mongo.Connect(ctx, mongoOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	err = retry.Retry(ctx, dc.Policy, func() error {
		return mongoClient.Ping(ctx, nil)
	}, dc.onRetry("mongodb"))
	if err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dc.Logger.Info("MongoDB connected successfully")
	return mongoClient, nil
}

// Connections holds whichever stores were opened. Unused ones stay nil.
type Connections struct {
	Postgres *sql.DB
	Redis    *redis.Client
	Mongo    *mongo.Client
}

// Connect opens only the store backing the configured source type.
func (dc *DatabaseConnector) Connect(ctx context.Context) (*Connections, error) {
	conns := &Connections{}
	var err error

	switch dc.Config.Source.Type {
	case config.SourcePostgres:
		conns.Postgres, err = dc.InitPostgreSQL(ctx)
	case config.SourceRedis:
		conns.Redis, err = dc.InitRedis(ctx)
	case config.SourceMongoDB:
		conns.Mongo, err = dc.InitMongoDB(ctx)
	}
	if err != nil {
		return nil, err
	}

	return conns, nil
}

func (dc *DatabaseConnector) ShutdownDatabases(ctx context.Context, conns *Connections) []error {
	var errs []error
	if conns == nil {
		return errs
	}

	if conns.Redis != nil {
		if err := conns.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if conns.Postgres != nil {
		if err := conns.Postgres.Close(); err != nil {
			errs = append(errs, fmt.Errorf("postgres close error: %w", err))
		}
	}

	if conns.Mongo != nil {
		if err := conns.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect error: %w", err))
		}
	}

	return errs
}
