package source

import (
	"fmt"

	"calllog/internal/calllog"
	"calllog/internal/config"
	"calllog/pkg/bootstrap"
)

// New builds the configured source on top of already opened connections.
func New(cfg *config.Config, conns *bootstrap.Connections) (calllog.Source, error) {
	if conns == nil {
		conns = &bootstrap.Connections{}
	}

	var src calllog.Source
	switch cfg.Source.Type {
	case config.SourcePostgres:
		src = NewPostgresSource(conns.Postgres, cfg.Source.Table)
	case config.SourceMongoDB:
		if conns.Mongo == nil {
			return nil, fmt.Errorf("mongodb source requires a MongoDB connection")
		}
		collection := conns.Mongo.Database(cfg.Database.MongoDB.Database).Collection(cfg.Source.Collection)
		src = NewMongoSource(collection, cfg.Source.PageSize)
	case config.SourceRedis:
		src = NewRedisSource(conns.Redis, cfg.Source.KeyPrefix, cfg.Source.PageSize)
	case config.SourceFile:
		fileSource, err := LoadFile(cfg.Source.File)
		if err != nil {
			return nil, err
		}
		src = fileSource
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Source.Type)
	}

	if cfg.CircuitBreaker.Enabled {
		src = NewBreakerSource(src, cfg.CircuitBreaker)
	}
	return src, nil
}
