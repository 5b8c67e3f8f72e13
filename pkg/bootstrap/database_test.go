package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calllog/internal/config"
	"calllog/internal/logger"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host: "db", Port: 5432, User: "calllog", Password: "secret", DBName: "calls",
	})
	assert.Equal(t, "postgres://calllog:secret@db:5432/calls?sslmode=disable", dsn)

	dsn = PostgresDSN(config.PostgresConfig{Host: "db", Port: 5432, User: "u", DBName: "d", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
}

func TestConnect_FileSourceOpensNothing(t *testing.T) {
	cfg := &config.Config{Source: config.SourceConfig{Type: config.SourceFile}}
	dc := NewDatabaseConnector(cfg, logger.NopLogger())

	conns, err := dc.Connect(context.Background())
	require.NoError(t, err)
	assert.Nil(t, conns.Postgres)
	assert.Nil(t, conns.Redis)
	assert.Nil(t, conns.Mongo)
	assert.Empty(t, dc.ShutdownDatabases(context.Background(), conns))
}
