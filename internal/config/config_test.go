package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 8081
  read_timeout_seconds: 10
  write_timeout_seconds: 10
source:
  type: file
  file: testdata/calls.json
calllog:
  locale: de-DE
  timezone: UTC
  default_limit: 50
broker:
  enabled: true
  kafka:
    brokers: ["localhost:9092"]
    group_id: calllog
    input_topic: calllog.queries
    output_topic: calllog.replies
    dlq_topic: calllog.queries.dlq
circuit_breaker:
  enabled: true
  failure_ratio: 0.5
  min_requests: 3
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, SourceFile, cfg.Source.Type)
	assert.Equal(t, "testdata/calls.json", cfg.Source.File)
	assert.Equal(t, 100, cfg.Source.PageSize, "default page size")
	assert.Equal(t, "de-DE", cfg.CallLog.Locale)
	assert.Equal(t, 50, cfg.CallLog.DefaultLimit)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Kafka.Brokers)
	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.Equal(t, uint32(3), cfg.CircuitBreaker.MinRequests)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SOURCE_TYPE", "FILE")
	t.Setenv("SOURCE_FILE", "/data/other.json")
	t.Setenv("BROKER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("CALLLOG_LOCALE", "ja-JP")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, SourceFile, cfg.Source.Type)
	assert.Equal(t, "/data/other.json", cfg.Source.File)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "ja-JP", cfg.CallLog.Locale)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 5},
		Source:  SourceConfig{Type: SourceFile, File: "calls.json"},
		CallLog: CallLogConfig{DefaultLimit: -1},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing source type", func(c *Config) { c.Source.Type = "" }, "source.type"},
		{"unknown source type", func(c *Config) { c.Source.Type = "sqlite" }, "source.type"},
		{"file without path", func(c *Config) { c.Source.File = "" }, "source.file"},
		{"postgres without host", func(c *Config) { c.Source = SourceConfig{Type: SourcePostgres, Table: "calls"} }, "database.postgres.host"},
		{"postgres bad table", func(c *Config) {
			c.Source = SourceConfig{Type: SourcePostgres, Table: "calls; drop table calls"}
			c.Database.Postgres = PostgresConfig{Host: "db", Port: 5432, User: "u", DBName: "d"}
		}, "source.table"},
		{"mongo bad uri", func(c *Config) { c.Database.MongoDB = MongoDBConfig{URI: "http://x", Database: "d"} }, "database.mongodb.uri"},
		{"broker without topics", func(c *Config) {
			c.Broker = BrokerConfig{Enabled: true, Kafka: KafkaConfig{Brokers: []string{"k:9092"}, GroupID: "g"}}
		}, "broker.kafka.input_topic"},
		{"unknown timezone", func(c *Config) { c.CallLog.Timezone = "Nowhere/Special" }, "calllog.timezone"},
		{"negative query timeout", func(c *Config) { c.CallLog.QueryTimeoutSeconds = -1 }, "calllog.query_timeout_seconds"},
		{"bad failure ratio", func(c *Config) {
			c.CircuitBreaker = CircuitBreakerConfig{Enabled: true, FailureRatio: 1.5}
		}, "circuit_breaker.failure_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
