package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calllog/internal/config"
	"calllog/internal/logger"
)

func TestBase_InitBrokerDisabled(t *testing.T) {
	base := NewBase(&config.Config{}, logger.NopLogger())

	require.NoError(t, base.InitBroker("calllog-service"))
	assert.False(t, base.BrokerEnabled())
	assert.Nil(t, base.Producer)
	assert.Nil(t, base.Consumer)
	assert.Empty(t, base.ShutdownBroker())
}

func TestBase_InitBrokerEnabled(t *testing.T) {
	cfg := &config.Config{Broker: config.BrokerConfig{
		Enabled: true,
		Kafka:   config.KafkaConfig{Brokers: []string{"localhost:9092"}, GroupID: "calllog"},
	}}
	base := NewBase(cfg, logger.NopLogger())

	require.NoError(t, base.InitBroker("calllog-service"))
	assert.NotNil(t, base.Producer)
	assert.NotNil(t, base.Consumer)
	assert.Empty(t, base.ShutdownBroker())
}

func TestBase_ShutdownCollectsErrors(t *testing.T) {
	base := NewBase(&config.Config{}, logger.NopLogger())

	err := base.Shutdown(context.Background(), func(context.Context) []error {
		return []error{errors.New("postgres close error")}
	})
	assert.ErrorContains(t, err, "postgres close error")

	assert.NoError(t, base.Shutdown(context.Background(), nil))
}
