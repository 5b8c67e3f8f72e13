package broker

import (
	"fmt"

	"calllog/internal/config"
	"calllog/internal/logger"
)

func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("broker is disabled")
	}
	return NewKafkaProducer(cfg.Kafka, log), nil
}

func NewConsumer(cfg config.BrokerConfig, log logger.Logger) (Consumer, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("broker is disabled")
	}
	return NewKafkaConsumer(cfg.Kafka, log), nil
}
