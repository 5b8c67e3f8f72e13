package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"calllog/internal/calllog"
	"calllog/internal/config"
	"calllog/pkg/circuitbreaker"
)

// BreakerSource stops opening a failing source for a while. A rejected Open
// reports the source as unavailable.
type BreakerSource struct {
	source  calllog.Source
	breaker *circuitbreaker.Wrapper
}

func NewBreakerSource(source calllog.Source, cfg config.CircuitBreakerConfig) *BreakerSource {
	cbConfig := circuitbreaker.DefaultConfig("calllog-source-" + source.Name())
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 {
		cbConfig.FailureRatio = cfg.FailureRatio
	}
	if cfg.MinRequests > 0 {
		cbConfig.MinRequests = cfg.MinRequests
	}

	return &BreakerSource{
		source:  source,
		breaker: circuitbreaker.NewWrapper(cbConfig),
	}
}

func (s *BreakerSource) Name() string {
	return s.source.Name()
}

func (s *BreakerSource) Open(ctx context.Context) (calllog.Stream, error) {
	result, err := s.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		stream, err := s.source.Open(ctx)
		if err != nil {
			return nil, err
		}
		return stream, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", calllog.ErrSourceUnavailable, err)
		}
		return nil, err
	}

	stream, _ := result.(calllog.Stream)
	return stream, nil
}

func (s *BreakerSource) State() gobreaker.State {
	return s.breaker.State()
}
