package calllog

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"calllog/internal/logger"
	"calllog/pkg/cel"
	"calllog/pkg/metrics"
	"calllog/pkg/models"
	"calllog/pkg/tracing"
)

const (
	tracerName = "calllog-service"

	statusResolved          = "resolved"
	statusRejected          = "rejected"
	statusSourceUnavailable = "source_unavailable"
	statusFailed            = "failed"
)

// Service answers call log queries. Every query opens its own stream, so a
// Service may be shared between goroutines.
type Service struct {
	source    Source
	engine    *Engine
	evaluator *cel.Evaluator
	logger    logger.Logger
}

func NewService(source Source, engine *Engine, log logger.Logger) (*Service, error) {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL evaluator: %w", err)
	}

	return &Service{
		source:    source,
		engine:    engine,
		evaluator: evaluator,
		logger:    log,
	}, nil
}

// LoadAll returns the whole call history, newest first.
func (s *Service) LoadAll(ctx context.Context) ([]OutputRecord, error) {
	return s.Load(ctx, -1)
}

// Load returns at most limit calls, newest first. A negative limit is unbounded.
func (s *Service) Load(ctx context.Context, limit int) ([]OutputRecord, error) {
	return s.LoadWithFilter(ctx, limit, nil)
}

// LoadWithFilter returns the calls accepted by spec, newest first. A malformed
// spec fails with *MalformedFilterError before the source is touched. A source
// that cannot be opened yields an empty result and no error.
func (s *Service) LoadWithFilter(ctx context.Context, limit int, spec *models.FilterSpec) ([]OutputRecord, error) {
	ctx, span := tracing.GetTracer(tracerName).Start(ctx, "calllog.load_with_filter")
	defer span.End()
	span.SetAttributes(attribute.Int("calllog.limit", limit))

	start := time.Now()

	filter, err := ParseFilter(spec, s.evaluator)
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.InfowCtx(ctx, "Rejected call log query",
			"error", err,
		)
		metrics.ObserveQuery(time.Since(start), statusRejected)
		return nil, err
	}

	stream, err := s.openSource(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			tracing.RecordError(span, ctxErr)
			metrics.ObserveQuery(time.Since(start), statusFailed)
			return nil, ctxErr
		}
		s.logger.WarnwCtx(ctx, "Call log source unavailable, returning empty result",
			"source", s.source.Name(),
			"error", err,
		)
		metrics.ObserveQuery(time.Since(start), statusSourceUnavailable)
		return []OutputRecord{}, nil
	}
	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			s.logger.WarnwCtx(ctx, "Failed to close call log stream",
				"source", s.source.Name(),
				"error", closeErr,
			)
		}
	}()

	records, stats, err := s.engine.Run(ctx, stream, filter, limit)
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.ErrorwCtx(ctx, "Call log query failed",
			"source", s.source.Name(),
			"scanned", stats.Scanned,
			"error", err,
		)
		metrics.ObserveQuery(time.Since(start), statusFailed)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("calllog.scanned", stats.Scanned),
		attribute.Int("calllog.accepted", stats.Accepted),
		attribute.String("calllog.stop_reason", string(stats.StopReason)),
	)
	s.logger.DebugwCtx(ctx, "Call log query resolved",
		"source", s.source.Name(),
		"scanned", stats.Scanned,
		"accepted", stats.Accepted,
		"stop_reason", stats.StopReason,
	)
	metrics.ObservePass(s.source.Name(), stats.Scanned, stats.Accepted, string(stats.StopReason))
	metrics.ObserveQuery(time.Since(start), statusResolved)

	return records, nil
}

func (s *Service) openSource(ctx context.Context) (Stream, error) {
	start := time.Now()
	stream, err := s.source.Open(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	} else if stream == nil {
		status = "error"
		err = ErrSourceUnavailable
	}
	metrics.ObserveSourceOpen(s.source.Name(), status, time.Since(start))
	return stream, err
}
