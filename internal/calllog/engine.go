package calllog

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"calllog/pkg/cel"
)

// StopReason explains why a pass stopped consuming the stream.
type StopReason string

const (
	StopEndOfStream StopReason = "end_of_stream"
	StopLimit       StopReason = "limit"
	StopLowerBound  StopReason = "lower_bound"
)

type RunStats struct {
	Scanned    int
	Accepted   int
	StopReason StopReason
}

// Engine runs a single forward pass over a newest-first stream, keeping the
// calls that pass the filter. It holds no per-query state and is safe for
// concurrent use.
type Engine struct {
	formatter *DateFormatter
}

func NewEngine(formatter *DateFormatter) *Engine {
	return &Engine{formatter: formatter}
}

// Run consumes stream until limit calls have been accepted, the filter's lower
// bound is reached, or the stream ends. A negative limit is unbounded. The
// stream is not closed; the caller owns it.
func (e *Engine) Run(ctx context.Context, stream Stream, filter *Filter, limit int) ([]OutputRecord, RunStats, error) {
	if filter == nil {
		filter = &Filter{}
	}

	records := make([]OutputRecord, 0)
	var stats RunStats
	lowerBoundReached := false

	for {
		if limit >= 0 && stats.Accepted >= limit {
			stats.StopReason = StopLimit
			break
		}
		if lowerBoundReached {
			stats.StopReason = StopLowerBound
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		if !stream.Next(ctx) {
			if err := stream.Err(); err != nil {
				return nil, stats, fmt.Errorf("failed to read call log: %w", err)
			}
			stats.StopReason = StopEndOfStream
			break
		}

		raw := stream.Record()
		stats.Scanned++

		date := raw.Date()
		lowerBoundReached = filter.reachesLowerBound(date)

		callType := ResolveCallType(raw.TypeCode())
		if !filter.matchesNumber(raw.Number()) ||
			!filter.matchesType(callType) ||
			!filter.matchesMin(date) ||
			!filter.matchesMax(date) {
			continue
		}

		record := e.project(raw, callType, date)

		if filter.hasExpression() {
			ok, err := filter.matchesExpression(ctx, celCall(raw, callType, date, record))
			if err != nil || !ok {
				continue
			}
		}

		records = append(records, record)
		stats.Accepted++
	}

	return records, stats, nil
}

func (e *Engine) project(raw RawCallRecord, callType CallType, date int64) OutputRecord {
	record := make(OutputRecord, len(raw)+3)
	for column, value := range raw {
		record[column] = cast.ToString(value)
	}
	record[FieldPhoneNumber] = raw.Number()
	record[FieldDateTime] = e.formatter.Format(date)
	record[FieldNormalizedType] = string(callType)
	return record
}

func celCall(raw RawCallRecord, callType CallType, date int64, record OutputRecord) cel.Call {
	return cel.Call{
		Number:   raw.Number(),
		Type:     string(callType),
		RawType:  int64(raw.TypeCode()),
		Date:     date,
		Duration: raw.Duration(),
		Name:     raw.CachedName(),
		Record:   record,
	}
}
