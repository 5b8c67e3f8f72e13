package calllog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calllog/pkg/cel"
	"calllog/pkg/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	formatter, err := NewDateFormatter("en-US", "UTC")
	require.NoError(t, err)
	return NewEngine(formatter)
}

func mustFilter(t *testing.T, spec *models.FilterSpec) *Filter {
	t.Helper()
	evaluator, err := cel.NewEvaluator()
	require.NoError(t, err)
	f, err := ParseFilter(spec, evaluator)
	require.NoError(t, err)
	return f
}

func fourCalls() *fakeStream {
	return newFakeStream(
		call(100, IncomingTypeCode, "111"),
		call(90, OutgoingTypeCode, "222"),
		call(80, MissedTypeCode, "111"),
		call(70, IncomingTypeCode, "333"),
	)
}

func TestEngine_NoFilterReturnsEverythingInOrder(t *testing.T) {
	stream := fourCalls()

	records, stats, err := newTestEngine(t).Run(context.Background(), stream, nil, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "90", "80", "70"}, dates(records))
	assert.Equal(t, RunStats{Scanned: 4, Accepted: 4, StopReason: StopEndOfStream}, stats)
}

func TestEngine_LimitStopsReading(t *testing.T) {
	stream := fourCalls()

	records, stats, err := newTestEngine(t).Run(context.Background(), stream, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "90"}, dates(records))
	assert.Equal(t, 2, stream.reads())
	assert.Equal(t, StopLimit, stats.StopReason)
}

func TestEngine_ZeroLimitReadsNothing(t *testing.T) {
	stream := fourCalls()

	records, stats, err := newTestEngine(t).Run(context.Background(), stream, nil, 0)
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.NotNil(t, records)
	assert.Equal(t, 0, stream.reads())
	assert.Equal(t, StopLimit, stats.StopReason)
}

func TestEngine_LimitCountsOnlyAcceptedCalls(t *testing.T) {
	stream := fourCalls()
	filter := mustFilter(t, &models.FilterSpec{PhoneNumbers: models.StringPtr(`["111"]`)})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "80"}, dates(records))
	assert.Equal(t, 3, stream.reads())
}

func TestEngine_LowerBoundStopsAfterFirstOlderCall(t *testing.T) {
	stream := fourCalls()
	filter := mustFilter(t, &models.FilterSpec{MinTimestamp: models.StringPtr("85")})

	records, stats, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "90"}, dates(records))
	assert.Equal(t, 3, stream.reads(), "the call at 80 is read and rejected, 70 is never read")
	assert.Equal(t, StopLowerBound, stats.StopReason)
}

func TestEngine_LowerBoundIsInclusive(t *testing.T) {
	stream := fourCalls()
	filter := mustFilter(t, &models.FilterSpec{MinTimestamp: models.StringPtr("90")})

	records, stats, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "90"}, dates(records))
	assert.Equal(t, 2, stream.reads())
	assert.Equal(t, StopLowerBound, stats.StopReason)
}

func TestEngine_UpperBoundSkipsNewerCalls(t *testing.T) {
	stream := fourCalls()
	filter := mustFilter(t, &models.FilterSpec{MaxTimestamp: models.StringPtr("90")})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"90", "80", "70"}, dates(records))
}

func TestEngine_WindowCombinesBothBounds(t *testing.T) {
	stream := fourCalls()
	filter := mustFilter(t, &models.FilterSpec{
		MinTimestamp: models.StringPtr("75"),
		MaxTimestamp: models.StringPtr("95"),
	})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"90", "80"}, dates(records))
}

func TestEngine_SentinelsDisableBounds(t *testing.T) {
	stream := newFakeStream(call(5, IncomingTypeCode, "1"), call(0, IncomingTypeCode, "1"), call(-5, IncomingTypeCode, "1"))
	filter := mustFilter(t, &models.FilterSpec{
		MinTimestamp: models.StringPtr(NoMinTimestamp),
		MaxTimestamp: models.StringPtr(NoMaxTimestamp),
	})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"5", "0", "-5"}, dates(records))
}

func TestEngine_TypeAndNumberFilters(t *testing.T) {
	stream := fourCalls()
	filter := mustFilter(t, &models.FilterSpec{
		Types:        models.StringPtr(`["INCOMING","MISSED"]`),
		PhoneNumbers: models.StringPtr(`["111","333"]`),
	})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "80", "70"}, dates(records))
}

func TestEngine_EmptyListsAcceptAll(t *testing.T) {
	stream := fourCalls()
	filter := mustFilter(t, &models.FilterSpec{
		Types:        models.StringPtr("[]"),
		PhoneNumbers: models.StringPtr("[]"),
	})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Len(t, records, 4)
}

func TestEngine_UnknownTypeCodeCanBeSelected(t *testing.T) {
	stream := newFakeStream(call(10, 42, "1"), call(9, IncomingTypeCode, "1"))
	filter := mustFilter(t, &models.FilterSpec{Types: models.StringPtr(`["UNKNOWN"]`)})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "UNKNOWN", records[0][FieldNormalizedType])
	assert.Equal(t, "42", records[0][ColumnType])
}

func TestEngine_ProjectsEveryColumnAsString(t *testing.T) {
	stream := newFakeStream(RawCallRecord{
		ColumnNumber:     "+15551234",
		ColumnType:       int64(MissedTypeCode),
		ColumnDate:       int64(0),
		ColumnDuration:   int64(42),
		ColumnCachedName: nil,
		"is_read":        true,
	})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, nil, -1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, OutputRecord{
		ColumnNumber:        "+15551234",
		ColumnType:          "3",
		ColumnDate:          "0",
		ColumnDuration:      "42",
		ColumnCachedName:    "",
		"is_read":           "true",
		FieldPhoneNumber:    "+15551234",
		FieldDateTime:       "Jan 1, 1970, 12:00:00 AM",
		FieldNormalizedType: "MISSED",
	}, records[0])
}

func TestEngine_DerivedFieldsOverrideColumns(t *testing.T) {
	stream := newFakeStream(RawCallRecord{
		ColumnNumber:        "1",
		ColumnType:          "1",
		ColumnDate:          "1000",
		FieldNormalizedType: "stale",
		FieldPhoneNumber:    "stale",
	})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, nil, -1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "INCOMING", records[0][FieldNormalizedType])
	assert.Equal(t, "1", records[0][FieldPhoneNumber])
}

func TestEngine_SameSnapshotSameResult(t *testing.T) {
	snapshot := []RawCallRecord{
		call(1700000600000, IncomingTypeCode, "+15550001"),
		call(1700000500000, MissedTypeCode, "+15550002"),
		call(1700000400000, OutgoingTypeCode, "+15550001"),
		call(1700000300000, MissedTypeCode, "+15550001"),
		call(1700000200000, IncomingTypeCode, "+15550003"),
		call(1700000100000, MissedTypeCode, "+15550002"),
		call(1700000000000, IncomingTypeCode, "+15550001"),
	}
	filter := mustFilter(t, &models.FilterSpec{
		MinTimestamp: models.StringPtr("1700000100000"),
		MaxTimestamp: models.StringPtr("1700000500000"),
		Types:        models.StringPtr(`["INCOMING","MISSED"]`),
		PhoneNumbers: models.StringPtr(`["+15550001","+15550002"]`),
	})
	engine := newTestEngine(t)

	first, firstStats, err := engine.Run(context.Background(), newFakeStream(snapshot...), filter, 2)
	require.NoError(t, err)
	second, secondStats, err := engine.Run(context.Background(), newFakeStream(snapshot...), filter, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"1700000500000", "1700000300000"}, dates(first))
	assert.Equal(t, first, second)
	assert.Equal(t, firstStats, secondStats)
}

func TestEngine_ExpressionFilter(t *testing.T) {
	stream := newFakeStream(
		RawCallRecord{ColumnDate: int64(3), ColumnType: int64(1), ColumnNumber: "1", ColumnDuration: int64(120)},
		RawCallRecord{ColumnDate: int64(2), ColumnType: int64(1), ColumnNumber: "2", ColumnDuration: int64(10)},
		RawCallRecord{ColumnDate: int64(1), ColumnType: int64(2), ColumnNumber: "3", ColumnDuration: int64(300)},
	)
	filter := mustFilter(t, &models.FilterSpec{Expression: models.StringPtr(`duration > 60 && type == "INCOMING"`)})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"3"}, dates(records))
}

func TestEngine_ExpressionErrorSkipsCall(t *testing.T) {
	stream := newFakeStream(
		RawCallRecord{ColumnDate: int64(2), ColumnNumber: "1", "label": "work"},
		RawCallRecord{ColumnDate: int64(1), ColumnNumber: "2"},
	)
	filter := mustFilter(t, &models.FilterSpec{Expression: models.StringPtr(`record["label"] == "work"`)})

	records, _, err := newTestEngine(t).Run(context.Background(), stream, filter, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, dates(records))
}

func TestEngine_StreamErrorFailsPass(t *testing.T) {
	stream := fourCalls()
	stream.failAt = 2

	records, stats, err := newTestEngine(t).Run(context.Background(), stream, nil, -1)
	require.Error(t, err)

	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "cursor reset")
	assert.Equal(t, 2, stats.Scanned)
}

func TestEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestEngine(t).Run(ctx, fourCalls(), nil, -1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_EmptyStream(t *testing.T) {
	records, stats, err := newTestEngine(t).Run(context.Background(), newFakeStream(), nil, -1)
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.Equal(t, StopEndOfStream, stats.StopReason)
}

func TestEngine_DoesNotCloseStream(t *testing.T) {
	stream := fourCalls()

	_, _, err := newTestEngine(t).Run(context.Background(), stream, nil, 1)
	require.NoError(t, err)

	assert.False(t, stream.closed)
}
