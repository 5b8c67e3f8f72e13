package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calllog/internal/calllog"
)

func drain(t *testing.T, src calllog.Source) []calllog.RawCallRecord {
	t.Helper()
	stream, err := src.Open(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	var out []calllog.RawCallRecord
	for stream.Next(context.Background()) {
		out = append(out, stream.Record())
	}
	require.NoError(t, stream.Err())
	return out
}

func TestLoadFile(t *testing.T) {
	src, err := LoadFile(filepath.Join("testdata", "calls.json"))
	require.NoError(t, err)

	assert.Equal(t, "file", src.Name())
	assert.Equal(t, 3, src.Len())

	records := drain(t, src)
	require.Len(t, records, 3)
	assert.Equal(t, "1700000300000", records[0][calllog.ColumnDate], "numbers keep their literal text")
	assert.Equal(t, int64(1700000300000), records[0].Date())
	assert.Nil(t, records[1][calllog.ColumnCachedName])
	assert.Equal(t, "work", records[2]["label"])
}

func TestLoadFile_RejectsUnorderedHistory(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "unordered.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "absent.json"))
	assert.Error(t, err)
}

func TestMemorySource_StreamsAreIndependent(t *testing.T) {
	src, err := NewMemorySource("memory", []calllog.RawCallRecord{
		{calllog.ColumnDate: int64(2)},
		{calllog.ColumnDate: int64(2)},
		{calllog.ColumnDate: int64(1)},
	})
	require.NoError(t, err)

	first, err := src.Open(context.Background())
	require.NoError(t, err)
	require.True(t, first.Next(context.Background()))

	assert.Len(t, drain(t, src), 3)
	assert.True(t, first.Next(context.Background()))
}

func TestMemorySource_WithEngine(t *testing.T) {
	src, err := LoadFile(filepath.Join("testdata", "calls.json"))
	require.NoError(t, err)

	formatter, err := calllog.NewDateFormatter("en-US", "UTC")
	require.NoError(t, err)
	stream, err := src.Open(context.Background())
	require.NoError(t, err)

	records, stats, err := calllog.NewEngine(formatter).Run(context.Background(), stream, nil, 2)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "INCOMING", records[0][calllog.FieldNormalizedType])
	assert.Equal(t, "MISSED", records[1][calllog.FieldNormalizedType])
	assert.Equal(t, "", records[1][calllog.ColumnCachedName])
	assert.Equal(t, calllog.StopLimit, stats.StopReason)
}
