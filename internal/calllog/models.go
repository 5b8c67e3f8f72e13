package calllog

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Column names the engine reads from a raw record. Every other column is passed
// through untouched.
const (
	ColumnNumber     = "number"
	ColumnType       = "type"
	ColumnDate       = "date"
	ColumnDuration   = "duration"
	ColumnCachedName = "name"
)

// Derived fields written on top of the raw columns.
const (
	FieldDateTime       = "dateTime"
	FieldNormalizedType = "normalizedType"
	FieldPhoneNumber    = "phoneNumber"
)

// RawCallRecord is one row of the call history as produced by a Source. A nil
// value marks a NULL column; a missing key means the source has no such column.
type RawCallRecord map[string]any

func (r RawCallRecord) String(column string) string {
	return cast.ToString(r[column])
}

// Int64 returns the column as an integer, or 0 when it is missing or not numeric.
func (r RawCallRecord) Int64(column string) int64 {
	switch v := r[column].(type) {
	case string:
		return parseDecimal(v)
	case []byte:
		return parseDecimal(string(v))
	}
	v, err := cast.ToInt64E(r[column])
	if err != nil {
		return 0
	}
	return v
}

func parseDecimal(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (r RawCallRecord) Number() string {
	return r.String(ColumnNumber)
}

func (r RawCallRecord) TypeCode() int {
	return int(r.Int64(ColumnType))
}

// Date is the call start in epoch milliseconds.
func (r RawCallRecord) Date() int64 {
	return r.Int64(ColumnDate)
}

func (r RawCallRecord) Duration() int64 {
	return r.Int64(ColumnDuration)
}

func (r RawCallRecord) CachedName() string {
	return r.String(ColumnCachedName)
}

// OutputRecord is an accepted call: all raw columns as strings plus the derived fields.
type OutputRecord map[string]string

// Stream yields raw records ordered by date, newest first. It follows the
// database/sql Rows contract: call Next before each Record, check Err once
// Next returns false, and always Close.
type Stream interface {
	Next(ctx context.Context) bool
	Record() RawCallRecord
	Err() error
	Close() error
}

// Source opens a fresh Stream over the whole call history. Each call must
// return an independent handle.
type Source interface {
	Open(ctx context.Context) (Stream, error)
	Name() string
}
