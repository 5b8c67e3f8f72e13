package calllog

import (
	"context"
	"errors"
	"fmt"
)

// fakeStream serves records in order and panics if read past the end, so a
// test fails loudly when the engine over-iterates.
type fakeStream struct {
	records []RawCallRecord
	pos     int
	current RawCallRecord
	err     error
	failAt  int
	closed  bool
}

func newFakeStream(records ...RawCallRecord) *fakeStream {
	return &fakeStream{records: records, failAt: -1}
}

func (s *fakeStream) Next(context.Context) bool {
	if s.failAt >= 0 && s.pos == s.failAt {
		s.err = errors.New("cursor reset")
		return false
	}
	if s.pos > len(s.records) {
		panic(fmt.Sprintf("stream read %d times past the end", s.pos-len(s.records)))
	}
	if s.pos == len(s.records) {
		s.pos++
		return false
	}
	s.current = s.records[s.pos]
	s.pos++
	return true
}

func (s *fakeStream) Record() RawCallRecord { return s.current }

func (s *fakeStream) Err() error { return s.err }

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// reads is the number of records handed to the engine.
func (s *fakeStream) reads() int {
	if s.pos > len(s.records) {
		return len(s.records)
	}
	return s.pos
}

type fakeSource struct {
	stream  *fakeStream
	openErr error
	opens   int
}

func (s *fakeSource) Open(context.Context) (Stream, error) {
	s.opens++
	if s.openErr != nil {
		return nil, s.openErr
	}
	if s.stream == nil {
		return nil, nil
	}
	return s.stream, nil
}

func (s *fakeSource) Name() string { return "fake" }

func call(date int64, typeCode int, number string) RawCallRecord {
	return RawCallRecord{
		ColumnDate:   date,
		ColumnType:   typeCode,
		ColumnNumber: number,
	}
}

func dates(records []OutputRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r[ColumnDate]
	}
	return out
}
