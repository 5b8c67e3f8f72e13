package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"calllog/internal/calllog"
)

// MemorySource serves a fixed, already ordered call history.
type MemorySource struct {
	name    string
	records []calllog.RawCallRecord
}

// NewMemorySource checks that records are ordered newest first.
func NewMemorySource(name string, records []calllog.RawCallRecord) (*MemorySource, error) {
	for i := 1; i < len(records); i++ {
		if records[i].Date() > records[i-1].Date() {
			return nil, fmt.Errorf("call %d (date %d) is newer than call %d (date %d)",
				i, records[i].Date(), i-1, records[i-1].Date())
		}
	}
	return &MemorySource{name: name, records: records}, nil
}

// LoadFile reads a JSON array of call objects. Numbers keep their literal
// text so large epoch values are not rounded.
func LoadFile(path string) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read call file %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var docs []map[string]any
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to parse call file %s: %w", path, err)
	}

	records := make([]calllog.RawCallRecord, len(docs))
	for i, doc := range docs {
		record := make(calllog.RawCallRecord, len(doc))
		for k, v := range doc {
			if n, ok := v.(json.Number); ok {
				record[k] = n.String()
				continue
			}
			record[k] = v
		}
		records[i] = record
	}

	src, err := NewMemorySource("file", records)
	if err != nil {
		return nil, fmt.Errorf("invalid call file %s: %w", path, err)
	}
	return src, nil
}

func (s *MemorySource) Name() string {
	return s.name
}

func (s *MemorySource) Open(context.Context) (calllog.Stream, error) {
	return &sliceStream{records: s.records}, nil
}

func (s *MemorySource) Len() int {
	return len(s.records)
}

type sliceStream struct {
	records []calllog.RawCallRecord
	pos     int
	current calllog.RawCallRecord
}

func (s *sliceStream) Next(context.Context) bool {
	if s.pos >= len(s.records) {
		return false
	}
	s.current = s.records[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Record() calllog.RawCallRecord {
	return s.current
}

func (s *sliceStream) Err() error {
	return nil
}

func (s *sliceStream) Close() error {
	return nil
}
