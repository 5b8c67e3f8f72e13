package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"calllog/internal/calllog"
)

const cursorCloseTimeout = 5 * time.Second

// MongoSource reads call documents sorted by date descending. The date field
// must be stored as a number for the sort to be chronological.
type MongoSource struct {
	collection *mongo.Collection
	batchSize  int32
}

func NewMongoSource(collection *mongo.Collection, batchSize int) *MongoSource {
	return &MongoSource{collection: collection, batchSize: int32(batchSize)}
}

func (s *MongoSource) Name() string {
	return "mongodb"
}

func (s *MongoSource) Open(ctx context.Context) (calllog.Stream, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("%w: mongodb collection not configured", calllog.ErrSourceUnavailable)
	}

	opts := options.Find().SetSort(bson.D{{Key: calllog.ColumnDate, Value: -1}})
	if s.batchSize > 0 {
		opts.SetBatchSize(s.batchSize)
	}

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", calllog.ErrSourceUnavailable, err)
	}

	return &cursorStream{cursor: cursor}, nil
}

type cursorStream struct {
	cursor  *mongo.Cursor
	current calllog.RawCallRecord
	err     error
}

func (s *cursorStream) Next(ctx context.Context) bool {
	if s.err != nil || !s.cursor.Next(ctx) {
		return false
	}

	var doc bson.M
	if err := s.cursor.Decode(&doc); err != nil {
		s.err = fmt.Errorf("failed to decode call document: %w", err)
		return false
	}

	s.current = documentRecord(doc)
	return true
}

func (s *cursorStream) Record() calllog.RawCallRecord {
	return s.current
}

func (s *cursorStream) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.cursor.Err()
}

func (s *cursorStream) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), cursorCloseTimeout)
	defer cancel()
	return s.cursor.Close(ctx)
}

// documentRecord flattens BSON-specific values to plain scalars.
func documentRecord(doc bson.M) calllog.RawCallRecord {
	record := make(calllog.RawCallRecord, len(doc))
	for key, value := range doc {
		switch v := value.(type) {
		case primitive.ObjectID:
			record[key] = v.Hex()
		case primitive.DateTime:
			record[key] = int64(v)
		case primitive.Decimal128:
			record[key] = v.String()
		case primitive.Null, primitive.Undefined:
			record[key] = nil
		default:
			record[key] = v
		}
	}
	return record
}
