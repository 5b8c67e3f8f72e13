package source

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"calllog/internal/calllog"
)

const defaultPageSize = 100

// RedisSource reads calls stored as hashes at <prefix>call:<id>, indexed by
// the sorted set <prefix>index scored by date. Pages of ids are walked with
// ZREVRANGE and each page of hashes is fetched in one pipeline.
type RedisSource struct {
	client    *redis.Client
	keyPrefix string
	pageSize  int64
}

func NewRedisSource(client *redis.Client, keyPrefix string, pageSize int) *RedisSource {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &RedisSource{client: client, keyPrefix: keyPrefix, pageSize: int64(pageSize)}
}

func (s *RedisSource) Name() string {
	return "redis"
}

func (s *RedisSource) IndexKey() string {
	return s.keyPrefix + "index"
}

func (s *RedisSource) CallKey(id string) string {
	return s.keyPrefix + "call:" + id
}

func (s *RedisSource) Open(ctx context.Context) (calllog.Stream, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: redis client not configured", calllog.ErrSourceUnavailable)
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", calllog.ErrSourceUnavailable, err)
	}
	return &redisStream{source: s}, nil
}

type redisStream struct {
	source  *RedisSource
	offset  int64
	page    []calllog.RawCallRecord
	pos     int
	done    bool
	current calllog.RawCallRecord
	err     error
}

func (s *redisStream) Next(ctx context.Context) bool {
	for s.pos >= len(s.page) {
		if s.done || s.err != nil {
			return false
		}
		if err := s.fetchPage(ctx); err != nil {
			s.err = err
			return false
		}
	}

	s.current = s.page[s.pos]
	s.pos++
	return true
}

func (s *redisStream) fetchPage(ctx context.Context) error {
	src := s.source
	entries, err := src.client.ZRevRangeWithScores(ctx, src.IndexKey(), s.offset, s.offset+src.pageSize-1).Result()
	if err != nil {
		return fmt.Errorf("failed to read call index: %w", err)
	}
	s.offset += int64(len(entries))
	if int64(len(entries)) < src.pageSize {
		s.done = true
	}

	pipe := src.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(entries))
	for i, entry := range entries {
		cmds[i] = pipe.HGetAll(ctx, src.CallKey(fmt.Sprint(entry.Member)))
	}
	if len(entries) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to read call hashes: %w", err)
		}
	}

	page := make([]calllog.RawCallRecord, 0, len(entries))
	for i, entry := range entries {
		fields := cmds[i].Val()
		// An index entry whose hash expired is skipped.
		if len(fields) == 0 {
			continue
		}
		record := make(calllog.RawCallRecord, len(fields)+1)
		for k, v := range fields {
			record[k] = v
		}
		if _, ok := record[calllog.ColumnDate]; !ok {
			record[calllog.ColumnDate] = strconv.FormatInt(int64(entry.Score), 10)
		}
		page = append(page, record)
	}

	s.page = page
	s.pos = 0
	return nil
}

func (s *redisStream) Record() calllog.RawCallRecord {
	return s.current
}

func (s *redisStream) Err() error {
	return s.err
}

func (s *redisStream) Close() error {
	s.page = nil
	return nil
}
