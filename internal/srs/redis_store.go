package srs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore persists SRS records as JSON values keyed per (user, question),
// with a per-user set index for scans.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

var _ RecordStore = (*RedisStore)(nil)

// NewRedisStore creates a record store backed by Redis.
func NewRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func recordKey(userID, questionID string) string {
	return fmt.Sprintf("srs:record:%s:%s", userID, questionID)
}

func userIndexKey(userID string) string {
	return fmt.Sprintf("srs:user:%s", userID)
}

// Get returns the record for the pair, or nil when none exists.
func (s *RedisStore) Get(ctx context.Context, userID, questionID string) (*Record, error) {
	data, err := s.client.Get(ctx, recordKey(userID, questionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &record, nil
}

// Put stores the record and indexes it under the owning user. Records have no
// TTL; they live as long as the user does.
func (s *RedisStore) Put(ctx context.Context, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKey(record.UserID, record.QuestionID), data, 0)
	pipe.SAdd(ctx, userIndexKey(record.UserID), record.QuestionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// ListByUser returns every record belonging to the user.
func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	questionIDs, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list user index: %w", err)
	}
	if len(questionIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(questionIDs))
	for i, qid := range questionIDs {
		keys[i] = recordKey(userID, qid)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget records: %w", err)
	}

	records := make([]Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			s.logger.Warn().Str("key", keys[i]).Msg("skip missing record behind index")
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			s.logger.Warn().Err(err).Str("key", keys[i]).Msg("skip corrupted record")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
