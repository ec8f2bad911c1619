package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each user's record IDs in a sorted set scored by creation
// time and each record as a JSON string.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisStore connects to Redis. The connection is established lazily; use
// Ping to check it.
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisStoreWithClient(client, opts.KeyPrefix)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, prefix: keyPrefix, now: time.Now}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) userKey(userID string) string {
	return fmt.Sprintf("%s:history:%s", s.prefix, userID)
}

func (s *RedisStore) recordKey(id string) string {
	return fmt.Sprintf("%s:record:%s", s.prefix, id)
}

// Save stores a record.
func (s *RedisStore) Save(ctx context.Context, record Record) (Record, error) {
	record, err := prepare(record, s.now())
	if err != nil {
		return Record{}, err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode history record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(record.ID), payload, 0)
		pipe.ZAdd(ctx, s.userKey(record.UserID), redis.Z{
			Score:  float64(record.CreatedAt.UnixNano()),
			Member: record.ID,
		})
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to save history record: %w", err)
	}
	return record, nil
}

// Recent returns the newest records for a user. Index entries whose record
// body is gone are skipped, pruned from the index, and do not count towards
// limit.
func (s *RedisStore) Recent(ctx context.Context, userID string, limit int) ([]Record, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	window := int64(limit)
	if limit <= 0 {
		window = -1
	}

	records := []Record{}
	var orphans []interface{}
	for start := int64(0); ; {
		stop := int64(-1)
		if window > 0 {
			stop = start + window - 1
		}
		ids, err := s.client.ZRevRange(ctx, s.userKey(userID), start, stop).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list history: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		page, missing, err := s.load(ctx, ids)
		if err != nil {
			return nil, err
		}
		orphans = append(orphans, missing...)
		for _, record := range page {
			if limit > 0 && len(records) == limit {
				break
			}
			records = append(records, record)
		}

		if window < 0 || len(records) == limit || int64(len(ids)) < window {
			break
		}
		start += int64(len(ids))
	}

	if len(orphans) > 0 {
		if err := s.client.ZRem(ctx, s.userKey(userID), orphans...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune history index: %w", err)
		}
	}
	return records, nil
}

// load fetches record bodies for ids in order, returning the ids that have
// no body separately.
func (s *RedisStore) load(ctx context.Context, ids []string) ([]Record, []interface{}, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}

	records := make([]Record, 0, len(values))
	var missing []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, nil, fmt.Errorf("failed to decode history record: %w", err)
		}
		records = append(records, record)
	}
	return records, missing, nil
}

// Delete removes a record owned by userID.
func (s *RedisStore) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUserRequired
	}

	raw, err := s.client.Get(ctx, s.recordKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load history record: %w", err)
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return fmt.Errorf("failed to decode history record: %w", err)
	}
	if record.UserID != userID {
		return ErrNotFound
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.userKey(userID), id)
		pipe.Del(ctx, s.recordKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}
	return nil
}
