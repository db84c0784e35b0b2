package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisPrefix is the key prefix for badword sets
const DefaultRedisPrefix = "group-guard:badwords:"

// RedisStore keeps each chat's badwords in a sorted set scored by creation
// time, so listing returns words in insertion order:
//
//	Key:    <prefix><chat_id>
//	Member: <word>
//	Score:  created_at in unix microseconds
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	now    func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(opts *redis.Options, prefix string, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreFromClient(client, prefix, logger), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		logger: logger,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore) key(chatID int64) string {
	return s.prefix + strconv.FormatInt(chatID, 10)
}

// FindAll returns every word stored for a chat in creation order
func (s *RedisStore) FindAll(ctx context.Context, chatID int64) ([]string, error) {
	words, err := s.client.ZRange(ctx, s.key(chatID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read badwords: %w", err)
	}
	return words, nil
}

// Upsert inserts a word unless it is already present. The original
// creation time of an existing word is kept.
func (s *RedisStore) Upsert(ctx context.Context, chatID int64, word string) (bool, error) {
	n, err := s.client.ZAddNX(ctx, s.key(chatID), redis.Z{
		Score:  float64(s.now().UnixMicro()),
		Member: word,
	}).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add badword: %w", err)
	}
	return n > 0, nil
}

// Delete removes a word from a chat
func (s *RedisStore) Delete(ctx context.Context, chatID int64, word string) (int64, error) {
	n, err := s.client.ZRem(ctx, s.key(chatID), word).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to remove badword: %w", err)
	}
	return n, nil
}

// DeleteAll removes every word of a chat
func (s *RedisStore) DeleteAll(ctx context.Context, chatID int64) (int64, error) {
	key := s.key(chatID)

	pipe := s.client.TxPipeline()
	card := pipe.ZCard(ctx, key)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear badwords: %w", err)
	}

	s.logger.Debug("Cleared badwords",
		zap.String("store", "redis"),
		zap.Int64("chat_id", chatID),
		zap.Int64("removed", card.Val()))
	return card.Val(), nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
