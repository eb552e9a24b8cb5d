package querylog

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAppender публикует записи лога запросов в Redis.
//
// Redis-ключи:
//
//	RPUSH  <prefix>:log  <JSON>   - ограниченный список последних запросов (LTRIM до MaxLen)
//	EXPIRE <prefix>:log  <ttl>
//	PUBLISH <prefix>     <JSON>   - для подписчиков (мониторинг в реальном времени)
type RedisAppender struct {
	client redis.UniversalClient
	prefix string
	maxLen int64
	ttl    time.Duration
}

// RedisAppenderConfig - конфигурация Redis appender
type RedisAppenderConfig struct {
	Prefix string        // по умолчанию "tdtp:sybase:querylog"
	MaxLen int64         // 0 = 1000
	TTL    time.Duration // 0 = без истечения
}

// NewRedisAppender создает appender поверх готового клиента
func NewRedisAppender(client redis.UniversalClient, cfg RedisAppenderConfig) *RedisAppender {
	if cfg.Prefix == "" {
		cfg.Prefix = "tdtp:sybase:querylog"
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = 1000
	}
	return &RedisAppender{
		client: client,
		prefix: cfg.Prefix,
		maxLen: cfg.MaxLen,
		ttl:    cfg.TTL,
	}
}

// ListKey возвращает ключ списка записей
func (r *RedisAppender) ListKey() string {
	return r.prefix + ":log"
}

// Channel возвращает канал pub/sub
func (r *RedisAppender) Channel() string {
	return r.prefix
}

// Append записывает entry в список и публикует его
func (r *RedisAppender) Append(ctx context.Context, entry *Entry) error {
	payload, err := entry.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, r.ListKey(), payload)
	pipe.LTrim(ctx, r.ListKey(), -r.maxLen, -1)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.ListKey(), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis RPUSH failed: %w", err)
	}

	if err := r.client.Publish(ctx, r.Channel(), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (r *RedisAppender) Close() error {
	return r.client.Close()
}
