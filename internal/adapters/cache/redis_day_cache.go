package cache

import (
	"bytes"
	"context"
	"daylog-service/internal/domain"
	"daylog-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "daylog:"

// Redis-backed implementation of the DriverDayCache port.
// Entries are gzip-compressed JSON; GPS tracks compress well.
type RedisDayCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.DriverDayCache = (*RedisDayCache)(nil)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func NewRedisDayCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisDayCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisDayCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "redis_day_cache"),
	}
}

func DriverDayKey(driverID int64, day time.Time) string {
	return fmt.Sprintf("%sdriverday:%d:%s", keyPrefix, driverID, day.Format("2006-01-02"))
}

// Get returns the cached driver-day, or (nil, nil) on a miss.
func (c *RedisDayCache) Get(ctx context.Context, driverID int64, day time.Time) (*domain.DriverDay, error) {
	key := DriverDayKey(driverID, day)
	start := time.Now()

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	raw, err := gzipDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("cache get %s: decompress: %w", key, err)
	}

	var dd domain.DriverDay
	if err := json.Unmarshal(raw, &dd); err != nil {
		return nil, fmt.Errorf("cache get %s: json unmarshal: %w", key, err)
	}

	c.logger.Debug("cache hit", "key", key, "size_bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
	return &dd, nil
}

func (c *RedisDayCache) Put(ctx context.Context, dd *domain.DriverDay) error {
	if dd == nil {
		return errors.New("cache put: driver day is nil")
	}
	key := DriverDayKey(dd.DriverID, dd.Date)

	raw, err := json.Marshal(dd)
	if err != nil {
		return fmt.Errorf("cache put %s: json marshal: %w", key, err)
	}
	data, err := gzipCompress(raw)
	if err != nil {
		return fmt.Errorf("cache put %s: compress: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	c.logger.Debug("cache set", "key", key, "original_size", len(raw), "compressed_size", len(data), "ttl", c.ttl)
	return nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
