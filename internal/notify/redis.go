package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wifiwatch/internal/config"
	"wifiwatch/internal/retry"
	"wifiwatch/internal/types"
)

// redisPublisher is the subset of *redis.Client used by RedisNotifier
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisNotifier publishes events on a Redis pub/sub channel
type RedisNotifier struct {
	config *config.RedisConfig
	logger *zap.Logger
	client redisPublisher
}

// NewRedisNotifier creates new Redis notifier. The connection is established lazily.
func NewRedisNotifier(cfg *config.RedisConfig, logger *zap.Logger) (*RedisNotifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &RedisNotifier{
		config: cfg,
		logger: logger,
		client: client,
	}, nil
}

// NotifyDeviceIncrease publishes the event
func (n *RedisNotifier) NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return retry.Permanent(err)
	}

	receivers, err := n.client.Publish(ctx, n.config.Channel, data).Result()
	if err != nil {
		return fmt.Errorf("redis publish error: %w", err)
	}
	n.logger.Debug("Published event to redis",
		zap.String("channel", n.config.Channel),
		zap.Int64("receivers", receivers))
	return nil
}

// Health pings the server
func (n *RedisNotifier) Health(ctx context.Context) error {
	if err := n.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping error: %w", err)
	}
	return nil
}

// Close closes the client
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
