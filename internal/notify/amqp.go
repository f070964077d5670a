package notify

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"wifiwatch/internal/config"
	"wifiwatch/internal/retry"
	"wifiwatch/internal/types"
)

// AMQPNotifier publishes events to an AMQP exchange
type AMQPNotifier struct {
	config *config.AMQPConfig
	logger *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPNotifier creates new AMQP notifier. The connection is opened on first use.
func NewAMQPNotifier(cfg *config.AMQPConfig, logger *zap.Logger) (*AMQPNotifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &AMQPNotifier{
		config: cfg,
		logger: logger,
	}, nil
}

// NotifyDeviceIncrease publishes the event
func (n *AMQPNotifier) NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return retry.Permanent(err)
	}

	ch, err := n.ensureChannel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, n.config.Exchange, n.config.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.DetectedAt,
		Type:         EventDeviceIncrease,
		Body:         data,
	})
	if err != nil {
		n.reset()
		return fmt.Errorf("amqp publish error: %w", err)
	}
	return nil
}

// ensureChannel (re)opens the connection and channel
func (n *AMQPNotifier) ensureChannel() (*amqp.Channel, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.channel != nil && !n.channel.IsClosed() {
		return n.channel, nil
	}

	if n.conn == nil || n.conn.IsClosed() {
		conn, err := amqp.Dial(n.config.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to amqp: %w", err)
		}
		n.conn = conn
		n.logger.Info("Connected to AMQP broker")
	}

	ch, err := n.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}
	n.channel = ch
	return ch, nil
}

func (n *AMQPNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.channel != nil {
		_ = n.channel.Close()
		n.channel = nil
	}
}

// Health opens the connection when needed
func (n *AMQPNotifier) Health(_ context.Context) error {
	_, err := n.ensureChannel()
	return err
}

// Close closes the channel and connection
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.channel != nil {
		_ = n.channel.Close()
		n.channel = nil
	}
	if n.conn != nil && !n.conn.IsClosed() {
		return n.conn.Close()
	}
	return nil
}
