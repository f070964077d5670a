package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"wifiwatch/internal/config"
	"wifiwatch/internal/retry"
	"wifiwatch/internal/types"
)

// kafkaWriter is the subset of *kafka.Writer used by KafkaNotifier
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier writes events to a Kafka topic keyed by hostname
type KafkaNotifier struct {
	config *config.KafkaConfig
	logger *zap.Logger
	writer kafkaWriter
	dial   func(ctx context.Context, network, address string) (*kafka.Conn, error)
}

// NewKafkaNotifier creates new Kafka notifier
func NewKafkaNotifier(cfg *config.KafkaConfig, logger *zap.Logger) (*KafkaNotifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}

	return &KafkaNotifier{
		config: cfg,
		logger: logger,
		writer: writer,
		dial:   kafka.DialContext,
	}, nil
}

// NotifyDeviceIncrease writes the event
func (n *KafkaNotifier) NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return retry.Permanent(err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Hostname),
		Value: data,
		Time:  event.DetectedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventDeviceIncrease)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write error: %w", err)
	}
	n.logger.Debug("Wrote event to kafka", zap.String("topic", n.config.Topic))
	return nil
}

// Health dials the first reachable broker
func (n *KafkaNotifier) Health(ctx context.Context) error {
	var errs []error
	for _, broker := range n.config.Brokers {
		conn, err := n.dial(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, fmt.Errorf("kafka connection error: %w", err))
			continue
		}
		return conn.Close()
	}
	return errors.Join(errs...)
}

// Close flushes and closes the writer
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
