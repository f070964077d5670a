package notify

import (
	"context"

	"wifiwatch/internal/types"
)

// NotifierType represents the type of notifier
type NotifierType string

const (
	NotifierEmail    NotifierType = "email"
	NotifierTelegram NotifierType = "telegram"
	NotifierSlack    NotifierType = "slack"
	NotifierDiscord  NotifierType = "discord"
	NotifierWebhook  NotifierType = "webhook"
	NotifierRedis    NotifierType = "redis"
	NotifierKafka    NotifierType = "kafka"
	NotifierAMQP     NotifierType = "amqp"
)

// EventDeviceIncrease is the event type published for a device count increase
const EventDeviceIncrease = "device.increase"

// Notifier represents notifier interface
type Notifier interface {
	// NotifyDeviceIncrease sends a device increase notification
	NotifyDeviceIncrease(ctx context.Context, event *types.DeviceEvent) error

	// Health checks the health of the notifier
	Health(ctx context.Context) error
}

// Closer is implemented by notifiers holding connections
type Closer interface {
	Close() error
}
