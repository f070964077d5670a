package alert

import (
	"context"

	"wifiwatch/internal/types"
)

// Dispatcher queues an event for notification delivery
type Dispatcher interface {
	Dispatch(event *types.DeviceEvent) error
}

// NotifyAlerter hands events to the notification manager. Delivery happens in
// the background; only enqueue failures are reported.
type NotifyAlerter struct {
	dispatcher Dispatcher
}

// NewNotifyAlerter creates a new notify alerter
func NewNotifyAlerter(d Dispatcher) *NotifyAlerter {
	return &NotifyAlerter{dispatcher: d}
}

// Alert implements Alerter
func (n *NotifyAlerter) Alert(_ context.Context, event *types.DeviceEvent) error {
	if err := n.dispatcher.Dispatch(event); err != nil {
		return &types.AlertError{Alerter: "notify", Err: err}
	}
	return nil
}
