package alert

import (
	"context"
	"errors"

	"wifiwatch/internal/types"
)

// Alerter signals the operator that the device count increased
type Alerter interface {
	Alert(ctx context.Context, event *types.DeviceEvent) error
}

// Func adapts a function to the Alerter interface
type Func func(ctx context.Context, event *types.DeviceEvent) error

// Alert implements Alerter
func (f Func) Alert(ctx context.Context, event *types.DeviceEvent) error {
	return f(ctx, event)
}

// Multi runs every alerter in order. A failing alerter does not stop the
// others; failures are joined.
type Multi []Alerter

// Alert implements Alerter
func (m Multi) Alert(ctx context.Context, event *types.DeviceEvent) error {
	var errs []error
	for _, a := range m {
		if err := a.Alert(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop never alerts
var Nop = Func(func(context.Context, *types.DeviceEvent) error { return nil })
