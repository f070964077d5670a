package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"go.uber.org/zap"

	"wifiwatch/internal/alert"
	"wifiwatch/internal/config"
	"wifiwatch/internal/locator"
	"wifiwatch/internal/types"
)

// Scanner sweeps the subnet of a gateway
type Scanner interface {
	Scan(ctx context.Context, gateway types.NetworkAddress) (*types.ScanResult, error)
}

// Monitor runs the watch loop: locate the wireless interface, sweep its
// subnet, compare the device count with the previous cycle and alert on
// increase. Cycles never overlap.
type Monitor struct {
	interval time.Duration
	hostname string
	locator  locator.Locator
	scanner  Scanner
	alerter  alert.Alerter
	recorder *Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a new monitor. alerter and recorder may be nil.
func New(cfg config.MonitorConfig, loc locator.Locator, sc Scanner, al alert.Alerter, rec *Recorder, logger *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if al == nil {
		al = alert.Nop
	}
	if rec == nil {
		rec = NewRecorder()
	}
	return &Monitor{
		interval: cfg.Interval,
		hostname: cfg.Hostname,
		locator:  loc,
		scanner:  sc,
		alerter:  al,
		recorder: rec,
		logger:   logger.Named("monitor"),
		now:      time.Now,
	}
}

// Recorder returns the recorder fed by the monitor
func (m *Monitor) Recorder() *Recorder {
	return m.recorder
}

// Run executes cycles until ctx is done. A cycle in progress is finished
// before Run returns; cancellation is observed while sleeping.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Starting wifi monitor", zap.Duration("interval", m.interval))

	var state types.MonitorState
	cycleCtx := context.WithoutCancel(ctx)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Wifi monitor stopped",
				zap.Int("previous_device_count", state.PreviousDeviceCount))
			return nil
		case <-timer.C:
		}

		state, _ = m.RunCycle(cycleCtx, state)
		timer.Reset(m.interval)
	}
}

// RunCycle performs one cycle and returns the next state with its report.
// Failures never escape: the state is returned unchanged unless the cycle
// completed a sweep.
func (m *Monitor) RunCycle(ctx context.Context, state types.MonitorState) (next types.MonitorState, report types.CycleReport) {
	started := m.now()
	next = state
	report = types.CycleReport{
		ID:            uuid.NewString(),
		StartedAt:     started,
		PreviousCount: state.PreviousDeviceCount,
	}
	logger := m.logger.With(zap.String("cycle_id", report.ID))

	defer func() {
		if r := recover(); r != nil {
			next = state
			report.Outcome = types.CycleUnclassified
			report.Error = fmt.Sprintf("panic: %v", r)
			logger.Error("Cycle panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
		report.Duration = m.now().Sub(started)
		m.recorder.Record(next, report)
		logger.Debug("Cycle finished",
			zap.String("outcome", string(report.Outcome)),
			zap.Duration("duration", report.Duration))
	}()

	iface, err := m.locator.Locate(ctx)
	switch {
	case errors.Is(err, types.ErrNotConnected), err == nil && !iface.Connected():
		report.Outcome = types.CycleNotConnected
		logger.Info("Wireless adapter not connected")
		return next, report
	case err != nil:
		report.Outcome = types.CycleUnclassified
		if types.IsLocatorError(err) {
			report.Outcome = types.CycleLocatorError
		}
		report.Error = err.Error()
		logger.Error("Failed to locate wireless interface", zap.Error(err))
		return next, report
	}

	report.Interface = iface
	report.Subnet = types.SubnetFromGateway(iface.Gateway)
	if !report.Subnet.Contains(iface.Address) {
		logger.Warn("Interface address is outside the gateway subnet",
			zap.Stringer("address", iface.Address),
			zap.Stringer("subnet", report.Subnet))
	}
	logger.Debug("Located wireless interface",
		zap.String("interface", iface.Name),
		zap.Stringer("address", iface.Address),
		zap.Stringer("gateway", iface.Gateway))

	result, err := m.scanner.Scan(ctx, iface.Gateway)
	if err != nil {
		report.Outcome = types.CycleUnclassified
		if types.IsScannerError(err) {
			report.Outcome = types.CycleScannerError
		}
		report.Error = err.Error()
		logger.Error("Failed to scan subnet", zap.Stringer("subnet", report.Subnet), zap.Error(err))
		return next, report
	}

	current := result.DeviceCount()
	report.Outcome = types.CycleCompleted
	report.Devices = types.DevicesFromHosts(result.Hosts)
	report.DeviceCount = current
	report.CountWithoutGateway = result.CountWithoutGateway()
	m.logDevices(logger, report)

	next = types.MonitorState{PreviousDeviceCount: current}

	if current > state.PreviousDeviceCount {
		report.Alerted = true
		event := m.newEvent(&report)
		logger.Warn("Device count increased",
			zap.String("event_id", event.ID),
			zap.Int("previous", state.PreviousDeviceCount),
			zap.Int("current", current))

		if err := m.alert(ctx, event); err != nil {
			report.AlertError = err.Error()
			logger.Error("Failed to alert", zap.Error(err))
		}
	}

	return next, report
}

// alert runs the alerter; a panic is reported as an alert failure
func (m *Monitor) alert(ctx context.Context, event *types.DeviceEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.AlertError{Alerter: "unknown", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return m.alerter.Alert(ctx, event)
}

func (m *Monitor) newEvent(report *types.CycleReport) *types.DeviceEvent {
	return &types.DeviceEvent{
		ID:                  xid.New().String(),
		Hostname:            m.hostname,
		Interface:           report.Interface,
		Subnet:              report.Subnet,
		PreviousCount:       report.PreviousCount,
		CurrentCount:        report.DeviceCount,
		CountWithoutGateway: report.CountWithoutGateway,
		Devices:             report.Devices,
		DetectedAt:          m.now(),
	}
}

// logDevices prints every responder with its hardware address
func (m *Monitor) logDevices(logger *zap.Logger, report types.CycleReport) {
	for _, d := range report.Devices {
		mac := d.MAC
		if mac == "" {
			mac = "unknown"
		}
		logger.Info("Device", zap.String("ip", d.IP), zap.String("mac", mac))
	}
	logger.Info("Devices found",
		zap.Stringer("subnet", report.Subnet),
		zap.Int("total", report.DeviceCount),
		zap.Int("without_gateway", report.CountWithoutGateway),
		zap.Int("previous", report.PreviousCount))
}
