package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wifiwatch/internal/config"
	"wifiwatch/internal/retry"
	"wifiwatch/internal/types"
)

type mockNotifier struct {
	mu        sync.Mutex
	events    []*types.DeviceEvent
	calls     atomic.Int32
	failUntil int32
	err       error
	block     chan struct{}
	started   chan struct{}
	closed    bool
}

func (m *mockNotifier) NotifyDeviceIncrease(_ context.Context, event *types.DeviceEvent) error {
	n := m.calls.Add(1)
	if m.started != nil {
		select {
		case m.started <- struct{}{}:
		default:
		}
	}
	if m.block != nil {
		<-m.block
	}
	if n <= m.failUntil {
		return m.err
	}
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return nil
}

func (m *mockNotifier) Health(context.Context) error { return m.err }

func (m *mockNotifier) Close() error {
	m.closed = true
	return nil
}

func (m *mockNotifier) received() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func testNotifyConfig() *config.NotifyConfig {
	return &config.NotifyConfig{
		Enabled:       true,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		QueueSize:     4,
	}
}

func TestManager_Dispatch(t *testing.T) {
	m, err := NewManager(testNotifyConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	a, b := &mockNotifier{}, &mockNotifier{}
	m.Register(NotifierWebhook, a)
	m.Register(NotifierSlack, b)
	assert.Equal(t, []string{"slack", "webhook"}, m.Channels())

	require.NoError(t, m.Dispatch(testEvent()))
	require.NoError(t, m.Stop())

	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, b.received())
	assert.True(t, a.closed)

	assert.ErrorIs(t, m.Dispatch(testEvent()), ErrManagerStopped)
	assert.NoError(t, m.Stop())
}

func TestManager_NotifySyncRetries(t *testing.T) {
	m, err := NewManager(testNotifyConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Stop()

	flaky := &mockNotifier{failUntil: 2, err: errors.New("temporary")}
	m.Register(NotifierWebhook, flaky)

	require.NoError(t, m.NotifySync(context.Background(), testEvent()))
	assert.EqualValues(t, 3, flaky.calls.Load())
	assert.Equal(t, 1, flaky.received())
}

func TestManager_NotifySyncJoinsErrors(t *testing.T) {
	m, err := NewManager(testNotifyConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Stop()

	broken := &mockNotifier{failUntil: 100, err: retry.Permanent(errors.New("unauthorized"))}
	healthy := &mockNotifier{}
	m.Register(NotifierTelegram, broken)
	m.Register(NotifierDiscord, healthy)

	err = m.NotifySync(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram: unauthorized")
	assert.EqualValues(t, 1, broken.calls.Load())
	assert.Equal(t, 1, healthy.received())

	assert.Error(t, m.Health(context.Background()))
}

func TestManager_QueueFull(t *testing.T) {
	cfg := testNotifyConfig()
	cfg.QueueSize = 1
	m, err := NewManager(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	slow := &mockNotifier{block: make(chan struct{}), started: make(chan struct{}, 1)}
	m.Register(NotifierWebhook, slow)

	require.NoError(t, m.Dispatch(testEvent()))
	select {
	case <-slow.started:
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not picked up")
	}

	require.NoError(t, m.Dispatch(testEvent()))
	assert.ErrorIs(t, m.Dispatch(testEvent()), ErrQueueFull)

	close(slow.block)
	require.NoError(t, m.Stop())
	assert.Equal(t, 2, slow.received())
}

func TestManager_RateLimit(t *testing.T) {
	cfg := testNotifyConfig()
	cfg.RateLimit = config.NotifyRateLimitConfig{Enabled: true, Interval: time.Hour, MaxEvents: 1}
	m, err := NewManager(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Stop()

	m.Register(NotifierWebhook, &mockNotifier{})
	require.NoError(t, m.Dispatch(testEvent()))
	assert.ErrorIs(t, m.Dispatch(testEvent()), ErrRateLimited)
}

func TestManager_Disabled(t *testing.T) {
	cfg := testNotifyConfig()
	cfg.Enabled = false
	cfg.Webhook = config.WebhookConfig{Enabled: true, URL: "http://127.0.0.1:1"}

	m, err := NewManager(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Stop()

	assert.False(t, m.IsEnabled())
	assert.Empty(t, m.Channels())
	assert.NoError(t, m.Dispatch(testEvent()))
	assert.NoError(t, m.Health(context.Background()))
}

func TestManager_InitNotifiers(t *testing.T) {
	cfg := testNotifyConfig()
	cfg.Webhook = config.WebhookConfig{Enabled: true, URL: "http://127.0.0.1:1/hook"}
	cfg.Kafka = config.KafkaConfig{Enabled: true, Brokers: []string{"127.0.0.1:9092"}, Topic: "devices"}
	cfg.Slack = config.SlackConfig{Enabled: true}

	m, err := NewManager(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Stop()

	assert.True(t, m.IsEnabled())
	// invalid notifiers are skipped
	assert.Equal(t, []string{"kafka", "webhook"}, m.Channels())
}

func TestManager_RetryConfig(t *testing.T) {
	cfg := testNotifyConfig()
	m, err := NewManager(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Stop()

	assert.Equal(t, 3, m.retry.Attempts)
	assert.Equal(t, time.Millisecond, m.retry.Interval)
	assert.Equal(t, retry.DefaultRetryConfig().Multiplier, m.retry.Multiplier)
	assert.Equal(t, retry.DefaultRetryConfig().MaxInterval, m.retry.MaxInterval)
	assert.NoError(t, m.retry.Validate())

	cfg.RetryAttempts = 0
	cfg.RetryDelay = 0
	m2, err := NewManager(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m2.Stop()

	assert.Equal(t, 1, m2.retry.Attempts)
	assert.Equal(t, retry.DefaultRetryConfig().Interval, m2.retry.Interval)
	assert.Contains(t, m2.retry.String(), `"Attempts":1`)
}
