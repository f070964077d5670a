package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"wifiwatch/internal/config"
	"wifiwatch/internal/notify/template"
	"wifiwatch/internal/retry"
	"wifiwatch/internal/types"
)

var (
	// ErrQueueFull is returned by Dispatch when the delivery queue is full
	ErrQueueFull = errors.New("notification queue is full")
	// ErrManagerStopped is returned by Dispatch after Stop
	ErrManagerStopped = errors.New("notification manager is stopped")
	// ErrRateLimited is returned when an event exceeds the configured rate
	ErrRateLimited = errors.New("notification rate limit exceeded")
)

// Manager fans device events out to the enabled notifiers.
// Dispatch queues events for a background worker, NotifySync delivers inline.
type Manager struct {
	config      *config.NotifyConfig
	logger      *zap.Logger
	notifiers   map[NotifierType]Notifier
	mu          sync.RWMutex
	rateLimiter *RateLimiter
	tplLoader   *template.Loader
	retry       *retry.Config
	notifyChan  chan *types.DeviceEvent
	closed      bool
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewManager creates new notifier manager
func NewManager(cfg *config.NotifyConfig, logger *zap.Logger) (*Manager, error) {
	if cfg == nil {
		cfg = &config.NotifyConfig{}
	}
	logger = logger.Named("notify")

	tplLoader, err := template.NewLoader(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize template loader: %w", err)
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 16
	}

	var limiter *RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = NewRateLimiter(cfg.RateLimit.Interval, cfg.RateLimit.MaxEvents)
	}

	retryCfg := retry.DefaultRetryConfig()
	retryCfg.Attempts = max(cfg.RetryAttempts, 1)
	if cfg.RetryDelay > 0 {
		retryCfg.Interval = cfg.RetryDelay
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:      cfg,
		logger:      logger,
		notifiers:   make(map[NotifierType]Notifier),
		rateLimiter: limiter,
		tplLoader:   tplLoader,
		retry:       retryCfg,
		notifyChan: make(chan *types.DeviceEvent, queueSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	if cfg.Enabled {
		m.initNotifiers()
		m.logger.Info("Notification manager started",
			zap.Int("queue_size", queueSize),
			zap.Stringer("retry", m.retry))
	}

	// Start notification processor
	m.wg.Add(1)
	go m.processNotifications()

	return m, nil
}

// initNotifiers creates the enabled notifiers; failures are logged and skipped
func (m *Manager) initNotifiers() {
	cfg := m.config
	add := func(t NotifierType, n Notifier, err error) {
		if err != nil {
			m.logger.Error("Failed to initialize notifier", zap.String("type", string(t)), zap.Error(err))
			return
		}
		m.notifiers[t] = n
	}

	if cfg.Email.Enabled {
		n, err := NewEmailNotifier(&cfg.Email, m.tplLoader, m.logger)
		add(NotifierEmail, n, err)
	}
	if cfg.Telegram.Enabled {
		n, err := NewTelegramNotifier(&cfg.Telegram, m.tplLoader, m.logger)
		add(NotifierTelegram, n, err)
	}
	if cfg.Slack.Enabled {
		n, err := NewSlackNotifier(&cfg.Slack, m.tplLoader, m.logger)
		add(NotifierSlack, n, err)
	}
	if cfg.Discord.Enabled {
		n, err := NewDiscordNotifier(&cfg.Discord, m.tplLoader, m.logger)
		add(NotifierDiscord, n, err)
	}
	if cfg.Webhook.Enabled {
		n, err := NewWebhookNotifier(&cfg.Webhook, m.logger)
		add(NotifierWebhook, n, err)
	}
	if cfg.Redis.Enabled {
		n, err := NewRedisNotifier(&cfg.Redis, m.logger)
		add(NotifierRedis, n, err)
	}
	if cfg.Kafka.Enabled {
		n, err := NewKafkaNotifier(&cfg.Kafka, m.logger)
		add(NotifierKafka, n, err)
	}
	if cfg.AMQP.Enabled {
		n, err := NewAMQPNotifier(&cfg.AMQP, m.logger)
		add(NotifierAMQP, n, err)
	}

	m.logger.Info("Notifiers initialized", zap.Strings("types", m.Channels()))
}

// Register adds or replaces a notifier
func (m *Manager) Register(t NotifierType, n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifiers[t] = n
}

// processNotifications handles notification sending in background
func (m *Manager) processNotifications() {
	defer m.wg.Done()

	for event := range m.notifyChan {
		if err := m.deliver(m.ctx, event); err != nil {
			m.logger.Error("Failed to deliver notification",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
}

// Dispatch queues an event for background delivery without blocking
func (m *Manager) Dispatch(event *types.DeviceEvent) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrManagerStopped
	}
	if len(m.notifiers) == 0 {
		return nil
	}
	if !m.rateLimiter.Allow() {
		m.logger.Warn("Rate limit exceeded, dropping notification", zap.String("event_id", event.ID))
		return ErrRateLimited
	}

	select {
	case m.notifyChan <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// NotifySync delivers an event to every notifier before returning
func (m *Manager) NotifySync(ctx context.Context, event *types.DeviceEvent) error {
	if !m.rateLimiter.Allow() {
		return ErrRateLimited
	}
	return m.deliver(ctx, event)
}

// deliver sends the event to every notifier with retries and joins the failures
func (m *Manager) deliver(ctx context.Context, event *types.DeviceEvent) error {
	m.mu.RLock()
	notifiers := make(map[NotifierType]Notifier, len(m.notifiers))
	for t, n := range m.notifiers {
		notifiers[t] = n
	}
	m.mu.RUnlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for t, n := range notifiers {
		wg.Add(1)
		go func(t NotifierType, n Notifier) {
			defer wg.Done()

			err := retry.Execute(ctx, m.retry, m.logger, func(ctx context.Context) error {
				return n.NotifyDeviceIncrease(ctx, event)
			})
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", t, err))
				mu.Unlock()
				return
			}
			m.logger.Debug("Notification sent",
				zap.String("type", string(t)),
				zap.String("event_id", event.ID))
		}(t, n)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Stop drains queued notifications and releases notifier connections
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.notifyChan)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		err = fmt.Errorf("timeout waiting for notifications to complete")
	}
	m.cancel()

	m.mu.RLock()
	defer m.mu.RUnlock()
	for t, n := range m.notifiers {
		if c, ok := n.(Closer); ok {
			if cerr := c.Close(); cerr != nil {
				m.logger.Warn("Failed to close notifier", zap.String("type", string(t)), zap.Error(cerr))
			}
		}
	}
	return err
}

// Health checks every notifier and joins the failures
func (m *Manager) Health(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for t, n := range m.notifiers {
		if err := n.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

// IsEnabled reports whether notifications are enabled
func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}

// Channels returns the registered notifier types, sorted
func (m *Manager) Channels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.notifiers))
	for t := range m.notifiers {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}
