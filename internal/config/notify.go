package config

import (
	"fmt"
	"strings"
	"time"
)

// NotifyConfig represents notification configuration
type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Notification channels
	Email    EmailConfig    `mapstructure:"email"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`

	// Global notification settings
	RetryAttempts int                   `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration         `mapstructure:"retry_delay"`
	QueueSize     int                   `mapstructure:"queue_size"`
	RateLimit     NotifyRateLimitConfig `mapstructure:"rate_limit"`
}

// NotifyRateLimitConfig represents rate limiting configuration
type NotifyRateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	MaxEvents int           `mapstructure:"max_events"`
}

// EmailConfig represents the email notification configuration
type EmailConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	SMTPServer string   `mapstructure:"smtp_server"`
	SMTPPort   int      `mapstructure:"smtp_port"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	From       string   `mapstructure:"from"`
	To         []string `mapstructure:"to"`
	UseTLS     bool     `mapstructure:"use_tls"`
}

// TelegramConfig represents the telegram notification configuration
type TelegramConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	BotToken string   `mapstructure:"bot_token"`
	ChatIDs  []string `mapstructure:"chat_ids"`
	Format   string   `mapstructure:"format"` // text, html, markdown
	APIURL   string   `mapstructure:"api_url"`
}

// WebhookConfig represents the webhook notification configuration
type WebhookConfig struct {
	Enabled    bool              `mapstructure:"enabled"`
	URL        string            `mapstructure:"url"`
	Secret     string            `mapstructure:"secret"`
	Method     string            `mapstructure:"method"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	Headers    map[string]string `mapstructure:"headers"`
	CommonData map[string]any    `mapstructure:"common_data"`
}

// SlackConfig represents Slack notification configuration
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Username   string `mapstructure:"username"`
	IconEmoji  string `mapstructure:"icon_emoji"`
}

// DiscordConfig represents Discord notification configuration
type DiscordConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Username   string `mapstructure:"username"`
	AvatarURL  string `mapstructure:"avatar_url"`
}

// RedisConfig represents Redis pub/sub notification configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// KafkaConfig represents Kafka notification configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// AMQPConfig represents AMQP notification configuration
type AMQPConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

// Validate notification configuration
func (cfg *NotifyConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	// Validate global settings
	if cfg.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts cannot be negative")
	}
	if cfg.RetryDelay <= 0 {
		return fmt.Errorf("retry_delay must be positive")
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.Interval <= 0 || cfg.RateLimit.MaxEvents <= 0) {
		return fmt.Errorf("rate_limit interval and max_events must be positive")
	}

	if cfg.Email.Enabled {
		if err := cfg.Email.Validate(); err != nil {
			return fmt.Errorf("invalid email config: %w", err)
		}
	}

	if cfg.Telegram.Enabled {
		if err := cfg.Telegram.Validate(); err != nil {
			return fmt.Errorf("invalid telegram config: %w", err)
		}
	}

	if cfg.Slack.Enabled {
		if err := cfg.Slack.Validate(); err != nil {
			return fmt.Errorf("invalid slack config: %w", err)
		}
	}

	if cfg.Discord.Enabled {
		if err := cfg.Discord.Validate(); err != nil {
			return fmt.Errorf("invalid discord config: %w", err)
		}
	}

	if cfg.Webhook.Enabled {
		if err := cfg.Webhook.Validate(); err != nil {
			return fmt.Errorf("invalid webhook config: %w", err)
		}
	}

	if cfg.Redis.Enabled {
		if err := cfg.Redis.Validate(); err != nil {
			return fmt.Errorf("invalid redis config: %w", err)
		}
	}

	if cfg.Kafka.Enabled {
		if err := cfg.Kafka.Validate(); err != nil {
			return fmt.Errorf("invalid kafka config: %w", err)
		}
	}

	if cfg.AMQP.Enabled {
		if err := cfg.AMQP.Validate(); err != nil {
			return fmt.Errorf("invalid amqp config: %w", err)
		}
	}

	return nil
}

// Validate validates email configuration
func (cfg *EmailConfig) Validate() error {
	if cfg.SMTPServer == "" {
		return fmt.Errorf("SMTP server is required")
	}
	if cfg.From == "" {
		return fmt.Errorf("sender email is required")
	}
	if len(cfg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	if !strings.Contains(cfg.From, "@") {
		return fmt.Errorf("invalid sender email address: %s", cfg.From)
	}
	for _, to := range cfg.To {
		if !strings.Contains(to, "@") {
			return fmt.Errorf("invalid recipient email address: %s", to)
		}
	}
	return nil
}

// Validate validates telegram configuration
func (cfg *TelegramConfig) Validate() error {
	if cfg.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	if len(cfg.ChatIDs) == 0 {
		return fmt.Errorf("at least one chat ID is required")
	}
	return nil
}

// Validate validates slack configuration
func (cfg *SlackConfig) Validate() error {
	if cfg.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is required")
	}
	return nil
}

// Validate validates discord configuration
func (cfg *DiscordConfig) Validate() error {
	if cfg.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required")
	}
	return nil
}

// Validate validates webhook configuration
func (cfg *WebhookConfig) Validate() error {
	if cfg.URL == "" {
		return fmt.Errorf("url is required")
	}
	switch strings.ToUpper(cfg.Method) {
	case "", "POST", "PUT":
	default:
		return fmt.Errorf("unsupported method: %s", cfg.Method)
	}
	return nil
}

// Validate validates redis configuration
func (cfg *RedisConfig) Validate() error {
	if cfg.Address == "" {
		return fmt.Errorf("address is required")
	}
	if cfg.Channel == "" {
		return fmt.Errorf("channel is required")
	}
	return nil
}

// Validate validates kafka configuration
func (cfg *KafkaConfig) Validate() error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// Validate validates amqp configuration
func (cfg *AMQPConfig) Validate() error {
	if cfg.URL == "" {
		return fmt.Errorf("url is required")
	}
	if cfg.Exchange == "" && cfg.RoutingKey == "" {
		return fmt.Errorf("exchange or routing_key is required")
	}
	return nil
}
