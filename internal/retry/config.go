package retry

import (
	"encoding/json"
	"errors"
	"time"
)

// Config defines the configuration for the retry mechanism.
type Config struct {
	Attempts    int           `mapstructure:"attempts"`     // Total attempts including the first
	Interval    time.Duration `mapstructure:"interval"`     // Wait before the second attempt
	Multiplier  float64       `mapstructure:"multiplier"`   // Growth factor between waits
	MaxInterval time.Duration `mapstructure:"max_interval"` // Upper bound for a single wait
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *Config {
	return &Config{
		Attempts:    3,
		Interval:    time.Second,
		Multiplier:  2,
		MaxInterval: 30 * time.Second,
	}
}

// Validate validates the retry configuration.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return nil
	}
	if cfg.Attempts <= 0 {
		return errors.New("attempts must be greater than zero")
	}
	if cfg.Interval < 0 || cfg.MaxInterval < 0 {
		return errors.New("intervals cannot be negative")
	}
	if cfg.Multiplier != 0 && cfg.Multiplier < 1 {
		return errors.New("multiplier must be at least 1")
	}
	return nil
}

// String returns a JSON string representation of the Config.
func (cfg *Config) String() string {
	data, _ := json.Marshal(cfg)
	return string(data)
}

// backoff returns the wait after the given failed attempt (1-based)
func (cfg *Config) backoff(attempt int) time.Duration {
	d := cfg.Interval
	mult := cfg.Multiplier
	if mult == 0 {
		mult = 1
	}
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * mult)
		if cfg.MaxInterval > 0 && d >= cfg.MaxInterval {
			return cfg.MaxInterval
		}
	}
	if cfg.MaxInterval > 0 && d > cfg.MaxInterval {
		return cfg.MaxInterval
	}
	return d
}
