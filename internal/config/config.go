package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"wifiwatch/internal/validator"
)

// Config represents the application configuration
type Config struct {
	Monitor MonitorConfig `mapstructure:"monitor"`
	Locator LocatorConfig `mapstructure:"locator"`
	Scanner ScannerConfig `mapstructure:"scanner"`
	Alert   AlertConfig   `mapstructure:"alert"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	API     APIConfig     `mapstructure:"api"`
	Log     LogConfig     `mapstructure:"log"`
}

// MonitorConfig represents monitor loop configuration
type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
	Hostname string        `mapstructure:"hostname"`
}

// LocatorConfig represents interface locator configuration
type LocatorConfig struct {
	Method         string   `mapstructure:"method" validate:"oneof=auto system command"`
	Command        string   `mapstructure:"command"`
	Args           []string `mapstructure:"args"`
	WirelessMarker string   `mapstructure:"wireless_marker" validate:"required"`
	Interface      string   `mapstructure:"interface"`
	RouteTable     string   `mapstructure:"route_table"`
}

// ScannerConfig represents subnet scanner configuration
type ScannerConfig struct {
	Workers       int           `mapstructure:"workers" validate:"min=1,max=256"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout" validate:"gt=0"`
	SweepTimeout  time.Duration `mapstructure:"sweep_timeout" validate:"gt=0"`
	Privileged    bool          `mapstructure:"privileged"`
	ResolveMAC    bool          `mapstructure:"resolve_mac"`
	ARPTable      string        `mapstructure:"arp_table"`
	Arping        bool          `mapstructure:"arping"`
	ArpingTimeout time.Duration `mapstructure:"arping_timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// AlertConfig represents alert configuration
type AlertConfig struct {
	Sound  SoundConfig `mapstructure:"sound"`
	Notify bool        `mapstructure:"notify"`
}

// SoundConfig represents the sound alert configuration
type SoundConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Path       string        `mapstructure:"path"`
	Player     string        `mapstructure:"player"`
	PlayerArgs []string      `mapstructure:"player_args"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// APIConfig represents the status API configuration
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address" validate:"hostport"`
}

// LoadConfig loads the configuration from file, environment and defaults.
// A missing config file is not an error unless path was given explicitly.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(InDot)
		v.AddConfigPath(InHome)
		v.AddConfigPath(InHomeDot)
		v.AddConfigPath(InEtc)
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	v := viper.New()
	registerDefaults(v)

	var config Config
	_ = v.Unmarshal(&config)
	setDefaults(&config)
	return &config
}

// registerDefaults registers every key so environment overrides apply
func registerDefaults(v *viper.Viper) {
	v.SetDefault("monitor.interval", 10*time.Second)
	v.SetDefault("monitor.hostname", "")

	v.SetDefault("locator.method", "auto")
	v.SetDefault("locator.command", "")
	v.SetDefault("locator.args", []string{})
	v.SetDefault("locator.wireless_marker", "wireless")
	v.SetDefault("locator.interface", "")
	v.SetDefault("locator.route_table", "/proc/net/route")

	v.SetDefault("scanner.workers", 64)
	v.SetDefault("scanner.probe_timeout", time.Second)
	v.SetDefault("scanner.sweep_timeout", 30*time.Second)
	v.SetDefault("scanner.privileged", true)
	v.SetDefault("scanner.resolve_mac", true)
	v.SetDefault("scanner.arp_table", "/proc/net/arp")
	v.SetDefault("scanner.arping", false)
	v.SetDefault("scanner.arping_timeout", 500*time.Millisecond)
	v.SetDefault("scanner.cache_ttl", 10*time.Minute)

	v.SetDefault("alert.sound.enabled", true)
	v.SetDefault("alert.sound.path", "")
	v.SetDefault("alert.sound.player", "")
	v.SetDefault("alert.sound.player_args", []string{})
	v.SetDefault("alert.sound.timeout", 30*time.Second)
	v.SetDefault("alert.notify", false)

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.retry_attempts", 3)
	v.SetDefault("notify.retry_delay", time.Second)
	v.SetDefault("notify.queue_size", 16)
	v.SetDefault("notify.rate_limit.enabled", false)
	v.SetDefault("notify.rate_limit.interval", time.Minute)
	v.SetDefault("notify.rate_limit.max_events", 10)

	v.SetDefault("api.enabled", false)
	v.SetDefault("api.address", "127.0.0.1:8086")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
}

// setDefaults sets values that depend on the runtime environment
func setDefaults(config *Config) {
	if config.Monitor.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		config.Monitor.Hostname = hostname
	}

	if config.Alert.Sound.Path == "" {
		if wd, err := os.Getwd(); err == nil {
			config.Alert.Sound.Path = filepath.Join(wd, "sounds", "siren2.wav")
		}
	}

	config.Log.SetDefaults()
}

// Validate validates the configuration
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if cfg.Locator.Method == "command" && cfg.Locator.Command == "" {
		return fmt.Errorf("locator.command is required when locator.method is command")
	}

	if cfg.Scanner.SweepTimeout < cfg.Scanner.ProbeTimeout {
		return fmt.Errorf("scanner.sweep_timeout must not be shorter than scanner.probe_timeout")
	}

	if cfg.Scanner.Arping && cfg.Scanner.ArpingTimeout <= 0 {
		return fmt.Errorf("scanner.arping_timeout must be positive when arping is enabled")
	}

	if cfg.API.Enabled && cfg.API.Address == "" {
		return fmt.Errorf("api.address is required when api is enabled")
	}

	if err := cfg.Log.Validate(); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}

	if err := cfg.Notify.Validate(); err != nil {
		return err
	}

	return nil
}
