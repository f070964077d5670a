package alert

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"wifiwatch/internal/config"
	"wifiwatch/internal/types"
	"wifiwatch/internal/utils"
)

// RunFunc runs an external command to completion
type RunFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// SoundAlerter plays an audio file through a platform player
type SoundAlerter struct {
	cfg    config.SoundConfig
	goos   string
	run    RunFunc
	logger *zap.Logger
}

// NewSoundAlerter creates a new sound alerter
func NewSoundAlerter(cfg config.SoundConfig, logger *zap.Logger) *SoundAlerter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SoundAlerter{
		cfg:    cfg,
		goos:   runtime.GOOS,
		run:    runCommand,
		logger: logger.Named("sound"),
	}
}

// WithRunner replaces the command runner
func (s *SoundAlerter) WithRunner(run RunFunc) *SoundAlerter {
	s.run = run
	return s
}

// Alert plays the sound and blocks until the player exits
func (s *SoundAlerter) Alert(ctx context.Context, _ *types.DeviceEvent) error {
	if !utils.IsFileExists(s.cfg.Path) {
		return &types.AlertError{Alerter: "sound", Err: fmt.Errorf("sound file not found: %s", s.cfg.Path)}
	}

	name, args, err := s.command()
	if err != nil {
		return &types.AlertError{Alerter: "sound", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	s.logger.Debug("Playing alert sound", zap.String("player", name), zap.String("path", s.cfg.Path))
	if err := s.run(ctx, name, args...); err != nil {
		return &types.AlertError{Alerter: "sound", Err: fmt.Errorf("%s failed: %w", name, err)}
	}
	return nil
}

// command returns the player invocation for the current platform
func (s *SoundAlerter) command() (string, []string, error) {
	if s.cfg.Player != "" {
		args := append(append([]string{}, s.cfg.PlayerArgs...), s.cfg.Path)
		return s.cfg.Player, args, nil
	}

	switch s.goos {
	case "linux":
		return "aplay", []string{"-q", s.cfg.Path}, nil
	case "darwin":
		return "afplay", []string{s.cfg.Path}, nil
	case "windows":
		path := strings.ReplaceAll(s.cfg.Path, "'", "''")
		return "powershell", []string{
			"-NoProfile", "-NonInteractive", "-Command",
			fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", path),
		}, nil
	default:
		return "", nil, errors.New("no sound player known for " + s.goos + ", set alert.sound.player")
	}
}
