package alert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wifiwatch/internal/config"
	"wifiwatch/internal/types"
)

func soundFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "siren2.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))
	return path
}

type call struct {
	name string
	args []string
}

func recorder(calls *[]call, err error) RunFunc {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, call{name: name, args: args})
		return err
	}
}

func TestSoundAlerter_Players(t *testing.T) {
	path := soundFile(t)

	tests := []struct {
		goos string
		name string
		last string
	}{
		{"linux", "aplay", path},
		{"darwin", "afplay", path},
		{"windows", "powershell", "(New-Object Media.SoundPlayer '" + path + "').PlaySync()"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			var calls []call
			s := NewSoundAlerter(config.SoundConfig{Enabled: true, Path: path}, zaptest.NewLogger(t)).
				WithRunner(recorder(&calls, nil))
			s.goos = tt.goos

			require.NoError(t, s.Alert(context.Background(), &types.DeviceEvent{}))
			require.Len(t, calls, 1)
			assert.Equal(t, tt.name, calls[0].name)
			assert.Equal(t, tt.last, calls[0].args[len(calls[0].args)-1])
		})
	}
}

func TestSoundAlerter_CustomPlayer(t *testing.T) {
	path := soundFile(t)
	var calls []call
	s := NewSoundAlerter(config.SoundConfig{
		Path:       path,
		Player:     "paplay",
		PlayerArgs: []string{"--volume", "65536"},
	}, zaptest.NewLogger(t)).WithRunner(recorder(&calls, nil))

	require.NoError(t, s.Alert(context.Background(), &types.DeviceEvent{}))
	require.Len(t, calls, 1)
	assert.Equal(t, "paplay", calls[0].name)
	assert.Equal(t, []string{"--volume", "65536", path}, calls[0].args)
}

func TestSoundAlerter_Errors(t *testing.T) {
	var calls []call
	s := NewSoundAlerter(config.SoundConfig{Path: filepath.Join(t.TempDir(), "missing.wav")}, zaptest.NewLogger(t)).
		WithRunner(recorder(&calls, nil))

	err := s.Alert(context.Background(), &types.DeviceEvent{})
	require.Error(t, err)
	assert.True(t, types.IsAlertError(err))
	assert.Empty(t, calls)

	s = NewSoundAlerter(config.SoundConfig{Path: soundFile(t)}, zaptest.NewLogger(t)).
		WithRunner(recorder(&calls, errors.New("exit status 1")))
	s.goos = "linux"
	err = s.Alert(context.Background(), &types.DeviceEvent{})
	require.Error(t, err)
	assert.True(t, types.IsAlertError(err))
	assert.Contains(t, err.Error(), "aplay failed")

	s.goos = "plan9"
	err = s.Alert(context.Background(), &types.DeviceEvent{})
	assert.True(t, types.IsAlertError(err))
}

func TestMulti(t *testing.T) {
	var order []string
	ok := Func(func(context.Context, *types.DeviceEvent) error {
		order = append(order, "ok")
		return nil
	})
	failing := Func(func(context.Context, *types.DeviceEvent) error {
		order = append(order, "failing")
		return &types.AlertError{Alerter: "test", Err: errors.New("boom")}
	})

	err := Multi{failing, ok, failing}.Alert(context.Background(), &types.DeviceEvent{})
	require.Error(t, err)
	assert.True(t, types.IsAlertError(err))
	assert.Equal(t, []string{"failing", "ok", "failing"}, order)

	assert.NoError(t, Multi{}.Alert(context.Background(), &types.DeviceEvent{}))
	assert.NoError(t, Nop.Alert(context.Background(), nil))
}

type fakeDispatcher struct {
	events []*types.DeviceEvent
	err    error
}

func (f *fakeDispatcher) Dispatch(event *types.DeviceEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func TestNotifyAlerter(t *testing.T) {
	d := &fakeDispatcher{}
	a := NewNotifyAlerter(d)
	event := &types.DeviceEvent{ID: "evt"}

	require.NoError(t, a.Alert(context.Background(), event))
	require.Len(t, d.events, 1)
	assert.Same(t, event, d.events[0])

	d.err = errors.New("notification queue is full")
	err := a.Alert(context.Background(), event)
	assert.True(t, types.IsAlertError(err))
}
