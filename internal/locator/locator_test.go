package locator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wifiwatch/internal/config"
	"wifiwatch/internal/types"
)

func staticRunner(out string, err error) RunFunc {
	return func(context.Context, string, ...string) ([]byte, error) {
		return []byte(out), err
	}
}

func TestCommandLocator_Locate(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("connected", func(t *testing.T) {
		l := NewCommandLocator("ipconfig", nil, NewParser("wireless"), logger).
			WithRunner(staticRunner(ipconfigOutput, nil))

		state, err := l.Locate(context.Background())
		require.NoError(t, err)
		assert.True(t, state.Connected())
		assert.Equal(t, "192.168.1.23", state.Address.String())
		assert.Equal(t, "192.168.1.1", state.Gateway.String())
	})

	t.Run("not connected is not an error", func(t *testing.T) {
		l := NewCommandLocator("ipconfig", nil, NewParser("wireless"), logger).
			WithRunner(staticRunner("Windows IP Configuration\n", nil))

		state, err := l.Locate(context.Background())
		require.NoError(t, err)
		assert.False(t, state.Connected())
		assert.Equal(t, types.InterfaceState{}, state)
	})

	t.Run("command failure", func(t *testing.T) {
		l := NewCommandLocator("ipconfig", []string{"/all"}, NewParser("wireless"), logger).
			WithRunner(staticRunner("", errors.New("executable file not found in $PATH")))

		_, err := l.Locate(context.Background())
		require.Error(t, err)
		assert.True(t, types.IsLocatorError(err))
		assert.Contains(t, err.Error(), "exec ipconfig /all")
	})

	t.Run("idempotent", func(t *testing.T) {
		l := NewCommandLocator("ipconfig", nil, NewParser("wireless"), logger).
			WithRunner(staticRunner(ipconfigOutput, nil))

		first, err := l.Locate(context.Background())
		require.NoError(t, err)
		second, err := l.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

const routeTable = "Iface\tDestination\tGateway \tFlags\tRefCnt\tUse\tMetric\tMask\t\tMTU\tWindow\tIRTT\n" +
	"eth0\t00000000\t0100000A\t0003\t0\t0\t100\t00000000\t0\t0\t0\n" +
	"wlan0\t00000000\t0101A8C0\t0003\t0\t0\t600\t00000000\t0\t0\t0\n" +
	"wlan0\t00000000\tFE01A8C0\t0003\t0\t0\t50\t00000000\t0\t0\t0\n" +
	"wlan0\t0001A8C0\t00000000\t0001\t0\t0\t600\t00FFFFFF\t0\t0\t0\n"

func TestParseRouteTable(t *testing.T) {
	gw, ok, err := parseRouteTable(strings.NewReader(routeTable), "wlan0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.254", gw.String())

	gw, ok, err = parseRouteTable(strings.NewReader(routeTable), "eth0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", gw.String())

	_, ok, err = parseRouteTable(strings.NewReader(routeTable), "wlan1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseRouteGet(t *testing.T) {
	out := `   route to: default
destination: default
       mask: default
    gateway: 192.168.1.1
  interface: en0
      flags: <UP,GATEWAY,DONE,STATIC,PRCLONING>
`
	gw, iface := parseRouteGet(out)
	assert.Equal(t, "192.168.1.1", gw.String())
	assert.Equal(t, "en0", iface)

	rc := &RouteCommand{Run: staticRunner(out, nil)}
	got, ok, err := rc.DefaultGateway(context.Background(), "en0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, gw, got)

	_, ok, err = rc.DefaultGateway(context.Background(), "en1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHardwarePortsWireless(t *testing.T) {
	out := `
Hardware Port: Ethernet
Device: en1
Ethernet Address: 00:11:22:33:44:55

Hardware Port: Wi-Fi
Device: en0
Ethernet Address: 66:77:88:99:aa:bb
`
	got := hardwarePortsWireless(out)
	assert.True(t, got["en0"])
	assert.False(t, got["en1"])
}

func writeRouteTable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "route")
	require.NoError(t, os.WriteFile(path, []byte(routeTable), 0644))
	return path
}

func TestSystemLocator_Locate(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ifaces := []psnet.InterfaceStat{
		{Name: "lo", Flags: []string{"up", "loopback"}, Addrs: psnet.InterfaceAddrList{{Addr: "127.0.0.1/8"}}},
		{Name: "eth0", Flags: []string{"up", "broadcast"}, Addrs: psnet.InterfaceAddrList{{Addr: "10.0.0.5/24"}}},
		{Name: "wlan0", Flags: []string{"up", "broadcast", "multicast"}, Addrs: psnet.InterfaceAddrList{
			{Addr: "fe80::1/64"},
			{Addr: "192.168.1.23/24"},
		}},
	}
	listed := func(context.Context) ([]psnet.InterfaceStat, error) { return ifaces, nil }
	wireless := func(_ context.Context, name string) bool { return strings.HasPrefix(name, "wlan") }

	t.Run("wireless interface with default route", func(t *testing.T) {
		l := NewSystemLocator("", &ProcRouteTable{Path: writeRouteTable(t)}, logger).
			WithInterfaces(listed).
			WithWireless(wireless)

		state, err := l.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "wlan0", state.Name)
		assert.Equal(t, "192.168.1.23", state.Address.String())
		assert.Equal(t, "192.168.1.254", state.Gateway.String())
	})

	t.Run("configured interface wins over classification", func(t *testing.T) {
		l := NewSystemLocator("eth0", &ProcRouteTable{Path: writeRouteTable(t)}, logger).
			WithInterfaces(listed).
			WithWireless(wireless)

		state, err := l.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.1", state.Gateway.String())
	})

	t.Run("down wireless interface", func(t *testing.T) {
		down := []psnet.InterfaceStat{{Name: "wlan0", Flags: []string{"broadcast"}, Addrs: ifaces[2].Addrs}}
		l := NewSystemLocator("", &ProcRouteTable{Path: writeRouteTable(t)}, logger).
			WithInterfaces(func(context.Context) ([]psnet.InterfaceStat, error) { return down, nil }).
			WithWireless(wireless)

		state, err := l.Locate(context.Background())
		assert.ErrorIs(t, err, types.ErrNotConnected)
		assert.False(t, state.Connected())
	})

	t.Run("virtual interfaces are skipped", func(t *testing.T) {
		l := NewSystemLocator("", &ProcRouteTable{Path: writeRouteTable(t)}, logger).
			WithWireless(func(context.Context, string) bool { return true })

		up := []string{"up", "broadcast"}
		assert.False(t, l.candidate(context.Background(), psnet.InterfaceStat{Name: "docker0", Flags: up}))
		assert.False(t, l.candidate(context.Background(), psnet.InterfaceStat{Name: "veth12ab", Flags: up}))
		assert.True(t, l.candidate(context.Background(), psnet.InterfaceStat{Name: "wlp2s0", Flags: up}))
	})

	t.Run("enumeration failure", func(t *testing.T) {
		l := NewSystemLocator("", &ProcRouteTable{Path: writeRouteTable(t)}, logger).
			WithInterfaces(func(context.Context) ([]psnet.InterfaceStat, error) {
				return nil, errors.New("permission denied")
			})

		_, err := l.Locate(context.Background())
		assert.True(t, types.IsLocatorError(err))
	})

	t.Run("unreadable route table", func(t *testing.T) {
		l := NewSystemLocator("", &ProcRouteTable{Path: filepath.Join(t.TempDir(), "missing")}, logger).
			WithInterfaces(listed).
			WithWireless(wireless)

		_, err := l.Locate(context.Background())
		assert.True(t, types.IsLocatorError(err))
	})
}

func TestNew(t *testing.T) {
	logger := zaptest.NewLogger(t)

	l, err := New(config.LocatorConfig{Method: "command", Command: "ipconfig", WirelessMarker: "wireless"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &CommandLocator{}, l)

	l, err = New(config.LocatorConfig{Method: "system", WirelessMarker: "wireless"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SystemLocator{}, l)

	_, err = New(config.LocatorConfig{Method: "command"}, logger)
	assert.Error(t, err)

	_, err = New(config.LocatorConfig{Method: "magic"}, logger)
	assert.Error(t, err)
}
