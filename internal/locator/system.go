package locator

import (
	"bufio"
	"context"
	"net"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"

	"wifiwatch/internal/types"
	"wifiwatch/internal/utils"
)

// InterfacesFunc lists the host network interfaces
type InterfacesFunc func(ctx context.Context) ([]psnet.InterfaceStat, error)

// WirelessFunc reports whether the named interface is a wireless adapter
type WirelessFunc func(ctx context.Context, name string) bool

// SystemLocator enumerates interfaces through the OS API and reads the
// default route for the wireless one.
type SystemLocator struct {
	iface      string
	interfaces InterfacesFunc
	wireless   WirelessFunc
	gateways   GatewayResolver
	logger     *zap.Logger
}

// NewSystemLocator creates a locator backed by interface enumeration.
// When iface is set only that interface is considered.
func NewSystemLocator(iface string, gateways GatewayResolver, logger *zap.Logger) *SystemLocator {
	l := &SystemLocator{
		iface: iface,
		interfaces: func(ctx context.Context) ([]psnet.InterfaceStat, error) {
			return psnet.InterfacesWithContext(ctx)
		},
		wireless: func(_ context.Context, name string) bool {
			return utils.IsWirelessInterface(name)
		},
		gateways: gateways,
		logger:   logger.Named("locator"),
	}
	if utils.IsDarwin() {
		l.wireless = hardwarePortWireless(runCommand)
	}
	return l
}

// WithInterfaces replaces the interface source
func (l *SystemLocator) WithInterfaces(fn InterfacesFunc) *SystemLocator {
	l.interfaces = fn
	return l
}

// WithWireless replaces the wireless classifier
func (l *SystemLocator) WithWireless(fn WirelessFunc) *SystemLocator {
	l.wireless = fn
	return l
}

// Locate implements Locator
func (l *SystemLocator) Locate(ctx context.Context) (types.InterfaceState, error) {
	ifaces, err := l.interfaces(ctx)
	if err != nil {
		return types.InterfaceState{}, &types.LocatorError{Op: "list interfaces", Err: err}
	}

	for _, iface := range ifaces {
		if !l.candidate(ctx, iface) {
			continue
		}

		addr, ok := firstInterfaceIPv4(iface)
		if !ok {
			l.logger.Debug("Wireless interface has no IPv4 address", zap.String("interface", iface.Name))
			continue
		}

		gw, ok, err := l.gateways.DefaultGateway(ctx, iface.Name)
		if err != nil {
			return types.InterfaceState{}, &types.LocatorError{Op: "read default gateway", Err: err}
		}
		if !ok {
			l.logger.Debug("Wireless interface has no default gateway", zap.String("interface", iface.Name))
			continue
		}

		return types.InterfaceState{Name: iface.Name, Address: addr, Gateway: gw}, nil
	}

	return types.InterfaceState{}, types.ErrNotConnected
}

func (l *SystemLocator) candidate(ctx context.Context, iface psnet.InterfaceStat) bool {
	if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
		return false
	}
	if l.iface != "" {
		return iface.Name == l.iface
	}
	if utils.IsVirtualInterface(iface.Name) {
		return false
	}
	return l.wireless(ctx, iface.Name)
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

func firstInterfaceIPv4(iface psnet.InterfaceStat) (types.NetworkAddress, bool) {
	for _, a := range iface.Addrs {
		ip, _, err := net.ParseCIDR(a.Addr)
		if err != nil {
			ip = net.ParseIP(a.Addr)
		}
		if addr, ok := types.AddressFromIP(ip); ok && !addr.IsZero() {
			return addr, true
		}
	}
	return types.NetworkAddress{}, false
}

// hardwarePortWireless classifies interfaces with `networksetup -listallhardwareports`
// on macOS, where Wi-Fi adapters are named like wired ones (en0, en1).
func hardwarePortWireless(run RunFunc) WirelessFunc {
	return func(ctx context.Context, name string) bool {
		out, err := run(ctx, "networksetup", "-listallhardwareports")
		if err != nil {
			return utils.IsWirelessInterface(name)
		}
		return hardwarePortsWireless(string(out))[name]
	}
}

// hardwarePortsWireless maps device names to whether their hardware port is Wi-Fi
func hardwarePortsWireless(output string) map[string]bool {
	devices := make(map[string]bool)

	var port string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Hardware Port":
			port = value
		case "Device":
			devices[value] = utils.ContainsFold(port, "wi-fi") || utils.ContainsFold(port, "airport")
		}
	}
	return devices
}
