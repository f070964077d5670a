package locator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"wifiwatch/internal/types"
)

// GatewayResolver returns the default gateway routed through an interface
type GatewayResolver interface {
	DefaultGateway(ctx context.Context, iface string) (types.NetworkAddress, bool, error)
}

const (
	rtfUp      = 0x1
	rtfGateway = 0x2
)

// ProcRouteTable reads default routes from /proc/net/route
type ProcRouteTable struct {
	Path string
}

// DefaultGateway implements GatewayResolver
func (t *ProcRouteTable) DefaultGateway(_ context.Context, iface string) (types.NetworkAddress, bool, error) {
	path := t.Path
	if path == "" {
		path = "/proc/net/route"
	}

	f, err := os.Open(path)
	if err != nil {
		return types.NetworkAddress{}, false, fmt.Errorf("failed to open route table: %w", err)
	}
	defer f.Close()

	return parseRouteTable(f, iface)
}

// parseRouteTable picks the lowest-metric default route of iface
func parseRouteTable(r io.Reader, iface string) (types.NetworkAddress, bool, error) {
	var (
		best       types.NetworkAddress
		found      bool
		bestMetric uint64
	)

	scanner := bufio.NewScanner(r)
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 7 || fields[0] != iface || fields[1] != "00000000" {
			continue
		}

		flags, err := strconv.ParseUint(fields[3], 16, 32)
		if err != nil || flags&(rtfUp|rtfGateway) != rtfUp|rtfGateway {
			continue
		}

		gw, err := parseHexAddress(fields[2])
		if err != nil || gw.IsZero() {
			continue
		}

		metric, err := strconv.ParseUint(fields[6], 10, 32)
		if err != nil {
			continue
		}

		if !found || metric < bestMetric {
			best, bestMetric, found = gw, metric, true
		}
	}

	if err := scanner.Err(); err != nil {
		return types.NetworkAddress{}, false, fmt.Errorf("failed to read route table: %w", err)
	}

	return best, found, nil
}

// parseHexAddress decodes a little-endian hex IPv4 as found in /proc/net/route
func parseHexAddress(s string) (types.NetworkAddress, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return types.NetworkAddress{}, fmt.Errorf("invalid route address %q: %w", s, err)
	}
	return types.NetworkAddress{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}, nil
}

// RouteCommand reads the default route with `route -n get default` (macOS, BSD)
type RouteCommand struct {
	Run RunFunc
}

// DefaultGateway implements GatewayResolver
func (c *RouteCommand) DefaultGateway(ctx context.Context, iface string) (types.NetworkAddress, bool, error) {
	run := c.Run
	if run == nil {
		run = runCommand
	}

	out, err := run(ctx, "route", "-n", "get", "default")
	if err != nil {
		// no default route is reported as a failing command
		return types.NetworkAddress{}, false, nil
	}

	gw, routeIface := parseRouteGet(string(out))
	if gw.IsZero() || routeIface != iface {
		return types.NetworkAddress{}, false, nil
	}
	return gw, true, nil
}

func parseRouteGet(output string) (types.NetworkAddress, string) {
	var (
		gw    types.NetworkAddress
		iface string
	)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "gateway":
			if addr, err := types.ParseNetworkAddress(value); err == nil {
				gw = addr
			}
		case "interface":
			iface = value
		}
	}
	return gw, iface
}
