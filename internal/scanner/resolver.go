package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/j-keck/arping"
	"github.com/projectdiscovery/gcache"

	"wifiwatch/internal/types"
	"wifiwatch/internal/utils"
)

// ErrNoHardwareAddr is returned when no hardware address is known for an address
var ErrNoHardwareAddr = errors.New("no hardware address")

// Resolver maps a network address to its hardware address
type Resolver interface {
	Resolve(ctx context.Context, addr types.NetworkAddress) (net.HardwareAddr, error)
}

// ARPTableResolver reads the local neighbour cache
type ARPTableResolver struct {
	path string
	run  func(ctx context.Context) ([]byte, error)
}

// NewARPTableResolver creates a resolver reading /proc/net/arp on Linux and
// `arp -a` output elsewhere
func NewARPTableResolver(path string) *ARPTableResolver {
	if path == "" {
		path = "/proc/net/arp"
	}
	return &ARPTableResolver{
		path: path,
		run: func(ctx context.Context) ([]byte, error) {
			return exec.CommandContext(ctx, "arp", "-a").Output()
		},
	}
}

// Resolve implements Resolver
func (r *ARPTableResolver) Resolve(ctx context.Context, addr types.NetworkAddress) (net.HardwareAddr, error) {
	var (
		table map[types.NetworkAddress]net.HardwareAddr
		err   error
	)

	if utils.IsLinux() {
		table, err = r.readProcTable()
	} else {
		var out []byte
		out, err = r.run(ctx)
		if err == nil {
			table = parseARPCommand(string(out))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ARP table: %w", err)
	}

	mac, ok := table[addr]
	if !ok {
		return nil, ErrNoHardwareAddr
	}
	return mac, nil
}

func (r *ARPTableResolver) readProcTable() (map[types.NetworkAddress]net.HardwareAddr, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	return parseProcARP(string(data)), nil
}

// parseProcARP parses /proc/net/arp:
// IP address HW type Flags HW address Mask Device
func parseProcARP(data string) map[types.NetworkAddress]net.HardwareAddr {
	table := make(map[types.NetworkAddress]net.HardwareAddr)

	scanner := bufio.NewScanner(strings.NewReader(data))
	// Skip header line
	if !scanner.Scan() {
		return table
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}
		addEntry(table, fields[0], fields[3])
	}
	return table
}

// parseARPCommand parses `arp -a` output of macOS/BSD
// ("? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0") and Windows
// ("  192.168.1.1    aa-bb-cc-dd-ee-ff    dynamic").
func parseARPCommand(output string) map[types.NetworkAddress]net.HardwareAddr {
	table := make(map[types.NetworkAddress]net.HardwareAddr)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// BSD style
		if start, end := strings.Index(line, "("), strings.Index(line, ")"); start != -1 && end > start {
			at := strings.Index(line, " at ")
			if at == -1 {
				continue
			}
			rest := strings.Fields(line[at+4:])
			if len(rest) == 0 {
				continue
			}
			addEntry(table, line[start+1:end], rest[0])
			continue
		}

		// Windows style
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			addEntry(table, fields[0], fields[1])
		}
	}
	return table
}

func addEntry(table map[types.NetworkAddress]net.HardwareAddr, ipStr, macStr string) {
	// Skip incomplete entries
	if macStr == "00:00:00:00:00:00" || macStr == "<incomplete>" || macStr == "(incomplete)" {
		return
	}

	addr, err := types.ParseNetworkAddress(ipStr)
	if err != nil {
		return
	}

	mac, err := parseMAC(macStr)
	if err != nil {
		return
	}
	table[addr] = mac
}

// parseMAC accepts colon or dash separated addresses, including the
// single-digit octets printed by macOS (a:b:c:d:e:f)
func parseMAC(s string) (net.HardwareAddr, error) {
	s = strings.ReplaceAll(s, "-", ":")
	parts := strings.Split(s, ":")
	if len(parts) == 6 {
		for i, p := range parts {
			if len(p) == 1 {
				parts[i] = "0" + p
			}
		}
		s = strings.Join(parts, ":")
	}
	return net.ParseMAC(s)
}

// ArpingResolver sends an ARP request for each address. It requires raw
// socket privileges and works on Linux and macOS only.
type ArpingResolver struct{}

// NewArpingResolver creates a new arping resolver
func NewArpingResolver(timeout time.Duration) *ArpingResolver {
	if timeout > 0 {
		arping.SetTimeout(timeout)
	}
	return &ArpingResolver{}
}

// Resolve implements Resolver
func (r *ArpingResolver) Resolve(_ context.Context, addr types.NetworkAddress) (net.HardwareAddr, error) {
	mac, _, err := arping.Ping(addr.IP())
	if err != nil {
		return nil, fmt.Errorf("arping failed: %w", err)
	}
	return mac, nil
}

// ChainResolver tries each resolver in order and returns the first hit
type ChainResolver []Resolver

// Resolve implements Resolver
func (c ChainResolver) Resolve(ctx context.Context, addr types.NetworkAddress) (net.HardwareAddr, error) {
	var errs []error
	for _, r := range c {
		mac, err := r.Resolve(ctx, addr)
		if err == nil {
			return mac, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoHardwareAddr
	}
	return nil, errors.Join(errs...)
}

// CachedResolver remembers resolved hardware addresses
type CachedResolver struct {
	next  Resolver
	cache gcache.Cache[types.NetworkAddress, net.HardwareAddr]
}

// NewCachedResolver wraps next with an LRU cache; entries expire after ttl
func NewCachedResolver(next Resolver, ttl time.Duration) *CachedResolver {
	builder := gcache.New[types.NetworkAddress, net.HardwareAddr](256).LRU()
	if ttl > 0 {
		builder = builder.Expiration(ttl)
	}
	return &CachedResolver{
		next:  next,
		cache: builder.Build(),
	}
}

// Resolve implements Resolver
func (c *CachedResolver) Resolve(ctx context.Context, addr types.NetworkAddress) (net.HardwareAddr, error) {
	if mac, err := c.cache.Get(addr); err == nil {
		return mac, nil
	}

	mac, err := c.next.Resolve(ctx, addr)
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(addr, mac)
	return mac, nil
}
