package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ping/ping"
	"golang.org/x/net/icmp"

	"wifiwatch/internal/types"
)

// Prober checks whether a single address is reachable
type Prober interface {
	// Ready reports whether probes can be sent at all
	Ready() error
	// Probe returns the round-trip time and whether addr answered within timeout
	Probe(ctx context.Context, addr types.NetworkAddress, timeout time.Duration) (time.Duration, bool, error)
}

// ICMPProber sends a single ICMP echo request per address
type ICMPProber struct {
	privileged bool
}

// NewICMPProber creates a new ICMP prober. Privileged mode uses raw sockets,
// otherwise unprivileged datagram ICMP sockets.
func NewICMPProber(privileged bool) *ICMPProber {
	return &ICMPProber{privileged: privileged}
}

func (p *ICMPProber) network() string {
	if p.privileged {
		return "ip4:icmp"
	}
	return "udp4"
}

// Ready opens and closes an ICMP socket of the configured kind
func (p *ICMPProber) Ready() error {
	conn, err := icmp.ListenPacket(p.network(), "0.0.0.0")
	if err != nil {
		return fmt.Errorf("cannot open %s socket: %w", p.network(), err)
	}
	return conn.Close()
}

// Probe implements Prober
func (p *ICMPProber) Probe(ctx context.Context, addr types.NetworkAddress, timeout time.Duration) (time.Duration, bool, error) {
	pinger, err := ping.NewPinger(addr.String())
	if err != nil {
		return 0, false, fmt.Errorf("creating pinger: %w", err)
	}

	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(p.privileged)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		return 0, false, err
	}

	stats := pinger.Statistics()
	return stats.AvgRtt, stats.PacketsRecv > 0, nil
}
