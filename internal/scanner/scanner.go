package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"
	"go.uber.org/zap"

	"wifiwatch/internal/config"
	"wifiwatch/internal/types"
)

// Scanner sweeps the /24 around a gateway for hosts answering a probe.
// Scan is a single blocking call; probes fan out over a bounded worker pool.
type Scanner struct {
	cfg      config.ScannerConfig
	prober   Prober
	resolver Resolver
	logger   *zap.Logger
}

// New creates a new scanner. resolver may be nil to skip hardware address lookup.
func New(cfg config.ScannerConfig, prober Prober, resolver Resolver, logger *zap.Logger) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = time.Second
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = 30 * time.Second
	}
	return &Scanner{
		cfg:      cfg,
		prober:   prober,
		resolver: resolver,
		logger:   logger.Named("scanner"),
	}
}

// NewFromConfig wires the ICMP prober and the configured resolvers
func NewFromConfig(cfg config.ScannerConfig, logger *zap.Logger) *Scanner {
	var resolver Resolver
	if cfg.ResolveMAC {
		chain := ChainResolver{NewARPTableResolver(cfg.ARPTable)}
		if cfg.Arping {
			chain = append(chain, NewArpingResolver(cfg.ArpingTimeout))
		}
		resolver = NewCachedResolver(chain, cfg.CacheTTL)
	}
	return New(cfg, NewICMPProber(cfg.Privileged), resolver, logger)
}

// Scan probes every address of the subnet derived from gateway
func (s *Scanner) Scan(ctx context.Context, gateway types.NetworkAddress) (*types.ScanResult, error) {
	if gateway.IsZero() {
		return nil, &types.ScannerError{Err: errors.New("gateway address is unset")}
	}

	subnet := types.SubnetFromGateway(gateway)
	started := time.Now()

	if err := s.prober.Ready(); err != nil {
		return nil, &types.ScannerError{Subnet: subnet.String(), Err: fmt.Errorf("probe not available: %w", err)}
	}

	awg, err := syncutil.New(syncutil.WithSize(s.cfg.Workers))
	if err != nil {
		return nil, &types.ScannerError{Subnet: subnet.String(), Err: fmt.Errorf("failed to create worker pool: %w", err)}
	}

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	s.logger.Info("Starting sweep",
		zap.String("subnet", subnet.String()),
		zap.Int("workers", s.cfg.Workers),
		zap.Duration("probe_timeout", s.cfg.ProbeTimeout))

	var (
		hosts    = mapsutil.NewSyncLockMap[types.NetworkAddress, *types.Host]()
		probed   atomic.Int64
		failed   atomic.Int64
		errOnce  sync.Once
		firstErr error
	)

	for _, addr := range subnet.Candidates() {
		if sweepCtx.Err() != nil {
			s.logger.Warn("Sweep budget exhausted, skipping remaining addresses",
				zap.String("subnet", subnet.String()),
				zap.Stringer("next", addr))
			break
		}

		awg.Add()
		go func(addr types.NetworkAddress) {
			defer awg.Done()

			probed.Add(1)
			rtt, alive, err := s.prober.Probe(sweepCtx, addr, s.cfg.ProbeTimeout)
			if err != nil {
				failed.Add(1)
				errOnce.Do(func() { firstErr = err })
				s.logger.Debug("Probe failed", zap.Stringer("address", addr), zap.Error(err))
				return
			}
			if !alive {
				return
			}

			host := types.Host{Address: addr, RTT: rtt}
			host.HardwareAddr = s.resolve(ctx, addr)
			_ = hosts.Set(addr, &host)
		}(addr)
	}

	awg.Wait()

	if n := probed.Load(); n > 0 && failed.Load() == n {
		return nil, &types.ScannerError{Subnet: subnet.String(), Err: fmt.Errorf("all %d probes failed: %w", n, firstErr)}
	}

	result := &types.ScanResult{
		Gateway:  gateway,
		Subnet:   subnet,
		Hosts:    collect(hosts),
		Probed:   int(probed.Load()),
		Duration: time.Since(started),
	}

	s.logger.Info("Sweep completed",
		zap.String("subnet", subnet.String()),
		zap.Int("probed", result.Probed),
		zap.Int("found", result.DeviceCount()),
		zap.Int64("failed", failed.Load()),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// resolve looks up the hardware address of a responder, best-effort
func (s *Scanner) resolve(ctx context.Context, addr types.NetworkAddress) net.HardwareAddr {
	if s.resolver == nil {
		return nil
	}
	mac, err := s.resolver.Resolve(ctx, addr)
	if err != nil {
		s.logger.Debug("Hardware address not resolved", zap.Stringer("address", addr), zap.Error(err))
		return nil
	}
	return mac
}

// collect returns the hosts ordered by address
func collect(m *mapsutil.SyncLockMap[types.NetworkAddress, *types.Host]) []types.Host {
	hosts := make([]types.Host, 0)
	_ = m.Iterate(func(_ types.NetworkAddress, h *types.Host) error {
		hosts = append(hosts, *h)
		return nil
	})
	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Address.Less(hosts[j].Address)
	})
	return hosts
}
