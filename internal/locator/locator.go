package locator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wifiwatch/internal/config"
	"wifiwatch/internal/types"
	"wifiwatch/internal/utils"
)

// Locator finds the address and gateway of the active wireless adapter.
//
// A zero InterfaceState (or types.ErrNotConnected) means no wireless adapter
// is connected. Failure to query the OS is reported as *types.LocatorError.
type Locator interface {
	Locate(ctx context.Context) (types.InterfaceState, error)
}

// Func adapts a function to the Locator interface
type Func func(ctx context.Context) (types.InterfaceState, error)

// Locate calls f(ctx)
func (f Func) Locate(ctx context.Context) (types.InterfaceState, error) {
	return f(ctx)
}

// New creates the locator selected by cfg.Method
func New(cfg config.LocatorConfig, logger *zap.Logger) (Locator, error) {
	method := cfg.Method
	if method == "" || method == "auto" {
		method = "system"
		if utils.IsWindows() {
			method = "command"
			if cfg.Command == "" {
				cfg.Command = "ipconfig"
			}
		}
	}

	switch method {
	case "command":
		if cfg.Command == "" {
			return nil, fmt.Errorf("locator command is required")
		}
		parser := NewParser(cfg.WirelessMarker)
		return NewCommandLocator(cfg.Command, cfg.Args, parser, logger), nil

	case "system":
		var gateways GatewayResolver
		if utils.IsLinux() {
			gateways = &ProcRouteTable{Path: cfg.RouteTable}
		} else {
			gateways = &RouteCommand{}
		}
		return NewSystemLocator(cfg.Interface, gateways, logger), nil

	default:
		return nil, fmt.Errorf("unknown locator method: %s", cfg.Method)
	}
}
