package types

import (
	"net"
	"time"
)

// InterfaceState represents the addresses of the active wireless adapter.
// Both fields are zero when no wireless adapter is connected.
type InterfaceState struct {
	Name    string         `json:"name,omitempty"`
	Address NetworkAddress `json:"address"`
	Gateway NetworkAddress `json:"gateway"`
}

// Connected reports whether both address and gateway are present
func (s InterfaceState) Connected() bool {
	return !s.Address.IsZero() && !s.Gateway.IsZero()
}

// Host represents a host that answered the sweep
type Host struct {
	Address      NetworkAddress   `json:"address"`
	HardwareAddr net.HardwareAddr `json:"-"`
	RTT          time.Duration    `json:"rtt"`
}

// MAC returns the hardware address or an empty string when unresolved
func (h Host) MAC() string {
	if len(h.HardwareAddr) == 0 {
		return ""
	}
	return h.HardwareAddr.String()
}

// ScanResult represents the outcome of one sweep
type ScanResult struct {
	Gateway  NetworkAddress `json:"gateway"`
	Subnet   Subnet         `json:"subnet"`
	Hosts    []Host         `json:"hosts"`
	Probed   int            `json:"probed"`
	Duration time.Duration  `json:"duration"`
}

// DeviceCount returns the raw number of responders, gateway included
func (r *ScanResult) DeviceCount() int {
	if r == nil {
		return 0
	}
	return len(r.Hosts)
}

// ContainsGateway reports whether the gateway answered the sweep
func (r *ScanResult) ContainsGateway() bool {
	if r == nil {
		return false
	}
	for _, h := range r.Hosts {
		if h.Address == r.Gateway {
			return true
		}
	}
	return false
}

// CountWithoutGateway returns the responder count with the gateway excluded.
// Display only; alerting uses DeviceCount.
func (r *ScanResult) CountWithoutGateway() int {
	n := r.DeviceCount()
	if r.ContainsGateway() {
		n--
	}
	return n
}

// MonitorState is the only value that lives across cycles
type MonitorState struct {
	PreviousDeviceCount int `json:"previous_device_count"`
}
