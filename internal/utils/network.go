package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// SysClassNet is the sysfs directory describing network interfaces
var SysClassNet = "/sys/class/net"

// InterfaceType represents the type of network interface
type InterfaceType string

const (
	InterfaceTypeEthernet  InterfaceType = "ethernet"
	InterfaceTypeWireless  InterfaceType = "wireless"
	InterfaceTypeVirtual   InterfaceType = "virtual"
	InterfaceTypeBridge    InterfaceType = "bridge"
	InterfaceTypeTunnel    InterfaceType = "tunnel"
	InterfaceTypeBonding   InterfaceType = "bonding"
	InterfaceTypeContainer InterfaceType = "container"
	InterfaceTypeVPN       InterfaceType = "vpn"
	InterfaceTypeLoopback  InterfaceType = "loopback"
)

// interfaceTypePrefixes maps interface name prefixes to their types.
// Longer prefixes are checked first.
var interfaceTypePrefixes = []struct {
	prefix string
	typ    InterfaceType
}{
	{"docker", InterfaceTypeContainer},
	{"ipsec", InterfaceTypeVPN},
	{"lxcbr", InterfaceTypeBridge}, // LXC bridge
	{"virbr", InterfaceTypeBridge}, // libvirt bridge
	{"vmnet", InterfaceTypeVirtual},
	{"vxlan", InterfaceTypeVirtual},
	{"vmbr", InterfaceTypeBridge}, // Proxmox bridge
	{"veth", InterfaceTypeVirtual},
	{"bond", InterfaceTypeBonding},
	{"wlan", InterfaceTypeWireless},
	{"wifi", InterfaceTypeWireless},
	{"utun", InterfaceTypeTunnel},
	{"eth", InterfaceTypeEthernet},
	{"tun", InterfaceTypeTunnel},
	{"tap", InterfaceTypeTunnel},
	{"vpn", InterfaceTypeVPN},
	{"br", InterfaceTypeBridge},
	{"wl", InterfaceTypeWireless},
	{"wg", InterfaceTypeVPN},      // WireGuard
	{"en", InterfaceTypeEthernet}, // macOS/BSD style
	{"lo", InterfaceTypeLoopback},
}

// GetInterfaceType determines the type of network interface
func GetInterfaceType(ifaceName string) InterfaceType {
	// sysfs is authoritative on Linux
	if IsLinux() && hasWirelessDir(ifaceName) {
		return InterfaceTypeWireless
	}

	name := strings.ToLower(ifaceName)
	if strings.Contains(name, "wi-fi") || strings.Contains(name, "wireless") {
		return InterfaceTypeWireless
	}

	for _, p := range interfaceTypePrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.typ
		}
	}

	// Default to Ethernet if no specific type is identified
	return InterfaceTypeEthernet
}

// IsWirelessInterface reports whether the named interface is a wireless adapter
func IsWirelessInterface(ifaceName string) bool {
	return GetInterfaceType(ifaceName) == InterfaceTypeWireless
}

// IsVirtualInterface checks if the interface is virtual/non-physical
func IsVirtualInterface(name string) bool {
	switch GetInterfaceType(name) {
	case InterfaceTypeEthernet, InterfaceTypeWireless:
		return false
	default:
		return true
	}
}

func hasWirelessDir(ifaceName string) bool {
	info, err := os.Stat(filepath.Join(SysClassNet, ifaceName, "wireless"))
	return err == nil && info.IsDir()
}
