package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInterfaceType(t *testing.T) {
	SysClassNet = t.TempDir()
	t.Cleanup(func() { SysClassNet = "/sys/class/net" })

	tests := []struct {
		name string
		want InterfaceType
	}{
		{"wlan0", InterfaceTypeWireless},
		{"wlp2s0", InterfaceTypeWireless},
		{"Wi-Fi", InterfaceTypeWireless},
		{"Wireless Network Connection", InterfaceTypeWireless},
		{"eth0", InterfaceTypeEthernet},
		{"enp3s0", InterfaceTypeEthernet},
		{"docker0", InterfaceTypeContainer},
		{"veth12ab", InterfaceTypeVirtual},
		{"virbr0", InterfaceTypeBridge},
		{"br-1234", InterfaceTypeBridge},
		{"wg0", InterfaceTypeVPN},
		{"tun0", InterfaceTypeTunnel},
		{"lo", InterfaceTypeLoopback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetInterfaceType(tt.name))
		})
	}
}

func TestGetInterfaceType_Sysfs(t *testing.T) {
	if !IsLinux() {
		t.Skip("sysfs lookup is linux only")
	}

	root := t.TempDir()
	SysClassNet = root
	t.Cleanup(func() { SysClassNet = "/sys/class/net" })

	require.NoError(t, os.MkdirAll(filepath.Join(root, "enx00e04c", "wireless"), 0755))

	assert.True(t, IsWirelessInterface("enx00e04c"))
	assert.False(t, IsWirelessInterface("enx99"))
}

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, "IPv4 Address. . . : 192.168.1.5", NormalizeString("  IPv4 Address. . . ： 192.168.1.5 "))
	assert.True(t, ContainsFold("Wireless LAN adapter Wi-Fi:", "WIRELESS"))
}
