package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wifiwatch/internal/types"
)

const ipconfigOutput = `
Windows IP Configuration


Ethernet adapter Ethernet:

   Connection-specific DNS Suffix  . : lan
   IPv4 Address. . . . . . . . . . . : 10.0.0.15
   Subnet Mask . . . . . . . . . . . : 255.255.255.0
   Default Gateway . . . . . . . . . : 10.0.0.1

Wireless LAN adapter Wi-Fi:

   Connection-specific DNS Suffix  . : home
   Link-local IPv6 Address . . . . . : fe80::1c2d:3e4f:5a6b:7c8d%12
   IPv4 Address. . . . . . . . . . . : 192.168.1.23
   Subnet Mask . . . . . . . . . . . : 255.255.255.0
   Default Gateway . . . . . . . . . : 192.168.1.1
`

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   types.InterfaceState
	}{
		{
			name:   "wireless block after ethernet",
			output: ipconfigOutput,
			want: types.InterfaceState{
				Name:    "Wireless LAN adapter Wi-Fi",
				Address: types.MustParseNetworkAddress("192.168.1.23"),
				Gateway: types.MustParseNetworkAddress("192.168.1.1"),
			},
		},
		{
			name: "lowercased output",
			output: `wireless lan adapter wi-fi:

   ipv4 address. . . . . . . . . . . : 172.16.4.9(preferred)
   subnet mask . . . . . . . . . . . : 255.255.255.0
   default gateway . . . . . . . . . : 172.16.4.254
`,
			want: types.InterfaceState{
				Name:    "wireless lan adapter wi-fi",
				Address: types.MustParseNetworkAddress("172.16.4.9"),
				Gateway: types.MustParseNetworkAddress("172.16.4.254"),
			},
		},
		{
			name: "gateway on continuation line",
			output: `Wireless LAN adapter Wi-Fi:

   IPv4 Address. . . . . . . . . . . : 192.168.43.100
   Subnet Mask . . . . . . . . . . . : 255.255.255.0
   Default Gateway . . . . . . . . . : fe80::1%12
                                       192.168.43.1
   DHCP Server . . . . . . . . . . . : 192.168.43.1
`,
			want: types.InterfaceState{
				Name:    "Wireless LAN adapter Wi-Fi",
				Address: types.MustParseNetworkAddress("192.168.43.100"),
				Gateway: types.MustParseNetworkAddress("192.168.43.1"),
			},
		},
		{
			name: "full-width colons",
			output: "Wireless LAN adapter WLAN：\r\n\r\n   IPv4 Address. . . . . . . . . . . ： 192.168.0.8\r\n   Default Gateway . . . . . . . . . ： 192.168.0.1\r\n",
			want: types.InterfaceState{
				Name:    "Wireless LAN adapter WLAN",
				Address: types.MustParseNetworkAddress("192.168.0.8"),
				Gateway: types.MustParseNetworkAddress("192.168.0.1"),
			},
		},
		{
			name: "disconnected wireless then connected wireless",
			output: `Wireless LAN adapter Local Area Connection* 1:

   Media State . . . . . . . . . . . : Media disconnected

Wireless LAN adapter Wi-Fi 2:

   IPv4 Address. . . . . . . . . . . : 10.10.0.7
   Default Gateway . . . . . . . . . : 10.10.0.1
`,
			want: types.InterfaceState{
				Name:    "Wireless LAN adapter Wi-Fi 2",
				Address: types.MustParseNetworkAddress("10.10.0.7"),
				Gateway: types.MustParseNetworkAddress("10.10.0.1"),
			},
		},
		{
			name: "never combines fields across adapters",
			output: `Wireless LAN adapter Wi-Fi:

   IPv4 Address. . . . . . . . . . . : 192.168.1.23
   Default Gateway . . . . . . . . . :

Ethernet adapter Ethernet:

   IPv4 Address. . . . . . . . . . . : 10.0.0.15
   Default Gateway . . . . . . . . . : 10.0.0.1
`,
			want: types.InterfaceState{},
		},
		{
			name: "no wireless adapter",
			output: `Ethernet adapter Ethernet:

   IPv4 Address. . . . . . . . . . . : 10.0.0.15
   Default Gateway . . . . . . . . . : 10.0.0.1
`,
			want: types.InterfaceState{},
		},
		{
			name: "marker in a field value does not select the adapter",
			output: `Ethernet adapter Ethernet:

   Connection-specific DNS Suffix  . : wireless.corp
   IPv4 Address. . . . . . . . . . . : 10.0.0.15
   Default Gateway . . . . . . . . . : 10.0.0.1

Wireless LAN adapter Wi-Fi:

   IPv4 Address. . . . . . . . . . . : 192.168.1.23
   Default Gateway . . . . . . . . . : 192.168.1.1
`,
			want: types.InterfaceState{
				Name:    "Wireless LAN adapter Wi-Fi",
				Address: types.MustParseNetworkAddress("192.168.1.23"),
				Gateway: types.MustParseNetworkAddress("192.168.1.1"),
			},
		},
		{
			name: "marker in the adapter description",
			output: `Ethernet adapter Ethernet 3:

   Description . . . . . . . . . . . : Intel(R) Wireless-AC 9560 160MHz
   IPv4 Address. . . . . . . . . . . : 192.168.50.12
   Default Gateway . . . . . . . . . : 192.168.50.1
`,
			want: types.InterfaceState{
				Name:    "Ethernet adapter Ethernet 3",
				Address: types.MustParseNetworkAddress("192.168.50.12"),
				Gateway: types.MustParseNetworkAddress("192.168.50.1"),
			},
		},
		{
			name: "autoconfiguration address is not the adapter address",
			output: `Wireless LAN adapter Wi-Fi:

   Autoconfiguration IPv4 Address. . : 169.254.10.20
   IPv4 Address. . . . . . . . . . . : 192.168.1.23
   Default Gateway . . . . . . . . . : 192.168.1.1
`,
			want: types.InterfaceState{
				Name:    "Wireless LAN adapter Wi-Fi",
				Address: types.MustParseNetworkAddress("192.168.1.23"),
				Gateway: types.MustParseNetworkAddress("192.168.1.1"),
			},
		},
		{
			name:   "empty output",
			output: "",
			want:   types.InterfaceState{},
		},
	}

	p := NewParser("wireless")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.output))
		})
	}
}

func TestParser_CustomLabels(t *testing.T) {
	p := &Parser{
		Marker:        "wlan",
		AddressLabels: []string{"ipv4-adresse"},
		GatewayLabels: []string{"standardgateway"},
	}

	out := `Drahtlos-LAN-Adapter WLAN:

   IPv4-Adresse  . . . . . . . . . . : 192.168.178.20
   Standardgateway . . . . . . . . . : 192.168.178.1
`
	state := p.Parse(out)
	assert.True(t, state.Connected())
	assert.Equal(t, "192.168.178.1", state.Gateway.String())
}

func TestParser_Idempotent(t *testing.T) {
	p := NewParser("wireless")
	assert.Equal(t, p.Parse(ipconfigOutput), p.Parse(ipconfigOutput))
}
