package types

import (
	"encoding/json"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// dottedQuad matches the textual form of a NetworkAddress
var dottedQuad = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// NetworkAddress represents an IPv4 address as four octets
type NetworkAddress [4]byte

// ParseNetworkAddress parses a dotted-quad IPv4 address
func ParseNetworkAddress(s string) (NetworkAddress, error) {
	var addr NetworkAddress

	s = strings.TrimSpace(s)
	if !dottedQuad.MatchString(s) {
		return addr, fmt.Errorf("invalid IPv4 address: %q", s)
	}

	for i, part := range strings.Split(s, ".") {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 || v > 255 {
			return addr, fmt.Errorf("invalid IPv4 address: %q: octet %q out of range", s, part)
		}
		addr[i] = byte(v)
	}

	return addr, nil
}

// MustParseNetworkAddress is like ParseNetworkAddress but panics on error
func MustParseNetworkAddress(s string) NetworkAddress {
	addr, err := ParseNetworkAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// AddressFromIP converts a net.IP to a NetworkAddress
func AddressFromIP(ip net.IP) (NetworkAddress, bool) {
	var addr NetworkAddress
	ip4 := ip.To4()
	if ip4 == nil {
		return addr, false
	}
	copy(addr[:], ip4)
	return addr, true
}

// IsZero reports whether the address is unset (0.0.0.0)
func (a NetworkAddress) IsZero() bool {
	return a == NetworkAddress{}
}

// IP returns the address as a net.IP
func (a NetworkAddress) IP() net.IP {
	return net.IPv4(a[0], a[1], a[2], a[3]).To4()
}

// String returns the dotted-quad form
func (a NetworkAddress) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}

// Less orders addresses numerically
func (a NetworkAddress) Less(b NetworkAddress) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// MarshalJSON encodes the address as a string, empty when unset
func (a NetworkAddress) MarshalJSON() ([]byte, error) {
	if a.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(a.String())
}

// SubnetMaskLen is the only prefix length the scanner derives
const SubnetMaskLen = 24

// Subnet represents an IPv4 prefix with a mask length
type Subnet struct {
	Prefix  NetworkAddress `json:"prefix"`
	MaskLen int            `json:"mask_len"`
}

// SubnetFromGateway derives the enclosing /24 by zeroing the last octet
func SubnetFromGateway(gateway NetworkAddress) Subnet {
	prefix := gateway
	prefix[3] = 0
	return Subnet{Prefix: prefix, MaskLen: SubnetMaskLen}
}

// Candidates returns every address in the /24, .0 through .255
func (s Subnet) Candidates() []NetworkAddress {
	out := make([]NetworkAddress, 0, 256)
	for i := 0; i < 256; i++ {
		addr := s.Prefix
		addr[3] = byte(i)
		out = append(out, addr)
	}
	return out
}

// Contains reports whether addr belongs to the subnet
func (s Subnet) Contains(addr NetworkAddress) bool {
	return s.IPNet().Contains(addr.IP())
}

// IPNet returns the subnet as a net.IPNet
func (s Subnet) IPNet() *net.IPNet {
	return &net.IPNet{
		IP:   s.Prefix.IP(),
		Mask: net.CIDRMask(s.MaskLen, 32),
	}
}

// String returns CIDR notation
func (s Subnet) String() string {
	return fmt.Sprintf("%s/%d", s.Prefix, s.MaskLen)
}

// MarshalJSON encodes the subnet in CIDR notation
func (s Subnet) MarshalJSON() ([]byte, error) {
	if s.MaskLen == 0 {
		return json.Marshal("")
	}
	return json.Marshal(s.String())
}
