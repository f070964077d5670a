package locator

import (
	"regexp"
	"strings"

	"wifiwatch/internal/types"
	"wifiwatch/internal/utils"
)

var (
	ipv4Pattern  = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	labelPattern = regexp.MustCompile(`^[^\d\s:][^:]*:(\s|$)`)
)

// Default labels as printed by ipconfig
var (
	DefaultAddressLabels     = []string{"ipv4 address", "ip address"}
	DefaultGatewayLabels     = []string{"default gateway"}
	DefaultDescriptionLabels = []string{"description"}
)

// Parser extracts the wireless adapter addresses from ipconfig-style output.
//
// The output is split into adapter blocks: a block starts at a line with no
// leading whitespace and holds every indented line until the next such line.
// The wireless marker is looked up in the block header and the adapter
// description only, never in other field values. Labels match exactly,
// ignoring case and dot padding. The gateway value may sit on continuation
// lines below its label.
type Parser struct {
	Marker            string
	AddressLabels     []string
	GatewayLabels     []string
	DescriptionLabels []string
}

// NewParser creates a parser with the default labels
func NewParser(marker string) *Parser {
	return &Parser{
		Marker:            marker,
		AddressLabels:     DefaultAddressLabels,
		GatewayLabels:     DefaultGatewayLabels,
		DescriptionLabels: DefaultDescriptionLabels,
	}
}

type block struct {
	header string
	lines  []string
}

// Parse returns the first wireless block holding both an address and a
// gateway. A zero InterfaceState means no such block exists.
func (p *Parser) Parse(output string) types.InterfaceState {
	for _, b := range splitBlocks(output) {
		if !p.isWireless(b) {
			continue
		}
		if state, ok := p.parseBlock(b); ok {
			return state
		}
	}
	return types.InterfaceState{}
}

func (p *Parser) isWireless(b block) bool {
	if utils.ContainsFold(b.header, p.Marker) {
		return true
	}
	for _, line := range b.lines {
		if !isLabeled(line) {
			continue
		}
		label, value := splitLabel(line)
		if hasLabel(label, p.DescriptionLabels) && utils.ContainsFold(value, p.Marker) {
			return true
		}
	}
	return false
}

func (p *Parser) parseBlock(b block) (types.InterfaceState, bool) {
	var (
		addr, gw         types.NetworkAddress
		haveAddr, haveGW bool
		inGateway        bool
	)

	for _, line := range b.lines {
		if isLabeled(line) {
			inGateway = false
			label, value := splitLabel(line)

			switch {
			case !haveAddr && hasLabel(label, p.AddressLabels):
				addr, haveAddr = firstIPv4(value)
			case !haveGW && hasLabel(label, p.GatewayLabels):
				gw, haveGW = firstIPv4(value)
				inGateway = !haveGW
			}
			continue
		}

		// Continuation of a multi-value gateway, e.g. IPv6 first then IPv4
		if inGateway {
			gw, haveGW = firstIPv4(line)
			inGateway = !haveGW
		}
	}

	if !haveAddr || !haveGW {
		return types.InterfaceState{}, false
	}

	return types.InterfaceState{
		Name:    strings.TrimSuffix(b.header, ":"),
		Address: addr,
		Gateway: gw,
	}, true
}

func splitBlocks(output string) []block {
	var blocks []block

	output = strings.ReplaceAll(output, "\r\n", "\n")
	for _, raw := range strings.Split(output, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		if raw[0] != ' ' && raw[0] != '\t' {
			blocks = append(blocks, block{header: utils.NormalizeString(raw)})
			continue
		}

		// indented lines before the first header belong to no adapter
		if len(blocks) == 0 {
			continue
		}
		last := &blocks[len(blocks)-1]
		last.lines = append(last.lines, utils.NormalizeString(raw))
	}

	return blocks
}

func isLabeled(line string) bool {
	return labelPattern.MatchString(line)
}

func splitLabel(line string) (string, string) {
	label, value, _ := strings.Cut(line, ":")
	// ipconfig pads labels with ". . . ."
	label = strings.TrimRight(label, " .")
	return normalizeLabel(label), strings.TrimSpace(value)
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

func hasLabel(label string, labels []string) bool {
	for _, l := range labels {
		if label == normalizeLabel(l) {
			return true
		}
	}
	return false
}

func firstIPv4(s string) (types.NetworkAddress, bool) {
	for _, candidate := range ipv4Pattern.FindAllString(s, -1) {
		addr, err := types.ParseNetworkAddress(candidate)
		if err == nil && !addr.IsZero() {
			return addr, true
		}
	}
	return types.NetworkAddress{}, false
}
