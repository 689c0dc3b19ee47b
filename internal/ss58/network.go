package ss58

import "strings"

const (
	NetworkPolkadot = "Polkadot"
	NetworkKusama   = "Kusama"
	NetworkGeneric  = "Generic Substrate"
	NetworkUnknown  = "Unknown"
)

// Well known SS58 network prefixes.
const (
	PrefixPolkadot uint16 = 0
	PrefixKusama   uint16 = 2
	PrefixGeneric  uint16 = 42

	DefaultSS58Prefix = PrefixGeneric
)

// guessNetwork labels an address by its leading character. It is a display
// heuristic and can disagree with the prefix the codec decodes; use
// NetworkForPrefix when the decoded prefix is available.
func guessNetwork(address string) string {
	switch {
	case strings.HasPrefix(address, "1"):
		// also covers 12, 13, 14 and 15
		return NetworkPolkadot
	case strings.ContainsAny(firstChar(address), "CDEFGH"):
		return NetworkKusama
	case strings.HasPrefix(address, "5"):
		return NetworkGeneric
	}
	return NetworkUnknown
}

func firstChar(s string) string {
	if s == "" {
		return ""
	}
	return s[:1]
}

var prefixNetworks = map[uint16]string{
	0:  NetworkPolkadot,
	2:  NetworkKusama,
	5:  "Astar",
	7:  "Edgeware",
	42: NetworkGeneric,
}

// NetworkForPrefix names the chain registered for an SS58 prefix.
func NetworkForPrefix(prefix uint16) string {
	if name, ok := prefixNetworks[prefix]; ok {
		return name
	}
	return NetworkUnknown
}
