package validator

import (
	"context"
	"strings"

	"github.com/piyushdaiya/dotescrow-kit/internal/ss58"
)

// H160Strategy covers the 20 byte addresses pallet-revive contracts use.
type H160Strategy struct {
	// SS58Prefix renders the padded display address; nil means generic.
	SS58Prefix *uint16
}

func (h *H160Strategy) Name() string {
	return "H160 (pallet-revive)"
}

func (h *H160Strategy) IsValidSyntax(address string) bool {
	return ss58.IsH160(ss58.TrimAddress(address))
}

func (h *H160Strategy) Inspect(ctx context.Context, address string, engineURL string) (*AddressProfile, error) {
	cleanAddr := strings.ToLower(ss58.TrimAddress(address))
	profile := &AddressProfile{
		Address: cleanAddr,
		Format:  string(ss58.AddressFormatH160),
		Network: "H160",
		IsValid: true,
		H160:    cleanAddr,
	}

	prefix := ss58.DefaultSS58Prefix
	if h.SS58Prefix != nil {
		prefix = *h.SS58Prefix
	}
	rendered, err := ss58.H160ToSS58(cleanAddr, prefix)
	if err != nil {
		return profile, err
	}
	profile.SS58 = rendered
	profile.ValidationDetails = "Valid H160 | SS58 rendering is display only"

	applyWatchlist(ctx, profile, engineURL)
	return profile, nil
}
