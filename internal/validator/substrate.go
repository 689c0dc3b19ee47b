package validator

import (
	"context"
	"fmt"

	"github.com/piyushdaiya/dotescrow-kit/internal/ss58"
)

type SubstrateStrategy struct{}

func (s *SubstrateStrategy) Name() string {
	return "SUBSTRATE"
}

// IsValidSyntax accepts anything that decodes as SS58; the stricter
// validator gates run in Inspect so the profile can explain the failure.
func (s *SubstrateStrategy) IsValidSyntax(address string) bool {
	return ss58.IsSS58(ss58.TrimAddress(address))
}

func (s *SubstrateStrategy) Inspect(ctx context.Context, address string, engineURL string) (*AddressProfile, error) {
	cleanAddr := ss58.TrimAddress(address)
	res := ss58.ValidateAddress(cleanAddr)

	profile := &AddressProfile{
		Address:    cleanAddr,
		Format:     string(ss58.AddressFormatSS58),
		Network:    res.Network,
		IsValid:    res.IsValid,
		Validation: &res,
	}
	if !res.IsValid {
		profile.Network = ss58.NetworkUnknown
		profile.ValidationDetails = res.Error
		return profile, nil
	}

	acc, err := ss58.Decode(cleanAddr)
	if err != nil {
		return profile, fmt.Errorf("decoding %s: %w", cleanAddr, err)
	}
	prefix := acc.Prefix
	profile.NetworkPrefix = &prefix
	profile.PublicKey = acc.PublicKeyHex()
	profile.Canonical = acc.Canonical
	profile.H160, _ = ss58.SS58ToH160(cleanAddr)
	profile.ReviveH160, _ = ss58.SubstrateToH160(cleanAddr)

	profile.ValidationDetails = fmt.Sprintf("Valid SS58 | prefix %d (%s)", acc.Prefix, acc.Network)
	if acc.Network != res.Network {
		profile.ValidationDetails += fmt.Sprintf(" | leading character suggests %s", res.Network)
	}

	applyWatchlist(ctx, profile, engineURL)
	return profile, nil
}
