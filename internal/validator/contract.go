package validator

import (
	"context"

	"github.com/piyushdaiya/dotescrow-kit/internal/core"
)

type AddressProfile struct {
	Address           string                 `json:"address" yaml:"address"`
	Format            string                 `json:"format" yaml:"format"`
	Network           string                 `json:"network" yaml:"network"`
	IsValid           bool                   `json:"is_valid" yaml:"is_valid"`
	ValidationDetails string                 `json:"validation_details" yaml:"validation_details"`
	Validation        *core.ValidationResult `json:"validation,omitempty" yaml:"validation,omitempty"`

	// Decoded account data
	NetworkPrefix *uint16 `json:"network_prefix,omitempty" yaml:"network_prefix,omitempty"`
	PublicKey     string  `json:"public_key,omitempty" yaml:"public_key,omitempty"`
	Canonical     string  `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	H160          string  `json:"h160,omitempty" yaml:"h160,omitempty"`
	ReviveH160    string  `json:"revive_h160,omitempty" yaml:"revive_h160,omitempty"`
	SS58          string  `json:"ss58,omitempty" yaml:"ss58,omitempty"`

	// Watchlist verdict
	Flagged    bool   `json:"flagged" yaml:"flagged"`
	FlagSource string `json:"flag_source,omitempty" yaml:"flag_source,omitempty"`
	FlagReason string `json:"flag_reason,omitempty" yaml:"flag_reason,omitempty"`
}

type ChainStrategy interface {
	Name() string
	IsValidSyntax(address string) bool
	Inspect(ctx context.Context, address string, engineURL string) (*AddressProfile, error)
}
