package ss58

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Account is a fully decoded SS58 address.
type Account struct {
	Address   string `json:"address" yaml:"address"`
	Prefix    uint16 `json:"network_prefix" yaml:"network_prefix"`
	Network   string `json:"network" yaml:"network"`
	PublicKey []byte `json:"-" yaml:"-"`
	Canonical string `json:"canonical" yaml:"canonical"` // prefix 0 rendering
}

func (a *Account) PublicKeyHex() string {
	return hexutil.Encode(a.PublicKey)
}

// Decode resolves an address through the default codec, naming the network
// from the decoded prefix rather than the leading character.
func Decode(address string) (*Account, error) {
	return defaultValidator.Decode(address)
}

func (v *Validator) Decode(address string) (*Account, error) {
	res := v.Validate(address)
	if !res.IsValid {
		return nil, &AddressConversionError{Address: address, Message: res.Error}
	}
	prefix, payload, err := v.codec.Decode(res.NormalizedAddress)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", res.NormalizedAddress, err)
	}
	return &Account{
		Address:   res.NormalizedAddress,
		Prefix:    prefix,
		Network:   NetworkForPrefix(prefix),
		PublicKey: payload,
		Canonical: v.codec.Encode(payload, PrefixPolkadot),
	}, nil
}

// Reencode renders an address for another network prefix.
func Reencode(address string, prefix uint16) (string, error) {
	acc, err := Decode(address)
	if err != nil {
		return "", err
	}
	return defaultValidator.codec.Encode(acc.PublicKey, prefix), nil
}
