package ss58

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

type AddressFormat string

const (
	AddressFormatSS58    AddressFormat = "ss58"
	AddressFormatH160    AddressFormat = "h160"
	AddressFormatUnknown AddressFormat = "unknown"
)

const h160Len = 20

// AddressConversionError reports an address that could not be converted.
type AddressConversionError struct {
	Address string
	Message string
}

func (e *AddressConversionError) Error() string {
	return fmt.Sprintf("invalid address %s: %s", e.Address, e.Message)
}

// SS58ToH160 maps an SS58 address to the 20 trailing bytes of its public key.
func SS58ToH160(address string) (string, error) {
	pub, err := decodePublicKey(address)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(pub[len(pub)-h160Len:]), nil
}

// SubstrateToH160 maps an SS58 address the way pallet-revive does: the last
// 20 bytes of keccak256 over the 32 byte public key.
func SubstrateToH160(address string) (string, error) {
	pub, err := decodePublicKey(address)
	if err != nil {
		return "", err
	}
	hash := crypto.Keccak256(pub)
	return hexutil.Encode(hash[len(hash)-h160Len:]), nil
}

// H160ToSS58 left pads a 20 byte address with zeros and SS58 encodes it.
// The original 32 byte account cannot be recovered this way; the result is
// for display only.
func H160ToSS58(h160 string, prefix uint16) (string, error) {
	clean := strings.TrimPrefix(h160, "0x")
	if len(clean) != h160Len*2 {
		return "", &AddressConversionError{
			Address: h160,
			Message: fmt.Sprintf("H160 address must be 40 hex characters (20 bytes), got %d", len(clean)),
		}
	}
	raw, err := hexutil.Decode("0x" + clean)
	if err != nil {
		return "", &AddressConversionError{Address: h160, Message: err.Error()}
	}
	padded := make([]byte, publicKeyLen)
	copy(padded[publicKeyLen-h160Len:], raw)
	return defaultValidator.codec.Encode(padded, prefix), nil
}

func IsH160(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	raw, err := hexutil.Decode(address)
	return err == nil && len(raw) == h160Len
}

// IsSS58 reports whether address decodes as SS58, of any length or prefix.
func IsSS58(address string) bool {
	_, err := defaultValidator.decode(address)
	return err == nil
}

func DetectAddressFormat(address string) AddressFormat {
	if IsH160(address) {
		return AddressFormatH160
	}
	if IsSS58(address) {
		return AddressFormatSS58
	}
	return AddressFormatUnknown
}

// ToH160 returns H160 input as is and converts SS58 input with SS58ToH160.
func ToH160(address string) (string, error) {
	switch DetectAddressFormat(address) {
	case AddressFormatH160:
		return address, nil
	case AddressFormatSS58:
		return SS58ToH160(address)
	}
	return "", &AddressConversionError{Address: address, Message: "unrecognized address format"}
}

// FormatH160 shortens an H160 address to 0x + prefixLen ... suffixLen.
func FormatH160(address string, prefixLen, suffixLen int) string {
	if !IsH160(address) || prefixLen < 0 || suffixLen < 0 {
		return address
	}
	if len(address) <= prefixLen+suffixLen+2 {
		return address
	}
	return address[:prefixLen+2] + "..." + address[len(address)-suffixLen:]
}

func FormatSS58(address string, prefixLen, suffixLen int) string {
	if !IsSS58(address) {
		return address
	}
	return FormatAddressForDisplay(address, prefixLen, suffixLen)
}

func decodePublicKey(address string) ([]byte, error) {
	pub, err := defaultValidator.decode(address)
	if err != nil {
		return nil, &AddressConversionError{Address: address, Message: err.Error()}
	}
	if len(pub) < h160Len {
		return nil, &AddressConversionError{Address: address, Message: ErrInvalidFormat}
	}
	return pub, nil
}
