package ss58

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/piyushdaiya/dotescrow-kit/internal/core"
)

const (
	ErrAddressRequired   = "Address is required"
	ErrAddressEmpty      = "Address cannot be empty"
	ErrInvalidCharacters = "Invalid characters in address"
	ErrInvalidLength     = "Invalid address length"
	ErrInvalidChecksum   = "Invalid address checksum"
	ErrInvalidPrefix     = "Invalid network prefix"
	ErrInvalidFormat     = "Invalid address format"
	ErrDecodeFailed      = "Invalid Polkadot address format"
)

const (
	minAddressLen = 47
	maxAddressLen = 48
	publicKeyLen  = 32
)

var base58Pattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)

// Validator checks SS58 account addresses against a Codec.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	codec Codec
}

func NewValidator(codec Codec) *Validator {
	if codec == nil {
		codec = SubkeyCodec{}
	}
	return &Validator{codec: codec}
}

var defaultValidator = NewValidator(SubkeyCodec{})

// ValidateAddress validates input with the default codec.
func ValidateAddress(input string) core.ValidationResult {
	return defaultValidator.Validate(input)
}

// IsPolkadotMainnetAddress reports whether address is valid and labelled Polkadot.
func IsPolkadotMainnetAddress(address string) bool {
	return defaultValidator.IsPolkadotMainnet(address)
}

// Validate runs the presence, charset, length, decode and payload gates in
// order and stops at the first failure.
func (v *Validator) Validate(input string) core.ValidationResult {
	if input == "" {
		return core.Invalid(ErrAddressRequired)
	}

	address := TrimAddress(input)
	if address == "" {
		return core.Invalid(ErrAddressEmpty)
	}

	if !base58Pattern.MatchString(address) {
		return core.Invalid(ErrInvalidCharacters)
	}

	// 32 byte payload with a one byte prefix
	if len(address) < minAddressLen || len(address) > maxAddressLen {
		return core.Invalid(ErrInvalidLength)
	}

	payload, err := v.decode(address)
	if err != nil {
		return core.Invalid(decodeErrorMessage(err))
	}
	if len(payload) != publicKeyLen {
		return core.Invalid(ErrInvalidFormat)
	}

	// The canonical rendering is only a consistency check; callers get the
	// trimmed input back as the normalized form.
	_ = v.codec.Encode(payload, PrefixPolkadot)

	return core.Valid(guessNetwork(address), address)
}

// TrimAddress strips surrounding whitespace and byte order marks, which
// pasted addresses often carry.
func TrimAddress(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

func (v *Validator) IsPolkadotMainnet(address string) bool {
	res := v.Validate(address)
	return res.IsValid && res.Network == NetworkPolkadot
}

// decode shields callers from codec panics on adversarial input.
func (v *Validator) decode(address string) (payload []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload, err = nil, fmt.Errorf("decode: %v", r)
		}
	}()
	_, payload, err = v.codec.Decode(address)
	return payload, err
}

func decodeErrorMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "checksum"):
		return ErrInvalidChecksum
	case strings.Contains(msg, "length"):
		return ErrInvalidLength
	case strings.Contains(msg, "prefix"):
		return ErrInvalidPrefix
	}
	return ErrDecodeFailed
}

// FormatAddressForDisplay keeps the first startChars and last endChars
// runes of address joined by "...". Short addresses are returned unchanged.
func FormatAddressForDisplay(address string, startChars, endChars int) string {
	if startChars < 0 {
		startChars = 0
	}
	if endChars < 0 {
		endChars = 0
	}
	if utf8.RuneCountInString(address) <= startChars+endChars {
		return address
	}
	runes := []rune(address)
	return string(runes[:startChars]) + "..." + string(runes[len(runes)-endChars:])
}

// ShortAddress formats address with six leading and six trailing characters.
func ShortAddress(address string) string {
	return FormatAddressForDisplay(address, 6, 6)
}
