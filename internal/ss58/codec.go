package ss58

import (
	"github.com/vedhavyas/go-subkey/v2"
)

// Codec decodes and encodes SS58 checksummed addresses.
type Codec interface {
	Decode(address string) (prefix uint16, payload []byte, err error)
	Encode(payload []byte, prefix uint16) string
}

// SubkeyCodec is the default Codec, backed by go-subkey.
type SubkeyCodec struct{}

func (SubkeyCodec) Decode(address string) (uint16, []byte, error) {
	return subkey.SS58Decode(address)
}

func (SubkeyCodec) Encode(payload []byte, prefix uint16) string {
	return subkey.SS58Encode(payload, prefix)
}
