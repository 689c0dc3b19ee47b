package core

// ValidationResult is the outcome of validating a single address.
// Error is set only when IsValid is false; Network and NormalizedAddress
// are set only when IsValid is true.
type ValidationResult struct {
	IsValid           bool   `json:"is_valid" yaml:"is_valid"`
	Error             string `json:"error,omitempty" yaml:"error,omitempty"`
	Network           string `json:"network,omitempty" yaml:"network,omitempty"` // e.g., "Polkadot", "Kusama", "Generic Substrate"
	NormalizedAddress string `json:"normalized_address,omitempty" yaml:"normalized_address,omitempty"`
}

func Invalid(msg string) ValidationResult {
	return ValidationResult{IsValid: false, Error: msg}
}

func Valid(network, normalized string) ValidationResult {
	return ValidationResult{IsValid: true, Network: network, NormalizedAddress: normalized}
}

// Role of a comment author inside an escrow.
type Role string

const (
	RoleClient Role = "client"
	RoleWorker Role = "worker"
	RoleNone   Role = "none"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleWorker, RoleNone:
		return true
	}
	return false
}
