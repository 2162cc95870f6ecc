package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for addresses that fail local validation.
// Invalid addresses are rejected before any upstream call is made.
var ErrInvalidAddress = fmt.Errorf("invalid solana address")

// ValidateAddress checks that an address is base58 of canonical length
// (32-44 characters) and decodes to a 32-byte public key.
func ValidateAddress(address string) error {
	if len(address) < 32 || len(address) > 44 {
		return fmt.Errorf("%w: length %d outside 32-44", ErrInvalidAddress, len(address))
	}
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: decodes to %d bytes, want 32", ErrInvalidAddress, len(raw))
	}
	return nil
}
