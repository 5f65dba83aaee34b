package group

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// EVM address: 0x followed by exactly 40 hex characters
var evmAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidateAddress validates an EVM wallet address and returns the EIP-55
// checksummed form. Mixed-case input must carry a correct checksum.
func ValidateAddress(address string) (string, error) {
	if address == "" {
		return "", ErrMissingAddress
	}

	if !evmAddressRegex.MatchString(address) {
		return "", ErrInvalidAddress
	}

	checksummed := ToChecksumAddress(address)
	if isChecksummed(address) && address != checksummed {
		return "", ErrInvalidChecksum
	}

	return checksummed, nil
}

// ToChecksumAddress converts an EVM address to EIP-55 checksummed format.
// https://eips.ethereum.org/EIPS/eip-55
func ToChecksumAddress(address string) string {
	addr := strings.ToLower(strings.TrimPrefix(address, "0x"))

	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(addr))
	sum := hash.Sum(nil)

	var b strings.Builder
	b.WriteString("0x")

	for i, c := range addr {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
			continue
		}

		nibble := sum[i/2] >> 4
		if i%2 == 1 {
			nibble = sum[i/2] & 0x0F
		}

		if nibble >= 8 {
			b.WriteRune(c - 32)
		} else {
			b.WriteRune(c)
		}
	}

	return b.String()
}

// isChecksummed reports whether an address has mixed case and therefore
// claims to carry an EIP-55 checksum
func isChecksummed(address string) bool {
	addr := strings.TrimPrefix(address, "0x")
	hasUpper := strings.ContainsAny(addr, "ABCDEF")
	hasLower := strings.ContainsAny(addr, "abcdef")
	return hasUpper && hasLower
}

// NormalizeAddress lowercases an address for comparisons and cache keys
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}

// AddressesEqual compares two EVM addresses case-insensitively
func AddressesEqual(a, b string) bool {
	return strings.EqualFold(
		strings.TrimPrefix(a, "0x"),
		strings.TrimPrefix(b, "0x"),
	)
}
