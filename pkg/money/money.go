// Package money converts between the integer cent amounts the group
// contracts store and the decimal currency values the rest of the service
// works with. All stablecoin amounts on chain are uint256 cents; decimals
// only exist off chain.
package money

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// FromCents converts an integer cent amount to a decimal currency value
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FromBigCents converts an on-chain uint256 cent amount to a decimal
// currency value
func FromBigCents(cents *big.Int) decimal.Decimal {
	if cents == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(cents, -2)
}

// ToCents converts a decimal currency value to integer cents, rounding
// half away from zero. An error is returned if the value does not fit in
// an int64 cent amount.
func ToCents(d decimal.Decimal) (int64, error) {
	cents := d.Mul(oneHundred).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %s overflows cent representation", d)
	}
	return cents.IntPart(), nil
}

// RoundCents rounds a decimal currency value to 2 decimal places
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
