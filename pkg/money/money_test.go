package money_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasfevre/chill-split/pkg/money"
)

func TestFromCents(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{"zero", 0, "0.00"},
		{"whole", 10000, "100.00"},
		{"fraction", 1234, "12.34"},
		{"single cent", 1, "0.01"},
		{"negative", -5000, "-50.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.FromCents(tt.cents).StringFixed(2))
		})
	}
}

func TestFromBigCents(t *testing.T) {
	assert.Equal(t, "12.34", money.FromBigCents(big.NewInt(1234)).StringFixed(2))
	assert.True(t, money.FromBigCents(nil).IsZero())
}

func TestToCents(t *testing.T) {
	cents, err := money.ToCents(decimal.RequireFromString("12.34"))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), cents)

	// Half away from zero
	cents, err = money.ToCents(decimal.RequireFromString("0.005"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cents)

	// Overflow
	huge := decimal.New(1, 30)
	_, err = money.ToCents(huge)
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 12345, -250} {
		d := money.FromCents(cents)
		back, err := money.ToCents(d)
		require.NoError(t, err)
		assert.Equal(t, cents, back)
	}
}
