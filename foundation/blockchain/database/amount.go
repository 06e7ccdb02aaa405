package database

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AmountDecimals is the number of decimal places an amount carries. A coin
// is divided into 10^AmountDecimals base units.
const AmountDecimals = 8

// Coin is the number of base units in one coin.
const Coin Amount = 100_000_000

// ErrAmountFormat is returned when a value can't be read as an amount.
var ErrAmountFormat = errors.New("invalid amount format")

// Amount represents a non-negative decimal value held in base units so
// arithmetic and comparisons are exact. Amounts are written as decimal
// numbers of coins, so 250000000 base units reads and writes as 2.5.
type Amount uint64

// ParseAmount reads a decimal number of coins such as "10", "2.5" or
// "1e-3". Negative values, values finer than one base unit and values that
// overflow are rejected.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrAmountFormat, s)
	}

	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrAmountFormat, s)
	}

	units := d.Shift(AmountDecimals)
	if !units.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrAmountFormat, s, AmountDecimals)
	}

	bi := units.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: %q is too large", ErrAmountFormat, s)
	}

	return Amount(bi.Uint64()), nil
}

// MustParseAmount is ParseAmount for literals known to be valid.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}

	return a
}

// Decimal returns the amount as a decimal number of coins.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(a)), -AmountDecimals)
}

// String implements the fmt.Stringer interface. Trailing zeros are dropped.
func (a Amount) String() string {
	return a.Decimal().String()
}

// MarshalJSON writes the amount as a JSON number of coins.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON reads a JSON number of coins. A quoted number is accepted.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	v, err := ParseAmount(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}

	*a = v
	return nil
}

// Set implements the pflag.Value interface so amounts can be read from the
// command line.
func (a *Amount) Set(s string) error {
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}

	*a = v
	return nil
}

// Type implements the pflag.Value interface.
func (a *Amount) Type() string {
	return "amount"
}
