// Package pricing converts between human decimal prices and pool ticks.
//
// A forward price is quoted as token1 per token0 in whole-token units; a
// reverted price is token0 per token1. Decimal strings are parsed into exact
// big integers and never pass through floating point.
package pricing

import (
	"errors"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceDecimals is the number of fractional digits rendered for prices.
const PriceDecimals = 18

var (
	ErrInvalidPrice = errors.New("invalid price")
	ErrZeroAmount   = errors.New("amount0 must be non-zero")
)

var pricePattern = regexp.MustCompile(`^\d*\.?\d+$`)

// Price is a parsed decimal price: Digits / 10^Scale.
type Price struct {
	Digits *big.Int
	Scale  int
}

// ParsePrice validates and parses a plain unsigned decimal string such as
// "1234.5678" or ".5".
func ParsePrice(value string) (Price, error) {
	if !pricePattern.MatchString(value) {
		return Price{}, ErrInvalidPrice
	}

	whole, fraction, _ := strings.Cut(value, ".")
	digits, ok := new(big.Int).SetString(whole+fraction, 10)
	if !ok {
		return Price{}, ErrInvalidPrice
	}
	return Price{Digits: digits, Scale: len(fraction)}, nil
}

// IsZero reports whether the price is zero.
func (p Price) IsZero() bool {
	return p.Digits == nil || p.Digits.Sign() == 0
}

// Decimal returns the exact decimal value of the price.
func (p Price) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(p.Digits, -int32(p.Scale))
}

// rawRatio returns the pool amounts (amount1, amount0) whose ratio is the
// price expressed in raw token units. decimals0 and decimals1 always belong to
// the pool's token0 and token1; revert inverts only the quoted price, the
// same way TickToPrice inverts its rendered result.
func (p Price) rawRatio(decimals0, decimals1 uint8, revert bool) (*big.Int, *big.Int) {
	scale := pow10(p.Scale)
	if revert {
		amount1 := scale.Mul(scale, pow10(int(decimals1)))
		amount0 := new(big.Int).Mul(p.Digits, pow10(int(decimals0)))
		return amount1, amount0
	}
	amount1 := new(big.Int).Mul(p.Digits, pow10(int(decimals1)))
	amount0 := scale.Mul(scale, pow10(int(decimals0)))
	return amount1, amount0
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
