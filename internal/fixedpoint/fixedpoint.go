// Package fixedpoint holds the big-integer primitives shared by the tick math:
// Q128 multiply-and-shift, integer square root, most significant bit, and
// exact decimal division.
package fixedpoint

import (
	"errors"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

var (
	ErrNegativeSqrt   = errors.New("sqrt of negative value")
	ErrNonPositive    = errors.New("value must be positive")
	ErrOverflow256    = errors.New("value exceeds uint256")
	ErrDivisionByZero = errors.New("division by zero")
	ErrNegativePlaces = errors.New("decimal places must be non-negative")
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	ten   = big.NewInt(10)

	msbPowers = [...]uint{128, 64, 32, 16, 8, 4, 2, 1}
)

// MulShift returns (value * multiplier) >> 128, truncating.
// The product must fit in 256 bits, which holds for Q128 operands.
func MulShift(value, multiplier *uint256.Int) *uint256.Int {
	product := new(uint256.Int).Mul(value, multiplier)
	return product.Rsh(product, 128)
}

// Sqrt computes floor(sqrt(y)) with Newton's method.
func Sqrt(y *big.Int) (*big.Int, error) {
	if y.Sign() < 0 {
		return nil, ErrNegativeSqrt
	}
	if y.Sign() == 0 {
		return new(big.Int), nil
	}
	if y.Cmp(three) <= 0 {
		return new(big.Int).Set(one), nil
	}

	z := new(big.Int).Set(y)
	x := new(big.Int).Quo(y, two)
	x.Add(x, one)
	tmp := new(big.Int)
	for x.Cmp(z) < 0 {
		z.Set(x)
		tmp.Quo(y, x)
		x.Add(tmp, x)
		x.Quo(x, two)
	}
	return z, nil
}

// MostSignificantBit returns the 0-indexed position of the highest set bit of x.
func MostSignificantBit(x *big.Int) (uint, error) {
	if x.Sign() <= 0 {
		return 0, ErrNonPositive
	}
	r, overflow := uint256.FromBig(x)
	if overflow {
		return 0, ErrOverflow256
	}
	return msb256(r), nil
}

func msb256(x *uint256.Int) uint {
	r := x.Clone()
	shifted := new(uint256.Int)
	var msb uint
	for _, power := range msbPowers {
		if !shifted.Rsh(r, power).IsZero() {
			r.Set(shifted)
			msb += power
		}
	}
	return msb
}

// DivideToString divides numerator by denominator and renders the quotient
// with exactly decimalPlaces fractional digits. Digits past the last place
// are dropped, never rounded.
func DivideToString(numerator, denominator *big.Int, decimalPlaces int) (string, error) {
	if denominator.Sign() == 0 {
		return "", ErrDivisionByZero
	}
	if decimalPlaces < 0 {
		return "", ErrNegativePlaces
	}

	negative := numerator.Sign()*denominator.Sign() < 0
	num := new(big.Int).Abs(numerator)
	den := new(big.Int).Abs(denominator)

	whole, rem := new(big.Int).QuoRem(num, den, new(big.Int))

	var sb strings.Builder
	if negative && (whole.Sign() != 0 || rem.Sign() != 0) {
		sb.WriteByte('-')
	}
	sb.WriteString(whole.String())
	if decimalPlaces == 0 {
		return sb.String(), nil
	}

	sb.WriteByte('.')
	digit := new(big.Int)
	for i := 0; i < decimalPlaces; i++ {
		rem.Mul(rem, ten)
		digit.QuoRem(rem, den, rem)
		sb.WriteByte(byte('0' + digit.Int64()))
	}
	return sb.String(), nil
}
