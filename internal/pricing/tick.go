package pricing

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"rangeScope/internal/fixedpoint"
	"rangeScope/internal/tickmath"
)

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// Clamp tags a tick that was pinned to a tick bound because the requested
// price fell outside the representable sqrt ratios.
type Clamp int

const (
	NotClamped Clamp = iota
	ClampedMin
	ClampedMax
)

func (c Clamp) String() string {
	switch c {
	case ClampedMin:
		return "min"
	case ClampedMax:
		return "max"
	default:
		return "none"
	}
}

// ClosestTick is the result of PriceToClosestTick.
type ClosestTick struct {
	Tick    int
	Clamped Clamp
}

// EncodeSqrtRatioX96 returns sqrt(amount1 / amount0) as a Q64.96 value.
func EncodeSqrtRatioX96(amount1, amount0 *big.Int) (*big.Int, error) {
	if amount0.Sign() == 0 {
		return nil, ErrZeroAmount
	}
	ratioX192 := new(big.Int).Lsh(amount1, 192)
	ratioX192.Quo(ratioX192, amount0)
	return fixedpoint.Sqrt(ratioX192)
}

// PriceToClosestTick returns the tick whose price is closest to value.
// Prices beyond the sqrt ratio bounds are clamped to MinTick or MaxTick.
func PriceToClosestTick(value string, decimals0, decimals1 uint8, revert bool) (ClosestTick, error) {
	price, err := ParsePrice(value)
	if err != nil {
		return ClosestTick{}, err
	}
	if price.IsZero() {
		if revert {
			return ClosestTick{Tick: tickmath.MaxTick, Clamped: ClampedMax}, nil
		}
		return ClosestTick{Tick: tickmath.MinTick, Clamped: ClampedMin}, nil
	}

	amount1, amount0 := price.rawRatio(decimals0, decimals1, revert)
	sqrtRatio, err := EncodeSqrtRatioX96(amount1, amount0)
	if err != nil {
		return ClosestTick{}, fmt.Errorf("encode sqrt ratio: %w", err)
	}
	if sqrtRatio.Cmp(tickmath.MaxSqrtRatio.ToBig()) > 0 {
		return ClosestTick{Tick: tickmath.MaxTick, Clamped: ClampedMax}, nil
	}
	if sqrtRatio.Cmp(tickmath.MinSqrtRatio.ToBig()) < 0 {
		return ClosestTick{Tick: tickmath.MinTick, Clamped: ClampedMin}, nil
	}

	tick, err := tickmath.GetTickAtSqrtRatio(uint256.MustFromBig(sqrtRatio))
	if err != nil {
		return ClosestTick{}, fmt.Errorf("tick at sqrt ratio: %w", err)
	}

	if tick < tickmath.MaxTick {
		closer, err := nextTickCloser(price.Decimal(), tick, decimals0, decimals1, revert)
		if err != nil {
			return ClosestTick{}, err
		}
		if closer {
			tick++
		}
	}
	return ClosestTick{Tick: tick}, nil
}

// nextTickCloser reports whether the rendered price of tick+1 is strictly
// closer to target than the rendered price of tick.
func nextTickCloser(target decimal.Decimal, tick int, decimals0, decimals1 uint8, revert bool) (bool, error) {
	current, err := tickDecimal(tick, decimals0, decimals1, revert)
	if err != nil {
		return false, err
	}
	next, err := tickDecimal(tick+1, decimals0, decimals1, revert)
	if err != nil {
		return false, err
	}
	return target.Sub(next).Abs().LessThan(target.Sub(current).Abs()), nil
}

func tickDecimal(tick int, decimals0, decimals1 uint8, revert bool) (decimal.Decimal, error) {
	text, err := TickToPrice(tick, decimals0, decimals1, revert)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse tick price %q: %w", text, err)
	}
	return d, nil
}

// TickToPrice renders the price at tick with PriceDecimals fractional digits.
func TickToPrice(tick int, baseDecimal, quoteDecimal uint8, revert bool) (string, error) {
	sqrtRatio, err := tickmath.GetSqrtRatioAtTick(tick)
	if err != nil {
		return "", err
	}
	return SqrtRatioToPrice(sqrtRatio, baseDecimal, quoteDecimal, revert)
}

// SqrtRatioToPrice renders the price encoded by a Q64.96 sqrt ratio, such as
// a pool's live slot0 value.
func SqrtRatioToPrice(sqrtRatioX96 *uint256.Int, baseDecimal, quoteDecimal uint8, revert bool) (string, error) {
	sqrtRatio := sqrtRatioX96.ToBig()
	numerator := new(big.Int).Mul(sqrtRatio, sqrtRatio)
	denominator := new(big.Int).Set(q192)

	if baseDecimal > quoteDecimal {
		numerator.Mul(numerator, pow10(int(baseDecimal-quoteDecimal)))
	} else if quoteDecimal > baseDecimal {
		denominator.Mul(denominator, pow10(int(quoteDecimal-baseDecimal)))
	}

	if revert {
		numerator, denominator = denominator, numerator
	}
	return fixedpoint.DivideToString(numerator, denominator, PriceDecimals)
}
