package tickmath

import "errors"

var ErrInvalidTickSpacing = errors.New("tick spacing must be positive")

// feeTickSpacings maps the standard fee tiers (hundredths of a bip) to their tick spacing.
var feeTickSpacings = map[uint32]int{
	100:   1,
	500:   10,
	2500:  50,
	3000:  60,
	10000: 200,
}

// TickSpacingForFee returns the tick spacing enabled for a standard fee tier.
func TickSpacingForFee(fee uint32) (int, bool) {
	spacing, ok := feeTickSpacings[fee]
	return spacing, ok
}

// NearestUsableTick rounds tick to the nearest multiple of tickSpacing,
// rounding halves up, and keeps the result within [MinTick, MaxTick].
func NearestUsableTick(tick, tickSpacing int) (int, error) {
	if tickSpacing <= 0 {
		return 0, ErrInvalidTickSpacing
	}
	if tick < MinTick || tick > MaxTick {
		return 0, ErrTickOutOfBounds
	}

	// Compare the remainder against its complement so a spacing near
	// MaxInt cannot overflow.
	q, r := tick/tickSpacing, tick%tickSpacing
	switch {
	case r > 0 && r >= tickSpacing-r:
		q++
	case r < 0 && -r > tickSpacing+r:
		q--
	}
	rounded := q * tickSpacing
	if rounded < MinTick {
		return rounded + tickSpacing, nil
	}
	if rounded > MaxTick {
		return rounded - tickSpacing, nil
	}
	return rounded, nil
}

// MinUsableTick is the lowest multiple of tickSpacing inside the tick bounds.
func MinUsableTick(tickSpacing int) (int, error) {
	if tickSpacing <= 0 {
		return 0, ErrInvalidTickSpacing
	}
	return -floorDiv(MaxTick, tickSpacing) * tickSpacing, nil
}

// MaxUsableTick is the highest multiple of tickSpacing inside the tick bounds.
func MaxUsableTick(tickSpacing int) (int, error) {
	if tickSpacing <= 0 {
		return 0, ErrInvalidTickSpacing
	}
	return floorDiv(MaxTick, tickSpacing) * tickSpacing, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
