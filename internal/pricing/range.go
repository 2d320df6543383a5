package pricing

import (
	"errors"
	"fmt"

	"rangeScope/internal/tickmath"
)

var ErrInvalidWidth = errors.New("range width must be positive")

// Range is a liquidity range snapped to usable ticks. PriceLower and
// PriceUpper are quoted in the caller's direction, so with revert set
// PriceLower belongs to TickUpper.
type Range struct {
	TickLower  int
	TickUpper  int
	PriceLower string
	PriceUpper string
	FullRange  bool
}

// SelectRange turns a pair of price bounds into a usable tick range.
// An empty bound stands for the matching end of the full range.
// Bounds given out of order are swapped.
func SelectRange(lower, upper string, decimals0, decimals1 uint8, tickSpacing int, revert bool) (Range, error) {
	minUsable, err := tickmath.MinUsableTick(tickSpacing)
	if err != nil {
		return Range{}, err
	}
	maxUsable, err := tickmath.MaxUsableTick(tickSpacing)
	if err != nil {
		return Range{}, err
	}

	// the lowest price sits on the highest tick when the pair is reverted
	lowEnd, highEnd := minUsable, maxUsable
	if revert {
		lowEnd, highEnd = maxUsable, minUsable
	}

	tickA, err := boundTick(lower, lowEnd, decimals0, decimals1, tickSpacing, revert)
	if err != nil {
		return Range{}, fmt.Errorf("lower bound: %w", err)
	}
	tickB, err := boundTick(upper, highEnd, decimals0, decimals1, tickSpacing, revert)
	if err != nil {
		return Range{}, fmt.Errorf("upper bound: %w", err)
	}

	tickLower, tickUpper := tickA, tickB
	if tickLower > tickUpper {
		tickLower, tickUpper = tickUpper, tickLower
	}
	if tickLower == tickUpper {
		if tickUpper+tickSpacing <= maxUsable {
			tickUpper += tickSpacing
		} else {
			tickLower -= tickSpacing
		}
	}

	return renderRange(tickLower, tickUpper, minUsable, maxUsable, decimals0, decimals1, revert)
}

// RangeAroundTick builds a range of width tick spacings on each side of the
// usable tick nearest to tick, clamped to the usable bounds.
func RangeAroundTick(tick, tickSpacing, width int, decimals0, decimals1 uint8, revert bool) (Range, error) {
	if width <= 0 {
		return Range{}, ErrInvalidWidth
	}
	center, err := tickmath.NearestUsableTick(tick, tickSpacing)
	if err != nil {
		return Range{}, err
	}
	minUsable, _ := tickmath.MinUsableTick(tickSpacing)
	maxUsable, _ := tickmath.MaxUsableTick(tickSpacing)

	// any width past the usable span clamps to it
	width = min(width, (maxUsable-minUsable)/tickSpacing)
	tickLower := max(center-width*tickSpacing, minUsable)
	tickUpper := min(center+width*tickSpacing, maxUsable)
	return renderRange(tickLower, tickUpper, minUsable, maxUsable, decimals0, decimals1, revert)
}

func boundTick(value string, fallback int, decimals0, decimals1 uint8, tickSpacing int, revert bool) (int, error) {
	if value == "" {
		return fallback, nil
	}
	closest, err := PriceToClosestTick(value, decimals0, decimals1, revert)
	if err != nil {
		return 0, err
	}
	return tickmath.NearestUsableTick(closest.Tick, tickSpacing)
}

func renderRange(tickLower, tickUpper, minUsable, maxUsable int, decimals0, decimals1 uint8, revert bool) (Range, error) {
	priceAtLower, err := TickToPrice(tickLower, decimals0, decimals1, revert)
	if err != nil {
		return Range{}, err
	}
	priceAtUpper, err := TickToPrice(tickUpper, decimals0, decimals1, revert)
	if err != nil {
		return Range{}, err
	}

	r := Range{
		TickLower:  tickLower,
		TickUpper:  tickUpper,
		PriceLower: priceAtLower,
		PriceUpper: priceAtUpper,
		FullRange:  tickLower == minUsable && tickUpper == maxUsable,
	}
	if revert {
		r.PriceLower, r.PriceUpper = priceAtUpper, priceAtLower
	}
	return r, nil
}
