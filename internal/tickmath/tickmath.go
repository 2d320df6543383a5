// Package tickmath maps ticks to Q64.96 sqrt price ratios and back, bit for bit
// with the V3 pool contracts.
package tickmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"rangeScope/internal/fixedpoint"
)

const (
	MinTick int = -887272  // The minimum tick that can be used on any pool.
	MaxTick int = -MinTick // The maximum tick that can be used on any pool.
)

var (
	ErrTickOutOfBounds      = errors.New("tick must be within bounds")
	ErrSqrtRatioOutOfBounds = errors.New("SQRT_RATIO")
)

var (
	// MinSqrtRatio is the sqrt ratio of MinTick.
	MinSqrtRatio = uint256.NewInt(4295128739)
	// MaxSqrtRatio is the sqrt ratio of MaxTick.
	MaxSqrtRatio = uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342")

	maxUint256 = new(uint256.Int).SetAllOne()
	q32Mask    = uint256.NewInt(0xffffffff)
	one        = uint256.NewInt(1)

	ratioOdd  = uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001")
	ratioEven = uint256.MustFromHex("0x100000000000000000000000000000000")

	// sqrt(1.0001)^-(2^i) in Q128 for bits 0x2 through 0x80000.
	ratioLadder = [...]*uint256.Int{
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}

	magicSqrt10001 = uint256.MustFromHex("0x3627a301d71055774c85")
	magicTickLow   = uint256.MustFromHex("0x28f6481ab7f045a5af012a19d003aaa")
	magicTickHigh  = uint256.MustFromHex("0xdb2df09e81959a81455e260799a0632f")
)

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) as a Q64.96 value.
func GetSqrtRatioAtTick(tick int) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfBounds
	}

	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	var ratio *uint256.Int
	if absTick&0x1 != 0 {
		ratio = ratioOdd.Clone()
	} else {
		ratio = ratioEven.Clone()
	}
	for i, multiplier := range ratioLadder {
		if absTick&(0x2<<i) != 0 {
			ratio = fixedpoint.MulShift(ratio, multiplier)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// back to Q96, rounding up
	rem := new(uint256.Int).And(ratio, q32Mask)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.Add(ratio, one)
	}
	return ratio, nil
}

// GetTickAtSqrtRatio returns the greatest tick whose sqrt ratio is at most
// sqrtRatioX96. MaxSqrtRatio itself maps to MaxTick.
func GetTickAtSqrtRatio(sqrtRatioX96 *uint256.Int) (int, error) {
	if sqrtRatioX96.Lt(MinSqrtRatio) || sqrtRatioX96.Gt(MaxSqrtRatio) {
		return 0, ErrSqrtRatioOutOfBounds
	}
	if sqrtRatioX96.Eq(MaxSqrtRatio) {
		return MaxTick, nil
	}

	sqrtRatioX128 := new(uint256.Int).Lsh(sqrtRatioX96, 32)
	msb, err := fixedpoint.MostSignificantBit(sqrtRatioX128.ToBig())
	if err != nil {
		return 0, err
	}

	r := new(uint256.Int)
	if msb >= 128 {
		r.Rsh(sqrtRatioX128, msb-127)
	} else {
		r.Lsh(sqrtRatioX128, 127-msb)
	}

	// log2 is a signed Q64.64 held in two's complement.
	log2 := signed(int64(msb) - 128)
	log2.Lsh(log2, 64)

	f := new(uint256.Int)
	bit := new(uint256.Int)
	for i := 0; i < 14; i++ {
		r.Mul(r, r)
		r.Rsh(r, 127)
		f.Rsh(r, 128)
		log2.Or(log2, bit.Lsh(f, uint(63-i)))
		r.Rsh(r, uint(f.Uint64()))
	}

	logSqrt10001 := new(uint256.Int).Mul(log2, magicSqrt10001)

	low := new(uint256.Int).Sub(logSqrt10001, magicTickLow)
	tickLow := int(int64(low.SRsh(low, 128).Uint64()))
	high := new(uint256.Int).Add(logSqrt10001, magicTickHigh)
	tickHigh := int(int64(high.SRsh(high, 128).Uint64()))

	if tickLow == tickHigh {
		return tickLow, nil
	}

	ratioHigh, err := GetSqrtRatioAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if !ratioHigh.Gt(sqrtRatioX96) {
		return tickHigh, nil
	}
	return tickLow, nil
}

// SqrtRatioFromBig converts an on-chain sqrtPriceX96 into the engine's type.
func SqrtRatioFromBig(value *big.Int) (*uint256.Int, error) {
	if value == nil || value.Sign() < 0 {
		return nil, ErrSqrtRatioOutOfBounds
	}
	v, overflow := uint256.FromBig(value)
	if overflow {
		return nil, ErrSqrtRatioOutOfBounds
	}
	return v, nil
}

func signed(v int64) *uint256.Int {
	if v >= 0 {
		return uint256.NewInt(uint64(v))
	}
	n := uint256.NewInt(uint64(-v))
	return n.Neg(n)
}
