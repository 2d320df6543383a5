package tickmath

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePriceSqrt mirrors the sdk test helper: sqrt(reserve1 / reserve0) * 2^96.
func encodePriceSqrt(reserve1, reserve0 uint64) *uint256.Int {
	num := new(big.Int).Lsh(new(big.Int).SetUint64(reserve1), 192)
	num.Quo(num, new(big.Int).SetUint64(reserve0))
	return uint256.MustFromBig(num.Sqrt(num))
}

func TestGetSqrtRatioAtTickBounds(t *testing.T) {
	_, err := GetSqrtRatioAtTick(MinTick - 1)
	assert.ErrorIs(t, err, ErrTickOutOfBounds)

	_, err = GetSqrtRatioAtTick(MaxTick + 1)
	assert.ErrorIs(t, err, ErrTickOutOfBounds)
}

func TestGetSqrtRatioAtTickReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		tick int
		want string
	}{
		{"min tick", MinTick, "4295128739"},
		{"min tick + 1", MinTick + 1, "4295343490"},
		{"zero", 0, "79228162514264337593543950336"},
		{"max tick - 1", MaxTick - 1, "1461373636630004318706518188784493106690254656249"},
		{"max tick", MaxTick, "1461446703485210103287273052203988822378723970342"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetSqrtRatioAtTick(tt.tick)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestGetSqrtRatioAtTickMatchesBounds(t *testing.T) {
	low, err := GetSqrtRatioAtTick(MinTick)
	require.NoError(t, err)
	assert.True(t, low.Eq(MinSqrtRatio))

	high, err := GetSqrtRatioAtTick(MaxTick)
	require.NoError(t, err)
	assert.True(t, high.Eq(MaxSqrtRatio))
}

func TestGetSqrtRatioAtTickMonotonic(t *testing.T) {
	prev, err := GetSqrtRatioAtTick(MinTick)
	require.NoError(t, err)
	for tick := MinTick + 1; tick <= MaxTick; tick += 997 {
		cur, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		require.True(t, cur.Gt(prev), "tick %d", tick)
		prev = cur
	}

	// adjacent ticks around zero
	for tick := -50; tick < 50; tick++ {
		a, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		b, err := GetSqrtRatioAtTick(tick + 1)
		require.NoError(t, err)
		require.True(t, b.Gt(a), "tick %d", tick)
	}
}

// Each ladder entry is 2^128 / 1.0001^(2^i), the reciprocal of sqrt(1.0001)^(2^(i+1)).
func TestRatioLadderConstants(t *testing.T) {
	const prec = 512
	base := new(big.Float).SetPrec(prec).SetFloat64(1)
	base.Quo(base, big.NewFloat(10000).SetPrec(prec))
	base.Add(base, new(big.Float).SetPrec(prec).SetInt64(1)) // 1.0001

	q128 := new(big.Float).SetPrec(prec).SetInt(new(big.Int).Lsh(big.NewInt(1), 128))
	// within one unit in the last place
	tolerance := new(big.Float).SetPrec(prec).SetInt64(1)

	check := func(name string, constant *uint256.Int, divisor *big.Float) {
		want := new(big.Float).SetPrec(prec).Quo(q128, divisor)
		got := new(big.Float).SetPrec(prec).SetInt(constant.ToBig())
		diff := new(big.Float).SetPrec(prec).Sub(got, want)
		diff.Abs(diff)
		assert.True(t, diff.Cmp(tolerance) < 0, "%s: off by %s", name, diff.Text('e', 5))
	}

	check("odd", ratioOdd, new(big.Float).SetPrec(prec).Sqrt(base))

	power := new(big.Float).SetPrec(prec).Set(base)
	for i, constant := range ratioLadder {
		check(big.NewInt(int64(0x2<<i)).Text(16), constant, power)
		power = new(big.Float).SetPrec(prec).Mul(power, power)
	}
}

func TestGetTickAtSqrtRatioBounds(t *testing.T) {
	_, err := GetTickAtSqrtRatio(new(uint256.Int).Sub(MinSqrtRatio, uint256.NewInt(1)))
	assert.ErrorIs(t, err, ErrSqrtRatioOutOfBounds)

	_, err = GetTickAtSqrtRatio(new(uint256.Int).Add(MaxSqrtRatio, uint256.NewInt(1)))
	assert.ErrorIs(t, err, ErrSqrtRatioOutOfBounds)
}

func TestGetTickAtSqrtRatioReferenceValues(t *testing.T) {
	tests := []struct {
		name  string
		ratio *uint256.Int
		want  int
	}{
		{"min sqrt ratio", MinSqrtRatio, MinTick},
		{"min sqrt ratio + 1", new(uint256.Int).Add(MinSqrtRatio, uint256.NewInt(1)), MinTick},
		{"one", encodePriceSqrt(1, 1), 0},
		{"closest to max", new(uint256.Int).Sub(MaxSqrtRatio, uint256.NewInt(1)), MaxTick - 1},
		{"max sqrt ratio", MaxSqrtRatio, MaxTick},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetTickAtSqrtRatio(tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTickAtSqrtRatioTopBand(t *testing.T) {
	below, err := GetSqrtRatioAtTick(MaxTick - 1)
	require.NoError(t, err)
	mid := new(uint256.Int).Add(below, MaxSqrtRatio)
	mid.Rsh(mid, 1)

	for _, ratio := range []*uint256.Int{below, mid, new(uint256.Int).Sub(MaxSqrtRatio, uint256.NewInt(1))} {
		got, err := GetTickAtSqrtRatio(ratio)
		require.NoError(t, err, "ratio %s", ratio.Dec())
		assert.Equal(t, MaxTick-1, got, "ratio %s", ratio.Dec())
	}
}

func TestGetTickAtSqrtRatioBracketsRatio(t *testing.T) {
	ratios := []struct {
		name  string
		ratio *uint256.Int
	}{
		{"1e12:1", encodePriceSqrt(1_000_000_000_000, 1)},
		{"1e6:1", encodePriceSqrt(1_000_000, 1)},
		{"64:1", encodePriceSqrt(64, 1)},
		{"8:1", encodePriceSqrt(8, 1)},
		{"2:1", encodePriceSqrt(2, 1)},
		{"1:2", encodePriceSqrt(1, 2)},
		{"1:8", encodePriceSqrt(1, 8)},
		{"1:64", encodePriceSqrt(1, 64)},
		{"1:1e6", encodePriceSqrt(1, 1_000_000)},
		{"1:1e12", encodePriceSqrt(1, 1_000_000_000_000)},
	}
	for _, tc := range ratios {
		t.Run(tc.name, func(t *testing.T) {
			tick, err := GetTickAtSqrtRatio(tc.ratio)
			require.NoError(t, err)

			atTick, err := GetSqrtRatioAtTick(tick)
			require.NoError(t, err)
			atNext, err := GetSqrtRatioAtTick(tick + 1)
			require.NoError(t, err)

			assert.False(t, tc.ratio.Lt(atTick), "ratio below tick %d", tick)
			assert.True(t, tc.ratio.Lt(atNext), "ratio not below tick %d", tick+1)
		})
	}
}

func TestTickRoundTrip(t *testing.T) {
	ticks := []int{MinTick, MinTick + 1, -1, 0, 1, MaxTick - 1, MaxTick}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		ticks = append(ticks, MinTick+rng.Intn(MaxTick-MinTick+1))
	}

	for _, tick := range ticks {
		ratio, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		got, err := GetTickAtSqrtRatio(ratio)
		require.NoError(t, err)
		require.Equal(t, tick, got, "ratio %s", ratio.Dec())
	}
}

func TestSqrtRatioFromBig(t *testing.T) {
	v, err := SqrtRatioFromBig(big.NewInt(4295128739))
	require.NoError(t, err)
	assert.True(t, v.Eq(MinSqrtRatio))

	_, err = SqrtRatioFromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrSqrtRatioOutOfBounds)

	_, err = SqrtRatioFromBig(new(big.Int).Lsh(big.NewInt(1), 300))
	assert.ErrorIs(t, err, ErrSqrtRatioOutOfBounds)
}
