package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromString(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad integer literal " + s)
	}
	return n
}

func TestMulShift(t *testing.T) {
	q128 := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	m := uint256.MustFromHex("0xfff97272373d413259a46990580e213a")

	// 1.0 in Q128 times m is m.
	assert.Equal(t, m.Hex(), MulShift(q128, m).Hex())

	// 0.5 * 0.5 = 0.25
	half := new(uint256.Int).Lsh(uint256.NewInt(1), 127)
	quarter := new(uint256.Int).Lsh(uint256.NewInt(1), 126)
	assert.True(t, MulShift(half, half).Eq(quarter))

	// truncates: 3 * 3 >> 128 is zero
	assert.True(t, MulShift(uint256.NewInt(3), uint256.NewInt(3)).IsZero())
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1"},
		{"2", "1"},
		{"3", "1"},
		{"4", "2"},
		{"8", "2"},
		{"9", "3"},
		{"1000000", "1000"},
		{"6277101735386680763835789423207666416102355444464034512896", "79228162514264337593543950336"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Sqrt(fromString(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := Sqrt(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegativeSqrt)
}

func TestSqrtMatchesStdlib(t *testing.T) {
	y := new(big.Int).Lsh(big.NewInt(123456789), 250)
	for i := 0; i < 50; i++ {
		got, err := Sqrt(y)
		require.NoError(t, err)
		assert.Zero(t, got.Cmp(new(big.Int).Sqrt(y)), "sqrt(%s)", y)
		y.Add(y, big.NewInt(int64(i*7919+1)))
		y.Rsh(y, 3)
	}
}

func TestMostSignificantBit(t *testing.T) {
	tests := []struct {
		in   *big.Int
		want uint
	}{
		{big.NewInt(1), 0},
		{big.NewInt(2), 1},
		{big.NewInt(3), 1},
		{big.NewInt(255), 7},
		{big.NewInt(256), 8},
		{new(big.Int).Lsh(big.NewInt(1), 128), 128},
		{new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)), 255},
	}
	for _, tt := range tests {
		got, err := MostSignificantBit(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "msb(%s)", tt.in)
	}
}

func TestMostSignificantBitErrors(t *testing.T) {
	_, err := MostSignificantBit(big.NewInt(0))
	assert.ErrorIs(t, err, ErrNonPositive)

	_, err = MostSignificantBit(big.NewInt(-5))
	assert.ErrorIs(t, err, ErrNonPositive)

	_, err = MostSignificantBit(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.ErrorIs(t, err, ErrOverflow256)
}

func TestDivideToString(t *testing.T) {
	tests := []struct {
		name   string
		num    *big.Int
		den    *big.Int
		places int
		want   string
	}{
		{"third truncates", big.NewInt(1), big.NewInt(3), 6, "0.333333"},
		{"two thirds truncates", big.NewInt(2), big.NewInt(3), 4, "0.6666"},
		{"exact", big.NewInt(10), big.NewInt(4), 3, "2.500"},
		{"whole only", big.NewInt(7), big.NewInt(2), 0, "3"},
		{"negative", big.NewInt(-1), big.NewInt(8), 3, "-0.125"},
		{"zero", big.NewInt(0), big.NewInt(8), 2, "0.00"},
		{"one with 18 places", fromString("6277101735386680763835789423207666416102355444464034512896"), fromString("6277101735386680763835789423207666416102355444464034512896"), 18, "1.000000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DivideToString(tt.num, tt.den, tt.places)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDivideToStringErrors(t *testing.T) {
	_, err := DivideToString(big.NewInt(1), big.NewInt(0), 2)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = DivideToString(big.NewInt(1), big.NewInt(3), -1)
	assert.ErrorIs(t, err, ErrNegativePlaces)
}
