package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rangeScope/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--log-level=error"))
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestPriceToTickCommand(t *testing.T) {
	out, err := execute(t, "price-to-tick", "2000", "--decimals0=6", "--decimals1=18", "--revert", "--fee=3000")
	require.NoError(t, err)

	var q model.TickQuote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, 200311, q.Tick)
	require.NotNil(t, q.UsableTick)
	assert.Equal(t, 200340, *q.UsableTick)
}

func TestConversionCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"tick to price", []string{"tick-to-price", "200311", "--decimals0=6", "--decimals1=18", "--revert"}, "2000.040289648088261463"},
		{"nearest tick negative", []string{"nearest-tick", "--tick-spacing=60", "--", "-887272"}, "-887220"},
		{"nearest tick by fee", []string{"nearest-tick", "--fee=500", "7"}, "10"},
		{"sqrt ratio zero", []string{"sqrt-ratio", "0"}, "79228162514264337593543950336"},
		{"sqrt ratio min", []string{"sqrt-ratio", "--", "-887272"}, "4295128739"},
		{"tick at sqrt", []string{"tick-at-sqrt", "79228162514264337593543950336"}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad price", []string{"price-to-tick", "1.2.3"}},
		{"bad tick", []string{"sqrt-ratio", "abc"}},
		{"tick out of range", []string{"sqrt-ratio", "887273"}},
		{"sqrt below min", []string{"tick-at-sqrt", "1"}},
		{"missing spacing", []string{"nearest-tick", "7"}},
		{"pool without rpc", []string{"pool", "0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestRangeCommandWritesJsonl(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.jsonl")

	out, err := execute(t, "range", "--lower=1500", "--upper=2500", "--decimals0=6", "--decimals1=18", "--revert", "--fee=3000", "--out="+path)
	require.NoError(t, err)

	var q model.RangeQuote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, 198060, q.TickLower)
	assert.Equal(t, 203160, q.TickUpper)
	assert.Equal(t, "1504.230646614228963267", q.PriceLower)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestRangeCommandFullRange(t *testing.T) {
	out, err := execute(t, "range", "--tick-spacing=200")
	require.NoError(t, err)

	var q model.RangeQuote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.True(t, q.FullRange)
	assert.Equal(t, -887200, q.TickLower)
	assert.Equal(t, 887200, q.TickUpper)
}
