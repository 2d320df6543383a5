package config

import (
	"time"

	"github.com/spf13/pflag"
)

// RangeConfig holds configuration for the range command.
type RangeConfig struct {
	TickConfig
	Pool    string
	ChainID uint64
	Lower   string
	Upper   string
	Out     string
	PGDSN   string
}

// LoadRange merges config file, environment variables, and flags into RangeConfig.
func LoadRange(cfgFile string, flags *pflag.FlagSet) (RangeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{"fee": 3000})
	if err != nil {
		return RangeConfig{}, err
	}
	tick, err := tickConfig(v)
	if err != nil {
		return RangeConfig{}, err
	}

	return RangeConfig{
		TickConfig: tick,
		Pool:       v.GetString("pool"),
		ChainID:    v.GetUint64("chain-id"),
		Lower:      v.GetString("lower"),
		Upper:      v.GetString("upper"),
		Out:        v.GetString("out"),
		PGDSN:      v.GetString("pg-dsn"),
	}, nil
}

// PoolConfig holds configuration for the pool command.
type PoolConfig struct {
	RPCURL       string
	Width        int
	Block        uint64
	Out          string
	PGDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadPool merges config file, environment variables, and flags into PoolConfig.
func LoadPool(cfgFile string, flags *pflag.FlagSet) (PoolConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"width":         10,
		"max-retries":   3,
		"retry-backoff": 500 * time.Millisecond,
	})
	if err != nil {
		return PoolConfig{}, err
	}

	return PoolConfig{
		RPCURL:       v.GetString("rpc"),
		Width:        v.GetInt("width"),
		Block:        v.GetUint64("block"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}
