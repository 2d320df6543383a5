package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rangeScope/internal/tickmath"
)

// TickConfig holds the settings shared by the conversion commands.
type TickConfig struct {
	Decimals0   uint8
	Decimals1   uint8
	Revert      bool
	TickSpacing int
	LogLevel    string
}

// Load merges config file, environment variables, and flags into TickConfig.
func Load(cfgFile string, flags *pflag.FlagSet) (TickConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return TickConfig{}, err
	}
	return tickConfig(v)
}

func tickConfig(v *viper.Viper) (TickConfig, error) {
	decimals0, err := getDecimals(v, "decimals0")
	if err != nil {
		return TickConfig{}, err
	}
	decimals1, err := getDecimals(v, "decimals1")
	if err != nil {
		return TickConfig{}, err
	}
	spacing, err := getTickSpacing(v)
	if err != nil {
		return TickConfig{}, err
	}

	return TickConfig{
		Decimals0:   decimals0,
		Decimals1:   decimals1,
		Revert:      v.GetBool("revert"),
		TickSpacing: spacing,
		LogLevel:    v.GetString("log-level"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("TICKCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("decimals0", 18)
	v.SetDefault("decimals1", 18)
	v.SetDefault("revert", false)
	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func getDecimals(v *viper.Viper, key string) (uint8, error) {
	val := v.GetInt(key)
	if val < 0 || val > 255 {
		return 0, fmt.Errorf("%s must be within 0..255: %d", key, val)
	}
	return uint8(val), nil
}

// getTickSpacing prefers an explicit tick-spacing and falls back to the
// spacing of the configured fee tier. Zero means unset.
func getTickSpacing(v *viper.Viper) (int, error) {
	if spacing := v.GetInt("tick-spacing"); spacing != 0 {
		if spacing < 0 {
			return 0, fmt.Errorf("tick-spacing must be positive: %d", spacing)
		}
		return spacing, nil
	}
	fee := v.GetUint32("fee")
	if fee == 0 {
		return 0, nil
	}
	spacing, ok := tickmath.TickSpacingForFee(fee)
	if !ok {
		return 0, fmt.Errorf("unknown fee tier %d, pass tick-spacing", fee)
	}
	return spacing, nil
}
