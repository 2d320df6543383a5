package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tickcalc",
		Short:        "Uniswap V3 tick and price calculator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newPriceToTickCmd(),
		newTickToPriceCmd(),
		newNearestTickCmd(),
		newSqrtRatioCmd(),
		newTickAtSqrtCmd(),
		newRangeCmd(),
		newPoolCmd(),
	)
	return root
}

// addPairFlags registers the token decimal and direction flags shared by price commands.
func addPairFlags(flags *pflag.FlagSet) {
	flags.Int("decimals0", 18, "token0 decimals")
	flags.Int("decimals1", 18, "token1 decimals")
	flags.Bool("revert", false, "prices are token0 per token1")
}

func addSpacingFlags(flags *pflag.FlagSet) {
	flags.Int("tick-spacing", 0, "pool tick spacing")
	flags.Uint32("fee", 0, "pool fee tier in hundredths of a bip, used when tick-spacing is unset")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
