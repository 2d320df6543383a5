package main

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"

	"rangeScope/internal/config"
	"rangeScope/internal/pricing"
	"rangeScope/internal/quote"
	"rangeScope/internal/tickmath"
)

const negativeTickHint = "Negative ticks must follow \"--\", e.g. tickcalc %s -- -6932."

func newPriceToTickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price-to-tick <price>",
		Short: "Find the tick whose price is closest to a decimal price",
		Args:  cobra.ExactArgs(1),
		RunE:  runPriceToTick,
	}
	addPairFlags(cmd.Flags())
	addSpacingFlags(cmd.Flags())
	return cmd
}

func runPriceToTick(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	q, err := quote.NewService(logger).PriceToTick(quote.TickRequest{
		Price:       args[0],
		Decimals0:   cfg.Decimals0,
		Decimals1:   cfg.Decimals1,
		Revert:      cfg.Revert,
		TickSpacing: cfg.TickSpacing,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), q)
}

func newTickToPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tick-to-price <tick>",
		Short: "Render the decimal price at a tick",
		Long:  fmt.Sprintf(negativeTickHint, "tick-to-price"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tick, err := parseTick(args[0])
			if err != nil {
				return err
			}
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			price, err := pricing.TickToPrice(tick, cfg.Decimals0, cfg.Decimals1, cfg.Revert)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), price)
			return nil
		},
	}
	addPairFlags(cmd.Flags())
	return cmd
}

func newNearestTickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearest-tick <tick>",
		Short: "Round a tick to the nearest multiple of the tick spacing",
		Long:  fmt.Sprintf(negativeTickHint, "nearest-tick --fee 3000"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tick, err := parseTick(args[0])
			if err != nil {
				return err
			}
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.TickSpacing == 0 {
				return fmt.Errorf("tick-spacing or fee is required")
			}
			usable, err := tickmath.NearestUsableTick(tick, cfg.TickSpacing)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), usable)
			return nil
		},
	}
	addSpacingFlags(cmd.Flags())
	return cmd
}

func newSqrtRatioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sqrt-ratio <tick>",
		Short: "Print sqrtPriceX96 at a tick",
		Long:  fmt.Sprintf(negativeTickHint, "sqrt-ratio"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tick, err := parseTick(args[0])
			if err != nil {
				return err
			}
			ratio, err := tickmath.GetSqrtRatioAtTick(tick)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ratio.Dec())
			return nil
		},
	}
}

func newTickAtSqrtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick-at-sqrt <sqrtPriceX96>",
		Short: "Print the greatest tick whose sqrt ratio is at most sqrtPriceX96",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, ok := new(big.Int).SetString(args[0], 10)
			if !ok {
				return fmt.Errorf("invalid sqrtPriceX96 %q", args[0])
			}
			ratio, err := tickmath.SqrtRatioFromBig(raw)
			if err != nil {
				return err
			}
			tick, err := tickmath.GetTickAtSqrtRatio(ratio)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tick)
			return nil
		},
	}
}

func parseTick(arg string) (int, error) {
	tick, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid tick %q", arg)
	}
	return tick, nil
}
