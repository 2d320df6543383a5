package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangeScope/internal/chain"
	"rangeScope/internal/config"
	"rangeScope/internal/dex"
	"rangeScope/internal/model"
	"rangeScope/internal/quote"
)

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool <address>...",
		Short: "Read slot0 from V3 pools and render prices and a usable range",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPool,
	}
	cmd.Flags().String("rpc", "", "JSON-RPC URL")
	cmd.Flags().Int("width", 10, "range half-width in tick spacings, 0 disables the range")
	cmd.Flags().Uint64("block", 0, "block to read, 0 means latest")
	cmd.Flags().String("out", "", "append pool prices to this JSONL file")
	cmd.Flags().String("pg-dsn", "", "upsert pools and insert ranges into Postgres")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts per RPC step")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	return cmd
}

func runPool(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPool(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	pools := make([]common.Address, 0, len(args))
	for _, arg := range args {
		addr, err := dex.ParseAddress(arg)
		if err != nil {
			return err
		}
		pools = append(pools, addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}

	// Pin one block so every pool is read at the same height.
	block := cfg.Block
	if block == 0 {
		if block, err = chainClient.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}

	sinks, closeSinks, err := openSinks(ctx, cfg.Out, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeSinks()

	logger.Info("pool read start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.Uint64("block", block),
		zap.Int("pools", len(pools)),
		zap.Int("width", cfg.Width),
	)

	fetcher := dex.NewFetcher(chainClient, dex.NewTokenMetaCache(), logger, cfg.MaxRetries, cfg.RetryBackoff)
	svc := quote.NewService(logger)

	prices := make([]model.PoolPrice, 0, len(pools))
	records := make([]model.Pool, 0, len(pools))
	var ranges []model.RangeQuote
	for _, addr := range pools {
		snap, err := fetcher.Snapshot(ctx, addr, block)
		if err != nil {
			return err
		}
		price, err := svc.PoolPrice(addr.Hex(), chainID.Uint64(), snap.Meta, snap.Token0, snap.Token1, cfg.Width)
		if err != nil {
			return fmt.Errorf("pool %s: %w", addr.Hex(), err)
		}
		prices = append(prices, price)
		records = append(records, snap.Pool(chainID.Uint64()))
		if price.Range != nil {
			ranges = append(ranges, *price.Range)
		}
		logger.Debug("pool read",
			zap.String("pool", addr.Hex()),
			zap.Int32("tick", price.Tick),
			zap.String("price1", price.Price1),
		)
	}

	if sinks.jsonl != nil {
		if err := sinks.jsonl.PutPoolPrices(ctx, prices); err != nil {
			return fmt.Errorf("write pool prices: %w", err)
		}
	}
	if sinks.pg != nil {
		if err := sinks.pg.UpsertPools(ctx, records); err != nil {
			return fmt.Errorf("upsert pools: %w", err)
		}
		if err := sinks.pg.PutRangeQuotes(ctx, ranges); err != nil {
			return fmt.Errorf("insert ranges: %w", err)
		}
	}

	if len(prices) == 1 {
		return printJSON(cmd.OutOrStdout(), prices[0])
	}
	return printJSON(cmd.OutOrStdout(), prices)
}
