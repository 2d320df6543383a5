package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangeScope/internal/config"
	"rangeScope/internal/model"
	"rangeScope/internal/quote"
	"rangeScope/internal/storage"
	"rangeScope/internal/storage/postgres"
)

func newRangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Select a usable tick range between two prices",
		Long:  "Empty bounds select the full usable range for the tick spacing.",
		Args:  cobra.NoArgs,
		RunE:  runRange,
	}
	cmd.Flags().String("lower", "", "lower price bound, empty means the minimum usable tick")
	cmd.Flags().String("upper", "", "upper price bound, empty means the maximum usable tick")
	cmd.Flags().String("pool", "", "optional pool address recorded with the quote")
	cmd.Flags().Uint64("chain-id", 0, "optional chain id recorded with the quote")
	addPairFlags(cmd.Flags())
	addSpacingFlags(cmd.Flags())
	cmd.Flags().String("out", "", "append the quote to this JSONL file")
	cmd.Flags().String("pg-dsn", "", "insert the quote into Postgres")
	return cmd
}

func runRange(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRange(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	q, err := quote.NewService(logger).Range(quote.RangeRequest{
		Pool:        cfg.Pool,
		ChainID:     cfg.ChainID,
		Lower:       cfg.Lower,
		Upper:       cfg.Upper,
		Decimals0:   cfg.Decimals0,
		Decimals1:   cfg.Decimals1,
		Revert:      cfg.Revert,
		TickSpacing: cfg.TickSpacing,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, closeSinks, err := openSinks(ctx, cfg.Out, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeSinks()

	if len(sinks.all) > 0 {
		if err := sinks.all.PutRangeQuotes(ctx, []model.RangeQuote{q}); err != nil {
			return fmt.Errorf("store range quote: %w", err)
		}
		logger.Info("range quote stored",
			zap.String("out", cfg.Out),
			zap.Bool("postgres", cfg.PGDSN != ""),
			zap.Int("tick_lower", q.TickLower),
			zap.Int("tick_upper", q.TickUpper),
		)
	}

	return printJSON(cmd.OutOrStdout(), q)
}

// sinkSet holds the configured outputs. jsonl and pg are nil when unset.
type sinkSet struct {
	jsonl *storage.JsonlStorage
	pg    *postgres.Store
	all   storage.Multi
}

func openSinks(ctx context.Context, out, dsn string) (sinkSet, func(), error) {
	var set sinkSet
	if out != "" {
		set.jsonl = storage.NewJsonlStorage(out)
		set.all = append(set.all, set.jsonl)
	}
	if dsn == "" {
		return set, func() {}, nil
	}

	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return sinkSet{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return sinkSet{}, nil, err
	}
	set.pg = store
	set.all = append(set.all, store)
	return set, store.Close, nil
}
