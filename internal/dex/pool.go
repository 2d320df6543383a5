package dex

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rangeScope/internal/chain"
	"rangeScope/internal/model"
)

// Snapshot is a pool's metadata, its tokens and slot0 at one block.
type Snapshot struct {
	Address common.Address
	Meta    model.PoolMeta
	Token0  model.TokenMeta
	Token1  model.TokenMeta
}

// Pool converts the snapshot into a storage record.
func (s Snapshot) Pool(chainID uint64) model.Pool {
	var block uint64
	if s.Meta.Slot0 != nil {
		block = s.Meta.Slot0.Block
	}
	return model.Pool{
		ChainID:       chainID,
		Address:       s.Address.Hex(),
		Token0:        s.Meta.Token0,
		Token1:        s.Meta.Token1,
		Decimals0:     s.Token0.Decimals,
		Decimals1:     s.Token1.Decimals,
		Fee:           s.Meta.Fee,
		TickSpacing:   s.Meta.TickSpacing,
		ObservedBlock: block,
	}
}

// Fetcher reads pool snapshots, retrying each required RPC step.
type Fetcher struct {
	caller     chain.Caller
	tokens     *TokenMetaCache
	logger     *zap.Logger
	maxRetries int
	backoff    time.Duration
}

func NewFetcher(caller chain.Caller, tokens *TokenMetaCache, logger *zap.Logger, maxRetries int, backoff time.Duration) *Fetcher {
	if tokens == nil {
		tokens = NewTokenMetaCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		caller:     caller,
		tokens:     tokens,
		logger:     logger,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Snapshot fetches pool metadata, both tokens and slot0 at block (0 = latest).
// Liquidity is best effort.
func (f *Fetcher) Snapshot(ctx context.Context, pool common.Address, block uint64) (Snapshot, error) {
	snap := Snapshot{Address: pool}

	if err := f.retry(ctx, "pool meta", pool, func(ctx context.Context) error {
		meta, err := FetchPoolMeta(ctx, f.caller, pool)
		snap.Meta = meta
		return err
	}); err != nil {
		return Snapshot{}, fmt.Errorf("pool %s meta: %w", pool.Hex(), err)
	}

	var slot0 model.PoolSlot0
	if err := f.retry(ctx, "slot0", pool, func(ctx context.Context) error {
		var err error
		slot0, err = FetchSlot0(ctx, f.caller, pool, block)
		return err
	}); err != nil {
		return Snapshot{}, fmt.Errorf("pool %s slot0: %w", pool.Hex(), err)
	}
	snap.Meta.Slot0 = &slot0

	if liq, err := FetchLiquidity(ctx, f.caller, pool, block); err == nil {
		snap.Meta.Liquidity = liq
	} else {
		f.logger.Debug("liquidity call failed", zap.String("pool", pool.Hex()), zap.Error(err))
	}

	for i, raw := range []string{snap.Meta.Token0, snap.Meta.Token1} {
		token := common.HexToAddress(raw)
		var meta model.TokenMeta
		if err := f.retry(ctx, "token meta", token, func(ctx context.Context) error {
			var err error
			meta, err = f.tokens.Resolve(ctx, f.caller, token, f.logger)
			return err
		}); err != nil {
			return Snapshot{}, fmt.Errorf("token%d %s: %w", i, raw, err)
		}
		if i == 0 {
			snap.Token0 = meta
		} else {
			snap.Token1 = meta
		}
	}

	return snap, nil
}

func (f *Fetcher) retry(ctx context.Context, step string, target common.Address, fn func(context.Context) error) error {
	attempt := 0
	return chain.WithRetry(ctx, f.maxRetries, f.backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil {
			f.logger.Warn("rpc step failed",
				zap.String("step", step),
				zap.String("address", target.Hex()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	})
}
