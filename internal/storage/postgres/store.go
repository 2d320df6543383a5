package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rangeScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	chain_id       BIGINT  NOT NULL,
	pool_address   TEXT    NOT NULL,
	token0         TEXT    NOT NULL,
	token1         TEXT    NOT NULL,
	decimals0      SMALLINT NOT NULL,
	decimals1      SMALLINT NOT NULL,
	fee            INTEGER NOT NULL,
	tick_spacing   INTEGER NOT NULL,
	observed_block BIGINT  NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address)
);
CREATE TABLE IF NOT EXISTS range_quotes (
	id           BIGSERIAL PRIMARY KEY,
	chain_id     BIGINT,
	pool_address TEXT,
	lower_price  TEXT    NOT NULL,
	upper_price  TEXT    NOT NULL,
	decimals0    SMALLINT NOT NULL,
	decimals1    SMALLINT NOT NULL,
	revert       BOOLEAN NOT NULL,
	tick_spacing INTEGER NOT NULL,
	tick_lower   INTEGER NOT NULL,
	tick_upper   INTEGER NOT NULL,
	price_lower  NUMERIC NOT NULL,
	price_upper  NUMERIC NOT NULL,
	full_range   BOOLEAN NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
`

// Store provides Postgres persistence for pools and range quotes.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertPools inserts or updates pool metadata, keeping the latest observed block.
func (s *Store) UpsertPools(ctx context.Context, pools []model.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				chain_id, pool_address, token0, token1, decimals0, decimals1, fee, tick_spacing, observed_block
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				decimals0 = EXCLUDED.decimals0,
				decimals1 = EXCLUDED.decimals1,
				observed_block = GREATEST(pools.observed_block, EXCLUDED.observed_block),
				updated_at = now()
		`,
			int64(pool.ChainID),
			pool.Address,
			pool.Token0,
			pool.Token1,
			int16(pool.Decimals0),
			int16(pool.Decimals1),
			int64(pool.Fee),
			pool.TickSpacing,
			int64(pool.ObservedBlock),
		)
	}
	return sendBatch(ctx, s.pool, batch, len(pools))
}

// PutRangeQuotes inserts range quotes. Prices are stored as NUMERIC.
func (s *Store) PutRangeQuotes(ctx context.Context, quotes []model.RangeQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`
			INSERT INTO range_quotes (
				chain_id, pool_address, lower_price, upper_price, decimals0, decimals1, revert,
				tick_spacing, tick_lower, tick_upper, price_lower, price_upper, full_range, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11::numeric,$12::numeric,$13,$14)
		`,
			nullableChain(q.ChainID),
			nullableText(q.Pool),
			q.LowerPrice,
			q.UpperPrice,
			int16(q.Decimals0),
			int16(q.Decimals1),
			q.Revert,
			q.TickSpacing,
			q.TickLower,
			q.TickUpper,
			q.PriceLower,
			q.PriceUpper,
			q.FullRange,
			q.CreatedAt,
		)
	}
	return sendBatch(ctx, s.pool, batch, len(quotes))
}

func sendBatch(ctx context.Context, pool *pgxpool.Pool, batch *pgx.Batch, n int) error {
	br := pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}

func nullableChain(id uint64) *int64 {
	if id == 0 {
		return nil
	}
	v := int64(id)
	return &v
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
