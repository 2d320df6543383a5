package model

import "time"

// TickQuote is the result of converting a price into a tick.
type TickQuote struct {
	Price        string `json:"price"`
	Decimals0    uint8  `json:"decimals0"`
	Decimals1    uint8  `json:"decimals1"`
	Revert       bool   `json:"revert"`
	Tick         int    `json:"tick"`
	Clamped      string `json:"clamped"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	TickPrice    string `json:"tick_price"`
	TickSpacing  int    `json:"tick_spacing,omitempty"`
	UsableTick   *int   `json:"usable_tick,omitempty"`
}

// RangeQuote is a liquidity range snapped to usable ticks.
type RangeQuote struct {
	Pool        string    `json:"pool,omitempty"`
	ChainID     uint64    `json:"chain_id,omitempty"`
	LowerPrice  string    `json:"lower_price"`
	UpperPrice  string    `json:"upper_price"`
	Decimals0   uint8     `json:"decimals0"`
	Decimals1   uint8     `json:"decimals1"`
	Revert      bool      `json:"revert"`
	TickSpacing int       `json:"tick_spacing"`
	TickLower   int       `json:"tick_lower"`
	TickUpper   int       `json:"tick_upper"`
	PriceLower  string    `json:"price_lower"`
	PriceUpper  string    `json:"price_upper"`
	FullRange   bool      `json:"full_range"`
	CreatedAt   time.Time `json:"created_at"`
}

// PoolPrice is a rendered view of a pool's live slot0.
type PoolPrice struct {
	Pool         string      `json:"pool"`
	ChainID      uint64      `json:"chain_id"`
	Token0       TokenMeta   `json:"token0"`
	Token1       TokenMeta   `json:"token1"`
	Fee          uint32      `json:"fee"`
	TickSpacing  int32       `json:"tick_spacing"`
	SqrtPriceX96 string      `json:"sqrt_price_x96"`
	Tick         int32       `json:"tick"`
	Block        uint64      `json:"block,omitempty"`
	Liquidity    string      `json:"liquidity,omitempty"`
	Price0       string      `json:"price0"`
	Price1       string      `json:"price1"`
	Range        *RangeQuote `json:"range,omitempty"`
}
