package quote

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"rangeScope/internal/model"
	"rangeScope/internal/pricing"
	"rangeScope/internal/tickmath"
)

// TickRequest asks for the tick closest to a price.
type TickRequest struct {
	Price       string
	Decimals0   uint8
	Decimals1   uint8
	Revert      bool
	TickSpacing int
}

// RangeRequest asks for a usable range between two prices.
type RangeRequest struct {
	Pool        string
	ChainID     uint64
	Lower       string
	Upper       string
	Decimals0   uint8
	Decimals1   uint8
	Revert      bool
	TickSpacing int
}

// Service turns user price input into tick and range quotes. Input the
// engine rejects is logged and returned to the caller as an error.
type Service struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, now: time.Now}
}

// PriceToTick resolves the closest tick for a price and, when a spacing is
// given, the nearest usable tick.
func (s *Service) PriceToTick(req TickRequest) (model.TickQuote, error) {
	closest, err := pricing.PriceToClosestTick(req.Price, req.Decimals0, req.Decimals1, req.Revert)
	if err != nil {
		s.logFailure("price to tick failed", err,
			zap.String("price", req.Price),
			zap.Uint8("decimals0", req.Decimals0),
			zap.Uint8("decimals1", req.Decimals1),
			zap.Bool("revert", req.Revert),
		)
		return model.TickQuote{}, err
	}

	sqrtRatio, err := tickmath.GetSqrtRatioAtTick(closest.Tick)
	if err != nil {
		return model.TickQuote{}, fmt.Errorf("sqrt ratio at tick %d: %w", closest.Tick, err)
	}
	tickPrice, err := pricing.SqrtRatioToPrice(sqrtRatio, req.Decimals0, req.Decimals1, req.Revert)
	if err != nil {
		return model.TickQuote{}, fmt.Errorf("price at tick %d: %w", closest.Tick, err)
	}

	quote := model.TickQuote{
		Price:        req.Price,
		Decimals0:    req.Decimals0,
		Decimals1:    req.Decimals1,
		Revert:       req.Revert,
		Tick:         closest.Tick,
		Clamped:      closest.Clamped.String(),
		SqrtPriceX96: sqrtRatio.Dec(),
		TickPrice:    tickPrice,
	}

	if req.TickSpacing != 0 {
		usable, err := tickmath.NearestUsableTick(closest.Tick, req.TickSpacing)
		if err != nil {
			s.logFailure("nearest usable tick failed", err,
				zap.Int("tick", closest.Tick),
				zap.Int("tick_spacing", req.TickSpacing),
			)
			return model.TickQuote{}, err
		}
		quote.TickSpacing = req.TickSpacing
		quote.UsableTick = &usable
	}

	if closest.Clamped != pricing.NotClamped {
		s.logger.Debug("price clamped to tick bound",
			zap.String("price", req.Price),
			zap.Stringer("clamped", closest.Clamped),
			zap.Int("tick", closest.Tick),
		)
	}
	return quote, nil
}

// Range resolves a usable tick range for a pair of price bounds.
func (s *Service) Range(req RangeRequest) (model.RangeQuote, error) {
	r, err := pricing.SelectRange(req.Lower, req.Upper, req.Decimals0, req.Decimals1, req.TickSpacing, req.Revert)
	if err != nil {
		s.logFailure("range selection failed", err,
			zap.String("lower", req.Lower),
			zap.String("upper", req.Upper),
			zap.Int("tick_spacing", req.TickSpacing),
		)
		return model.RangeQuote{}, err
	}

	return model.RangeQuote{
		Pool:        req.Pool,
		ChainID:     req.ChainID,
		LowerPrice:  req.Lower,
		UpperPrice:  req.Upper,
		Decimals0:   req.Decimals0,
		Decimals1:   req.Decimals1,
		Revert:      req.Revert,
		TickSpacing: req.TickSpacing,
		TickLower:   r.TickLower,
		TickUpper:   r.TickUpper,
		PriceLower:  r.PriceLower,
		PriceUpper:  r.PriceUpper,
		FullRange:   r.FullRange,
		CreatedAt:   s.now().UTC(),
	}, nil
}

// PoolPrice renders a pool's slot0 in both directions and, when width is
// positive, the range of width tick spacings around the current tick.
func (s *Service) PoolPrice(pool string, chainID uint64, meta model.PoolMeta, token0, token1 model.TokenMeta, width int) (model.PoolPrice, error) {
	if meta.Slot0 == nil {
		return model.PoolPrice{}, fmt.Errorf("pool %s has no slot0", pool)
	}

	raw, ok := new(big.Int).SetString(meta.Slot0.SqrtPriceX96, 10)
	if !ok {
		return model.PoolPrice{}, fmt.Errorf("invalid sqrt price %q", meta.Slot0.SqrtPriceX96)
	}
	sqrtRatio, err := tickmath.SqrtRatioFromBig(raw)
	if err != nil {
		return model.PoolPrice{}, fmt.Errorf("sqrt price: %w", err)
	}

	price0, err := pricing.SqrtRatioToPrice(sqrtRatio, token0.Decimals, token1.Decimals, false)
	if err != nil {
		return model.PoolPrice{}, fmt.Errorf("price0: %w", err)
	}
	price1, err := pricing.SqrtRatioToPrice(sqrtRatio, token0.Decimals, token1.Decimals, true)
	if err != nil {
		return model.PoolPrice{}, fmt.Errorf("price1: %w", err)
	}

	out := model.PoolPrice{
		Pool:         pool,
		ChainID:      chainID,
		Token0:       token0,
		Token1:       token1,
		Fee:          meta.Fee,
		TickSpacing:  meta.TickSpacing,
		SqrtPriceX96: meta.Slot0.SqrtPriceX96,
		Tick:         meta.Slot0.Tick,
		Block:        meta.Slot0.Block,
		Liquidity:    meta.Liquidity,
		Price0:       price0,
		Price1:       price1,
	}

	if width > 0 {
		r, err := pricing.RangeAroundTick(int(meta.Slot0.Tick), int(meta.TickSpacing), width, token0.Decimals, token1.Decimals, false)
		if err != nil {
			s.logFailure("range around tick failed", err,
				zap.String("pool", pool),
				zap.Int32("tick", meta.Slot0.Tick),
				zap.Int32("tick_spacing", meta.TickSpacing),
				zap.Int("width", width),
			)
			return model.PoolPrice{}, err
		}
		out.Range = &model.RangeQuote{
			Pool:        pool,
			ChainID:     chainID,
			Decimals0:   token0.Decimals,
			Decimals1:   token1.Decimals,
			TickSpacing: int(meta.TickSpacing),
			TickLower:   r.TickLower,
			TickUpper:   r.TickUpper,
			PriceLower:  r.PriceLower,
			PriceUpper:  r.PriceUpper,
			FullRange:   r.FullRange,
			CreatedAt:   s.now().UTC(),
		}
	}
	return out, nil
}

// logFailure logs expected user-input errors at debug and anything else at warn.
func (s *Service) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if isInputError(err) {
		s.logger.Debug(msg, fields...)
		return
	}
	s.logger.Warn(msg, fields...)
}

func isInputError(err error) bool {
	return errors.Is(err, pricing.ErrInvalidPrice) ||
		errors.Is(err, pricing.ErrInvalidWidth) ||
		errors.Is(err, tickmath.ErrInvalidTickSpacing) ||
		errors.Is(err, tickmath.ErrTickOutOfBounds)
}
