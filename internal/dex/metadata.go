package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rangeScope/internal/chain"
	"rangeScope/internal/model"
)

// ParseAddress validates a hex address string.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %q", input)
	}
	return common.HexToAddress(input), nil
}

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// Resolve returns cached metadata or fetches it. Failed fetches are not cached.
func (c *TokenMetaCache) Resolve(ctx context.Context, caller chain.Caller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	if meta, ok := c.Get(token); ok {
		return meta, nil
	}
	meta, err := FetchTokenMeta(ctx, caller, token, logger)
	if err != nil {
		return meta, err
	}
	c.Set(token, meta)
	return meta, nil
}

// FetchPoolMeta loads the immutable pool fields: tokens, fee and tick spacing.
func FetchPoolMeta(ctx context.Context, caller chain.Caller, pool common.Address) (model.PoolMeta, error) {
	if caller == nil {
		return model.PoolMeta{}, fmt.Errorf("chain client is nil")
	}
	parsed, err := poolABI.get()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := call(ctx, caller, pool, parsed, "token0", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token0: %w", err)
	}

	values, err = call(ctx, caller, pool, parsed, "token1", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token1: %w", err)
	}

	values, err = call(ctx, caller, pool, parsed, "fee", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	fee, err := asBigInt(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("fee: %w", err)
	}

	values, err = call(ctx, caller, pool, parsed, "tickSpacing", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	spacing, err := asBigInt(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}
	tickSpacing, err := int24FromBig(spacing)
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}
	if tickSpacing <= 0 {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: non-positive value %d", tickSpacing)
	}

	return model.PoolMeta{
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		Fee:         uint32(fee.Uint64()),
		TickSpacing: tickSpacing,
	}, nil
}

// FetchSlot0 reads sqrtPriceX96 and tick at a block height. Block 0 means latest.
func FetchSlot0(ctx context.Context, caller chain.Caller, pool common.Address, block uint64) (model.PoolSlot0, error) {
	parsed, err := poolABI.get()
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := call(ctx, caller, pool, parsed, "slot0", blockArg(block))
	if err != nil {
		return model.PoolSlot0{}, err
	}
	if len(values) < 2 {
		return model.PoolSlot0{}, fmt.Errorf("slot0: expected 7 values, got %d", len(values))
	}
	sqrt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("slot0 sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("slot0 tick: %w", err)
	}
	return model.PoolSlot0{SqrtPriceX96: sqrt.String(), Tick: tick, Block: block}, nil
}

// FetchLiquidity reads the in-range liquidity at a block height.
func FetchLiquidity(ctx context.Context, caller chain.Caller, pool common.Address, block uint64) (string, error) {
	parsed, err := poolABI.get()
	if err != nil {
		return "", fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := call(ctx, caller, pool, parsed, "liquidity", blockArg(block))
	if err != nil {
		return "", err
	}
	liq, err := asBigInt(values[0])
	if err != nil {
		return "", fmt.Errorf("liquidity: %w", err)
	}
	return liq.String(), nil
}

// FetchTokenMeta loads decimals, symbol and name via ERC20 calls. Only
// decimals is required; symbol and name fall back to bytes32 encodings.
func FetchTokenMeta(ctx context.Context, caller chain.Caller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}
	if caller == nil {
		return meta, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := erc20StringABI.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABI.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := call(ctx, caller, token, stringABI, "decimals", nil)
	if err != nil {
		return meta, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return meta, fmt.Errorf("decimals: unsupported type %T", values[0])
	}
	meta.Decimals = decimals

	textField := func(method string) string {
		values, err := call(ctx, caller, token, stringABI, method, nil)
		if err == nil {
			if s, ok := values[0].(string); ok {
				return s
			}
		}
		values, err = call(ctx, caller, token, bytes32ABI, method, nil)
		if err == nil {
			if s, ok := bytes32ToString(values[0]); ok {
				return s
			}
		}
		logger.Debug("token field unavailable", zap.String("token", token.Hex()), zap.String("field", method), zap.Error(err))
		return ""
	}
	meta.Symbol = textField("symbol")
	meta.Name = textField("name")

	return meta, nil
}

func call(ctx context.Context, caller chain.Caller, target common.Address, parsed abi.ABI, method string, block *big.Int) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &target, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func blockArg(block uint64) *big.Int {
	if block == 0 {
		return nil
	}
	return new(big.Int).SetUint64(block)
}

func bytes32ToString(value interface{}) (string, bool) {
	v, ok := value.([32]byte)
	if !ok {
		return "", false
	}
	return string(bytes.TrimRight(v[:], "\x00")), true
}

func asAddress(value interface{}) (common.Address, error) {
	if v, ok := value.(common.Address); ok {
		return v, nil
	}
	return common.Address{}, fmt.Errorf("unsupported address type %T", value)
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	if value.Cmp(big.NewInt(-1<<23)) < 0 || value.Cmp(big.NewInt(1<<23-1)) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
