/*

Pool is a reference constant-product (x*y=k) pool implementing Router and
ValueBank. It exists so the system runs end to end without an external
exchange: cmd/tokend wires it as the live collaborator and the tests use it
for integration coverage. It charges the conventional 30 basis point pool fee
on swaps.

Token balances are moved through the bound TokenMover, so transfer fees and
the distribution trigger fire during pool interaction exactly as they do on
chain. The pool tracks its token reserve as the sum of net amounts received,
which keeps the reserve equal to the pair's ledger balance even when a
fee-on-transfer deduction shrinks an inbound leg. MoveTokens reports only the
requested transfer's net credit, so tokens a mid-swap distribution cycle
routes into the pool are counted exactly once, by the nested calls that move
them.

*/

package amm

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/tokenforge/tokend/internal/logger"
	"github.com/tokenforge/tokend/internal/types"
)

const (
	// Pool swap fee in basis points.
	poolFeeBP  = 30
	feeDenomBP = 10000
)

// PoolConfig holds the static identity of a reference pool.
type PoolConfig struct {
	// PoolAddress is the pair's account on the token ledger.
	PoolAddress types.Address
	// TokenAddress is the token contract's account, the head of every swap path.
	TokenAddress types.Address
	// PairedAsset identifies the base asset side of the pool.
	PairedAsset types.Address
}

// Pool is an in-process constant-product pool.
type Pool struct {
	log zerolog.Logger

	address     types.Address
	tokenAddr   types.Address
	pairedAsset types.Address

	mover TokenMover

	reserveToken sdkmath.Int
	reserveValue sdkmath.Int

	valueBalances map[types.Address]sdkmath.Int
	lpShares      map[types.Address]sdkmath.Int
	totalShares   sdkmath.Int
}

// NewPool creates an empty pool. Bind the token mover with BindMover before use.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.PoolAddress.IsZero() {
		return nil, errors.New("pool address cannot be zero")
	}
	if cfg.TokenAddress.IsZero() {
		return nil, errors.New("token address cannot be zero")
	}
	if cfg.PairedAsset.IsZero() {
		return nil, errors.New("paired asset address cannot be zero")
	}

	return &Pool{
		log:           logger.GetForComponent("amm_pool"),
		address:       cfg.PoolAddress,
		tokenAddr:     cfg.TokenAddress,
		pairedAsset:   cfg.PairedAsset,
		reserveToken:  sdkmath.ZeroInt(),
		reserveValue:  sdkmath.ZeroInt(),
		valueBalances: make(map[types.Address]sdkmath.Int),
		lpShares:      make(map[types.Address]sdkmath.Int),
		totalShares:   sdkmath.ZeroInt(),
	}, nil
}

// BindMover wires the pool to the token ledger. Separate from NewPool because
// the token and the pool reference each other.
func (p *Pool) BindMover(mover TokenMover) {
	p.mover = mover
}

// PoolAddress returns the pair's account on the token ledger.
func (p *Pool) PoolAddress() types.Address {
	return p.address
}

// PairedAssetAddress implements Router.
func (p *Pool) PairedAssetAddress() types.Address {
	return p.pairedAsset
}

// Reserves returns the current token and value reserves.
func (p *Pool) Reserves() (sdkmath.Int, sdkmath.Int) {
	return p.reserveToken, p.reserveValue
}

// LiquidityOf returns the pool-ownership tokens held by addr.
func (p *Pool) LiquidityOf(addr types.Address) sdkmath.Int {
	if shares, ok := p.lpShares[addr]; ok {
		return shares
	}
	return sdkmath.ZeroInt()
}

// FundValue credits base-asset value to addr. The base-asset ledger lives
// with the collaborator, so this is the faucet used to seed accounts.
func (p *Pool) FundValue(addr types.Address, amount sdkmath.Int) error {
	if addr.IsZero() {
		return errors.New("cannot fund the zero address")
	}
	if amount.IsNil() || amount.IsNegative() {
		return errors.New("fund amount is invalid")
	}
	p.valueBalances[addr] = p.valueBalanceOf(addr).Add(amount)
	return nil
}

// ValueBalanceOf implements ValueBank.
func (p *Pool) ValueBalanceOf(addr types.Address) sdkmath.Int {
	return p.valueBalanceOf(addr)
}

func (p *Pool) valueBalanceOf(addr types.Address) sdkmath.Int {
	if bal, ok := p.valueBalances[addr]; ok {
		return bal
	}
	return sdkmath.ZeroInt()
}

// TransferValue implements ValueBank.
func (p *Pool) TransferValue(from, to types.Address, amount sdkmath.Int) error {
	if from.IsZero() || to.IsZero() {
		return errors.New("value transfer endpoints cannot be zero")
	}
	if amount.IsNil() || amount.IsNegative() {
		return errors.New("value transfer amount is invalid")
	}

	fromBal := p.valueBalanceOf(from)
	if fromBal.LT(amount) {
		return ErrInsufficientValue
	}
	p.valueBalances[from] = fromBal.Sub(amount)
	p.valueBalances[to] = p.valueBalanceOf(to).Add(amount)
	return nil
}

// SwapExactTokenForValue implements Router.
func (p *Pool) SwapExactTokenForValue(caller types.Address, amountIn, minOut sdkmath.Int, path []types.Address, recipient types.Address, deadline int64) (sdkmath.Int, error) {
	if err := p.checkSwapPreconditions(amountIn, deadline); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := p.validatePath(path, p.tokenAddr, p.pairedAsset); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if !p.reserveToken.IsPositive() || !p.reserveValue.IsPositive() {
		return sdkmath.ZeroInt(), ErrInsufficientLiquidity
	}

	// Pull the token leg first; the distribution trigger may fire inside this
	// call, and the pool must be quiescent while it does.
	received, err := p.mover.MoveTokens(caller, p.address, amountIn)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("token pull failed: %w", err)
	}

	out := getAmountOut(received, p.reserveToken, p.reserveValue)
	if !out.IsPositive() || out.GTE(p.reserveValue) {
		return sdkmath.ZeroInt(), ErrInsufficientLiquidity
	}
	if out.LT(minOut) {
		return sdkmath.ZeroInt(), ErrSlippageExceeded
	}

	p.reserveToken = p.reserveToken.Add(received)
	p.reserveValue = p.reserveValue.Sub(out)
	p.valueBalances[recipient] = p.valueBalanceOf(recipient).Add(out)

	p.log.Debug().
		Str("caller", caller.String()).
		Str("amountIn", amountIn.String()).
		Str("received", received.String()).
		Str("valueOut", out.String()).
		Msg("Swapped token for value")

	return out, nil
}

// SwapExactValueForToken implements Router.
func (p *Pool) SwapExactValueForToken(caller types.Address, valueIn, minOut sdkmath.Int, path []types.Address, recipient types.Address, deadline int64) (sdkmath.Int, error) {
	if err := p.checkSwapPreconditions(valueIn, deadline); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := p.validatePath(path, p.pairedAsset, p.tokenAddr); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if !p.reserveToken.IsPositive() || !p.reserveValue.IsPositive() {
		return sdkmath.ZeroInt(), ErrInsufficientLiquidity
	}

	callerBal := p.valueBalanceOf(caller)
	if callerBal.LT(valueIn) {
		return sdkmath.ZeroInt(), ErrInsufficientValue
	}

	out := getAmountOut(valueIn, p.reserveValue, p.reserveToken)
	if !out.IsPositive() || out.GTE(p.reserveToken) {
		return sdkmath.ZeroInt(), ErrInsufficientLiquidity
	}
	if out.LT(minOut) {
		return sdkmath.ZeroInt(), ErrSlippageExceeded
	}

	p.valueBalances[caller] = callerBal.Sub(valueIn)
	p.reserveValue = p.reserveValue.Add(valueIn)
	p.reserveToken = p.reserveToken.Sub(out)

	// The recipient may be credited less than out if the token taxes the
	// pair-to-buyer transfer; that is the token's business, not the pool's.
	if _, err := p.mover.MoveTokens(p.address, recipient, out); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("token push failed: %w", err)
	}

	p.log.Debug().
		Str("caller", caller.String()).
		Str("valueIn", valueIn.String()).
		Str("tokenOut", out.String()).
		Msg("Swapped value for token")

	return out, nil
}

// AddLiquidity implements Router. Both legs settle in the same call; on any
// failure before settlement nothing has moved.
func (p *Pool) AddLiquidity(caller types.Address, tokenAmount, valueAmount, minToken, minValue sdkmath.Int, recipient types.Address, deadline int64) (sdkmath.Int, sdkmath.Int, sdkmath.Int, error) {
	zero := sdkmath.ZeroInt()
	if p.mover == nil {
		return zero, zero, zero, ErrMoverNotBound
	}
	if err := checkDeadline(deadline); err != nil {
		return zero, zero, zero, err
	}
	if tokenAmount.IsNil() || !tokenAmount.IsPositive() || valueAmount.IsNil() || !valueAmount.IsPositive() {
		return zero, zero, zero, errors.New("liquidity amounts must be positive")
	}
	if recipient.IsZero() {
		return zero, zero, zero, errors.New("liquidity recipient cannot be zero")
	}

	callerBal := p.valueBalanceOf(caller)
	if callerBal.LT(valueAmount) {
		return zero, zero, zero, ErrInsufficientValue
	}

	received, err := p.mover.MoveTokens(caller, p.address, tokenAmount)
	if err != nil {
		return zero, zero, zero, fmt.Errorf("token pull failed: %w", err)
	}
	if received.LT(minToken) {
		return zero, zero, zero, ErrSlippageExceeded
	}
	if valueAmount.LT(minValue) {
		return zero, zero, zero, ErrSlippageExceeded
	}

	var minted sdkmath.Int
	if p.totalShares.IsZero() {
		minted = integerSqrt(received.Mul(valueAmount))
	} else {
		byToken := received.Mul(p.totalShares).Quo(p.reserveToken)
		byValue := valueAmount.Mul(p.totalShares).Quo(p.reserveValue)
		minted = sdkmath.MinInt(byToken, byValue)
	}
	if !minted.IsPositive() {
		return zero, zero, zero, ErrInsufficientLiquidity
	}

	p.valueBalances[caller] = callerBal.Sub(valueAmount)
	p.reserveToken = p.reserveToken.Add(received)
	p.reserveValue = p.reserveValue.Add(valueAmount)
	p.lpShares[recipient] = p.LiquidityOf(recipient).Add(minted)
	p.totalShares = p.totalShares.Add(minted)

	p.log.Debug().
		Str("caller", caller.String()).
		Str("tokenUsed", received.String()).
		Str("valueUsed", valueAmount.String()).
		Str("liquidityMinted", minted.String()).
		Msg("Added liquidity")

	return received, valueAmount, minted, nil
}

func (p *Pool) checkSwapPreconditions(amountIn sdkmath.Int, deadline int64) error {
	if p.mover == nil {
		return ErrMoverNotBound
	}
	if err := checkDeadline(deadline); err != nil {
		return err
	}
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return errors.New("swap input amount must be positive")
	}
	return nil
}

func (p *Pool) validatePath(path []types.Address, head, tail types.Address) error {
	if len(path) < 2 {
		return ErrInvalidPath
	}
	if path[0] != head || path[len(path)-1] != tail {
		return ErrInvalidPath
	}
	return nil
}

func checkDeadline(deadline int64) error {
	if deadline != 0 && deadline < time.Now().Unix() {
		return ErrExpired
	}
	return nil
}

// getAmountOut applies the constant-product formula with the pool fee:
// out = (in*9970*reserveOut) / (reserveIn*10000 + in*9970).
func getAmountOut(amountIn, reserveIn, reserveOut sdkmath.Int) sdkmath.Int {
	amountInWithFee := amountIn.MulRaw(feeDenomBP - poolFeeBP)
	numerator := amountInWithFee.Mul(reserveOut)
	denominator := reserveIn.MulRaw(feeDenomBP).Add(amountInWithFee)
	if !denominator.IsPositive() {
		return sdkmath.ZeroInt()
	}
	return numerator.Quo(denominator)
}

// integerSqrt returns floor(sqrt(n)) for the first liquidity mint.
func integerSqrt(n sdkmath.Int) sdkmath.Int {
	if !n.IsPositive() {
		return sdkmath.ZeroInt()
	}
	root := new(big.Int).Sqrt(n.BigInt())
	return sdkmath.NewIntFromBigInt(root)
}
