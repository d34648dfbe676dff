/*

Token binds the ledger, the access and configuration registry, the fee
engine, and the swap-and-distribute controller into one transfer pipeline.

Execution is strictly serialized: public entry points hold the mutex for the
whole call, including any nested AMM interaction. Reentrancy from the AMM
back into the transfer pipeline goes through MoveTokens, which runs on the
already-held lock; the distribution latch keeps at most one distribution
cycle in flight.

*/

package token

import (
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/tokenforge/tokend/internal/amm"
	"github.com/tokenforge/tokend/internal/ledger"
	"github.com/tokenforge/tokend/internal/logger"
	"github.com/tokenforge/tokend/internal/types"
)

// Error definitions for the gating and configuration failure taxonomy.
// Ledger-level failures (zero amount, invalid recipient, insufficient
// balance, allowance exceeded) are defined in internal/ledger.
var (
	ErrNotOwner             = errors.New("caller is not the owner")
	ErrTradingDisabled      = errors.New("this account cannot send tokens until trading is enabled")
	ErrMaxTxExceeded        = errors.New("transfer amount exceeds the max transaction amount")
	ErrMaxWalletExceeded    = errors.New("new balance would exceed the max wallet balance")
	ErrFeeTooHigh           = errors.New("total fees cannot be greater than 10000 (100%)")
	ErrPortionMismatch      = errors.New("swap portions must total exactly 10000 (100%)")
	ErrAmmInteractionFailed = errors.New("amm interaction failed")
	ErrInvalidAddress       = errors.New("address cannot be the zero address")
	ErrNothingToWithdraw    = errors.New("no value held to withdraw")
)

// Config holds everything needed to construct a Token.
type Config struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply sdkmath.Int

	Owner           types.Address
	ContractAddress types.Address
	PairAddress     types.Address
	MarketingWallet types.Address
	AdminFundWallet types.Address

	Params types.TokenParameters

	Router amm.Router
	Bank   amm.ValueBank
	Sink   types.EventSink
}

// Token is the deployed token instance.
type Token struct {
	mu  sync.Mutex
	log zerolog.Logger

	name     string
	symbol   string
	decimals uint8

	ledger *ledger.Ledger
	params types.TokenParameters

	owner           types.Address
	selfAddr        types.Address
	pairAddr        types.Address
	marketingWallet types.Address
	adminFundWallet types.Address

	excludedFromFee map[types.Address]bool

	collectedFeeTotal sdkmath.Int

	// distributing is the reentrancy latch: true only while a distribution
	// cycle (or a rescue swap) holds the AMM entry.
	distributing bool

	// pending buffers events emitted during an in-flight atomic call; they
	// reach the sink only if the outermost checkpoint commits. cpDepth counts
	// the nested checkpoints currently open.
	pending []types.Event
	cpDepth int

	router amm.Router
	bank   amm.ValueBank
	sink   types.EventSink
}

// New creates a token with the full supply credited to the owner. The
// contract's own address is fee-excluded so fee bookkeeping and distribution
// legs do not tax themselves; the owner is not.
func New(cfg Config) (*Token, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("token configuration validation failed: %w", err)
	}

	book, err := ledger.New(cfg.TotalSupply, cfg.Owner)
	if err != nil {
		return nil, err
	}

	sink := cfg.Sink
	if sink == nil {
		sink = types.NoopSink{}
	}

	t := &Token{
		log:               logger.GetForComponent("token_core"),
		name:              cfg.Name,
		symbol:            cfg.Symbol,
		decimals:          cfg.Decimals,
		ledger:            book,
		params:            cfg.Params,
		owner:             cfg.Owner,
		selfAddr:          cfg.ContractAddress,
		pairAddr:          cfg.PairAddress,
		marketingWallet:   cfg.MarketingWallet,
		adminFundWallet:   cfg.AdminFundWallet,
		excludedFromFee:   map[types.Address]bool{cfg.ContractAddress: true},
		collectedFeeTotal: sdkmath.ZeroInt(),
		router:            cfg.Router,
		bank:              cfg.Bank,
		sink:              sink,
	}

	t.log.Info().
		Str("name", t.name).
		Str("symbol", t.symbol).
		Uint8("decimals", t.decimals).
		Str("totalSupply", cfg.TotalSupply.String()).
		Str("owner", t.owner.String()).
		Msg("Token created")

	return t, nil
}

func validateConfig(cfg Config) error {
	if cfg.Name == "" || cfg.Symbol == "" {
		return errors.New("token name and symbol cannot be empty")
	}
	if cfg.TotalSupply.IsNil() || !cfg.TotalSupply.IsPositive() {
		return errors.New("total supply must be positive")
	}
	if cfg.Owner.IsZero() {
		return errors.New("owner cannot be the zero address")
	}
	if cfg.ContractAddress.IsZero() {
		return errors.New("contract address cannot be the zero address")
	}
	if cfg.PairAddress.IsZero() {
		return errors.New("pair address cannot be the zero address")
	}
	if cfg.MarketingWallet.IsZero() {
		return errors.New("marketing wallet cannot be the zero address")
	}
	if cfg.AdminFundWallet.IsZero() {
		return errors.New("admin fund wallet cannot be the zero address")
	}
	if cfg.Router == nil {
		return errors.New("router cannot be nil")
	}
	if cfg.Bank == nil {
		return errors.New("value bank cannot be nil")
	}
	if err := validateFees(cfg.Params.MarketingFeeBP, cfg.Params.AdminFeeBP, cfg.Params.LiquidityFeeBP); err != nil {
		return err
	}
	if err := validatePortions(cfg.Params.MarketingPortionBP, cfg.Params.AdminPortionBP, cfg.Params.LiquidityPortionBP); err != nil {
		return err
	}
	if err := validateLimit(cfg.Params.MaxTxAmount); err != nil {
		return err
	}
	if err := validateLimit(cfg.Params.MaxWalletBalance); err != nil {
		return err
	}
	return validateLimit(cfg.Params.SwapTokensAtAmount)
}

func validateFees(marketingBP, adminBP, lpBP int64) error {
	if marketingBP < 0 || adminBP < 0 || lpBP < 0 {
		return errors.New("fee basis points cannot be negative")
	}
	if marketingBP+adminBP+lpBP > types.BasisPointDenominator {
		return ErrFeeTooHigh
	}
	return nil
}

func validatePortions(marketingBP, adminBP, lpBP int64) error {
	if marketingBP < 0 || adminBP < 0 || lpBP < 0 {
		return errors.New("portion basis points cannot be negative")
	}
	if marketingBP+adminBP+lpBP != types.BasisPointDenominator {
		return ErrPortionMismatch
	}
	return nil
}

func validateLimit(limit sdkmath.Int) error {
	if limit.IsNil() || limit.IsNegative() {
		return errors.New("limit must be a non-negative amount")
	}
	return nil
}

// emit records an event. Inside an atomic call the event is buffered so it
// can be dropped if the call reverts; outside one it reaches the sink
// immediately.
func (t *Token) emit(kind string, payload any) {
	ev := types.Event{Kind: kind, At: time.Now().UTC(), Payload: payload}
	if t.cpDepth > 0 {
		t.pending = append(t.pending, ev)
		return
	}
	t.sink.Record(ev)
}

func (t *Token) flushPending() {
	for _, ev := range t.pending {
		t.sink.Record(ev)
	}
	t.pending = nil
}

// --- Read surface ---

func (t *Token) Name() string   { return t.name }
func (t *Token) Symbol() string { return t.symbol }
func (t *Token) Decimals() uint8 {
	return t.decimals
}

func (t *Token) TotalSupply() sdkmath.Int {
	return t.ledger.TotalSupply()
}

func (t *Token) BalanceOf(addr types.Address) sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.BalanceOf(addr)
}

func (t *Token) Allowance(owner, spender types.Address) sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Allowance(owner, spender)
}

func (t *Token) Owner() types.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.owner
}

func (t *Token) ContractAddress() types.Address { return t.selfAddr }
func (t *Token) Pair() types.Address            { return t.pairAddr }

func (t *Token) MarketingWallet() types.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.marketingWallet
}

func (t *Token) AdminFundWallet() types.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.adminFundWallet
}

func (t *Token) IsExcludedFromFee(addr types.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.excludedFromFee[addr]
}

func (t *Token) CollectedFeeTotal() sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.collectedFeeTotal
}

// Parameters returns a copy of the active parameter set.
func (t *Token) Parameters() types.TokenParameters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params
}

func (t *Token) MarketingFee() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.MarketingFeeBP
}

func (t *Token) AdminFee() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.AdminFeeBP
}

func (t *Token) LPFee() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.LiquidityFeeBP
}

func (t *Token) MarketingPortionOfSwap() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.MarketingPortionBP
}

func (t *Token) AdminPortionOfSwap() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.AdminPortionBP
}

func (t *Token) LPPortionOfSwap() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.LiquidityPortionBP
}

func (t *Token) MaxTxAmount() sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.MaxTxAmount
}

func (t *Token) MaxWalletBalance() sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.MaxWalletBalance
}

func (t *Token) SwapTokensAtAmount() sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.SwapTokensAtAmount
}

func (t *Token) TradingIsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.TradingEnabled
}

func (t *Token) TakeFeeEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.FeeEnabled
}

func (t *Token) SwapEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.SwapEnabled
}
