/*

TokenParameters is the owner-configurable state of the token: fee rates,
swap portions, anti-whale limits and feature flags. A versioned copy of the
active set is persisted so configuration survives restarts and every change
is auditable.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// BasisPointDenominator is the denominator for all percentage configuration.
// 10000 basis points = 100%.
const BasisPointDenominator = 10000

// TokenParameters holds every owner-configurable value.
//
// Fee basis points are charged on fee-bearing transfers and must sum to at
// most 10000. Swap portions describe how the collected fee pool is split on
// distribution and must sum to exactly 10000.
type TokenParameters struct {
	// --- Fee configuration (basis points over 10000) ---
	MarketingFeeBP int64 `json:"marketing_fee_bp"`
	AdminFeeBP     int64 `json:"admin_fee_bp"`
	LiquidityFeeBP int64 `json:"liquidity_fee_bp"`

	// --- Swap portion configuration (basis points over 10000, sum == 10000) ---
	MarketingPortionBP int64 `json:"marketing_portion_bp"`
	AdminPortionBP     int64 `json:"admin_portion_bp"`
	LiquidityPortionBP int64 `json:"liquidity_portion_bp"`

	// --- Anti-whale limits (token base units) ---
	MaxTxAmount        sdkmath.Int `json:"max_tx_amount"`
	MaxWalletBalance   sdkmath.Int `json:"max_wallet_balance"`
	SwapTokensAtAmount sdkmath.Int `json:"swap_tokens_at_amount"`

	// --- Feature flags ---
	TradingEnabled bool `json:"trading_enabled"`
	FeeEnabled     bool `json:"fee_enabled"`
	SwapEnabled    bool `json:"swap_enabled"`

	// LiquidityTokenRecipient receives pool-ownership tokens minted during a
	// distribution cycle. Zero means the current owner at the time of the cycle.
	LiquidityTokenRecipient Address `json:"liquidity_token_recipient"`
}

// TotalFeeBP returns the combined fee rate in basis points.
func (p TokenParameters) TotalFeeBP() int64 {
	return p.MarketingFeeBP + p.AdminFeeBP + p.LiquidityFeeBP
}

// TotalPortionBP returns the combined swap portion in basis points.
func (p TokenParameters) TotalPortionBP() int64 {
	return p.MarketingPortionBP + p.AdminPortionBP + p.LiquidityPortionBP
}
