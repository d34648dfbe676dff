package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// TransferRecord is one successful transfer as persisted to the transfer log.
type TransferRecord struct {
	From      Address     `json:"from"`
	To        Address     `json:"to"`
	Gross     sdkmath.Int `json:"gross"`
	Fee       sdkmath.Int `json:"fee"`
	Net       sdkmath.Int `json:"net"`
	Timestamp time.Time   `json:"timestamp"`
}

// DistributionReceipt is the persisted outcome of one distribution cycle.
type DistributionReceipt struct {
	ID              string      `json:"id"`
	Timestamp       time.Time   `json:"timestamp"`
	PoolConsumed    sdkmath.Int `json:"pool_consumed"`
	LiquidityTokens sdkmath.Int `json:"liquidity_tokens"`
	MarketingTokens sdkmath.Int `json:"marketing_tokens"`
	AdminTokens     sdkmath.Int `json:"admin_tokens"`
	MarketingValue  sdkmath.Int `json:"marketing_value"`
	AdminValue      sdkmath.Int `json:"admin_value"`
	LiquidityValue  sdkmath.Int `json:"liquidity_value"`
	LiquidityMinted sdkmath.Int `json:"liquidity_minted"`
}
