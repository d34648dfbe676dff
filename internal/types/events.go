/*

Event payloads emitted by the token core. Events are notifications only: the
core never reads them back, and a sink that drops them does not affect ledger
state. The Postgres sink in internal/state persists them for the web API.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// Event kinds.
const (
	EventTransfer               = "transfer"
	EventApproval               = "approval"
	EventOwnershipTransferred   = "ownership_transferred"
	EventExcludeFromFees        = "exclude_from_fees"
	EventMarketingWalletUpdated = "marketing_wallet_updated"
	EventAdminFundWalletUpdated = "admin_fund_wallet_updated"
	EventFeesUpdated            = "fees_updated"
	EventPortionsUpdated        = "portions_updated"
	EventSwapAndDistribute      = "swap_and_distribute"
)

// Event is a single notification with a typed payload.
type Event struct {
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

// EventSink receives events emitted by the token core.
type EventSink interface {
	Record(event Event)
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) Record(Event) {}

// TransferEvent carries the net amount credited to the recipient plus the
// gross amount debited and the fee taken, so sinks can persist the full
// transfer record.
type TransferEvent struct {
	From  Address     `json:"from"`
	To    Address     `json:"to"`
	Value sdkmath.Int `json:"value"`
	Gross sdkmath.Int `json:"gross"`
	Fee   sdkmath.Int `json:"fee"`
}

type ApprovalEvent struct {
	Owner   Address     `json:"owner"`
	Spender Address     `json:"spender"`
	Value   sdkmath.Int `json:"value"`
}

type OwnershipTransferredEvent struct {
	PreviousOwner Address `json:"previous_owner"`
	NewOwner      Address `json:"new_owner"`
}

type ExcludeFromFeesEvent struct {
	Account    Address `json:"account"`
	IsExcluded bool    `json:"is_excluded"`
}

type MarketingWalletUpdatedEvent struct {
	OldMarketingWallet Address `json:"old_marketing_wallet"`
	NewMarketingWallet Address `json:"new_marketing_wallet"`
}

type AdminFundWalletUpdatedEvent struct {
	OldAdminFundWallet Address `json:"old_admin_fund_wallet"`
	NewAdminFundWallet Address `json:"new_admin_fund_wallet"`
}

type FeesUpdatedEvent struct {
	MarketingFeeBP int64 `json:"marketing_fee_bp"`
	AdminFeeBP     int64 `json:"admin_fee_bp"`
	LiquidityFeeBP int64 `json:"liquidity_fee_bp"`
}

type PortionsUpdatedEvent struct {
	MarketingPortionBP int64 `json:"marketing_portion_bp"`
	AdminPortionBP     int64 `json:"admin_portion_bp"`
	LiquidityPortionBP int64 `json:"liquidity_portion_bp"`
}

// SwapAndDistributeEvent summarizes one completed distribution cycle.
type SwapAndDistributeEvent struct {
	ReceiptID       string      `json:"receipt_id"`
	PoolConsumed    sdkmath.Int `json:"pool_consumed"`
	LiquidityTokens sdkmath.Int `json:"liquidity_tokens"`
	MarketingTokens sdkmath.Int `json:"marketing_tokens"`
	AdminTokens     sdkmath.Int `json:"admin_tokens"`
	MarketingValue  sdkmath.Int `json:"marketing_value"`
	AdminValue      sdkmath.Int `json:"admin_value"`
	LiquidityValue  sdkmath.Int `json:"liquidity_value"`
	LiquidityMinted sdkmath.Int `json:"liquidity_minted"`
}
