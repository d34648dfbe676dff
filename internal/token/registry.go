/*

Owner-gated configuration surface. Every mutating operation requires the
caller to be the current owner and validates the parameter invariants at the
edit site; nothing is silently clamped. Renouncing ownership sets the owner
to the zero sentinel, after which every gated operation fails permanently
with NotOwner.

*/

package token

import (
	sdkmath "cosmossdk.io/math"

	"github.com/tokenforge/tokend/internal/types"
)

func (t *Token) requireOwner(caller types.Address) error {
	if t.owner.IsZero() || caller != t.owner {
		return ErrNotOwner
	}
	return nil
}

// UpdateFees sets the three fee rates. Fails with FeeTooHigh when the sum
// exceeds 10000 basis points.
func (t *Token) UpdateFees(caller types.Address, marketingBP, adminBP, lpBP int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := validateFees(marketingBP, adminBP, lpBP); err != nil {
		return err
	}

	t.params.MarketingFeeBP = marketingBP
	t.params.AdminFeeBP = adminBP
	t.params.LiquidityFeeBP = lpBP

	t.emit(types.EventFeesUpdated, types.FeesUpdatedEvent{
		MarketingFeeBP: marketingBP,
		AdminFeeBP:     adminBP,
		LiquidityFeeBP: lpBP,
	})
	t.log.Info().
		Int64("marketingBP", marketingBP).
		Int64("adminBP", adminBP).
		Int64("lpBP", lpBP).
		Msg("Fees updated")
	return nil
}

// UpdatePortionsOfSwap sets how the collected pool is split on distribution.
// Fails with PortionMismatch unless the sum is exactly 10000 basis points.
func (t *Token) UpdatePortionsOfSwap(caller types.Address, marketingBP, adminBP, lpBP int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := validatePortions(marketingBP, adminBP, lpBP); err != nil {
		return err
	}

	t.params.MarketingPortionBP = marketingBP
	t.params.AdminPortionBP = adminBP
	t.params.LiquidityPortionBP = lpBP

	t.emit(types.EventPortionsUpdated, types.PortionsUpdatedEvent{
		MarketingPortionBP: marketingBP,
		AdminPortionBP:     adminBP,
		LiquidityPortionBP: lpBP,
	})
	t.log.Info().
		Int64("marketingBP", marketingBP).
		Int64("adminBP", adminBP).
		Int64("lpBP", lpBP).
		Msg("Swap portions updated")
	return nil
}

// UpdateTransactionMax sets the max-transaction limit.
func (t *Token) UpdateTransactionMax(caller types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := validateLimit(amount); err != nil {
		return err
	}

	t.params.MaxTxAmount = amount
	t.log.Info().Str("maxTxAmount", amount.String()).Msg("Max transaction amount updated")
	return nil
}

// UpdateWalletMax sets the max-wallet-balance limit.
func (t *Token) UpdateWalletMax(caller types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := validateLimit(amount); err != nil {
		return err
	}

	t.params.MaxWalletBalance = amount
	t.log.Info().Str("maxWalletBalance", amount.String()).Msg("Max wallet balance updated")
	return nil
}

// UpdateSwapTokensAt sets the accumulation threshold that triggers a
// distribution cycle.
func (t *Token) UpdateSwapTokensAt(caller types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := validateLimit(amount); err != nil {
		return err
	}

	t.params.SwapTokensAtAmount = amount
	t.log.Info().Str("swapTokensAtAmount", amount.String()).Msg("Swap threshold updated")
	return nil
}

// SetFeeEnabled toggles fee collection.
func (t *Token) SetFeeEnabled(caller types.Address, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.params.FeeEnabled = enabled
	t.log.Info().Bool("feeEnabled", enabled).Msg("Fee flag updated")
	return nil
}

// SetSwapEnabled toggles the distribution trigger.
func (t *Token) SetSwapEnabled(caller types.Address, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.params.SwapEnabled = enabled
	t.log.Info().Bool("swapEnabled", enabled).Msg("Swap flag updated")
	return nil
}

// UpdateTradingIsEnabled toggles trading for non-excluded senders.
func (t *Token) UpdateTradingIsEnabled(caller types.Address, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.params.TradingEnabled = enabled
	t.log.Info().Bool("tradingEnabled", enabled).Msg("Trading flag updated")
	return nil
}

// SetExcludedFromFee adds or removes an address from the fee-exclusion set.
// Idempotent; the notification reflects the new state either way.
func (t *Token) SetExcludedFromFee(caller, account types.Address, excluded bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if account.IsZero() {
		return ErrInvalidAddress
	}

	if excluded {
		t.excludedFromFee[account] = true
	} else {
		delete(t.excludedFromFee, account)
	}

	t.emit(types.EventExcludeFromFees, types.ExcludeFromFeesEvent{Account: account, IsExcluded: excluded})
	t.log.Info().Str("account", account.String()).Bool("excluded", excluded).Msg("Fee exclusion updated")
	return nil
}

// UpdateMarketingWallet points the marketing payout at a new address.
func (t *Token) UpdateMarketingWallet(caller, wallet types.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if wallet.IsZero() {
		return ErrInvalidAddress
	}

	old := t.marketingWallet
	t.marketingWallet = wallet

	t.emit(types.EventMarketingWalletUpdated, types.MarketingWalletUpdatedEvent{
		OldMarketingWallet: old,
		NewMarketingWallet: wallet,
	})
	t.log.Info().Str("old", old.String()).Str("new", wallet.String()).Msg("Marketing wallet updated")
	return nil
}

// UpdateAdminFundWallet points the admin-fund payout at a new address.
func (t *Token) UpdateAdminFundWallet(caller, wallet types.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if wallet.IsZero() {
		return ErrInvalidAddress
	}

	old := t.adminFundWallet
	t.adminFundWallet = wallet

	t.emit(types.EventAdminFundWalletUpdated, types.AdminFundWalletUpdatedEvent{
		OldAdminFundWallet: old,
		NewAdminFundWallet: wallet,
	})
	t.log.Info().Str("old", old.String()).Str("new", wallet.String()).Msg("Admin fund wallet updated")
	return nil
}

// TransferOwnership hands the owner role to a new non-zero address.
func (t *Token) TransferOwnership(caller, newOwner types.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return ErrInvalidAddress
	}

	previous := t.owner
	t.owner = newOwner

	t.emit(types.EventOwnershipTransferred, types.OwnershipTransferredEvent{
		PreviousOwner: previous,
		NewOwner:      newOwner,
	})
	t.log.Info().Str("previous", previous.String()).Str("new", newOwner.String()).Msg("Ownership transferred")
	return nil
}

// RenounceOwnership sets the owner to the zero sentinel. Irreversible: after
// this call no owner-gated operation can ever succeed again.
func (t *Token) RenounceOwnership(caller types.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}

	previous := t.owner
	t.owner = types.ZeroAddress

	t.emit(types.EventOwnershipTransferred, types.OwnershipTransferredEvent{
		PreviousOwner: previous,
		NewOwner:      types.ZeroAddress,
	})
	t.log.Warn().Str("previous", previous.String()).Msg("Ownership renounced")
	return nil
}
