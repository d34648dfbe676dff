/*

Swap-and-distribute controller. When the collected fee pool crosses the
configured threshold, the controller converts the pool into value and
liquidity through the AMM in three legs: the liquidity portion is split in
half, one half swapped for value and both halves supplied as liquidity; the
marketing and admin portions are swapped for value and paid out to their
wallets. The admin portion is computed as the remainder so the three legs
always consume exactly the snapshot.

The distributing latch is held for the whole cycle. Transfers that the AMM
legs cause re-enter the pipeline through MoveTokens, see the latch, and never
start a second cycle.

*/

package token

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/tokenforge/tokend/internal/ledger"
	"github.com/tokenforge/tokend/internal/types"
)

const distributionDeadline = 20 * time.Minute

// swapAndDistribute runs one distribution cycle over the current fee pool.
// Called from the transfer pipeline with the lock held and the trigger
// already evaluated.
func (t *Token) swapAndDistribute() error {
	t.distributing = true
	defer func() { t.distributing = false }()

	pool := t.collectedFeeTotal

	lpTokens := pool.MulRaw(t.params.LiquidityPortionBP).QuoRaw(types.BasisPointDenominator)
	marketingTokens := pool.MulRaw(t.params.MarketingPortionBP).QuoRaw(types.BasisPointDenominator)
	adminTokens := pool.Sub(lpTokens).Sub(marketingTokens)

	path := []types.Address{t.selfAddr, t.router.PairedAssetAddress()}
	deadline := time.Now().Add(distributionDeadline).Unix()

	liquidityValue := sdkmath.ZeroInt()
	liquidityMinted := sdkmath.ZeroInt()
	marketingValue := sdkmath.ZeroInt()
	adminValue := sdkmath.ZeroInt()

	// Liquidity leg: half swapped for value, both halves supplied.
	half := lpTokens.QuoRaw(2)
	otherHalf := lpTokens.Sub(half)
	if half.IsPositive() {
		obtained, err := t.router.SwapExactTokenForValue(t.selfAddr, half, sdkmath.ZeroInt(), path, t.selfAddr, deadline)
		if err != nil {
			return fmt.Errorf("liquidity swap leg: %w", err)
		}
		liquidityValue = obtained
	}
	if otherHalf.IsPositive() && liquidityValue.IsPositive() {
		lpRecipient := t.params.LiquidityTokenRecipient
		if lpRecipient.IsZero() {
			lpRecipient = t.owner
		}
		_, _, minted, err := t.router.AddLiquidity(t.selfAddr, otherHalf, liquidityValue, sdkmath.ZeroInt(), sdkmath.ZeroInt(), lpRecipient, deadline)
		if err != nil {
			return fmt.Errorf("add liquidity leg: %w", err)
		}
		liquidityMinted = minted
	}

	// Marketing leg.
	if marketingTokens.IsPositive() {
		obtained, err := t.router.SwapExactTokenForValue(t.selfAddr, marketingTokens, sdkmath.ZeroInt(), path, t.selfAddr, deadline)
		if err != nil {
			return fmt.Errorf("marketing swap leg: %w", err)
		}
		marketingValue = obtained
		if marketingValue.IsPositive() {
			if err := t.bank.TransferValue(t.selfAddr, t.marketingWallet, marketingValue); err != nil {
				return fmt.Errorf("marketing payout: %w", err)
			}
		}
	}

	// Admin leg.
	if adminTokens.IsPositive() {
		obtained, err := t.router.SwapExactTokenForValue(t.selfAddr, adminTokens, sdkmath.ZeroInt(), path, t.selfAddr, deadline)
		if err != nil {
			return fmt.Errorf("admin swap leg: %w", err)
		}
		adminValue = obtained
		if adminValue.IsPositive() {
			if err := t.bank.TransferValue(t.selfAddr, t.adminFundWallet, adminValue); err != nil {
				return fmt.Errorf("admin payout: %w", err)
			}
		}
	}

	// Consume exactly the snapshot. Fees that accrued while the cycle ran
	// stay in the accumulator for the next one.
	t.collectedFeeTotal = t.collectedFeeTotal.Sub(pool)

	receiptID := uuid.New().String()
	t.emit(types.EventSwapAndDistribute, types.SwapAndDistributeEvent{
		ReceiptID:       receiptID,
		PoolConsumed:    pool,
		LiquidityTokens: lpTokens,
		MarketingTokens: marketingTokens,
		AdminTokens:     adminTokens,
		MarketingValue:  marketingValue,
		AdminValue:      adminValue,
		LiquidityValue:  liquidityValue,
		LiquidityMinted: liquidityMinted,
	})

	t.log.Info().
		Str("receiptID", receiptID).
		Str("poolConsumed", pool.String()).
		Str("liquidityTokens", lpTokens.String()).
		Str("marketingTokens", marketingTokens.String()).
		Str("adminTokens", adminTokens.String()).
		Str("marketingValue", marketingValue.String()).
		Str("adminValue", adminValue.String()).
		Str("liquidityValue", liquidityValue.String()).
		Str("liquidityMinted", liquidityMinted.String()).
		Msg("Distribution cycle completed")

	return nil
}

// SwapTokensAndWithdrawValue is the owner's rescue path: swap amount of the
// tokens held on the contract's own balance for value and send that value to
// recipient. The distributing latch is held so the swap cannot trigger a
// distribution cycle mid-rescue.
func (t *Token) SwapTokensAndWithdrawValue(caller, recipient types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if recipient.IsZero() {
		return ErrInvalidAddress
	}
	if amount.IsNil() || amount.IsNegative() {
		return ledger.ErrAmountInvalid
	}
	if amount.IsZero() {
		return ledger.ErrZeroAmount
	}

	return t.atomically(func() error {
		t.distributing = true
		defer func() { t.distributing = false }()

		path := []types.Address{t.selfAddr, t.router.PairedAssetAddress()}
		deadline := time.Now().Add(distributionDeadline).Unix()

		obtained, err := t.router.SwapExactTokenForValue(t.selfAddr, amount, sdkmath.ZeroInt(), path, t.selfAddr, deadline)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAmmInteractionFailed, err)
		}
		if obtained.IsPositive() {
			if err := t.bank.TransferValue(t.selfAddr, recipient, obtained); err != nil {
				return fmt.Errorf("%w: %w", ErrAmmInteractionFailed, err)
			}
		}

		// The rescued tokens are no longer available to distribute.
		if amount.GTE(t.collectedFeeTotal) {
			t.collectedFeeTotal = sdkmath.ZeroInt()
		} else {
			t.collectedFeeTotal = t.collectedFeeTotal.Sub(amount)
		}

		t.log.Info().
			Str("recipient", recipient.String()).
			Str("tokensSwapped", amount.String()).
			Str("valueObtained", obtained.String()).
			Msg("Rescue swap completed")
		return nil
	})
}

// WithdrawValue sends the contract's entire value balance to recipient.
// Fails with NothingToWithdraw when the balance is zero.
func (t *Token) WithdrawValue(caller, recipient types.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if recipient.IsZero() {
		return ErrInvalidAddress
	}

	held := t.bank.ValueBalanceOf(t.selfAddr)
	if !held.IsPositive() {
		return ErrNothingToWithdraw
	}
	if err := t.bank.TransferValue(t.selfAddr, recipient, held); err != nil {
		return fmt.Errorf("%w: %w", ErrAmmInteractionFailed, err)
	}

	t.log.Info().
		Str("recipient", recipient.String()).
		Str("valueWithdrawn", held.String()).
		Msg("Value withdrawn")
	return nil
}
