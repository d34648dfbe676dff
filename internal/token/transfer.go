/*

Transfer orchestration. Every external call runs under one ledger checkpoint:
on any failure the balances, allowances, and the collected-fee accumulator
are restored to their pre-call values, so no partial application is ever
observable.

*/

package token

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/tokenforge/tokend/internal/ledger"
	"github.com/tokenforge/tokend/internal/types"
)

// Transfer moves amount from the caller to recipient, taking any applicable
// fee and possibly running a distribution cycle before it returns.
func (t *Token) Transfer(caller, to types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.atomically(func() error {
		_, err := t.transferPipeline(caller, to, amount)
		return err
	})
}

// TransferFrom is the delegated transfer: spender moves amount from the
// owner's balance, consuming allowance first.
func (t *Token) TransferFrom(spender, from, to types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.atomically(func() error {
		if amount.IsNil() || amount.IsNegative() {
			return ledger.ErrAmountInvalid
		}
		if err := t.ledger.SpendAllowance(from, spender, amount); err != nil {
			return err
		}
		_, err := t.transferPipeline(from, to, amount)
		return err
	})
}

// Approve sets the absolute allowance for spender.
func (t *Token) Approve(caller, spender types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.atomically(func() error {
		if err := t.ledger.SetAllowance(caller, spender, amount); err != nil {
			return err
		}
		t.emit(types.EventApproval, types.ApprovalEvent{Owner: caller, Spender: spender, Value: amount})
		return nil
	})
}

// IncreaseAllowance raises the allowance for spender by added.
func (t *Token) IncreaseAllowance(caller, spender types.Address, added sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.atomically(func() error {
		if added.IsNil() || added.IsNegative() {
			return ledger.ErrAmountInvalid
		}
		newValue := t.ledger.Allowance(caller, spender).Add(added)
		if err := t.ledger.SetAllowance(caller, spender, newValue); err != nil {
			return err
		}
		t.emit(types.EventApproval, types.ApprovalEvent{Owner: caller, Spender: spender, Value: newValue})
		return nil
	})
}

// DecreaseAllowance lowers the allowance for spender by subtracted. Fails
// with AllowanceExceeded rather than driving the allowance below zero.
func (t *Token) DecreaseAllowance(caller, spender types.Address, subtracted sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.atomically(func() error {
		if subtracted.IsNil() || subtracted.IsNegative() {
			return ledger.ErrAmountInvalid
		}
		current := t.ledger.Allowance(caller, spender)
		if current.LT(subtracted) {
			return ledger.ErrAllowanceExceeded
		}
		newValue := current.Sub(subtracted)
		if err := t.ledger.SetAllowance(caller, spender, newValue); err != nil {
			return err
		}
		t.emit(types.EventApproval, types.ApprovalEvent{Owner: caller, Spender: spender, Value: newValue})
		return nil
	})
}

// MoveTokens implements amm.TokenMover. It runs the full transfer pipeline
// on the lock already held by the enclosing public call; the collaborator
// must only invoke it from inside an in-flight token operation. Returns the
// net amount this transfer credited to the recipient; tokens a distribution
// cycle running inside the call routes to the same recipient are not
// included, the nested calls that move them report those themselves.
func (t *Token) MoveTokens(from, to types.Address, amount sdkmath.Int) (sdkmath.Int, error) {
	var net sdkmath.Int
	err := t.atomically(func() error {
		var perr error
		net, perr = t.transferPipeline(from, to, amount)
		return perr
	})
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return net, nil
}

// atomically runs op under a ledger checkpoint; on error every ledger
// mutation, the accumulator, and any events emitted inside op are rolled
// back to the values at entry. Buffered events reach the sink only when the
// outermost checkpoint commits, so a reverted call never persists anything.
func (t *Token) atomically(op func() error) error {
	cp := t.ledger.Checkpoint()
	accBefore := t.collectedFeeTotal
	evMark := len(t.pending)
	t.cpDepth++

	err := op()
	t.cpDepth--

	if err != nil {
		t.ledger.Revert(cp)
		t.collectedFeeTotal = accBefore
		t.pending = t.pending[:evMark]
		return err
	}

	t.ledger.Release(cp)
	if t.cpDepth == 0 {
		t.flushPending()
	}
	return nil
}

// transferPipeline is the full transfer sequence: validation, gating,
// fee accrual, ledger movement, wallet-limit check, distribution trigger,
// notification. Returns the net amount credited to the recipient.
func (t *Token) transferPipeline(from, to types.Address, amount sdkmath.Int) (sdkmath.Int, error) {
	zero := sdkmath.ZeroInt()
	if amount.IsNil() || amount.IsNegative() {
		return zero, ledger.ErrAmountInvalid
	}
	if amount.IsZero() {
		return zero, ledger.ErrZeroAmount
	}
	if from.IsZero() {
		return zero, ledger.ErrInvalidSender
	}
	if to.IsZero() {
		return zero, ledger.ErrInvalidRecipient
	}

	fromExcluded := t.excludedFromFee[from]

	if !fromExcluded && !t.params.TradingEnabled {
		return zero, ErrTradingDisabled
	}
	if !fromExcluded && amount.GT(t.params.MaxTxAmount) {
		return zero, ErrMaxTxExceeded
	}

	fee, net := t.computeFee(from, to, amount)

	// One movement group: the sender pays the gross amount, the fee lands on
	// the contract's own balance, the recipient gets the net.
	if err := t.ledger.Debit(from, amount); err != nil {
		return zero, err
	}
	if fee.IsPositive() {
		if err := t.ledger.Credit(t.selfAddr, fee); err != nil {
			return zero, err
		}
		t.collectedFeeTotal = t.collectedFeeTotal.Add(fee)
	}
	if err := t.ledger.Credit(to, net); err != nil {
		return zero, err
	}

	// Post-transfer wallet cap; the enclosing checkpoint rolls the whole
	// movement back on failure.
	if !t.excludedFromFee[to] && to != t.pairAddr {
		if t.ledger.BalanceOf(to).GT(t.params.MaxWalletBalance) {
			return zero, ErrMaxWalletExceeded
		}
	}

	if t.shouldDistribute(from) {
		if err := t.swapAndDistribute(); err != nil {
			return zero, fmt.Errorf("%w: %w", ErrAmmInteractionFailed, err)
		}
	}

	t.emit(types.EventTransfer, types.TransferEvent{From: from, To: to, Value: net, Gross: amount, Fee: fee})

	t.log.Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("gross", amount.String()).
		Str("fee", fee.String()).
		Str("net", net.String()).
		Msg("Transfer completed")

	return net, nil
}

// shouldDistribute evaluates the swap-and-distribute trigger once per
// external transfer, after fee accrual. A transfer sent by the pair never
// triggers; the pair is mid-swap when it sends.
func (t *Token) shouldDistribute(from types.Address) bool {
	return t.params.SwapEnabled &&
		!t.distributing &&
		from != t.pairAddr &&
		t.collectedFeeTotal.GTE(t.params.SwapTokensAtAmount) &&
		t.collectedFeeTotal.IsPositive()
}
