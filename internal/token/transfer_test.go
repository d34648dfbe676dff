package token

import (
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokend/internal/ledger"
	"github.com/tokenforge/tokend/internal/types"
)

func TestTransferTakesFifteenPercentFee(t *testing.T) {
	tok, _, _, sink := newTestToken(t, testParams())

	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(1000)))

	require.Equal(t, sdkmath.NewInt(850), tok.BalanceOf(userA))
	require.Equal(t, sdkmath.NewInt(150), tok.BalanceOf(contractAddr))
	require.Equal(t, sdkmath.NewInt(150), tok.CollectedFeeTotal())
	require.Equal(t, sdkmath.NewInt(testSupply-1000), tok.BalanceOf(ownerAddr))

	ev, ok := sink.lastOfKind(types.EventTransfer)
	require.True(t, ok)
	payload := ev.Payload.(types.TransferEvent)
	require.Equal(t, sdkmath.NewInt(850), payload.Value)
	require.Equal(t, sdkmath.NewInt(1000), payload.Gross)
	require.Equal(t, sdkmath.NewInt(150), payload.Fee)
}

func TestTransferFeeFloorsRounding(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	// 15% of 7 is 1.05, floored to 1; the net side absorbs the remainder.
	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(7)))
	require.Equal(t, sdkmath.NewInt(6), tok.BalanceOf(userA))
	require.Equal(t, sdkmath.NewInt(1), tok.CollectedFeeTotal())
}

func TestTransferNoFeeWhenDisabled(t *testing.T) {
	params := testParams()
	params.FeeEnabled = false
	tok, _, _, _ := newTestToken(t, params)

	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(1000)))
	require.Equal(t, sdkmath.NewInt(1000), tok.BalanceOf(userA))
	require.True(t, tok.CollectedFeeTotal().IsZero())
}

func TestTransferNoFeeWhenEndpointExcluded(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.NoError(t, tok.SetExcludedFromFee(ownerAddr, userA, true))

	// Excluded recipient.
	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(1000)))
	require.Equal(t, sdkmath.NewInt(1000), tok.BalanceOf(userA))

	// Excluded sender.
	require.NoError(t, tok.Transfer(userA, userB, sdkmath.NewInt(500)))
	require.Equal(t, sdkmath.NewInt(500), tok.BalanceOf(userB))
	require.True(t, tok.CollectedFeeTotal().IsZero())
}

func TestTransferValidation(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.ErrorIs(t, tok.Transfer(ownerAddr, userA, sdkmath.ZeroInt()), ledger.ErrZeroAmount)
	require.ErrorIs(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(-1)), ledger.ErrAmountInvalid)
	require.ErrorIs(t, tok.Transfer(types.ZeroAddress, userA, sdkmath.NewInt(1)), ledger.ErrInvalidSender)
	require.ErrorIs(t, tok.Transfer(ownerAddr, types.ZeroAddress, sdkmath.NewInt(1)), ledger.ErrInvalidRecipient)
	require.ErrorIs(t, tok.Transfer(userA, userB, sdkmath.NewInt(1)), ledger.ErrInsufficientBalance)
}

func TestTransferMaxTxLimit(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	err := tok.Transfer(ownerAddr, userA, sdkmath.NewInt(10_001))
	require.ErrorIs(t, err, ErrMaxTxExceeded)
	require.Equal(t, sdkmath.NewInt(testSupply), tok.BalanceOf(ownerAddr))
	require.True(t, tok.BalanceOf(userA).IsZero())

	// Exactly at the limit passes.
	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(10_000)))
}

func TestTransferMaxTxSkippedForExcludedSender(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.NoError(t, tok.SetExcludedFromFee(ownerAddr, ownerAddr, true))
	require.NoError(t, tok.Transfer(ownerAddr, pairAddr, sdkmath.NewInt(100_000)))
	require.Equal(t, sdkmath.NewInt(100_000), tok.BalanceOf(pairAddr))
}

func TestTransferMaxWalletLimitRollsBackWholeTransfer(t *testing.T) {
	params := testParams()
	params.MaxWalletBalance = sdkmath.NewInt(1000)
	tok, _, _, _ := newTestToken(t, params)

	// Net credit of 1700 exceeds the 1000 cap; everything reverts, including
	// the fee accrual.
	err := tok.Transfer(ownerAddr, userA, sdkmath.NewInt(2000))
	require.ErrorIs(t, err, ErrMaxWalletExceeded)
	require.Equal(t, sdkmath.NewInt(testSupply), tok.BalanceOf(ownerAddr))
	require.True(t, tok.BalanceOf(userA).IsZero())
	require.True(t, tok.BalanceOf(contractAddr).IsZero())
	require.True(t, tok.CollectedFeeTotal().IsZero())
}

func TestTransferMaxWalletExemptsPair(t *testing.T) {
	params := testParams()
	params.MaxWalletBalance = sdkmath.NewInt(100)
	tok, _, _, _ := newTestToken(t, params)

	require.NoError(t, tok.Transfer(ownerAddr, pairAddr, sdkmath.NewInt(5000)))
	require.Equal(t, sdkmath.NewInt(4250), tok.BalanceOf(pairAddr))
}

func TestTransferTradingDisabled(t *testing.T) {
	params := testParams()
	params.TradingEnabled = false
	tok, _, _, _ := newTestToken(t, params)

	require.ErrorIs(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(100)), ErrTradingDisabled)

	// Fee-excluded senders bypass the gate.
	require.NoError(t, tok.SetExcludedFromFee(ownerAddr, ownerAddr, true))
	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(100)))
	require.Equal(t, sdkmath.NewInt(100), tok.BalanceOf(userA))
}

func TestApproveAndTransferFrom(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.NoError(t, tok.Approve(ownerAddr, userA, sdkmath.NewInt(500)))
	require.Equal(t, sdkmath.NewInt(500), tok.Allowance(ownerAddr, userA))

	require.NoError(t, tok.TransferFrom(userA, ownerAddr, userB, sdkmath.NewInt(300)))
	require.Equal(t, sdkmath.NewInt(200), tok.Allowance(ownerAddr, userA))
	require.Equal(t, sdkmath.NewInt(255), tok.BalanceOf(userB)) // 300 less 15%

	require.ErrorIs(t,
		tok.TransferFrom(userA, ownerAddr, userB, sdkmath.NewInt(201)),
		ledger.ErrAllowanceExceeded)
	require.Equal(t, sdkmath.NewInt(200), tok.Allowance(ownerAddr, userA))
}

func TestTransferFromRestoresAllowanceOnPipelineFailure(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.NoError(t, tok.Approve(ownerAddr, userA, sdkmath.NewInt(50_000)))

	// Allowance covers the amount but the max-tx gate rejects the transfer;
	// the spent allowance must come back.
	err := tok.TransferFrom(userA, ownerAddr, userB, sdkmath.NewInt(20_000))
	require.ErrorIs(t, err, ErrMaxTxExceeded)
	require.Equal(t, sdkmath.NewInt(50_000), tok.Allowance(ownerAddr, userA))
	require.True(t, tok.BalanceOf(userB).IsZero())
}

func TestIncreaseDecreaseAllowance(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.NoError(t, tok.IncreaseAllowance(ownerAddr, userA, sdkmath.NewInt(100)))
	require.NoError(t, tok.IncreaseAllowance(ownerAddr, userA, sdkmath.NewInt(50)))
	require.Equal(t, sdkmath.NewInt(150), tok.Allowance(ownerAddr, userA))

	require.NoError(t, tok.DecreaseAllowance(ownerAddr, userA, sdkmath.NewInt(150)))
	require.True(t, tok.Allowance(ownerAddr, userA).IsZero())

	require.ErrorIs(t,
		tok.DecreaseAllowance(ownerAddr, userA, sdkmath.NewInt(1)),
		ledger.ErrAllowanceExceeded)
}

func TestAmmFailureRollsBackTriggeringTransfer(t *testing.T) {
	params := testParams()
	params.SwapTokensAtAmount = sdkmath.NewInt(100)
	tok, router, _, _ := newTestToken(t, params)

	router.swapErr = errors.New("pool unavailable")

	err := tok.Transfer(ownerAddr, userA, sdkmath.NewInt(1000))
	require.ErrorIs(t, err, ErrAmmInteractionFailed)

	// The whole call reverts: no partial transfer, no fee, no accumulator.
	require.Equal(t, sdkmath.NewInt(testSupply), tok.BalanceOf(ownerAddr))
	require.True(t, tok.BalanceOf(userA).IsZero())
	require.True(t, tok.BalanceOf(contractAddr).IsZero())
	require.True(t, tok.CollectedFeeTotal().IsZero())
}

func TestRevertedTransferEmitsNoEvents(t *testing.T) {
	params := testParams()
	params.SwapTokensAtAmount = sdkmath.NewInt(100)
	tok, router, _, sink := newTestToken(t, params)

	// The first distribution leg pulls tokens to the pair before the second
	// leg fails, so the inner transfer must not leak to the sink when the
	// whole call reverts.
	router.swapErr = errors.New("pool unavailable")
	router.failOnSwapCall = 2

	err := tok.Transfer(ownerAddr, userA, sdkmath.NewInt(1000))
	require.ErrorIs(t, err, ErrAmmInteractionFailed)
	require.Len(t, router.swapCalls, 1)

	require.Empty(t, sink.events)
	require.Equal(t, sdkmath.NewInt(testSupply), tok.BalanceOf(ownerAddr))
	require.True(t, tok.BalanceOf(contractAddr).IsZero())

	// Once the router recovers the next call commits, and its events flush.
	router.swapErr = nil
	router.failOnSwapCall = 0
	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(1000)))
	require.NotEmpty(t, sink.events)
	_, ok := sink.lastOfKind(types.EventSwapAndDistribute)
	require.True(t, ok)
	ev, ok := sink.lastOfKind(types.EventTransfer)
	require.True(t, ok)
	require.Equal(t, userA, ev.Payload.(types.TransferEvent).To)
}

func TestSupplyConservedAcrossOperations(t *testing.T) {
	params := testParams()
	params.SwapTokensAtAmount = sdkmath.NewInt(200)
	tok, _, _, _ := newTestToken(t, params)

	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(1000)))
	require.NoError(t, tok.Transfer(ownerAddr, userB, sdkmath.NewInt(3000)))
	require.NoError(t, tok.Transfer(userA, userB, sdkmath.NewInt(100)))

	sum := tok.BalanceOf(ownerAddr).
		Add(tok.BalanceOf(userA)).
		Add(tok.BalanceOf(userB)).
		Add(tok.BalanceOf(contractAddr)).
		Add(tok.BalanceOf(pairAddr))
	require.Equal(t, tok.TotalSupply(), sum)
}
