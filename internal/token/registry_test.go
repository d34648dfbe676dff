package token

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokend/internal/types"
)

func TestSettersRejectNonOwner(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	amount := sdkmath.NewInt(100)
	cases := map[string]error{
		"UpdateFees":                 tok.UpdateFees(userA, 100, 100, 100),
		"UpdatePortionsOfSwap":       tok.UpdatePortionsOfSwap(userA, 3000, 3000, 4000),
		"UpdateTransactionMax":       tok.UpdateTransactionMax(userA, amount),
		"UpdateWalletMax":            tok.UpdateWalletMax(userA, amount),
		"UpdateSwapTokensAt":         tok.UpdateSwapTokensAt(userA, amount),
		"SetFeeEnabled":              tok.SetFeeEnabled(userA, false),
		"SetSwapEnabled":             tok.SetSwapEnabled(userA, false),
		"UpdateTradingIsEnabled":     tok.UpdateTradingIsEnabled(userA, false),
		"SetExcludedFromFee":         tok.SetExcludedFromFee(userA, userB, true),
		"UpdateMarketingWallet":      tok.UpdateMarketingWallet(userA, userB),
		"UpdateAdminFundWallet":      tok.UpdateAdminFundWallet(userA, userB),
		"TransferOwnership":          tok.TransferOwnership(userA, userB),
		"RenounceOwnership":          tok.RenounceOwnership(userA),
		"SwapTokensAndWithdrawValue": tok.SwapTokensAndWithdrawValue(userA, userB, amount),
		"WithdrawValue":              tok.WithdrawValue(userA, userB),
	}
	for name, err := range cases {
		require.ErrorIs(t, err, ErrNotOwner, name)
	}
}

func TestUpdateFees(t *testing.T) {
	tok, _, _, sink := newTestToken(t, testParams())

	require.NoError(t, tok.UpdateFees(ownerAddr, 200, 300, 400))
	require.Equal(t, int64(200), tok.MarketingFee())
	require.Equal(t, int64(300), tok.AdminFee())
	require.Equal(t, int64(400), tok.LPFee())

	ev, ok := sink.lastOfKind(types.EventFeesUpdated)
	require.True(t, ok)
	require.Equal(t, int64(400), ev.Payload.(types.FeesUpdatedEvent).LiquidityFeeBP)

	// Sum over 100% rejected, previous values retained.
	require.ErrorIs(t, tok.UpdateFees(ownerAddr, 5000, 5000, 1), ErrFeeTooHigh)
	require.Equal(t, int64(200), tok.MarketingFee())

	// Exactly 100% allowed.
	require.NoError(t, tok.UpdateFees(ownerAddr, 5000, 4000, 1000))

	// Zero fees allowed; transfers pass through whole.
	require.NoError(t, tok.UpdateFees(ownerAddr, 0, 0, 0))
	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(100)))
	require.Equal(t, sdkmath.NewInt(100), tok.BalanceOf(userA))
}

func TestUpdatePortionsOfSwap(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.NoError(t, tok.UpdatePortionsOfSwap(ownerAddr, 5000, 2500, 2500))
	require.Equal(t, int64(5000), tok.MarketingPortionOfSwap())
	require.Equal(t, int64(2500), tok.AdminPortionOfSwap())
	require.Equal(t, int64(2500), tok.LPPortionOfSwap())

	require.ErrorIs(t, tok.UpdatePortionsOfSwap(ownerAddr, 5000, 2500, 2499), ErrPortionMismatch)
	require.ErrorIs(t, tok.UpdatePortionsOfSwap(ownerAddr, 5000, 2500, 2501), ErrPortionMismatch)
	require.Equal(t, int64(5000), tok.MarketingPortionOfSwap())
}

func TestUpdateLimits(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.NoError(t, tok.UpdateTransactionMax(ownerAddr, sdkmath.NewInt(123)))
	require.Equal(t, sdkmath.NewInt(123), tok.MaxTxAmount())

	require.NoError(t, tok.UpdateWalletMax(ownerAddr, sdkmath.NewInt(456)))
	require.Equal(t, sdkmath.NewInt(456), tok.MaxWalletBalance())

	require.NoError(t, tok.UpdateSwapTokensAt(ownerAddr, sdkmath.NewInt(789)))
	require.Equal(t, sdkmath.NewInt(789), tok.SwapTokensAtAmount())

	require.Error(t, tok.UpdateTransactionMax(ownerAddr, sdkmath.NewInt(-1)))
}

func TestFlagToggles(t *testing.T) {
	tok, _, _, _ := newTestToken(t, testParams())

	require.NoError(t, tok.SetFeeEnabled(ownerAddr, false))
	require.False(t, tok.TakeFeeEnabled())

	require.NoError(t, tok.SetSwapEnabled(ownerAddr, false))
	require.False(t, tok.SwapEnabled())

	require.NoError(t, tok.UpdateTradingIsEnabled(ownerAddr, false))
	require.False(t, tok.TradingIsEnabled())

	require.NoError(t, tok.UpdateTradingIsEnabled(ownerAddr, true))
	require.True(t, tok.TradingIsEnabled())
}

func TestSetExcludedFromFeeIsIdempotent(t *testing.T) {
	tok, _, _, sink := newTestToken(t, testParams())

	require.NoError(t, tok.SetExcludedFromFee(ownerAddr, userA, true))
	require.NoError(t, tok.SetExcludedFromFee(ownerAddr, userA, true))
	require.True(t, tok.IsExcludedFromFee(userA))

	require.NoError(t, tok.SetExcludedFromFee(ownerAddr, userA, false))
	require.False(t, tok.IsExcludedFromFee(userA))

	require.ErrorIs(t, tok.SetExcludedFromFee(ownerAddr, types.ZeroAddress, true), ErrInvalidAddress)

	// Each successful call notifies, including the repeat.
	count := 0
	for _, kind := range sink.kinds() {
		if kind == types.EventExcludeFromFees {
			count++
		}
	}
	require.Equal(t, 3, count)
}

func TestUpdateWallets(t *testing.T) {
	tok, _, _, sink := newTestToken(t, testParams())

	require.NoError(t, tok.UpdateMarketingWallet(ownerAddr, userA))
	require.Equal(t, userA, tok.MarketingWallet())

	ev, ok := sink.lastOfKind(types.EventMarketingWalletUpdated)
	require.True(t, ok)
	payload := ev.Payload.(types.MarketingWalletUpdatedEvent)
	require.Equal(t, marketingAddr, payload.OldMarketingWallet)
	require.Equal(t, userA, payload.NewMarketingWallet)

	require.NoError(t, tok.UpdateAdminFundWallet(ownerAddr, userB))
	require.Equal(t, userB, tok.AdminFundWallet())

	require.ErrorIs(t, tok.UpdateMarketingWallet(ownerAddr, types.ZeroAddress), ErrInvalidAddress)
	require.ErrorIs(t, tok.UpdateAdminFundWallet(ownerAddr, types.ZeroAddress), ErrInvalidAddress)
}

func TestTransferOwnership(t *testing.T) {
	tok, _, _, sink := newTestToken(t, testParams())

	require.ErrorIs(t, tok.TransferOwnership(ownerAddr, types.ZeroAddress), ErrInvalidAddress)

	require.NoError(t, tok.TransferOwnership(ownerAddr, userA))
	require.Equal(t, userA, tok.Owner())

	ev, ok := sink.lastOfKind(types.EventOwnershipTransferred)
	require.True(t, ok)
	payload := ev.Payload.(types.OwnershipTransferredEvent)
	require.Equal(t, ownerAddr, payload.PreviousOwner)
	require.Equal(t, userA, payload.NewOwner)

	// The old owner has no rights anymore; the new one does.
	require.ErrorIs(t, tok.UpdateFees(ownerAddr, 100, 100, 100), ErrNotOwner)
	require.NoError(t, tok.UpdateFees(userA, 100, 100, 100))
}

func TestRenounceOwnership(t *testing.T) {
	tok, _, _, sink := newTestToken(t, testParams())

	require.NoError(t, tok.RenounceOwnership(ownerAddr))
	require.Equal(t, types.ZeroAddress, tok.Owner())

	ev, ok := sink.lastOfKind(types.EventOwnershipTransferred)
	require.True(t, ok)
	require.Equal(t, types.ZeroAddress, ev.Payload.(types.OwnershipTransferredEvent).NewOwner)

	// Every gated operation fails permanently, including for the old owner.
	require.ErrorIs(t, tok.UpdateFees(ownerAddr, 100, 100, 100), ErrNotOwner)
	require.ErrorIs(t, tok.TransferOwnership(ownerAddr, userA), ErrNotOwner)
	require.ErrorIs(t, tok.RenounceOwnership(ownerAddr), ErrNotOwner)

	// Plain transfers still work.
	require.NoError(t, tok.Transfer(ownerAddr, userA, sdkmath.NewInt(100)))
}
