package ledger

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokend/internal/types"
)

const (
	alice = types.Address("alice")
	bob   = types.Address("bob")
	carol = types.Address("carol")
)

func newTestLedger(t *testing.T, supply int64) *Ledger {
	t.Helper()
	l, err := New(sdkmath.NewInt(supply), alice)
	require.NoError(t, err)
	return l
}

func TestNewLedger(t *testing.T) {
	l := newTestLedger(t, 1000)

	require.Equal(t, sdkmath.NewInt(1000), l.TotalSupply())
	require.Equal(t, sdkmath.NewInt(1000), l.BalanceOf(alice))
	require.True(t, l.BalanceOf(bob).IsZero())
}

func TestNewLedgerRejectsBadInput(t *testing.T) {
	_, err := New(sdkmath.ZeroInt(), alice)
	require.ErrorIs(t, err, ErrAmountInvalid)

	_, err = New(sdkmath.NewInt(-5), alice)
	require.ErrorIs(t, err, ErrAmountInvalid)

	_, err = New(sdkmath.NewInt(100), types.ZeroAddress)
	require.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestTransferInternal(t *testing.T) {
	l := newTestLedger(t, 1000)

	require.NoError(t, l.TransferInternal(alice, bob, sdkmath.NewInt(400)))
	require.Equal(t, sdkmath.NewInt(600), l.BalanceOf(alice))
	require.Equal(t, sdkmath.NewInt(400), l.BalanceOf(bob))
}

func TestTransferInternalValidation(t *testing.T) {
	l := newTestLedger(t, 1000)

	require.ErrorIs(t, l.TransferInternal(alice, bob, sdkmath.ZeroInt()), ErrZeroAmount)
	require.ErrorIs(t, l.TransferInternal(alice, bob, sdkmath.NewInt(-1)), ErrAmountInvalid)
	require.ErrorIs(t, l.TransferInternal(types.ZeroAddress, bob, sdkmath.NewInt(1)), ErrInvalidSender)
	require.ErrorIs(t, l.TransferInternal(alice, types.ZeroAddress, sdkmath.NewInt(1)), ErrInvalidRecipient)
	require.ErrorIs(t, l.TransferInternal(bob, alice, sdkmath.NewInt(1)), ErrInsufficientBalance)

	// Nothing moved.
	require.Equal(t, sdkmath.NewInt(1000), l.BalanceOf(alice))
	require.True(t, l.BalanceOf(bob).IsZero())
}

func TestAllowanceLifecycle(t *testing.T) {
	l := newTestLedger(t, 1000)

	require.True(t, l.Allowance(alice, bob).IsZero())

	require.NoError(t, l.SetAllowance(alice, bob, sdkmath.NewInt(300)))
	require.Equal(t, sdkmath.NewInt(300), l.Allowance(alice, bob))

	require.NoError(t, l.SpendAllowance(alice, bob, sdkmath.NewInt(100)))
	require.Equal(t, sdkmath.NewInt(200), l.Allowance(alice, bob))

	require.ErrorIs(t, l.SpendAllowance(alice, bob, sdkmath.NewInt(201)), ErrAllowanceExceeded)
	require.Equal(t, sdkmath.NewInt(200), l.Allowance(alice, bob))
}

func TestCheckpointRevert(t *testing.T) {
	l := newTestLedger(t, 1000)

	cp := l.Checkpoint()
	require.NoError(t, l.TransferInternal(alice, bob, sdkmath.NewInt(500)))
	require.NoError(t, l.SetAllowance(alice, carol, sdkmath.NewInt(42)))

	l.Revert(cp)

	require.Equal(t, sdkmath.NewInt(1000), l.BalanceOf(alice))
	require.True(t, l.BalanceOf(bob).IsZero())
	require.True(t, l.Allowance(alice, carol).IsZero())
}

func TestNestedCheckpoints(t *testing.T) {
	l := newTestLedger(t, 1000)

	outer := l.Checkpoint()
	require.NoError(t, l.TransferInternal(alice, bob, sdkmath.NewInt(100)))

	inner := l.Checkpoint()
	require.NoError(t, l.TransferInternal(alice, carol, sdkmath.NewInt(50)))

	// Reverting the inner checkpoint keeps the outer mutation.
	l.Revert(inner)
	require.Equal(t, sdkmath.NewInt(900), l.BalanceOf(alice))
	require.Equal(t, sdkmath.NewInt(100), l.BalanceOf(bob))
	require.True(t, l.BalanceOf(carol).IsZero())

	// The outer revert still works after an inner release.
	inner2 := l.Checkpoint()
	require.NoError(t, l.TransferInternal(alice, carol, sdkmath.NewInt(25)))
	l.Release(inner2)

	l.Revert(outer)
	require.Equal(t, sdkmath.NewInt(1000), l.BalanceOf(alice))
	require.True(t, l.BalanceOf(bob).IsZero())
	require.True(t, l.BalanceOf(carol).IsZero())
}

func TestReleaseFreesJournalAtRoot(t *testing.T) {
	l := newTestLedger(t, 1000)

	cp := l.Checkpoint()
	require.NoError(t, l.TransferInternal(alice, bob, sdkmath.NewInt(10)))
	l.Release(cp)

	// A later revert to zero must not undo committed work.
	l.Revert(0)
	require.Equal(t, sdkmath.NewInt(990), l.BalanceOf(alice))
	require.Equal(t, sdkmath.NewInt(10), l.BalanceOf(bob))
}

func TestSupplyConservation(t *testing.T) {
	l := newTestLedger(t, 1000)

	require.NoError(t, l.TransferInternal(alice, bob, sdkmath.NewInt(250)))
	require.NoError(t, l.TransferInternal(bob, carol, sdkmath.NewInt(100)))
	require.NoError(t, l.TransferInternal(carol, alice, sdkmath.NewInt(1)))

	sum := l.BalanceOf(alice).Add(l.BalanceOf(bob)).Add(l.BalanceOf(carol))
	require.Equal(t, l.TotalSupply(), sum)
}
