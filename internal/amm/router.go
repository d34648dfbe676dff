/*

The AMM is an external collaborator. The token core consumes the Router and
ValueBank interfaces and trusts their return values; pool pricing, routing
and liquidity-token accounting are the collaborator's concern. Any failure
behind these interfaces is surfaced to the core and propagates as a transfer
failure.

*/

package amm

import (
	"errors"

	sdkmath "cosmossdk.io/math"

	"github.com/tokenforge/tokend/internal/types"
)

// Error definitions for collaborator failures.
var (
	ErrExpired               = errors.New("deadline has passed")
	ErrInvalidPath           = errors.New("swap path is invalid")
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrSlippageExceeded      = errors.New("output below minimum requested")
	ErrInsufficientValue     = errors.New("value balance is insufficient")
	ErrMoverNotBound         = errors.New("token mover is not bound")
)

// Router is the swap and liquidity surface the token core consumes.
//
// The caller argument identifies whose assets the operation spends; the
// surrounding runtime authenticates callers, the pool does not. Minimum-out
// arguments are advisory and commonly zero. A zero deadline means no
// deadline.
type Router interface {
	// PairedAssetAddress returns the base asset the pool prices the token against.
	PairedAssetAddress() types.Address

	// SwapExactTokenForValue swaps amountIn token along path and credits the
	// obtained value to recipient. Returns the value amount obtained.
	SwapExactTokenForValue(caller types.Address, amountIn, minOut sdkmath.Int, path []types.Address, recipient types.Address, deadline int64) (sdkmath.Int, error)

	// SwapExactValueForToken swaps valueIn of the base asset along path and
	// sends the obtained token to recipient. Returns the token amount sent.
	SwapExactValueForToken(caller types.Address, valueIn, minOut sdkmath.Int, path []types.Address, recipient types.Address, deadline int64) (sdkmath.Int, error)

	// AddLiquidity supplies both legs atomically and mints pool-ownership
	// tokens to recipient. Returns the token amount used, the value amount
	// used, and the liquidity minted.
	AddLiquidity(caller types.Address, tokenAmount, valueAmount, minToken, minValue sdkmath.Int, recipient types.Address, deadline int64) (sdkmath.Int, sdkmath.Int, sdkmath.Int, error)
}

// ValueBank is the ledger of externally-denominated value. The token core
// uses it to pay distributed value out to the configured wallets and for the
// rescue withdrawal.
type ValueBank interface {
	ValueBalanceOf(addr types.Address) sdkmath.Int
	TransferValue(from, to types.Address, amount sdkmath.Int) error
}

// TokenMover is the callback the pool uses to move token balances. The token
// core implements it with its full transfer pipeline, so fee-on-transfer
// deductions and the distribution trigger behave exactly as they do for any
// other transfer. MoveTokens returns the amount actually credited to the
// recipient, which can be less than amount when a fee was taken.
type TokenMover interface {
	MoveTokens(from, to types.Address, amount sdkmath.Int) (sdkmath.Int, error)
}
