/*

This file contains the default token parameters.

The fee and portion splits match the original deployment; the anti-whale
limits default to fixed fractions of total supply. All of these are
owner-adjustable at runtime through the validated setters, and the active set
is persisted in the database between restarts.

*/

package config

import (
	sdkmath "cosmossdk.io/math"

	"github.com/tokenforge/tokend/internal/types"
	"github.com/tokenforge/tokend/internal/utils"
)

// DefaultTokenParameters provides the baseline parameter set, derived from the
// given total supply in base units. These values are used if no active
// parameters are found in the database during initialization.
func DefaultTokenParameters(totalSupply sdkmath.Int) (types.TokenParameters, error) {
	// 1% of supply per transaction.
	maxTx, err := utils.FractionOfSupply(totalSupply, 1, 100)
	if err != nil {
		return types.TokenParameters{}, err
	}

	// 2% of supply per wallet.
	maxWallet, err := utils.FractionOfSupply(totalSupply, 2, 100)
	if err != nil {
		return types.TokenParameters{}, err
	}

	// Distribute once collected fees reach 0.05% of supply.
	swapAt, err := utils.FractionOfSupply(totalSupply, 5, 10000)
	if err != nil {
		return types.TokenParameters{}, err
	}

	return types.TokenParameters{
		// 5% + 5% + 5% = 15% combined transfer fee.
		MarketingFeeBP: 500,
		AdminFeeBP:     500,
		LiquidityFeeBP: 500,

		// Portions of the collected pool on distribution; must sum to exactly 10000.
		MarketingPortionBP: 3300,
		AdminPortionBP:     3300,
		LiquidityPortionBP: 3400,

		MaxTxAmount:        maxTx,
		MaxWalletBalance:   maxWallet,
		SwapTokensAtAmount: swapAt,

		TradingEnabled: true,
		FeeEnabled:     true,
		SwapEnabled:    true,

		// Zero means pool-ownership tokens go to the current owner.
		LiquidityTokenRecipient: types.ZeroAddress,
	}, nil
}
