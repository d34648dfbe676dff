package token

import (
	sdkmath "cosmossdk.io/math"

	"github.com/tokenforge/tokend/internal/types"
)

// computeFee returns (feeAmount, netAmount) for a transfer. The fee applies
// only when the fee flag is enabled and neither endpoint is fee-excluded;
// otherwise the transfer passes through whole.
//
// feeAmount = floor(amount * totalFeeBP / 10000), netAmount = amount - feeAmount.
// Integer floor division only; the net side absorbs the rounding remainder.
func (t *Token) computeFee(from, to types.Address, amount sdkmath.Int) (sdkmath.Int, sdkmath.Int) {
	if !t.params.FeeEnabled || t.excludedFromFee[from] || t.excludedFromFee[to] {
		return sdkmath.ZeroInt(), amount
	}

	totalBP := t.params.TotalFeeBP()
	if totalBP == 0 {
		return sdkmath.ZeroInt(), amount
	}

	fee := amount.MulRaw(totalBP).QuoRaw(types.BasisPointDenominator)
	return fee, amount.Sub(fee)
}
