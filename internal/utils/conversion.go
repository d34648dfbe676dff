/*
This file contains common utility functions for converting between whole-token
quantities and base units, and for deriving supply-relative amounts used by the
default limits.
*/

package utils

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidDecimals  = errors.New("decimals value is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrInvalidFraction  = errors.New("fraction is invalid")
	ErrConversionFailed = errors.New("conversion failed")
)

// WholeToBase converts a whole-token quantity to base units (10^decimals per token).
func WholeToBase(whole uint64, decimals uint8) (sdkmath.Int, error) {
	if decimals > 18 {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidDecimals, decimals)
	}

	factor := sdkmath.NewInt(1)
	for i := 0; i < int(decimals); i++ {
		factor = factor.MulRaw(10)
	}
	result := sdkmath.NewIntFromUint64(whole).Mul(factor)
	if result.IsNegative() {
		return sdkmath.ZeroInt(), ErrConversionFailed
	}
	return result, nil
}

// BaseToWholeString renders a base-unit amount as a whole-token decimal string.
// Used only for logging and API output, never for arithmetic.
func BaseToWholeString(amount sdkmath.Int, decimals uint8) (string, error) {
	if decimals > 18 {
		return "", fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidDecimals, decimals)
	}
	if amount.IsNil() {
		return "", ErrAmountNil
	}
	if amount.IsNegative() {
		return "", ErrAmountNegative
	}

	dec := sdkmath.LegacyNewDecFromIntWithPrec(amount, int64(decimals))
	return dec.String(), nil
}

// FractionOfSupply returns floor(supply * numerator / denominator).
// The default anti-whale limits are derived this way.
func FractionOfSupply(supply sdkmath.Int, numerator, denominator int64) (sdkmath.Int, error) {
	if supply.IsNil() {
		return sdkmath.ZeroInt(), ErrAmountNil
	}
	if supply.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	if numerator < 0 || denominator <= 0 {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %d/%d", ErrInvalidFraction, numerator, denominator)
	}

	return supply.MulRaw(numerator).QuoRaw(denominator), nil
}
