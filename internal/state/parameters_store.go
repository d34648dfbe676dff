package state

import (
	"database/sql"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/tokenforge/tokend/internal/types"
)

// parseStoredInt converts a NUMERIC column value, scanned as a string, back
// into an Int.
func parseStoredInt(column, raw string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(raw)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("column %s holds a non-integer value %q", column, raw)
	}
	return v, nil
}

// SaveTokenParameters saves a new version of token parameters.
func SaveTokenParameters(params types.TokenParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE token_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO token_parameters (
            version, config_name, is_active, activated_at, created_at,
            marketing_fee_bp, admin_fee_bp, liquidity_fee_bp,
            marketing_portion_bp, admin_portion_bp, liquidity_portion_bp,
            max_tx_amount, max_wallet_balance, swap_tokens_at_amount,
            trading_enabled, fee_enabled, swap_enabled,
            liquidity_token_recipient
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8,
            $9, $10, $11,
            $12, $13, $14,
            $15, $16, $17,
            $18
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.MarketingFeeBP, params.AdminFeeBP, params.LiquidityFeeBP,
		params.MarketingPortionBP, params.AdminPortionBP, params.LiquidityPortionBP,
		params.MaxTxAmount.String(), params.MaxWalletBalance.String(), params.SwapTokensAtAmount.String(),
		params.TradingEnabled, params.FeeEnabled, params.SwapEnabled,
		params.LiquidityTokenRecipient.String(),
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert token parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved token parameters")
	return paramsID, nil
}

// LoadActiveTokenParameters loads the currently active token parameters.
func LoadActiveTokenParameters(configName string) (*types.TokenParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT
            marketing_fee_bp, admin_fee_bp, liquidity_fee_bp,
            marketing_portion_bp, admin_portion_bp, liquidity_portion_bp,
            max_tx_amount, max_wallet_balance, swap_tokens_at_amount,
            trading_enabled, fee_enabled, swap_enabled,
            liquidity_token_recipient
        FROM token_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	p := &types.TokenParameters{}
	var maxTx, maxWallet, swapAt, lpRecipient string
	row := DB.QueryRow(query, configName)
	err := row.Scan(
		&p.MarketingFeeBP, &p.AdminFeeBP, &p.LiquidityFeeBP,
		&p.MarketingPortionBP, &p.AdminPortionBP, &p.LiquidityPortionBP,
		&maxTx, &maxWallet, &swapAt,
		&p.TradingEnabled, &p.FeeEnabled, &p.SwapEnabled,
		&lpRecipient,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active token parameters found for config '%s'", configName)
		}
		return nil, fmt.Errorf("failed to scan active token parameters for config '%s': %w", configName, err)
	}

	if p.MaxTxAmount, err = parseStoredInt("max_tx_amount", maxTx); err != nil {
		return nil, err
	}
	if p.MaxWalletBalance, err = parseStoredInt("max_wallet_balance", maxWallet); err != nil {
		return nil, err
	}
	if p.SwapTokensAtAmount, err = parseStoredInt("swap_tokens_at_amount", swapAt); err != nil {
		return nil, err
	}
	p.LiquidityTokenRecipient = types.Address(lpRecipient)

	log.Info().Str("config", configName).Msg("Loaded active token parameters")
	return p, nil
}

// GetActiveTokenParametersID returns the params_id of the currently active
// token parameters, or nil when none are active.
func GetActiveTokenParametersID(configName string) (*int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT params_id
        FROM token_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var paramsID int64
	row := DB.QueryRow(query, configName)
	err := row.Scan(&paramsID)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug().Str("config", configName).Msg("No active token parameters found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active token parameters ID for config '%s': %w", configName, err)
	}

	return &paramsID, nil
}
