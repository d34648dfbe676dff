package state

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tokenforge/tokend/internal/types"
)

// SaveTransferRecord appends one successful transfer to the transfer log.
func SaveTransferRecord(rec types.TransferRecord) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
        INSERT INTO transfer_log (from_address, to_address, gross_amount, fee_amount, net_amount, transferred_at)
        VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := DB.Exec(stmt,
		rec.From.String(), rec.To.String(),
		rec.Gross.String(), rec.Fee.String(), rec.Net.String(),
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer record: %w", err)
	}
	return nil
}

// GetRecentTransfers returns the most recent transfers, newest first.
func GetRecentTransfers(limit int) ([]types.TransferRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT from_address, to_address, gross_amount, fee_amount, net_amount, transferred_at
        FROM transfer_log
        ORDER BY transferred_at DESC
        LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer log: %w", err)
	}
	defer rows.Close()

	var records []types.TransferRecord
	for rows.Next() {
		var rec types.TransferRecord
		var from, to, gross, fee, net string
		var ts time.Time
		if err := rows.Scan(&from, &to, &gross, &fee, &net, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan transfer record: %w", err)
		}
		rec.From = types.Address(from)
		rec.To = types.Address(to)
		if rec.Gross, err = parseStoredInt("gross_amount", gross); err != nil {
			return nil, err
		}
		if rec.Fee, err = parseStoredInt("fee_amount", fee); err != nil {
			return nil, err
		}
		if rec.Net, err = parseStoredInt("net_amount", net); err != nil {
			return nil, err
		}
		rec.Timestamp = ts
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfer log: %w", err)
	}
	return records, nil
}

// SaveDistributionReceipt persists the outcome of one distribution cycle,
// tied to the parameter set active when the cycle ran. paramsID may be nil
// when no active row exists.
func SaveDistributionReceipt(receipt types.DistributionReceipt, paramsID *int64) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
        INSERT INTO distribution_receipts (
            receipt_id, receipt_timestamp,
            pool_consumed, liquidity_tokens, marketing_tokens, admin_tokens,
            marketing_value, admin_value, liquidity_value, liquidity_minted,
            params_id
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	_, err := DB.Exec(stmt,
		receipt.ID, receipt.Timestamp,
		receipt.PoolConsumed.String(), receipt.LiquidityTokens.String(),
		receipt.MarketingTokens.String(), receipt.AdminTokens.String(),
		receipt.MarketingValue.String(), receipt.AdminValue.String(),
		receipt.LiquidityValue.String(), receipt.LiquidityMinted.String(),
		paramsID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert distribution receipt: %w", err)
	}

	log.Info().Str("receipt_id", receipt.ID).Msg("Saved distribution receipt")
	return nil
}

// GetRecentDistributionReceipts returns the most recent distribution
// receipts, newest first.
func GetRecentDistributionReceipts(limit int) ([]types.DistributionReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT receipt_id, receipt_timestamp,
               pool_consumed, liquidity_tokens, marketing_tokens, admin_tokens,
               marketing_value, admin_value, liquidity_value, liquidity_minted
        FROM distribution_receipts
        ORDER BY receipt_timestamp DESC
        LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query distribution receipts: %w", err)
	}
	defer rows.Close()

	var receipts []types.DistributionReceipt
	for rows.Next() {
		var r types.DistributionReceipt
		var pool, lpTok, mktTok, admTok, mktVal, admVal, lpVal, lpMint string
		if err := rows.Scan(&r.ID, &r.Timestamp,
			&pool, &lpTok, &mktTok, &admTok,
			&mktVal, &admVal, &lpVal, &lpMint); err != nil {
			return nil, fmt.Errorf("failed to scan distribution receipt: %w", err)
		}
		if r.PoolConsumed, err = parseStoredInt("pool_consumed", pool); err != nil {
			return nil, err
		}
		if r.LiquidityTokens, err = parseStoredInt("liquidity_tokens", lpTok); err != nil {
			return nil, err
		}
		if r.MarketingTokens, err = parseStoredInt("marketing_tokens", mktTok); err != nil {
			return nil, err
		}
		if r.AdminTokens, err = parseStoredInt("admin_tokens", admTok); err != nil {
			return nil, err
		}
		if r.MarketingValue, err = parseStoredInt("marketing_value", mktVal); err != nil {
			return nil, err
		}
		if r.AdminValue, err = parseStoredInt("admin_value", admVal); err != nil {
			return nil, err
		}
		if r.LiquidityValue, err = parseStoredInt("liquidity_value", lpVal); err != nil {
			return nil, err
		}
		if r.LiquidityMinted, err = parseStoredInt("liquidity_minted", lpMint); err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate distribution receipts: %w", err)
	}
	return receipts, nil
}
