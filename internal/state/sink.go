/*

PostgresSink persists token events. Events are notifications: a persistence
failure is logged and dropped, never surfaced back into the transfer
pipeline, so a database outage cannot make ledger operations fail.

*/

package state

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/tokenforge/tokend/internal/logger"
	"github.com/tokenforge/tokend/internal/types"
)

// PostgresSink implements types.EventSink on top of the global DB pool.
// Every event lands in event_log; transfers and distribution cycles are
// additionally written to their dedicated tables for querying.
type PostgresSink struct {
	log        zerolog.Logger
	configName string
}

// NewPostgresSink creates a sink. InitDB must have been called first.
// configName names the parameter configuration distribution receipts are
// tied to.
func NewPostgresSink(configName string) *PostgresSink {
	return &PostgresSink{
		log:        logger.GetForComponent("event_sink"),
		configName: configName,
	}
}

func (s *PostgresSink) Record(event types.Event) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		s.log.Error().Err(err).Str("kind", event.Kind).Msg("Failed to marshal event payload")
		return
	}

	stmt := `INSERT INTO event_log (kind, occurred_at, payload) VALUES ($1, $2, $3);`
	if _, err := DB.Exec(stmt, event.Kind, event.At, payload); err != nil {
		s.log.Error().Err(err).Str("kind", event.Kind).Msg("Failed to persist event")
		return
	}

	switch p := event.Payload.(type) {
	case types.TransferEvent:
		rec := types.TransferRecord{
			From:      p.From,
			To:        p.To,
			Gross:     p.Gross,
			Fee:       p.Fee,
			Net:       p.Value,
			Timestamp: event.At,
		}
		if err := SaveTransferRecord(rec); err != nil {
			s.log.Error().Err(err).Msg("Failed to persist transfer record")
		}
	case types.SwapAndDistributeEvent:
		receipt := types.DistributionReceipt{
			ID:              p.ReceiptID,
			Timestamp:       event.At,
			PoolConsumed:    p.PoolConsumed,
			LiquidityTokens: p.LiquidityTokens,
			MarketingTokens: p.MarketingTokens,
			AdminTokens:     p.AdminTokens,
			MarketingValue:  p.MarketingValue,
			AdminValue:      p.AdminValue,
			LiquidityValue:  p.LiquidityValue,
			LiquidityMinted: p.LiquidityMinted,
		}
		paramsID, err := GetActiveTokenParametersID(s.configName)
		if err != nil {
			s.log.Warn().Err(err).Msg("Could not resolve active parameters for receipt")
		}
		if err := SaveDistributionReceipt(receipt, paramsID); err != nil {
			s.log.Error().Err(err).Str("receipt_id", p.ReceiptID).Msg("Failed to persist distribution receipt")
		}
	}
}
