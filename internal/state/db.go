package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
// Token amounts are stored as NUMERIC(78, 0): wide enough for any 256-bit
// integer, exchanged with Go as decimal strings.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS token_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			marketing_fee_bp BIGINT NOT NULL,
			admin_fee_bp BIGINT NOT NULL,
			liquidity_fee_bp BIGINT NOT NULL,
			marketing_portion_bp BIGINT NOT NULL,
			admin_portion_bp BIGINT NOT NULL,
			liquidity_portion_bp BIGINT NOT NULL,
			max_tx_amount NUMERIC(78, 0) NOT NULL,
			max_wallet_balance NUMERIC(78, 0) NOT NULL,
			swap_tokens_at_amount NUMERIC(78, 0) NOT NULL,
			trading_enabled BOOLEAN NOT NULL,
			fee_enabled BOOLEAN NOT NULL,
			swap_enabled BOOLEAN NOT NULL,
			liquidity_token_recipient VARCHAR(255) NOT NULL DEFAULT '',
			CONSTRAINT uq_token_parameters_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_token_parameters_config_active ON token_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS transfer_log (
			transfer_id SERIAL PRIMARY KEY,
			from_address VARCHAR(255) NOT NULL,
			to_address VARCHAR(255) NOT NULL,
			gross_amount NUMERIC(78, 0) NOT NULL,
			fee_amount NUMERIC(78, 0) NOT NULL,
			net_amount NUMERIC(78, 0) NOT NULL,
			transferred_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_transfer_log_timestamp ON transfer_log(transferred_at DESC);
		CREATE INDEX IF NOT EXISTS idx_transfer_log_from ON transfer_log(from_address);
		CREATE INDEX IF NOT EXISTS idx_transfer_log_to ON transfer_log(to_address);

		CREATE TABLE IF NOT EXISTS distribution_receipts (
			receipt_id UUID PRIMARY KEY,
			receipt_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			pool_consumed NUMERIC(78, 0) NOT NULL,
			liquidity_tokens NUMERIC(78, 0) NOT NULL,
			marketing_tokens NUMERIC(78, 0) NOT NULL,
			admin_tokens NUMERIC(78, 0) NOT NULL,
			marketing_value NUMERIC(78, 0) NOT NULL,
			admin_value NUMERIC(78, 0) NOT NULL,
			liquidity_value NUMERIC(78, 0) NOT NULL,
			liquidity_minted NUMERIC(78, 0) NOT NULL,
			params_id BIGINT REFERENCES token_parameters(params_id)
		);
		CREATE INDEX IF NOT EXISTS idx_distribution_receipts_timestamp ON distribution_receipts(receipt_timestamp DESC);

		CREATE TABLE IF NOT EXISTS event_log (
			event_id SERIAL PRIMARY KEY,
			kind VARCHAR(50) NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			payload JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_event_log_timestamp ON event_log(occurred_at DESC);
		CREATE INDEX IF NOT EXISTS idx_event_log_kind ON event_log(kind);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
