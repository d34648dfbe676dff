package main

import (
	"os"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tokenforge/tokend/internal/amm"
	"github.com/tokenforge/tokend/internal/config"
	"github.com/tokenforge/tokend/internal/logger"
	"github.com/tokenforge/tokend/internal/state"
	"github.com/tokenforge/tokend/internal/token"
	"github.com/tokenforge/tokend/internal/types"
	"github.com/tokenforge/tokend/internal/utils"
	"github.com/tokenforge/tokend/internal/web"
)

const (
	DEFAULT_PARAMS_CONFIG_NAME    = "default_token_params"
	DEFAULT_PARAMS_CONFIG_VERSION = 1
)

// main is the entry point for the token daemon.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Token daemon starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Convert the configured whole-token supply to base units
	totalSupply, err := utils.WholeToBase(config.TokenTotalSupply, config.TokenDecimals)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert total supply to base units")
	}

	// Load Token Parameters
	params, err := state.LoadActiveTokenParameters(DEFAULT_PARAMS_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active token parameters, using defaults and saving.")
		defaults, derr := config.DefaultTokenParameters(totalSupply)
		if derr != nil {
			log.Fatal().Err(derr).Msg("Failed to derive default token parameters.")
		}
		if _, serr := state.SaveTokenParameters(defaults, DEFAULT_PARAMS_CONFIG_NAME, DEFAULT_PARAMS_CONFIG_VERSION, true); serr != nil {
			log.Fatal().Err(serr).Msg("Failed to save initial default token parameters.")
		}
		params = &defaults
	}
	log.Info().Msg("Token parameters loaded successfully.")

	// --- 2. AMM Pool and Token Initialization ---
	pool, err := amm.NewPool(amm.PoolConfig{
		PoolAddress:  types.Address(config.PairAddress),
		TokenAddress: types.Address(config.ContractAddress),
		PairedAsset:  types.Address(config.PairedAssetAddress),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create AMM pool")
	}

	tok, err := token.New(token.Config{
		Name:            config.TokenName,
		Symbol:          config.TokenSymbol,
		Decimals:        config.TokenDecimals,
		TotalSupply:     totalSupply,
		Owner:           types.Address(config.OwnerAddress),
		ContractAddress: types.Address(config.ContractAddress),
		PairAddress:     types.Address(config.PairAddress),
		MarketingWallet: types.Address(config.MarketingWallet),
		AdminFundWallet: types.Address(config.AdminFundWallet),
		Params:          *params,
		Router:          pool,
		Bank:            pool,
		Sink:            state.NewPostgresSink(DEFAULT_PARAMS_CONFIG_NAME),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token")
	}

	// Two-phase wiring: the pool moves token balances through the token itself.
	pool.BindMover(tok)

	// --- 3. Seed Initial Liquidity ---
	if err := seedLiquidity(tok, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed initial liquidity")
	}

	// --- 4. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, tok)
	log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting token API server")
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server failed")
	}
}

// seedLiquidity funds the pool with the configured starting reserves. The
// owner is fee-excluded just for the seed transfer so the pool opens with
// exactly the configured amounts, then restored.
func seedLiquidity(tok *token.Token, pool *amm.Pool) error {
	owner := types.Address(config.OwnerAddress)

	seedTokens, err := utils.WholeToBase(config.AmmSeedTokens, config.TokenDecimals)
	if err != nil {
		return err
	}
	seedValue, err := utils.WholeToBase(config.AmmSeedValue, config.TokenDecimals)
	if err != nil {
		return err
	}

	if !seedTokens.IsPositive() || !seedValue.IsPositive() {
		log.Warn().Msg("AMM seed amounts are zero, skipping liquidity seeding.")
		return nil
	}

	if err := pool.FundValue(owner, seedValue); err != nil {
		return err
	}

	if err := tok.SetExcludedFromFee(owner, owner, true); err != nil {
		return err
	}
	_, _, minted, err := pool.AddLiquidity(owner, seedTokens, seedValue, sdkmath.ZeroInt(), sdkmath.ZeroInt(), owner, 0)
	if err != nil {
		return err
	}
	if err := tok.SetExcludedFromFee(owner, owner, false); err != nil {
		return err
	}

	log.Info().
		Str("seedTokens", seedTokens.String()).
		Str("seedValue", seedValue.String()).
		Str("liquidityMinted", minted.String()).
		Msg("Initial liquidity seeded")
	return nil
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
