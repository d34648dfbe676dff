package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// TokenName is the human-readable token name.
	TokenName string
	// TokenSymbol is the ticker symbol.
	TokenSymbol string
	// TokenDecimals is the number of decimal places in one whole token.
	TokenDecimals uint8
	// TokenTotalSupply is the fixed supply in whole tokens; minted to the owner at startup.
	TokenTotalSupply uint64

	// OwnerAddress is the initial owner with elevated rights.
	OwnerAddress string
	// ContractAddress is the token's own ledger address; collected fees accrue here.
	ContractAddress string
	// MarketingWallet receives the marketing share of distributed value.
	MarketingWallet string
	// AdminFundWallet receives the admin-fund share of distributed value.
	AdminFundWallet string

	// PairAddress is the AMM pool pairing the token with the base asset.
	PairAddress string
	// PairedAssetAddress is the base asset the pool prices the token against.
	PairedAssetAddress string
	// AmmSeedTokens is the whole-token amount of initial pool liquidity.
	AmmSeedTokens uint64
	// AmmSeedValue is the base-asset amount of initial pool liquidity.
	AmmSeedValue uint64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	TokenName, err = getEnv("TOKEN_NAME")
	if err != nil {
		return err
	}

	TokenSymbol, err = getEnv("TOKEN_SYMBOL")
	if err != nil {
		return err
	}

	decimals, err := getEnvAsUint64("TOKEN_DECIMALS")
	if err != nil {
		return err
	}
	if decimals > 18 {
		return errors.New("environment variable TOKEN_DECIMALS must be between 0 and 18")
	}
	TokenDecimals = uint8(decimals)

	TokenTotalSupply, err = getEnvAsUint64("TOKEN_TOTAL_SUPPLY")
	if err != nil {
		return err
	}

	OwnerAddress, err = getEnv("OWNER_ADDRESS")
	if err != nil {
		return err
	}

	ContractAddress, err = getEnv("CONTRACT_ADDRESS")
	if err != nil {
		return err
	}

	MarketingWallet, err = getEnv("MARKETING_WALLET")
	if err != nil {
		return err
	}

	AdminFundWallet, err = getEnv("ADMIN_FUND_WALLET")
	if err != nil {
		return err
	}

	PairAddress, err = getEnv("PAIR_ADDRESS")
	if err != nil {
		return err
	}

	PairedAssetAddress, err = getEnv("PAIRED_ASSET_ADDRESS")
	if err != nil {
		return err
	}

	AmmSeedTokens, err = getEnvAsUint64("AMM_SEED_TOKENS")
	if err != nil {
		return err
	}

	AmmSeedValue, err = getEnvAsUint64("AMM_SEED_VALUE")
	if err != nil {
		return err
	}

	log.Debug().
		Str("TokenName", TokenName).
		Str("TokenSymbol", TokenSymbol).
		Uint8("TokenDecimals", TokenDecimals).
		Uint64("TokenTotalSupply", TokenTotalSupply).
		Str("OwnerAddress", OwnerAddress).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
