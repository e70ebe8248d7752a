package config

import (
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/simonbindefeld/merkleproof-service/internal/constants"
	"github.com/simonbindefeld/merkleproof-service/internal/helpers"
)

// Config holds the settings shared by the command line tools.
type Config struct {
	Stage             string
	LogLevel          string
	ChainID           uint64
	VerifyingContract common.Address
	// SignerPrivateKey is optional; only signing needs it.
	SignerPrivateKey string
}

// Load reads an optional .env file and then the process environment.
// It reports whether a .env file was found so callers can log it.
func Load(envFiles ...string) (*Config, bool, error) {
	foundEnv := godotenv.Load(envFiles...) == nil
	cfg, err := FromEnv()
	return cfg, foundEnv, err
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Stage:            getEnvWithDefault("STAGE", constants.LocalEnvironment),
		LogLevel:         getEnvWithDefault("LOG_LEVEL", constants.InfoLevel),
		ChainID:          constants.DefaultChainID,
		SignerPrivateKey: os.Getenv("SIGNER_PRIVATE_KEY"),
	}

	if !helpers.IsValidStage(cfg.Stage) {
		return nil, errors.Errorf("invalid STAGE %q", cfg.Stage)
	}

	if raw := os.Getenv("CHAIN_ID"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.Errorf("invalid CHAIN_ID %q", raw)
		}
		cfg.ChainID = id
	}

	if raw := os.Getenv("VERIFYING_CONTRACT"); raw != "" {
		if !helpers.IsAddressValid(raw) {
			return nil, errors.Errorf("invalid VERIFYING_CONTRACT %q", raw)
		}
		cfg.VerifyingContract = common.HexToAddress(raw)
	}

	if cfg.SignerPrivateKey != "" && !helpers.IsPrivateKeyValid(cfg.SignerPrivateKey) {
		return nil, errors.New("SIGNER_PRIVATE_KEY must be a 0x-prefixed 32-byte hex key")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
