package main

import (
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonbindefeld/merkleproof-service/internal/config"
	"github.com/simonbindefeld/merkleproof-service/internal/constants"
	"github.com/simonbindefeld/merkleproof-service/internal/helpers"
	"github.com/simonbindefeld/merkleproof-service/internal/logger"
)

// app carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	cfg               *config.Config
	envFile           string
	chainID           uint64
	verifyingContract string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "strategyctl",
		Short: "Build, sign and inspect vault lending strategy payloads",
		Long: `strategyctl works with the signed strategy trees a vault strategist
publishes for a lending router.

  inspect     decode and validate a stored payload
  typed-data  print the typed-data signing request for a root
  sign        sign a tree of rows and print the payload and its CID

Configuration is read from the environment (and an optional .env file):
STAGE, LOG_LEVEL, CHAIN_ID, VERIFYING_CONTRACT, SIGNER_PRIVATE_KEY.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "env file to load (default .env)")
	rootCmd.PersistentFlags().Uint64Var(&a.chainID, "chain-id", 0, "chain id of the router (overrides CHAIN_ID)")
	rootCmd.PersistentFlags().StringVar(&a.verifyingContract, "verifying-contract", "", "router address (overrides VERIFYING_CONTRACT)")

	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newTypedDataCmd(a))
	rootCmd.AddCommand(newSignCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}

	cfg, foundEnv, err := config.Load(envFiles...)
	if err != nil {
		return err
	}

	logger.InitLoggerWithConfig(logger.LoggerConfig{
		Level:      cfg.LogLevel,
		Stage:      cfg.Stage,
		EnableJSON: cfg.Stage == constants.ProdEnvironment,
	})
	if !foundEnv {
		logger.Debug("No .env file loaded")
	}

	if a.chainID != 0 {
		cfg.ChainID = a.chainID
	}
	if a.verifyingContract != "" {
		if !helpers.IsAddressValid(a.verifyingContract) {
			return errors.Errorf("invalid --verifying-contract %q", a.verifyingContract)
		}
		cfg.VerifyingContract = common.HexToAddress(a.verifyingContract)
	}

	logger.Debug("Configuration loaded",
		zap.String("stage", cfg.Stage),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("verifying_contract", cfg.VerifyingContract.Hex()))

	a.cfg = cfg
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseUint256Flag(name, value string) (*uint256.Int, error) {
	if value == "" {
		return nil, errors.Errorf("--%s is required", name)
	}
	v, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid --%s %q", name, value)
	}
	return v, nil
}

func parseHashFlag(name, value string) (common.Hash, error) {
	b, err := hexutil.Decode(value)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, errors.Errorf("--%s must be a 0x-prefixed 32-byte hex value", name)
	}
	return common.BytesToHash(b), nil
}

func parseAddressFlag(name, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, nil
	}
	if !helpers.IsAddressValid(value) {
		return common.Address{}, errors.Errorf("invalid --%s %q", name, value)
	}
	return common.HexToAddress(value), nil
}
