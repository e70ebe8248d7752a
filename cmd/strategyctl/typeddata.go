package main

import (
	"github.com/spf13/cobra"

	"github.com/simonbindefeld/merkleproof-service/pkg/strategy"
)

type typedDataResult struct {
	TypedData strategy.TypedData `json:"typedData"`
	Digest    string             `json:"digest"`
}

func newTypedDataCmd(a *app) *cobra.Command {
	var nonce, deadline, root string

	cmd := &cobra.Command{
		Use:   "typed-data",
		Short: "Print the typed-data signing request for a strategy root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			td, err := a.typedData(nonce, deadline, root)
			if err != nil {
				return err
			}
			digest, err := td.Hash()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), typedDataResult{TypedData: td, Digest: digest.Hex()})
		},
	}

	cmd.Flags().StringVar(&nonce, "nonce", "", "strategy nonce (decimal)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "signature deadline, unix seconds")
	cmd.Flags().StringVar(&root, "root", "", "merkle root, 0x-prefixed 32 bytes")

	return cmd
}

// typedData builds a validated signing request against the configured
// chain and router.
func (a *app) typedData(nonce, deadline, root string) (strategy.TypedData, error) {
	n, err := parseUint256Flag("nonce", nonce)
	if err != nil {
		return strategy.TypedData{}, err
	}
	d, err := parseUint256Flag("deadline", deadline)
	if err != nil {
		return strategy.TypedData{}, err
	}
	r, err := parseHashFlag("root", root)
	if err != nil {
		return strategy.TypedData{}, err
	}

	td := strategy.NewTypedData(a.cfg.ChainID, a.cfg.VerifyingContract, n, d, r)
	if err := td.Validate(); err != nil {
		return strategy.TypedData{}, err
	}
	return td, nil
}
