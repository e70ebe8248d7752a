package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonbindefeld/merkleproof-service/internal/logger"
	"github.com/simonbindefeld/merkleproof-service/pkg/strategy"
)

type inspectLeaf struct {
	Index       int     `json:"index"`
	Type        string  `json:"type"`
	Leaf        string  `json:"leaf"`
	Token       string  `json:"token"`
	TokenID     string  `json:"tokenId,omitempty"`
	Borrower    string  `json:"borrower"`
	AnyBorrower bool    `json:"anyBorrower"`
	Amount      string  `json:"amount"`
	MostSenior  bool    `json:"mostSenior"`
	Pool        *string `json:"pool,omitempty"`
}

type inspectStrategy struct {
	Version    uint8  `json:"version"`
	Delegate   string `json:"delegate"`
	Vault      string `json:"vault"`
	NewVault   bool   `json:"newVault"`
	Nonce      string `json:"nonce"`
	Expiration string `json:"expiration"`
}

type inspectResult struct {
	CID       string             `json:"cid"`
	Strategy  inspectStrategy    `json:"strategy"`
	Leaves    []inspectLeaf      `json:"leaves"`
	TypedData strategy.TypedData `json:"typedData"`
	Signature strategy.Signature `json:"signature"`
	Signer    string             `json:"signer"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <payload.json>",
		Short: "Decode and validate a stored strategy payload",
		Long: `Decodes a stored payload, checks leaf placement, validates every leaf and
the signature's redundant fields, and prints a summary with the payload CID
and the signer recovered from the signed request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to read payload")
			}

			payload, err := strategy.DecodeIPFSStrategyPayload(raw)
			if err != nil {
				return err
			}
			cfg, rows, err := payload.Decode()
			if err != nil {
				return err
			}
			signer, err := payload.UserSignature().Signer()
			if err != nil {
				return err
			}
			id, err := payload.CID()
			if err != nil {
				return err
			}

			result := inspectResult{
				CID: id.String(),
				Strategy: inspectStrategy{
					Version:    cfg.Version,
					Delegate:   cfg.Delegate.Hex(),
					Vault:      cfg.Vault.Hex(),
					NewVault:   cfg.IsNewVault(),
					Nonce:      cfg.Nonce.Dec(),
					Expiration: cfg.Expiration.Dec(),
				},
				Leaves:    make([]inspectLeaf, 0, len(rows)),
				TypedData: payload.TypedData,
				Signature: payload.Signature,
				Signer:    signer.Hex(),
			}
			// index 0 is the strategy leaf
			for i, r := range rows {
				result.Leaves = append(result.Leaves, summarizeRow(i+1, r))
			}

			logger.Debug("Inspected payload",
				zap.String("cid", result.CID),
				zap.String("signer", result.Signer),
				zap.Int("leaves", len(rows)+1))

			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func summarizeRow(i int, r strategy.Row) inspectLeaf {
	out := inspectLeaf{
		Index:       i,
		Type:        r.Type.String(),
		Token:       r.Token.Hex(),
		Borrower:    r.Borrower.Hex(),
		AnyBorrower: r.AnyBorrower(),
		Amount:      r.Lien.Amount.Dec(),
		MostSenior:  r.Lien.IsMostSenior(),
	}
	if r.Leaf != nil {
		out.Leaf = r.Leaf.Hex()
	}
	if r.TokenID != nil {
		out.TokenID = r.TokenID.Dec()
	}
	if r.UniV3 != nil {
		pool := r.UniV3.Token0.Hex() + "/" + r.UniV3.Token1.Hex()
		out.Pool = &pool
	}
	return out
}
