package main

import (
	"encoding/json"
	"os"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/simonbindefeld/merkleproof-service/internal/services"
	"github.com/simonbindefeld/merkleproof-service/internal/storage"
	"github.com/simonbindefeld/merkleproof-service/pkg/strategy"
)

type signResult struct {
	CID       string                 `json:"cid"`
	Payload   json.RawMessage        `json:"payload"`
	Signature strategy.UserSignature `json:"signature"`
}

func newSignCmd(a *app) *cobra.Command {
	var nonce, expiration, root, vault, delegate string

	cmd := &cobra.Command{
		Use:   "sign <rows.json>",
		Short: "Sign a strategy tree and print the payload with its CID",
		Long: `Reads a JSON array of wire rows, each carrying its leaf hash, in tree
order. The rows are signed together with the strategy built from the flags
using SIGNER_PRIVATE_KEY. The delegate defaults to the signer's address and
an omitted vault means a new vault.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.SignerPrivateKey == "" {
				return errors.New("SIGNER_PRIVATE_KEY is required to sign")
			}
			signer, err := strategy.KeySignerFromHex(a.cfg.SignerPrivateKey)
			if err != nil {
				return err
			}

			rows, err := readRows(args[0])
			if err != nil {
				return err
			}

			n, err := parseUint256Flag("nonce", nonce)
			if err != nil {
				return err
			}
			exp, err := parseUint256Flag("expiration", expiration)
			if err != nil {
				return err
			}
			r, err := parseHashFlag("root", root)
			if err != nil {
				return err
			}
			vaultAddr, err := parseAddressFlag("vault", vault)
			if err != nil {
				return err
			}
			delegateAddr := signer.Address()
			if delegate != "" {
				if delegateAddr, err = parseAddressFlag("delegate", delegate); err != nil {
					return err
				}
			}

			store := storage.NewRetryingStore(storage.NewMemoryStore(), nil)
			service := services.NewPayloadService(signer, store)

			id, userSig, err := service.Publish(cmd.Context(), services.PublishParams{
				Strategy:          strategy.NewStrategy(delegateAddr, vaultAddr, n, exp),
				Rows:              rows,
				Root:              r,
				ChainID:           a.cfg.ChainID,
				VerifyingContract: a.cfg.VerifyingContract,
			})
			if err != nil {
				return err
			}

			return writeSignResult(cmd, store, id, userSig)
		},
	}

	cmd.Flags().StringVar(&nonce, "nonce", "", "strategy nonce (decimal)")
	cmd.Flags().StringVar(&expiration, "expiration", "", "strategy expiration, unix seconds")
	cmd.Flags().StringVar(&root, "root", "", "merkle root over the strategy leaf and rows")
	cmd.Flags().StringVar(&vault, "vault", "", "existing vault address (omit for a new vault)")
	cmd.Flags().StringVar(&delegate, "delegate", "", "delegate address (defaults to the signer)")

	return cmd
}

func readRows(path string) ([]strategy.Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rows")
	}
	var wire []strategy.RowWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, errors.Wrap(err, "rows file must be a JSON array of rows")
	}

	rows := make([]strategy.Row, 0, len(wire))
	for i, w := range wire {
		r, err := strategy.FromWirePayload(w)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func writeSignResult(cmd *cobra.Command, store storage.Store, id cid.Cid, userSig strategy.UserSignature) error {
	raw, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), signResult{
		CID:       id.String(),
		Payload:   raw,
		Signature: userSig,
	})
}
