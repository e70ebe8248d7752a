package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonbindefeld/merkleproof-service/pkg/strategy"
)

const (
	testKeyHex = "0xb71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
	testRoot   = "0x6b3dfaec148fb1bb2b066f10ec285e7c9bf402ab32aa78a5d38e34566810cd2e"
	routerHex  = "0x3333333333333333333333333333333333333333"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STAGE", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CHAIN_ID", "1")
	t.Setenv("VERIFYING_CONTRACT", routerHex)
	t.Setenv("SIGNER_PRIVATE_KEY", testKeyHex)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return out.String(), err
}

func writeRowsFile(t *testing.T) string {
	t.Helper()
	lien := strategy.Lien{
		Amount:                *uint256.NewInt(1_000_000),
		Rate:                  *uint256.NewInt(1),
		Duration:              *uint256.NewInt(86400),
		LiquidationInitialAsk: *uint256.NewInt(2_000_000),
	}
	row, err := strategy.NewCollection(common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"), common.Address{}, lien)
	require.NoError(t, err)
	row, err = row.WithLeaf(common.HexToHash("0x02"))
	require.NoError(t, err)
	w, err := strategy.ToWirePayload(row)
	require.NoError(t, err)

	raw, err := json.Marshal([]strategy.RowWire{w})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestTypedDataCmd(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "typed-data", "--nonce", "3", "--deadline", "1700000000", "--root", testRoot)
	require.NoError(t, err)

	var result typedDataResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, strategy.PrimaryType, result.TypedData.PrimaryType)
	assert.Equal(t, uint64(1), result.TypedData.Domain.ChainID)
	assert.Equal(t, common.HexToAddress(routerHex).Hex(), result.TypedData.Domain.VerifyingContract)

	digest, err := result.TypedData.Hash()
	require.NoError(t, err)
	assert.Equal(t, digest.Hex(), result.Digest)
}

func TestTypedDataCmd_Errors(t *testing.T) {
	setTestEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing nonce",
			args:    []string{"typed-data", "--deadline", "1", "--root", testRoot},
			wantErr: "--nonce is required",
		},
		{
			name:    "short root",
			args:    []string{"typed-data", "--nonce", "1", "--deadline", "1", "--root", "0x1234"},
			wantErr: "--root must be a 0x-prefixed 32-byte hex value",
		},
		{
			name:    "bad verifying contract override",
			args:    []string{"typed-data", "--verifying-contract", "0x12"},
			wantErr: `invalid --verifying-contract "0x12"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSignAndInspect(t *testing.T) {
	setTestEnv(t)
	rowsPath := writeRowsFile(t)

	out, err := run(t, "sign", rowsPath, "--nonce", "3", "--expiration", "1700000000", "--root", testRoot)
	require.NoError(t, err)

	var signed signResult
	require.NoError(t, json.Unmarshal([]byte(out), &signed))
	require.NotEmpty(t, signed.CID)
	assert.NoError(t, signed.Signature.Validate())

	signer, err := strategy.KeySignerFromHex(testKeyHex)
	require.NoError(t, err)
	recovered, err := signed.Signature.Signer()
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)

	payloadPath := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(payloadPath, signed.Payload, 0o600))

	out, err = run(t, "inspect", payloadPath)
	require.NoError(t, err)

	var inspected inspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &inspected))
	assert.Equal(t, signed.CID, inspected.CID)
	assert.Equal(t, signer.Address().Hex(), inspected.Signer)
	assert.Equal(t, "3", inspected.Strategy.Nonce)
	assert.Equal(t, "1700000000", inspected.Strategy.Expiration)
	assert.Equal(t, signer.Address().Hex(), inspected.Strategy.Delegate)
	assert.True(t, inspected.Strategy.NewVault)
	assert.Equal(t, signed.Signature.TypedData, inspected.TypedData)
	require.Len(t, inspected.Leaves, 1)
	assert.Equal(t, 1, inspected.Leaves[0].Index)
	assert.Equal(t, "Collection", inspected.Leaves[0].Type)
	assert.True(t, inspected.Leaves[0].AnyBorrower)
	assert.Equal(t, "1000000", inspected.Leaves[0].Amount)
}

func TestSignCmd_RequiresKey(t *testing.T) {
	setTestEnv(t)
	t.Setenv("SIGNER_PRIVATE_KEY", "")

	_, err := run(t, "sign", writeRowsFile(t), "--nonce", "1", "--expiration", "1", "--root", testRoot)
	assert.EqualError(t, err, "SIGNER_PRIVATE_KEY is required to sign")
}

func TestInspectCmd_Errors(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "sign", writeRowsFile(t), "--nonce", "3", "--expiration", "1700000000", "--root", testRoot)
	require.NoError(t, err)
	var signed signResult
	require.NoError(t, json.Unmarshal([]byte(out), &signed))

	misplaced, err := strategy.DecodeIPFSStrategyPayload(signed.Payload)
	require.NoError(t, err)
	misplaced.Leaves[0], misplaced.Leaves[1] = misplaced.Leaves[1], misplaced.Leaves[0]
	misplacedRaw, err := misplaced.Encode()
	require.NoError(t, err)

	tests := []struct {
		name     string
		payload  []byte
		wantKind strategy.Kind
	}{
		{
			name:     "strategy leaf behind a row",
			payload:  misplacedRaw,
			wantKind: strategy.KindInvalidLeafPlacement,
		},
		{
			name:     "rows-only document",
			payload:  []byte(`{"data":{"leaves":[],"signature":{}}}`),
			wantKind: strategy.KindMissingRequiredField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "payload.json")
			require.NoError(t, os.WriteFile(path, tt.payload, 0o600))

			_, err := run(t, "inspect", path)
			require.Error(t, err)
			assert.True(t, strategy.IsKind(err, tt.wantKind), err.Error())
		})
	}
}
