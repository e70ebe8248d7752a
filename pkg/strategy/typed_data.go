package strategy

import (
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	// PrimaryType is the EIP-712 struct a strategist signs.
	PrimaryType = "StrategyDetails"
	// DomainVersion is the version string of the vault's EIP-712 domain.
	DomainVersion = "0"
	domainType    = "EIP712Domain"
)

// Type is one field declaration of an EIP-712 struct.
type Type struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Types declares the domain and the StrategyDetails struct. Order and names
// must match the verifying contract's type hashes exactly.
type Types struct {
	EIP712Domain    []Type `json:"EIP712Domain"`
	StrategyDetails []Type `json:"StrategyDetails"`
}

// Domain is the EIP-712 domain of a vault.
type Domain struct {
	Version           string `json:"version"`
	ChainID           uint64 `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

// Message is the StrategyDetails value: nonce and deadline as decimal
// strings, root as bytes32 hex.
type Message struct {
	Nonce    string `json:"nonce"`
	Deadline string `json:"deadline"`
	Root     string `json:"root"`
}

// TypedData is the signing request sent to a wallet or remote signer.
type TypedData struct {
	Types       Types   `json:"types"`
	PrimaryType string  `json:"primaryType"`
	Domain      Domain  `json:"domain"`
	Message     Message `json:"message"`
}

// StrategyTypes returns the canonical declarations.
func StrategyTypes() Types {
	return Types{
		EIP712Domain: []Type{
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		StrategyDetails: []Type{
			{Name: "nonce", Type: "uint256"},
			{Name: "deadline", Type: "uint256"},
			{Name: "root", Type: "bytes32"},
		},
	}
}

// NewTypedData builds the request authorizing root.
func NewTypedData(chainID uint64, verifyingContract common.Address, nonce, deadline *uint256.Int, root common.Hash) TypedData {
	if nonce == nil {
		nonce = new(uint256.Int)
	}
	if deadline == nil {
		deadline = new(uint256.Int)
	}
	return TypedData{
		Types:       StrategyTypes(),
		PrimaryType: PrimaryType,
		Domain: Domain{
			Version:           DomainVersion,
			ChainID:           chainID,
			VerifyingContract: verifyingContract.Hex(),
		},
		Message: Message{
			Nonce:    nonce.Dec(),
			Deadline: deadline.Dec(),
			Root:     root.Hex(),
		},
	}
}

// Validate checks that the declarations have not drifted from the canonical
// ones and that every message value parses.
func (td TypedData) Validate() error {
	want := StrategyTypes()
	if !slices.Equal(td.Types.EIP712Domain, want.EIP712Domain) {
		return newError(KindInvalidField, "types.EIP712Domain", "declaration does not match %s(string version,uint256 chainId,address verifyingContract)", domainType)
	}
	if !slices.Equal(td.Types.StrategyDetails, want.StrategyDetails) {
		return newError(KindInvalidField, "types.StrategyDetails", "declaration does not match %s(uint256 nonce,uint256 deadline,bytes32 root)", PrimaryType)
	}
	if td.PrimaryType != PrimaryType {
		return newError(KindInvalidField, "primaryType", "got %q, want %q", td.PrimaryType, PrimaryType)
	}
	if !has0xPrefix(td.Domain.VerifyingContract) || !common.IsHexAddress(td.Domain.VerifyingContract) {
		return decodeError("domain.verifyingContract", "invalid address %q", td.Domain.VerifyingContract)
	}
	if _, err := td.Nonce(); err != nil {
		return err
	}
	if _, err := td.Deadline(); err != nil {
		return err
	}
	if _, err := td.RootHash(); err != nil {
		return err
	}
	return nil
}

// Nonce parses the message nonce.
func (td TypedData) Nonce() (*uint256.Int, error) {
	return parseDecimal("message.nonce", td.Message.Nonce)
}

// Deadline parses the message deadline.
func (td TypedData) Deadline() (*uint256.Int, error) {
	return parseDecimal("message.deadline", td.Message.Deadline)
}

// RootHash parses the Merkle root being authorized.
func (td TypedData) RootHash() (common.Hash, error) {
	return decodeHash("message.root", td.Message.Root)
}

// Hash returns the EIP-712 digest a signer signs.
func (td TypedData) Hash() (common.Hash, error) {
	if err := td.Validate(); err != nil {
		return common.Hash{}, err
	}
	digest, _, err := apitypes.TypedDataAndHash(td.toAPI())
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to hash typed data")
	}
	return common.BytesToHash(digest), nil
}

func (td TypedData) toAPI() apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			domainType:  toAPITypes(td.Types.EIP712Domain),
			PrimaryType: toAPITypes(td.Types.StrategyDetails),
		},
		PrimaryType: td.PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Version:           td.Domain.Version,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(td.Domain.ChainID)),
			VerifyingContract: td.Domain.VerifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"nonce":    td.Message.Nonce,
			"deadline": td.Message.Deadline,
			"root":     td.Message.Root,
		},
	}
}

func toAPITypes(fields []Type) []apitypes.Type {
	out := make([]apitypes.Type, len(fields))
	for i, f := range fields {
		out[i] = apitypes.Type{Name: f.Name, Type: f.Type}
	}
	return out
}

func parseDecimal(field, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, decodeError(field, "empty value")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, wrapError(KindDecode, field, err, "invalid uint256 %q", s)
	}
	return v, nil
}
