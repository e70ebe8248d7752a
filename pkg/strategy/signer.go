package strategy

import (
	"context"
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

//go:generate mockgen -destination=mocks/mock_signer.go -package=mocks github.com/simonbindefeld/merkleproof-service/pkg/strategy Signer

// Signer produces a signature over a strategy signing request. Wallets and
// remote signers implement it outside this module.
type Signer interface {
	SignTypedData(ctx context.Context, td TypedData) (Signature, error)
}

// SignStrategy validates the request, asks signer for a signature and checks
// the signature's redundant fields before returning it with the request.
func SignStrategy(ctx context.Context, signer Signer, td TypedData) (UserSignature, error) {
	if err := td.Validate(); err != nil {
		return UserSignature{}, err
	}
	sig, err := signer.SignTypedData(ctx, td)
	if err != nil {
		return UserSignature{}, errors.Wrap(err, "failed to sign strategy")
	}
	if err := sig.Validate(); err != nil {
		return UserSignature{}, err
	}
	return UserSignature{Signature: sig, TypedData: td}, nil
}

// KeySigner signs with a local secp256k1 key.
type KeySigner struct {
	key *ecdsa.PrivateKey
}

// NewKeySigner wraps an existing key.
func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

// KeySignerFromHex parses a hex private key, with or without 0x.
func KeySignerFromHex(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return NewKeySigner(key), nil
}

// Address is the account the signer signs for.
func (k *KeySigner) Address() common.Address {
	return crypto.PubkeyToAddress(k.key.PublicKey)
}

// SignTypedData implements Signer.
func (k *KeySigner) SignTypedData(ctx context.Context, td TypedData) (Signature, error) {
	if err := ctx.Err(); err != nil {
		return Signature{}, err
	}
	digest, err := td.Hash()
	if err != nil {
		return Signature{}, err
	}
	raw, err := crypto.Sign(digest.Bytes(), k.key)
	if err != nil {
		return Signature{}, errors.Wrap(err, "failed to sign digest")
	}
	return SplitSignature(raw)
}

// RecoverSigner returns the account that produced sig over td.
func RecoverSigner(td TypedData, sig Signature) (common.Address, error) {
	if err := sig.Validate(); err != nil {
		return common.Address{}, err
	}
	digest, err := td.Hash()
	if err != nil {
		return common.Address{}, err
	}
	raw, err := sig.Bytes()
	if err != nil {
		return common.Address{}, err
	}
	raw[64] -= 27
	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, wrapError(KindSignatureInconsistency, "signature", err, "cannot recover signer")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Signer returns the account that produced the signature.
func (us UserSignature) Signer() (common.Address, error) {
	return RecoverSigner(us.TypedData, us.Signature)
}
