package strategy

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature is a secp256k1 signature in every form downstream consumers ask
// for. VS and YParityAndS are s with the recovery bit folded into the top
// bit (EIP-2098); Compact is r followed by VS.
type Signature struct {
	R             string `json:"r"`
	S             string `json:"s"`
	VS            string `json:"_vs"`
	RecoveryParam int    `json:"recoveryParam"`
	V             int    `json:"v"`
	YParityAndS   string `json:"yParityAndS"`
	Compact       string `json:"compact"`
}

// UserSignature is a signature together with the request it was produced over.
type UserSignature struct {
	Signature
	TypedData TypedData `json:"typedData"`
}

// SplitSignature expands a 65-byte r||s||v signature (v as 0/1 or 27/28) or
// a 64-byte EIP-2098 compact signature into all its forms.
func SplitSignature(sig []byte) (Signature, error) {
	var r, s [32]byte
	var recovery byte

	switch len(sig) {
	case 65:
		copy(r[:], sig[:32])
		copy(s[:], sig[32:64])
		v := sig[64]
		if v < 27 {
			v += 27
		}
		if v != 27 && v != 28 {
			return Signature{}, decodeError("v", "invalid recovery byte %d", sig[64])
		}
		recovery = v - 27
	case 64:
		copy(r[:], sig[:32])
		copy(s[:], sig[32:])
		recovery = s[0] >> 7
		s[0] &= 0x7f
	default:
		return Signature{}, decodeError("signature", "invalid length %d", len(sig))
	}

	if err := checkScalars(recovery, r, s); err != nil {
		return Signature{}, err
	}

	vs := s
	if recovery == 1 {
		vs[0] |= 0x80
	}
	compact := append(r[:], vs[:]...)

	return Signature{
		R:             hexutil.Encode(r[:]),
		S:             hexutil.Encode(s[:]),
		VS:            hexutil.Encode(vs[:]),
		RecoveryParam: int(recovery),
		V:             27 + int(recovery),
		YParityAndS:   hexutil.Encode(vs[:]),
		Compact:       hexutil.Encode(compact),
	}, nil
}

// checkScalars requires r in [1, n) and s in [1, n/2], n being the secp256k1
// group order.
func checkScalars(recovery byte, r, s [32]byte) error {
	rInt := new(big.Int).SetBytes(r[:])
	sInt := new(big.Int).SetBytes(s[:])
	if !crypto.ValidateSignatureValues(recovery, rInt, big.NewInt(1), false) {
		return decodeError("r", "r is not in [1, n)")
	}
	if !crypto.ValidateSignatureValues(recovery, rInt, sInt, true) {
		return decodeError("s", "s is not in the lower half of the curve order")
	}
	return nil
}

// Bytes returns the 65-byte r||s||v form with v as 27 or 28.
func (sig Signature) Bytes() ([]byte, error) {
	r, err := decodeWord("r", sig.R)
	if err != nil {
		return nil, err
	}
	s, err := decodeWord("s", sig.S)
	if err != nil {
		return nil, err
	}
	if sig.V != 27 && sig.V != 28 {
		return nil, newError(KindSignatureInconsistency, "v", "v must be 27 or 28, got %d", sig.V)
	}
	out := make([]byte, 0, 65)
	out = append(out, r...)
	out = append(out, s...)
	return append(out, byte(sig.V)), nil
}

// Validate checks that the redundant fields agree with r, s and v. Empty
// redundant fields are not checked.
func (sig Signature) Validate() error {
	raw, err := sig.Bytes()
	if err != nil {
		return err
	}
	if sig.RecoveryParam != sig.V-27 {
		return newError(KindSignatureInconsistency, "recoveryParam", "recoveryParam %d does not match v %d", sig.RecoveryParam, sig.V)
	}
	want, err := SplitSignature(raw)
	if err != nil {
		return wrapError(KindSignatureInconsistency, ErrorField(err), err, "r, s and v do not form a valid signature")
	}

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"_vs", sig.VS, want.VS},
		{"yParityAndS", sig.YParityAndS, want.YParityAndS},
		{"compact", sig.Compact, want.Compact},
	}
	for _, c := range checks {
		if c.got != "" && !strings.EqualFold(c.got, c.want) {
			return newError(KindSignatureInconsistency, c.field, "got %s, derived %s", c.got, c.want)
		}
	}
	return nil
}

// Validate checks both the signature and the request it covers.
func (us UserSignature) Validate() error {
	if err := us.Signature.Validate(); err != nil {
		return err
	}
	return us.TypedData.Validate()
}

func decodeWord(field, s string) ([]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, wrapError(KindDecode, field, err, "invalid hex %q", s)
	}
	if len(b) != 32 {
		return nil, decodeError(field, "got %d bytes, want 32", len(b))
	}
	return b, nil
}
