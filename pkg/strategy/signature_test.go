package strategy_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonbindefeld/merkleproof-service/pkg/strategy"
)

func signTestData(t *testing.T) (strategy.Signature, []byte) {
	t.Helper()
	digest, err := testTypedData().Hash()
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	raw, err := crypto.Sign(digest.Bytes(), key)
	require.NoError(t, err)

	sig, err := strategy.SplitSignature(raw)
	require.NoError(t, err)
	return sig, raw
}

func TestSplitSignature(t *testing.T) {
	sig, raw := signTestData(t)

	assert.Equal(t, hexutil.Encode(raw[:32]), sig.R)
	assert.Equal(t, hexutil.Encode(raw[32:64]), sig.S)
	assert.Equal(t, int(raw[64]), sig.RecoveryParam)
	assert.Equal(t, 27+int(raw[64]), sig.V)
	assert.Equal(t, sig.VS, sig.YParityAndS)
	assert.Equal(t, sig.R+strings.TrimPrefix(sig.VS, "0x"), sig.Compact)
	assert.NoError(t, sig.Validate())

	b, err := sig.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(raw[:64], b[:64]))
	assert.Equal(t, byte(sig.V), b[64])
}

func TestSplitSignature_VForms(t *testing.T) {
	_, raw := signTestData(t)

	legacy := append([]byte{}, raw...)
	legacy[64] += 27

	fromZeroOne, err := strategy.SplitSignature(raw)
	require.NoError(t, err)
	fromLegacy, err := strategy.SplitSignature(legacy)
	require.NoError(t, err)
	assert.Equal(t, fromZeroOne, fromLegacy)
}

func TestSplitSignature_Compact(t *testing.T) {
	sig, _ := signTestData(t)

	compact, err := hexutil.Decode(sig.Compact)
	require.NoError(t, err)
	require.Len(t, compact, 64)

	fromCompact, err := strategy.SplitSignature(compact)
	require.NoError(t, err)
	assert.Equal(t, sig, fromCompact)
}

func TestSplitSignature_BothRecoveryParams(t *testing.T) {
	_, raw := signTestData(t)

	for _, v := range []byte{0, 1} {
		in := append([]byte{}, raw...)
		in[64] = v

		sig, err := strategy.SplitSignature(in)
		require.NoError(t, err)
		assert.Equal(t, int(v), sig.RecoveryParam)

		vs, err := hexutil.Decode(sig.VS)
		require.NoError(t, err)
		assert.Equal(t, v, vs[0]>>7)
		assert.NoError(t, sig.Validate())
	}
}

func TestSplitSignature_Errors(t *testing.T) {
	_, raw := signTestData(t)

	badV := append([]byte{}, raw...)
	badV[64] = 29

	highS := append([]byte{}, raw...)
	highS[32] |= 0x80

	// below 2^255 but above n/2
	aboveHalfOrder := append([]byte{}, raw...)
	copy(aboveHalfOrder[32:64], bytes.Repeat([]byte{0xff}, 32))
	aboveHalfOrder[32] = 0x7f

	zeroR := append([]byte{}, raw...)
	copy(zeroR[:32], make([]byte, 32))

	compactAboveHalfOrder := append([]byte{}, aboveHalfOrder[:64]...)

	tests := []struct {
		name string
		sig  []byte
	}{
		{name: "empty", sig: nil},
		{name: "short", sig: raw[:63]},
		{name: "bad v", sig: badV},
		{name: "high s", sig: highS},
		{name: "s above half order", sig: aboveHalfOrder},
		{name: "compact s above half order", sig: compactAboveHalfOrder},
		{name: "zero r", sig: zeroR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := strategy.SplitSignature(tt.sig)
			require.Error(t, err)
			assert.True(t, strategy.IsKind(err, strategy.KindDecode), "got %v", err)
		})
	}
}

func TestSignature_Validate(t *testing.T) {
	sig, _ := signTestData(t)
	otherS := "0x" + strings.Repeat("11", 32)

	tests := []struct {
		name      string
		mutate    func(s *strategy.Signature)
		wantKind  strategy.Kind
		wantField string
	}{
		{
			name:   "redundant fields omitted",
			mutate: func(s *strategy.Signature) { s.VS, s.YParityAndS, s.Compact = "", "", "" },
		},
		{
			name:   "upper case hex",
			mutate: func(s *strategy.Signature) { s.Compact = "0x" + strings.ToUpper(s.Compact[2:]) },
		},
		{
			name:      "recovery param disagrees with v",
			mutate:    func(s *strategy.Signature) { s.RecoveryParam = 1 - s.RecoveryParam },
			wantKind:  strategy.KindSignatureInconsistency,
			wantField: "recoveryParam",
		},
		{
			name:      "v out of range",
			mutate:    func(s *strategy.Signature) { s.V = 1 },
			wantKind:  strategy.KindSignatureInconsistency,
			wantField: "v",
		},
		{
			name:      "_vs from another signature",
			mutate:    func(s *strategy.Signature) { s.VS = otherS },
			wantKind:  strategy.KindSignatureInconsistency,
			wantField: "_vs",
		},
		{
			name:      "yParityAndS from another signature",
			mutate:    func(s *strategy.Signature) { s.YParityAndS = otherS },
			wantKind:  strategy.KindSignatureInconsistency,
			wantField: "yParityAndS",
		},
		{
			name:      "compact with flipped parity",
			mutate:    func(s *strategy.Signature) { s.V, s.RecoveryParam = 55-s.V, 1-s.RecoveryParam },
			wantKind:  strategy.KindSignatureInconsistency,
			wantField: "_vs",
		},
		{
			name:      "high s",
			mutate:    func(s *strategy.Signature) { s.S = "0x" + strings.Repeat("ff", 32) },
			wantKind:  strategy.KindSignatureInconsistency,
			wantField: "s",
		},
		{
			name:      "s above half order",
			mutate:    func(s *strategy.Signature) { s.S = "0x7f" + strings.Repeat("ff", 31) },
			wantKind:  strategy.KindSignatureInconsistency,
			wantField: "s",
		},
		{
			name:      "malformed r",
			mutate:    func(s *strategy.Signature) { s.R = "0x1234" },
			wantKind:  strategy.KindDecode,
			wantField: "r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sig
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strategy.IsKind(err, tt.wantKind), "got %v", err)
			assert.Equal(t, tt.wantField, strategy.ErrorField(err))
		})
	}
}

func TestKeySigner_RecoversToSigner(t *testing.T) {
	signer := testSigner(t)
	td := testTypedData()

	sig, err := signer.SignTypedData(context.Background(), td)
	require.NoError(t, err)
	require.NoError(t, sig.Validate())

	digest, err := td.Hash()
	require.NoError(t, err)
	raw, err := sig.Bytes()
	require.NoError(t, err)
	raw[64] -= 27

	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), crypto.PubkeyToAddress(*pub))
}

func TestKeySigner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testSigner(t).SignTypedData(ctx, testTypedData())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeySignerFromHex(t *testing.T) {
	fromPlain, err := strategy.KeySignerFromHex(testKeyHex)
	require.NoError(t, err)
	fromPrefixed, err := strategy.KeySignerFromHex("0x" + testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, fromPlain.Address(), fromPrefixed.Address())
	assert.Equal(t, testSigner(t).Address(), fromPlain.Address())

	_, err = strategy.KeySignerFromHex("not-a-key")
	assert.Error(t, err)
}
