package strategy_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonbindefeld/merkleproof-service/pkg/strategy"
)

func word(digits string) string {
	return "0x" + strings.Repeat("0", 64-len(digits)) + digits
}

func TestLien_ToWire(t *testing.T) {
	w := testLien().ToWire()

	assert.Equal(t, strategy.HexType{Hex: word("0de0b6b3a7640000"), Type: "uint256"}, w.Amount)
	assert.Equal(t, strategy.HexType{Hex: word("01"), Type: "uint256"}, w.Rate)
	assert.Equal(t, strategy.HexType{Hex: word("015180"), Type: "uint256"}, w.Duration)
	assert.Equal(t, strategy.HexType{Hex: word(""), Type: "uint256"}, w.MaxPotentialDebt)
	assert.Equal(t, strategy.HexType{Hex: word("1bc16d674ec80000"), Type: "uint256"}, w.LiquidationInitialAsk)
}

func TestLien_ZeroEncoding(t *testing.T) {
	var l strategy.Lien
	first := l.ToWire()
	second := l.ToWire()

	assert.Equal(t, first, second, "encoding must be deterministic")
	assert.Len(t, first.Amount.Hex, 66)

	decoded, err := strategy.LienFromWire(first)
	require.NoError(t, err)
	assert.True(t, decoded.Amount.IsZero())
	assert.True(t, decoded.IsMostSenior())
}

func TestLien_RoundTrip(t *testing.T) {
	lien := testLien()
	lien.MaxPotentialDebt = ether(5)

	decoded, err := strategy.LienFromWire(lien.ToWire())
	require.NoError(t, err)
	assert.Equal(t, lien, decoded)
	assert.False(t, decoded.IsMostSenior())
}

func TestLienFromWire_LegacyBigNumber(t *testing.T) {
	w := strategy.LienWire{
		Amount:                strategy.HexType{Hex: "0x0de0b6b3a7640000", Type: "BigNumber"},
		Rate:                  strategy.HexType{Hex: "0x01", Type: "BigNumber"},
		Duration:              strategy.HexType{Hex: "0x015180", Type: "BigNumber"},
		MaxPotentialDebt:      strategy.HexType{Hex: "0x00", Type: "BigNumber"},
		LiquidationInitialAsk: strategy.HexType{Hex: "0x1bc16d674ec80000", Type: "BigNumber"},
	}

	decoded, err := strategy.LienFromWire(w)
	require.NoError(t, err)
	assert.Equal(t, testLien(), decoded)
}

func TestLienFromWire_Errors(t *testing.T) {
	tests := []struct {
		name      string
		amount    strategy.HexType
		wantField string
	}{
		{
			name:      "wrong type tag",
			amount:    strategy.HexType{Hex: word("01"), Type: "uint128"},
			wantField: "lien.amount",
		},
		{
			name:      "missing type tag",
			amount:    strategy.HexType{Hex: word("01")},
			wantField: "lien.amount",
		},
		{
			name:      "missing 0x prefix",
			amount:    strategy.HexType{Hex: "01", Type: "uint256"},
			wantField: "lien.amount",
		},
		{
			name:      "non hex digits",
			amount:    strategy.HexType{Hex: "0xzz", Type: "uint256"},
			wantField: "lien.amount",
		},
		{
			name:      "embedded sign",
			amount:    strategy.HexType{Hex: "0x-1", Type: "uint256"},
			wantField: "lien.amount",
		},
		{
			name:      "empty digits",
			amount:    strategy.HexType{Hex: "0x", Type: "uint256"},
			wantField: "lien.amount",
		},
		{
			name:      "wider than 256 bits",
			amount:    strategy.HexType{Hex: "0x1" + strings.Repeat("0", 64), Type: "uint256"},
			wantField: "lien.amount",
		},
		{
			name:      "negative legacy value",
			amount:    strategy.HexType{Hex: "-0x01", Type: "BigNumber"},
			wantField: "lien.amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testLien().ToWire()
			w.Amount = tt.amount

			_, err := strategy.LienFromWire(w)
			require.Error(t, err)
			assert.True(t, strategy.IsKind(err, strategy.KindDecode), "got %v", err)
			assert.Equal(t, tt.wantField, strategy.ErrorField(err))
		})
	}
}

func TestLienFromWire_ReportsFirstBadField(t *testing.T) {
	w := testLien().ToWire()
	w.LiquidationInitialAsk = strategy.HexType{Hex: "0xgg", Type: "uint256"}

	_, err := strategy.LienFromWire(w)
	require.Error(t, err)
	assert.Equal(t, "lien.liquidationInitialAsk", strategy.ErrorField(err))
}
