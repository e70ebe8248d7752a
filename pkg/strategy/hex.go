package strategy

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

// HexType is the wire encoding of a numeric field: the value as hex and the
// Solidity type it must be decoded as.
//
// Values are always written as one 32-byte ABI word ("0x" + 64 hex digits),
// signed types in two's complement. Decoding also accepts the legacy ethers
// BigNumber form ({"type":"BigNumber","hex":"0x0de0b6b3a7640000"}).
type HexType struct {
	Hex  string `json:"hex"`
	Type string `json:"type"`
}

// LegacyBigNumberType is the type tag ethers writes for serialized BigNumbers.
const LegacyBigNumberType = "BigNumber"

type solType struct {
	name   string
	bits   int
	signed bool
}

var (
	typeUint256 = solType{name: "uint256", bits: 256}
	typeUint128 = solType{name: "uint128", bits: 128}
	typeUint24  = solType{name: "uint24", bits: 24}
	typeInt24   = solType{name: "int24", bits: 24, signed: true}
)

func encodeUint(v *uint256.Int, t solType) HexType {
	word := v.Bytes32()
	return HexType{Hex: hexutil.Encode(word[:]), Type: t.name}
}

func encodeInt(v int64, t solType) HexType {
	word := math.U256Bytes(big.NewInt(v))
	return HexType{Hex: hexutil.Encode(word), Type: t.name}
}

func decodeUint(field string, h HexType, t solType) (uint256.Int, error) {
	v, err := parseHex(field, h, t)
	if err != nil {
		return uint256.Int{}, err
	}
	u, _ := uint256.FromBig(v)
	return *u, nil
}

func decodeInt(field string, h HexType, t solType) (int64, error) {
	v, err := parseHex(field, h, t)
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

func parseHex(field string, h HexType, t solType) (*big.Int, error) {
	legacy := h.Type == LegacyBigNumberType
	if h.Type != t.name && !legacy {
		return nil, decodeError(field, "type %q, want %q", h.Type, t.name)
	}

	s := h.Hex
	neg := false
	if legacy && len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if !has0xPrefix(s) {
		return nil, decodeError(field, "hex %q lacks 0x prefix", h.Hex)
	}
	digits := s[2:]
	if len(digits) == 0 || len(digits) > 64 {
		return nil, decodeError(field, "hex %q must hold 1 to 64 digits", h.Hex)
	}
	if !isHexDigits(digits) {
		return nil, decodeError(field, "malformed hex %q", h.Hex)
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, decodeError(field, "malformed hex %q", h.Hex)
	}
	if neg {
		v.Neg(v)
	}

	if !t.signed {
		if v.Sign() < 0 {
			return nil, decodeError(field, "negative value for %s", t.name)
		}
		if v.BitLen() > t.bits {
			return nil, decodeError(field, "value overflows %s", t.name)
		}
		return v, nil
	}

	if !legacy {
		v = fromTwosComplement(v)
	}
	if !fitsSigned(v, t.bits) {
		return nil, decodeError(field, "value out of %s range", t.name)
	}
	return v, nil
}

// fromTwosComplement reads v as a 256-bit two's complement word.
func fromTwosComplement(v *big.Int) *big.Int {
	if v.Bit(255) == 1 {
		v.Sub(v, tt256)
	}
	return v
}

var tt256 = new(big.Int).Lsh(big.NewInt(1), 256)

func fitsSigned(v *big.Int, bits int) bool {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	if v.Cmp(limit) >= 0 {
		return false
	}
	return v.Cmp(limit.Neg(limit)) >= 0
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHexDigits(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
