package strategy

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// RowWire is the payload form of a Row: the union of the Collateral,
// Collection and UniV3Collateral shapes, discriminated by Type. Fields that
// do not belong to the variant are omitted.
type RowWire struct {
	Leaf     string   `json:"leaf,omitempty"`
	Type     LeafType `json:"type"`
	Token    string   `json:"token"`
	TokenID  *HexType `json:"tokenId,omitempty"`
	Borrower string   `json:"borrower"`
	Lien     LienWire `json:"lien"`

	Token0       string   `json:"token0,omitempty"`
	Token1       string   `json:"token1,omitempty"`
	Fee          *HexType `json:"fee,omitempty"`
	TickLower    *HexType `json:"tickLower,omitempty"`
	TickUpper    *HexType `json:"tickUpper,omitempty"`
	MinLiquidity *HexType `json:"minLiquidity,omitempty"`
	Amount0Min   *HexType `json:"amount0Min,omitempty"`
	Amount1Min   *HexType `json:"amount1Min,omitempty"`
}

// LeafType implements Leaf.
func (w RowWire) LeafType() LeafType {
	return w.Type
}

// ToWirePayload encodes a validated row into its payload form.
func ToWirePayload(r Row) (RowWire, error) {
	if err := r.Validate(); err != nil {
		return RowWire{}, err
	}

	w := RowWire{
		Type:     r.Type,
		Token:    r.Token.Hex(),
		Borrower: r.Borrower.Hex(),
		Lien:     r.Lien.ToWire(),
	}
	if r.Leaf != nil {
		w.Leaf = r.Leaf.Hex()
	}

	switch r.Type {
	case LeafTypeCollateral:
		id := encodeUint(r.TokenID, typeUint256)
		w.TokenID = &id
	case LeafTypeUniV3Collateral:
		p := r.UniV3
		fee := encodeUint(uint256.NewInt(uint64(p.Fee)), typeUint24)
		lower := encodeInt(int64(p.TickLower), typeInt24)
		upper := encodeInt(int64(p.TickUpper), typeInt24)
		liq := encodeUint(&p.MinLiquidity, typeUint128)
		a0 := encodeUint(&p.Amount0Min, typeUint256)
		a1 := encodeUint(&p.Amount1Min, typeUint256)

		w.Token0 = p.Token0.Hex()
		w.Token1 = p.Token1.Hex()
		w.Fee = &fee
		w.TickLower = &lower
		w.TickUpper = &upper
		w.MinLiquidity = &liq
		w.Amount0Min = &a0
		w.Amount1Min = &a1
	}
	return w, nil
}

// FromWirePayload decodes a payload row. tokenId on a Collection row is
// ignored. UniV3 fields on any other variant are rejected, and every variant
// field is required exactly where its type declares it.
func FromWirePayload(w RowWire) (Row, error) {
	if !w.Type.IsRow() {
		return Row{}, decodeError("type", "leaf type %d is not a strategy row", uint8(w.Type))
	}

	token, err := decodeAddress("token", w.Token, w.Type)
	if err != nil {
		return Row{}, err
	}
	borrower, err := decodeAddress("borrower", w.Borrower, w.Type)
	if err != nil {
		return Row{}, err
	}
	lien, err := LienFromWire(w.Lien)
	if err != nil {
		return Row{}, err
	}

	r := Row{
		Type:     w.Type,
		Token:    token,
		Borrower: borrower,
		Lien:     lien,
	}
	if w.Leaf != "" {
		leaf, err := decodeHash("leaf", w.Leaf)
		if err != nil {
			return Row{}, err
		}
		r.Leaf = &leaf
	}

	if w.Type != LeafTypeUniV3Collateral {
		if field := w.uniV3Field(); field != "" {
			return Row{}, newError(KindInvalidField, field, "not allowed on %s leaf", w.Type)
		}
	}

	switch w.Type {
	case LeafTypeCollateral:
		if w.TokenID == nil {
			return Row{}, missingField("tokenId", w.Type)
		}
		id, err := decodeUint("tokenId", *w.TokenID, typeUint256)
		if err != nil {
			return Row{}, err
		}
		r.TokenID = &id
	case LeafTypeUniV3Collateral:
		if w.TokenID != nil {
			return Row{}, newError(KindInvalidField, "tokenId", "not allowed on %s leaf", w.Type)
		}
		p, err := decodeUniV3(w)
		if err != nil {
			return Row{}, err
		}
		r.UniV3 = &p
	}

	if err := r.Validate(); err != nil {
		return Row{}, err
	}
	return r, nil
}

// uniV3Field names the first UniV3-only field present on w, or "".
func (w RowWire) uniV3Field() string {
	switch {
	case w.Token0 != "":
		return "token0"
	case w.Token1 != "":
		return "token1"
	case w.Fee != nil:
		return "fee"
	case w.TickLower != nil:
		return "tickLower"
	case w.TickUpper != nil:
		return "tickUpper"
	case w.MinLiquidity != nil:
		return "minLiquidity"
	case w.Amount0Min != nil:
		return "amount0Min"
	case w.Amount1Min != nil:
		return "amount1Min"
	}
	return ""
}

func decodeUniV3(w RowWire) (UniV3Params, error) {
	var p UniV3Params
	var err error

	if p.Token0, err = decodeAddress("token0", w.Token0, w.Type); err != nil {
		return p, err
	}
	if p.Token1, err = decodeAddress("token1", w.Token1, w.Type); err != nil {
		return p, err
	}

	if w.Fee == nil {
		return p, missingField("fee", w.Type)
	}
	fee, err := decodeUint("fee", *w.Fee, typeUint24)
	if err != nil {
		return p, err
	}
	p.Fee = uint32(fee.Uint64())

	if w.TickLower == nil {
		return p, missingField("tickLower", w.Type)
	}
	lower, err := decodeInt("tickLower", *w.TickLower, typeInt24)
	if err != nil {
		return p, err
	}
	p.TickLower = int32(lower)

	if w.TickUpper == nil {
		return p, missingField("tickUpper", w.Type)
	}
	upper, err := decodeInt("tickUpper", *w.TickUpper, typeInt24)
	if err != nil {
		return p, err
	}
	p.TickUpper = int32(upper)

	amounts := []struct {
		name string
		src  *HexType
		typ  solType
		dst  *uint256.Int
	}{
		{"minLiquidity", w.MinLiquidity, typeUint128, &p.MinLiquidity},
		{"amount0Min", w.Amount0Min, typeUint256, &p.Amount0Min},
		{"amount1Min", w.Amount1Min, typeUint256, &p.Amount1Min},
	}
	for _, a := range amounts {
		if a.src == nil {
			return p, missingField(a.name, w.Type)
		}
		if *a.dst, err = decodeUint(a.name, *a.src, a.typ); err != nil {
			return p, err
		}
	}
	return p, nil
}

func decodeAddress(field, s string, t LeafType) (common.Address, error) {
	if s == "" {
		return common.Address{}, missingField(field, t)
	}
	if !has0xPrefix(s) || !common.IsHexAddress(s) {
		return common.Address{}, decodeError(field, "invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func decodeHash(field, s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, wrapError(KindDecode, field, err, "invalid bytes32 %q", s)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, decodeError(field, "got %d bytes, want %d", len(b), common.HashLength)
	}
	return common.BytesToHash(b), nil
}
