package strategy

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	maxUint24 = 1<<24 - 1
	minInt24  = -(1 << 23)
	maxInt24  = 1<<23 - 1
)

// UniV3Params are the fields only a UniV3Collateral row carries.
type UniV3Params struct {
	Token0 common.Address
	Token1 common.Address
	// Fee is the pool fee tier (uint24).
	Fee uint32
	// TickLower and TickUpper bound the position range (int24).
	TickLower int32
	TickUpper int32
	// MinLiquidity is the liquidity floor of the position (uint128).
	MinLiquidity uint256.Int
	Amount0Min   uint256.Int
	Amount1Min   uint256.Int
}

// Row is a collateral-bearing leaf. Type is the discriminant of a closed
// union over Collateral, Collection and UniV3Collateral:
//
//	Collateral       TokenID set, UniV3 nil
//	Collection       TokenID nil, UniV3 nil
//	UniV3Collateral  TokenID nil, UniV3 set
//
// Leaf is the bytes32 leaf hash. It is nil until the tree builder fills it
// and is never recomputed here.
type Row struct {
	Leaf     *common.Hash
	Type     LeafType
	Token    common.Address
	TokenID  *uint256.Int
	Borrower common.Address
	Lien     Lien
	UniV3    *UniV3Params
}

// NewCollateral builds a row for one specific token of a collection.
func NewCollateral(token common.Address, tokenID *uint256.Int, borrower common.Address, lien Lien) (Row, error) {
	if tokenID == nil {
		return Row{}, missingField("tokenId", LeafTypeCollateral)
	}
	id := *tokenID
	r := Row{
		Type:     LeafTypeCollateral,
		Token:    token,
		TokenID:  &id,
		Borrower: borrower,
		Lien:     lien,
	}
	if err := r.Validate(); err != nil {
		return Row{}, err
	}
	return r, nil
}

// NewCollection builds a row that any token of the collection satisfies.
func NewCollection(token common.Address, borrower common.Address, lien Lien) (Row, error) {
	r := Row{
		Type:     LeafTypeCollection,
		Token:    token,
		Borrower: borrower,
		Lien:     lien,
	}
	if err := r.Validate(); err != nil {
		return Row{}, err
	}
	return r, nil
}

// NewUniV3Collateral builds a row for a Uniswap V3 position. token is the
// position manager contract.
func NewUniV3Collateral(token common.Address, borrower common.Address, lien Lien, params UniV3Params) (Row, error) {
	p := params
	r := Row{
		Type:     LeafTypeUniV3Collateral,
		Token:    token,
		Borrower: borrower,
		Lien:     lien,
		UniV3:    &p,
	}
	if err := r.Validate(); err != nil {
		return Row{}, err
	}
	return r, nil
}

// LeafType implements Leaf.
func (r Row) LeafType() LeafType {
	return r.Type
}

// Validate enforces the per-variant field rules.
func (r Row) Validate() error {
	switch r.Type {
	case LeafTypeCollateral:
		if r.TokenID == nil {
			return missingField("tokenId", r.Type)
		}
		if r.UniV3 != nil {
			return newError(KindInvalidField, "token0", "not allowed on %s leaf", r.Type)
		}
	case LeafTypeCollection:
		if r.TokenID != nil {
			return newError(KindInvalidField, "tokenId", "not allowed on %s leaf", r.Type)
		}
		if r.UniV3 != nil {
			return newError(KindInvalidField, "token0", "not allowed on %s leaf", r.Type)
		}
	case LeafTypeUniV3Collateral:
		if r.TokenID != nil {
			return newError(KindInvalidField, "tokenId", "not allowed on %s leaf", r.Type)
		}
		if r.UniV3 == nil {
			return missingField("token0", r.Type)
		}
		return r.UniV3.validate()
	case LeafTypeStrategy:
		return newError(KindInvalidField, "type", "a Strategy leaf is not a row")
	default:
		return newError(KindInvalidField, "type", "unknown leaf type %d", uint8(r.Type))
	}
	return nil
}

func (p *UniV3Params) validate() error {
	if p.Fee > maxUint24 {
		return newError(KindInvalidField, "fee", "%d overflows uint24", p.Fee)
	}
	if p.TickLower < minInt24 || p.TickLower > maxInt24 {
		return newError(KindInvalidField, "tickLower", "%d out of int24 range", p.TickLower)
	}
	if p.TickUpper < minInt24 || p.TickUpper > maxInt24 {
		return newError(KindInvalidField, "tickUpper", "%d out of int24 range", p.TickUpper)
	}
	if p.TickLower >= p.TickUpper {
		return newError(KindInvalidField, "tickLower", "tickLower %d must be below tickUpper %d", p.TickLower, p.TickUpper)
	}
	if p.MinLiquidity.BitLen() > 128 {
		return newError(KindInvalidField, "minLiquidity", "overflows uint128")
	}
	return nil
}

// HasLeaf reports whether the leaf hash has been filled.
func (r Row) HasLeaf() bool {
	return r.Leaf != nil
}

// WithLeaf returns a copy of r carrying leaf. A leaf, once set, is immutable.
func (r Row) WithLeaf(leaf common.Hash) (Row, error) {
	if r.Leaf != nil {
		if *r.Leaf == leaf {
			return r, nil
		}
		return Row{}, newError(KindInvalidField, "leaf", "already set to %s", r.Leaf.Hex())
	}
	r.Leaf = &leaf
	return r, nil
}

// AnyBorrower reports whether the row is open to every borrower.
func (r Row) AnyBorrower() bool {
	return r.Borrower == (common.Address{})
}

// AcceptsBorrower reports whether borrower may commit to this row's lien.
func (r Row) AcceptsBorrower(borrower common.Address) bool {
	return r.AnyBorrower() || r.Borrower == borrower
}
