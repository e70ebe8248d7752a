package strategy

import "fmt"

// LeafType is the uint8 tag that prefixes every leaf on chain. It decides
// which fields a leaf carries. Existing codes are never reassigned.
type LeafType uint8

const (
	// LeafTypeStrategy is the configuration leaf. It may only occupy index 0.
	LeafTypeStrategy LeafType = 0
	// LeafTypeCollateral is a single ERC721 token.
	LeafTypeCollateral LeafType = 1
	// LeafTypeCollection is any token of an ERC721 collection.
	LeafTypeCollection LeafType = 2
	// LeafTypeUniV3Collateral is a Uniswap V3 liquidity position.
	LeafTypeUniV3Collateral LeafType = 3
)

// ParseLeafType converts a raw tag into a LeafType.
func ParseLeafType(v uint64) (LeafType, error) {
	t := LeafType(v)
	if v > uint64(LeafTypeUniV3Collateral) || !t.Valid() {
		return 0, decodeError("type", "unknown leaf type %d", v)
	}
	return t, nil
}

// Valid reports whether t is one of the four known codes.
func (t LeafType) Valid() bool {
	switch t {
	case LeafTypeStrategy, LeafTypeCollateral, LeafTypeCollection, LeafTypeUniV3Collateral:
		return true
	default:
		return false
	}
}

// IsRow reports whether t tags a collateral-bearing row.
func (t LeafType) IsRow() bool {
	switch t {
	case LeafTypeCollateral, LeafTypeCollection, LeafTypeUniV3Collateral:
		return true
	default:
		return false
	}
}

func (t LeafType) String() string {
	switch t {
	case LeafTypeStrategy:
		return "Strategy"
	case LeafTypeCollateral:
		return "Collateral"
	case LeafTypeCollection:
		return "Collection"
	case LeafTypeUniV3Collateral:
		return "UniV3Collateral"
	default:
		return fmt.Sprintf("LeafType(%d)", uint8(t))
	}
}
