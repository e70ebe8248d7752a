package strategy

import "github.com/pkg/errors"

// Leaf is anything that occupies a slot of a strategy tree.
type Leaf interface {
	LeafType() LeafType
}

// ValidatePlacement checks the tags of a leaf sequence: every tag must be
// known, and a Strategy leaf may only appear once, at index 0. A sequence
// without a Strategy leaf is accepted.
func ValidatePlacement(leaves []Leaf) error {
	for i, l := range leaves {
		if l == nil {
			return decodeError("type", "leaf %d is nil", i)
		}
		t := l.LeafType()
		if !t.Valid() {
			return decodeError("type", "leaf %d: unknown leaf type %d", i, uint8(t))
		}
		if t == LeafTypeStrategy && i != 0 {
			return newError(KindInvalidLeafPlacement, "type", "Strategy leaf at index %d, only index 0 is allowed", i)
		}
	}
	return nil
}

// ValidateSequence checks placement and then validates every leaf that knows
// how to validate itself.
func ValidateSequence(leaves []Leaf) error {
	if err := ValidatePlacement(leaves); err != nil {
		return err
	}
	for i, l := range leaves {
		v, ok := l.(interface{ Validate() error })
		if !ok {
			continue
		}
		if err := v.Validate(); err != nil {
			return errors.Wrapf(err, "leaf %d", i)
		}
	}
	return nil
}
