package strategy

import (
	"github.com/holiman/uint256"
)

// Lien holds the loan terms nested in every collateral-bearing leaf. It is
// never a leaf on its own, so it carries no type tag.
type Lien struct {
	// Amount of WETH (10**18) the borrower can borrow.
	Amount uint256.Int
	// Rate is interest accrued per second (10**18).
	Rate uint256.Int
	// Duration is the maximum life of the lien without refinancing, in seconds.
	Duration uint256.Int
	// MaxPotentialDebt bounds the value of all more senior liens at maturity.
	// Zero means the lien is the most senior.
	MaxPotentialDebt uint256.Int
	// LiquidationInitialAsk is the starting price of the liquidation auction.
	LiquidationInitialAsk uint256.Int
}

// LienWire is the hex form of Lien used inside stored payloads.
type LienWire struct {
	Amount                HexType `json:"amount"`
	Rate                  HexType `json:"rate"`
	Duration              HexType `json:"duration"`
	MaxPotentialDebt      HexType `json:"maxPotentialDebt"`
	LiquidationInitialAsk HexType `json:"liquidationInitialAsk"`
}

// IsMostSenior reports whether no lien ranks above this one.
func (l Lien) IsMostSenior() bool {
	return l.MaxPotentialDebt.IsZero()
}

// ToWire encodes every field as a uint256 word.
func (l Lien) ToWire() LienWire {
	return LienWire{
		Amount:                encodeUint(&l.Amount, typeUint256),
		Rate:                  encodeUint(&l.Rate, typeUint256),
		Duration:              encodeUint(&l.Duration, typeUint256),
		MaxPotentialDebt:      encodeUint(&l.MaxPotentialDebt, typeUint256),
		LiquidationInitialAsk: encodeUint(&l.LiquidationInitialAsk, typeUint256),
	}
}

// LienFromWire is the inverse of Lien.ToWire.
func LienFromWire(w LienWire) (Lien, error) {
	var (
		l   Lien
		err error
	)
	fields := []struct {
		name string
		src  HexType
		dst  *uint256.Int
	}{
		{"lien.amount", w.Amount, &l.Amount},
		{"lien.rate", w.Rate, &l.Rate},
		{"lien.duration", w.Duration, &l.Duration},
		{"lien.maxPotentialDebt", w.MaxPotentialDebt, &l.MaxPotentialDebt},
		{"lien.liquidationInitialAsk", w.LiquidationInitialAsk, &l.LiquidationInitialAsk},
	}
	for _, f := range fields {
		if *f.dst, err = decodeUint(f.name, f.src, typeUint256); err != nil {
			return Lien{}, err
		}
	}
	return l, nil
}
