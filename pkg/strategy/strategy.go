package strategy

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// CurrentVersion is the only strategy format version in use.
const CurrentVersion uint8 = 0

// Strategy is the configuration leaf. Every tree carries at most one and it
// sits at index 0.
//
// Nonce and Expiration are checked against chain state by the vault, not
// here. Delegate can only be reassigned by an on-chain transaction, so the
// type offers no way to change it.
type Strategy struct {
	Version uint8
	// Delegate may sign new strategy roots for the vault.
	Delegate common.Address
	// Expiration is the timestamp after which the strategy is void.
	Expiration uint256.Int
	// Nonce must be above the vault's on-chain nonce for the strategy to be valid.
	Nonce uint256.Int
	// Vault is the target vault. The zero address opens a new vault.
	Vault common.Address
}

// StrategyWire is the payload form of Strategy.
type StrategyWire struct {
	Type       LeafType `json:"type"`
	Version    uint8    `json:"version"`
	Delegate   string   `json:"delegate"`
	Expiration HexType  `json:"expiration"`
	Nonce      HexType  `json:"nonce"`
	Vault      string   `json:"vault"`
}

// NewStrategy builds a configuration leaf of the current version.
func NewStrategy(delegate, vault common.Address, nonce, expiration *uint256.Int) Strategy {
	s := Strategy{
		Version:  CurrentVersion,
		Delegate: delegate,
		Vault:    vault,
	}
	if nonce != nil {
		s.Nonce = *nonce
	}
	if expiration != nil {
		s.Expiration = *expiration
	}
	return s
}

// LeafType implements Leaf.
func (s Strategy) LeafType() LeafType {
	return LeafTypeStrategy
}

// IsNewVault reports whether the tree opens a new vault.
func (s Strategy) IsNewVault() bool {
	return s.Vault == (common.Address{})
}

func (s Strategy) Validate() error {
	if s.Version != CurrentVersion {
		return newError(KindInvalidField, "version", "unsupported strategy version %d", s.Version)
	}
	return nil
}

// ToWire encodes the configuration leaf.
func (s Strategy) ToWire() StrategyWire {
	return StrategyWire{
		Type:       LeafTypeStrategy,
		Version:    s.Version,
		Delegate:   s.Delegate.Hex(),
		Expiration: encodeUint(&s.Expiration, typeUint256),
		Nonce:      encodeUint(&s.Nonce, typeUint256),
		Vault:      s.Vault.Hex(),
	}
}

// StrategyFromWire is the inverse of Strategy.ToWire.
func StrategyFromWire(w StrategyWire) (Strategy, error) {
	if w.Type != LeafTypeStrategy {
		return Strategy{}, decodeError("type", "leaf type %d is not a Strategy leaf", uint8(w.Type))
	}

	delegate, err := decodeAddress("delegate", w.Delegate, LeafTypeStrategy)
	if err != nil {
		return Strategy{}, err
	}
	vault, err := decodeAddress("vault", w.Vault, LeafTypeStrategy)
	if err != nil {
		return Strategy{}, err
	}
	expiration, err := decodeUint("expiration", w.Expiration, typeUint256)
	if err != nil {
		return Strategy{}, err
	}
	nonce, err := decodeUint("nonce", w.Nonce, typeUint256)
	if err != nil {
		return Strategy{}, err
	}

	s := Strategy{
		Version:    w.Version,
		Delegate:   delegate,
		Expiration: expiration,
		Nonce:      nonce,
		Vault:      vault,
	}
	if err := s.Validate(); err != nil {
		return Strategy{}, err
	}
	return s, nil
}

// TypedData builds the signing request that authorizes root under this
// configuration: the strategy nonce, and its expiration as the deadline.
func (s Strategy) TypedData(chainID uint64, verifyingContract common.Address, root common.Hash) TypedData {
	return NewTypedData(chainID, verifyingContract, &s.Nonce, &s.Expiration, root)
}
