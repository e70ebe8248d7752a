package strategy

import (
	"encoding/json"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"

	"github.com/simonbindefeld/merkleproof-service/internal/cidutil"
)

// WireLeaf is one entry of a stored leaf sequence. Exactly one of Strategy
// and Row is set; the JSON form is the bare leaf, discriminated by "type".
type WireLeaf struct {
	Strategy *StrategyWire
	Row      *RowWire
}

// LeafType implements Leaf. An empty entry reports an unknown tag.
func (l WireLeaf) LeafType() LeafType {
	switch {
	case l.Strategy != nil:
		return l.Strategy.Type
	case l.Row != nil:
		return l.Row.Type
	default:
		return LeafType(0xff)
	}
}

func (l WireLeaf) MarshalJSON() ([]byte, error) {
	switch {
	case l.Strategy != nil && l.Row != nil:
		return nil, newError(KindInvalidField, "leaf", "both strategy and row set")
	case l.Strategy != nil:
		return json.Marshal(l.Strategy)
	case l.Row != nil:
		return json.Marshal(l.Row)
	default:
		return nil, newError(KindMissingRequiredField, "leaf", "empty leaf")
	}
}

func (l *WireLeaf) UnmarshalJSON(b []byte) error {
	var head struct {
		Type *uint64 `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return wrapError(KindDecode, "leaf", err, "invalid leaf")
	}
	if head.Type == nil {
		return decodeError("type", "leaf has no type tag")
	}
	t, err := ParseLeafType(*head.Type)
	if err != nil {
		return err
	}

	*l = WireLeaf{}
	if t == LeafTypeStrategy {
		l.Strategy = new(StrategyWire)
		if err := json.Unmarshal(b, l.Strategy); err != nil {
			return wrapError(KindDecode, "leaf", err, "invalid Strategy leaf")
		}
		return nil
	}
	l.Row = new(RowWire)
	if err := json.Unmarshal(b, l.Row); err != nil {
		return wrapError(KindDecode, "leaf", err, "invalid %s leaf", t)
	}
	return nil
}

// IPFSStrategyPayload is the document published for a signed tree:
//
//	{"typedData": {...}, "signature": {...}, "leaves": [strategy, row, ...]}
//
// Leaves is the exact sequence message.root was computed over: the Strategy
// leaf at index 0 followed by the rows in tree order.
type IPFSStrategyPayload struct {
	TypedData TypedData  `json:"typedData"`
	Signature Signature  `json:"signature"`
	Leaves    []WireLeaf `json:"leaves"`
}

// NewIPFSStrategyPayload assembles the published document. The signed
// request must carry the strategy's nonce and expiration, and every row must
// already carry its leaf hash.
func NewIPFSStrategyPayload(s Strategy, rows []Row, us UserSignature) (IPFSStrategyPayload, error) {
	if err := s.Validate(); err != nil {
		return IPFSStrategyPayload{}, errors.Wrap(err, "leaf 0")
	}
	if err := us.Validate(); err != nil {
		return IPFSStrategyPayload{}, err
	}
	if err := checkRequestMatches(s, us.TypedData); err != nil {
		return IPFSStrategyPayload{}, err
	}

	sw := s.ToWire()
	leaves := make([]WireLeaf, 0, len(rows)+1)
	leaves = append(leaves, WireLeaf{Strategy: &sw})
	for i, r := range rows {
		if !r.HasLeaf() {
			return IPFSStrategyPayload{}, errors.Wrapf(missingField("leaf", r.Type), "leaf %d", i+1)
		}
		w, err := ToWirePayload(r)
		if err != nil {
			return IPFSStrategyPayload{}, errors.Wrapf(err, "leaf %d", i+1)
		}
		leaves = append(leaves, WireLeaf{Row: &w})
	}

	return IPFSStrategyPayload{
		TypedData: us.TypedData,
		Signature: us.Signature,
		Leaves:    leaves,
	}, nil
}

// DecodeIPFSStrategyPayload parses a published document. Call Decode to get
// the native leaves.
func DecodeIPFSStrategyPayload(data []byte) (IPFSStrategyPayload, error) {
	var p IPFSStrategyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		if IsKind(err, KindDecode) {
			return IPFSStrategyPayload{}, err
		}
		return IPFSStrategyPayload{}, wrapError(KindDecode, "payload", err, "invalid payload")
	}
	return p, nil
}

// Decode checks placement, decodes the Strategy leaf and the rows, and
// checks that the signed request belongs to that strategy.
func (p IPFSStrategyPayload) Decode() (Strategy, []Row, error) {
	leaves := make([]Leaf, len(p.Leaves))
	for i, l := range p.Leaves {
		leaves[i] = l
	}
	if err := ValidatePlacement(leaves); err != nil {
		return Strategy{}, nil, err
	}
	if len(p.Leaves) == 0 || p.Leaves[0].Strategy == nil {
		return Strategy{}, nil, newError(KindMissingRequiredField, "leaves", "a Strategy leaf is required at index 0")
	}

	s, err := StrategyFromWire(*p.Leaves[0].Strategy)
	if err != nil {
		return Strategy{}, nil, errors.Wrap(err, "leaf 0")
	}
	if err := checkRequestMatches(s, p.TypedData); err != nil {
		return Strategy{}, nil, err
	}

	rows := make([]Row, 0, len(p.Leaves)-1)
	for i, l := range p.Leaves[1:] {
		r, err := FromWirePayload(*l.Row)
		if err != nil {
			return Strategy{}, nil, errors.Wrapf(err, "leaf %d", i+1)
		}
		rows = append(rows, r)
	}
	return s, rows, nil
}

// UserSignature returns the signature together with the request it covers.
func (p IPFSStrategyPayload) UserSignature() UserSignature {
	return UserSignature{Signature: p.Signature, TypedData: p.TypedData}
}

// Encode returns the JSON bytes that are stored and content-addressed.
func (p IPFSStrategyPayload) Encode() ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}
	return b, nil
}

// CID is the content address of the encoded payload.
func (p IPFSStrategyPayload) CID() (cid.Cid, error) {
	b, err := p.Encode()
	if err != nil {
		return cid.Undef, err
	}
	return cidutil.CIDv1RawSHA256(b)
}

func checkRequestMatches(s Strategy, td TypedData) error {
	nonce, err := td.Nonce()
	if err != nil {
		return err
	}
	if !nonce.Eq(&s.Nonce) {
		return newError(KindInvalidField, "message.nonce", "signed nonce %s, strategy nonce %s", nonce.Dec(), s.Nonce.Dec())
	}
	deadline, err := td.Deadline()
	if err != nil {
		return err
	}
	if !deadline.Eq(&s.Expiration) {
		return newError(KindInvalidField, "message.deadline", "signed deadline %s, strategy expiration %s", deadline.Dec(), s.Expiration.Dec())
	}
	return nil
}
