package strategy

import (
	"encoding/json"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"

	"github.com/simonbindefeld/merkleproof-service/internal/cidutil"
)

// JSONPayload is the document stored for a signed strategy:
//
//	{"data": {"leaves": [...], "signature": {...}}}
//
// Leaves keep the exact order the root was computed over.
type JSONPayload struct {
	Data PayloadData `json:"data"`
}

// PayloadData holds the wire leaves and the strategist's signature.
type PayloadData struct {
	Leaves    []RowWire `json:"leaves"`
	Signature Signature `json:"signature"`
}

// NewJSONPayload encodes rows for storage. Every row must already carry its
// leaf hash.
func NewJSONPayload(rows []Row, sig Signature) (JSONPayload, error) {
	leaves := make([]RowWire, 0, len(rows))
	for i, r := range rows {
		if !r.HasLeaf() {
			return JSONPayload{}, errors.Wrapf(missingField("leaf", r.Type), "leaf %d", i)
		}
		w, err := ToWirePayload(r)
		if err != nil {
			return JSONPayload{}, errors.Wrapf(err, "leaf %d", i)
		}
		leaves = append(leaves, w)
	}
	if err := sig.Validate(); err != nil {
		return JSONPayload{}, err
	}
	return JSONPayload{Data: PayloadData{Leaves: leaves, Signature: sig}}, nil
}

// DecodeJSONPayload parses a stored payload. Leaves are left in wire form;
// call Rows to decode them.
func DecodeJSONPayload(data []byte) (JSONPayload, error) {
	var p JSONPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return JSONPayload{}, wrapError(KindDecode, "data", err, "invalid payload")
	}
	return p, nil
}

// Encode returns the JSON bytes that are stored and content-addressed.
func (p JSONPayload) Encode() ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}
	return b, nil
}

// Rows decodes every leaf into its native form.
func (p JSONPayload) Rows() ([]Row, error) {
	rows := make([]Row, 0, len(p.Data.Leaves))
	for i, w := range p.Data.Leaves {
		r, err := FromWirePayload(w)
		if err != nil {
			return nil, errors.Wrapf(err, "leaf %d", i)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// CID is the content address of the encoded payload.
func (p JSONPayload) CID() (cid.Cid, error) {
	b, err := p.Encode()
	if err != nil {
		return cid.Undef, err
	}
	return cidutil.CIDv1RawSHA256(b)
}
