package storage

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"

	"github.com/simonbindefeld/merkleproof-service/internal/cidutil"
)

// ErrNotFound is returned by Get when no content is stored under a CID.
var ErrNotFound = errors.New("content not found")

// Store is a content-addressed blob store. Put returns the CIDv1 of the
// bytes it was given; Get returns the exact bytes stored under a CID.
type Store interface {
	Put(ctx context.Context, data []byte) (cid.Cid, error)
	Get(ctx context.Context, id cid.Cid) ([]byte, error)
}

// MemoryStore keeps content in a map keyed by CID.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores a copy of data and returns its CID. Storing the same bytes
// twice yields the same CID.
func (s *MemoryStore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	if err := ctx.Err(); err != nil {
		return cid.Undef, err
	}

	id, err := cidutil.CIDv1RawSHA256(data)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "failed to compute cid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id.KeyString()] = append([]byte(nil), data...)

	return id, nil
}

// Get returns a copy of the bytes stored under id.
func (s *MemoryStore) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !id.Defined() {
		return nil, errors.New("undefined cid")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[id.KeyString()]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "cid %s", id)
	}

	return append([]byte(nil), data...), nil
}

// Len reports how many distinct blobs are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
