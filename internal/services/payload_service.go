package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/simonbindefeld/merkleproof-service/internal/cidutil"
	"github.com/simonbindefeld/merkleproof-service/internal/logger"
	"github.com/simonbindefeld/merkleproof-service/internal/storage"
	"github.com/simonbindefeld/merkleproof-service/pkg/strategy"
)

// PayloadService signs strategy trees and stores the resulting payloads
type PayloadService struct {
	logger *zap.Logger
	signer strategy.Signer
	store  storage.Store
}

// PublishParams describes a strategy tree that is ready to be signed.
// Rows must carry their leaf hashes and be in tree order. Root is the merkle
// root computed over the Strategy leaf followed by Rows, which is the leaf
// sequence the stored payload carries.
type PublishParams struct {
	Strategy          strategy.Strategy
	Rows              []strategy.Row
	Root              common.Hash
	ChainID           uint64
	VerifyingContract common.Address
}

// LoadedPayload is a stored payload decoded back into native leaves
type LoadedPayload struct {
	CID       cid.Cid
	Strategy  strategy.Strategy
	Rows      []strategy.Row
	Signature strategy.UserSignature
	// Signer is the account recovered from the signature.
	Signer common.Address
}

// NewPayloadService creates a new payload service
func NewPayloadService(signer strategy.Signer, store storage.Store) *PayloadService {
	return &PayloadService{
		logger: logger.Log,
		signer: signer,
		store:  store,
	}
}

// Publish validates the tree, signs its root and stores the payload.
// It returns the payload's CID and the signature together with the request
// that was signed.
func (s *PayloadService) Publish(ctx context.Context, params PublishParams) (cid.Cid, strategy.UserSignature, error) {
	log := s.logger.With(zap.String("publish_id", uuid.New().String()))

	if params.ChainID == 0 {
		return cid.Undef, strategy.UserSignature{}, errors.New("chain id is required")
	}

	leaves := make([]strategy.Leaf, 0, len(params.Rows)+1)
	leaves = append(leaves, params.Strategy)
	for _, r := range params.Rows {
		leaves = append(leaves, r)
	}
	if err := strategy.ValidateSequence(leaves); err != nil {
		return cid.Undef, strategy.UserSignature{}, errors.Wrap(err, "invalid strategy tree")
	}

	td := params.Strategy.TypedData(params.ChainID, params.VerifyingContract, params.Root)
	userSig, err := strategy.SignStrategy(ctx, s.signer, td)
	if err != nil {
		log.Error("Failed to sign strategy",
			zap.String("root", params.Root.Hex()),
			zap.Error(err))
		return cid.Undef, strategy.UserSignature{}, err
	}

	payload, err := strategy.NewIPFSStrategyPayload(params.Strategy, params.Rows, userSig)
	if err != nil {
		return cid.Undef, strategy.UserSignature{}, errors.Wrap(err, "failed to build payload")
	}
	raw, err := payload.Encode()
	if err != nil {
		return cid.Undef, strategy.UserSignature{}, err
	}

	id, err := s.store.Put(ctx, raw)
	if err != nil {
		return cid.Undef, strategy.UserSignature{}, errors.Wrap(err, "failed to store payload")
	}

	log.Info("Published strategy payload",
		zap.String("cid", id.String()),
		zap.String("root", params.Root.Hex()),
		zap.String("vault", params.Strategy.Vault.Hex()),
		zap.String("nonce", params.Strategy.Nonce.Dec()),
		zap.Int("leaves", len(params.Rows)))

	return id, userSig, nil
}

// Load fetches a payload, checks that its bytes match the CID, decodes its
// leaves and recovers the account that signed it.
func (s *PayloadService) Load(ctx context.Context, id cid.Cid) (*LoadedPayload, error) {
	raw, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch payload %s", id)
	}
	if !cidutil.Matches(id, raw) {
		return nil, errors.Errorf("payload content does not match cid %s", id)
	}

	payload, err := strategy.DecodeIPFSStrategyPayload(raw)
	if err != nil {
		return nil, err
	}
	cfg, rows, err := payload.Decode()
	if err != nil {
		return nil, err
	}
	userSig := payload.UserSignature()
	signer, err := userSig.Signer()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Loaded strategy payload",
		zap.String("cid", id.String()),
		zap.String("signer", signer.Hex()),
		zap.Int("leaves", len(rows)+1))

	return &LoadedPayload{
		CID:       id,
		Strategy:  cfg,
		Rows:      rows,
		Signature: userSig,
		Signer:    signer,
	}, nil
}
