package storage

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/simonbindefeld/merkleproof-service/internal/logger"
)

// RetryConfig configures the retry behavior
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

// DefaultRetryConfig provides defaults suited to a remote pinning service
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  30 * time.Second,
	}
}

// RetryingStore retries failed calls on another Store with exponential
// backoff. ErrNotFound and context errors are returned immediately.
type RetryingStore struct {
	next   Store
	config *RetryConfig
	logger *zap.Logger
}

// NewRetryingStore wraps next. A nil config uses DefaultRetryConfig.
func NewRetryingStore(next Store, config *RetryConfig) *RetryingStore {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryingStore{
		next:   next,
		config: config,
		logger: logger.Log,
	}
}

// Put implements Store.
func (s *RetryingStore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	var id cid.Cid
	err := s.retry(ctx, "put", func() error {
		var err error
		id, err = s.next.Put(ctx, data)
		return err
	})
	if err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// Get implements Store.
func (s *RetryingStore) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	var data []byte
	err := s.retry(ctx, "get", func() error {
		var err error
		data, err = s.next.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RetryingStore) retry(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		s.logger.Warn("Store operation failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = s.config.InitialInterval
	expBackoff.MaxInterval = s.config.MaxInterval
	expBackoff.Multiplier = s.config.Multiplier
	expBackoff.MaxElapsedTime = s.config.MaxElapsedTime

	b := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(s.config.MaxRetries)), ctx)
	return backoff.Retry(operation, b)
}
