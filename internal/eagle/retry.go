package eagle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/kilupskalvis/eagledup/internal/logging"
	"github.com/kilupskalvis/eagledup/internal/models"
)

// RetryConfig configures retry behavior for transient store errors.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64 // 0.0 to 1.0
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		JitterFraction: 0.25,
	}
}

// RetryClient wraps a ClientInterface with automatic retry on transient
// errors. Only unavailable-class failures are retried; not_found and
// permission errors are final and surface immediately.
type RetryClient struct {
	inner  ClientInterface
	config *RetryConfig
}

// NewRetryClient creates a RetryClient that wraps the given client.
func NewRetryClient(inner ClientInterface, cfg *RetryConfig) *RetryClient {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	return &RetryClient{inner: inner, config: cfg}
}

// isTransient returns true for errors that are worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind == KindUnavailable
	}
	return false
}

// backoff computes the delay for the given attempt with jitter.
func (rc *RetryClient) backoff(attempt int) time.Duration {
	base := float64(rc.config.InitialBackoff) * math.Pow(2, float64(attempt))
	if base > float64(rc.config.MaxBackoff) {
		base = float64(rc.config.MaxBackoff)
	}
	jitter := base * rc.config.JitterFraction * (rand.Float64()*2 - 1) // +/- jitter
	d := time.Duration(base + jitter)
	if d < 0 {
		d = 0
	}
	return d
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retry executes fn with retry logic. Only retries transient errors.
func (rc *RetryClient) retry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= rc.config.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		if attempt < rc.config.MaxRetries {
			d := rc.backoff(attempt)
			logging.Log.WithField("operation", operation).
				Warnf("store unavailable, retrying in %s: %v", d, lastErr)
			if err := sleep(ctx, d); err != nil {
				return fmt.Errorf("%s: %w (retry cancelled)", operation, lastErr)
			}
		}
	}
	return fmt.Errorf("%s: %w (after %d retries)", operation, lastErr, rc.config.MaxRetries)
}

// --- Delegate all ClientInterface methods through retry logic ---

func (rc *RetryClient) Ping(ctx context.Context) error {
	return rc.retry(ctx, "ping", func() error {
		return rc.inner.Ping(ctx)
	})
}

func (rc *RetryClient) FetchAllItems(ctx context.Context) (items []*models.LibraryItem, err error) {
	err = rc.retry(ctx, "fetch items", func() error {
		items, err = rc.inner.FetchAllItems(ctx)
		return err
	})
	return
}

func (rc *RetryClient) MoveToTrash(ctx context.Context, itemID string) error {
	return rc.retry(ctx, "move to trash", func() error {
		return rc.inner.MoveToTrash(ctx, itemID)
	})
}

func (rc *RetryClient) MergeTags(ctx context.Context, itemID string, tags []string) error {
	return rc.retry(ctx, "merge tags", func() error {
		return rc.inner.MergeTags(ctx, itemID, tags)
	})
}

// Verify RetryClient implements ClientInterface
var _ ClientInterface = (*RetryClient)(nil)
