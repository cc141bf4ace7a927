package eagle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/eagledup/internal/models"
)

// scriptClient returns the scripted errors one per call, then succeeds.
type scriptClient struct {
	errs  []error
	calls int
}

func (s *scriptClient) next() error {
	s.calls++
	if s.calls <= len(s.errs) {
		return s.errs[s.calls-1]
	}
	return nil
}

func (s *scriptClient) Ping(ctx context.Context) error { return s.next() }

func (s *scriptClient) FetchAllItems(ctx context.Context) ([]*models.LibraryItem, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return []*models.LibraryItem{{ID: "a", Name: "alpha"}}, nil
}

func (s *scriptClient) MoveToTrash(ctx context.Context, itemID string) error { return s.next() }

func (s *scriptClient) MergeTags(ctx context.Context, itemID string, tags []string) error {
	return s.next()
}

var _ ClientInterface = (*scriptClient)(nil)

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		JitterFraction: 0,
	}
}

func unavailableErr() error {
	return &StoreError{Kind: KindUnavailable, Status: 503, Message: "store down"}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(unavailableErr()))
	assert.True(t, isTransient(&StoreError{Kind: KindUnavailable, Message: "connection refused"}))
	assert.False(t, isTransient(&StoreError{Kind: KindNotFound, Status: 404}))
	assert.False(t, isTransient(&StoreError{Kind: KindPermission, Status: 403}))
	assert.False(t, isTransient(&StoreError{Kind: KindBadRequest, Status: 400}))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(context.DeadlineExceeded))
	assert.False(t, isTransient(errors.New("plain")))
	assert.False(t, isTransient(nil))
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	inner := &scriptClient{errs: []error{unavailableErr(), unavailableErr()}}
	rc := NewRetryClient(inner, fastRetryConfig())

	items, err := rc.FetchAllItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryExhaustsOnPersistentOutage(t *testing.T) {
	inner := &scriptClient{errs: []error{
		unavailableErr(), unavailableErr(), unavailableErr(), unavailableErr(), unavailableErr(),
	}}
	rc := NewRetryClient(inner, fastRetryConfig())

	err := rc.Ping(context.Background())
	require.Error(t, err)
	// MaxRetries of 3 means 4 attempts total.
	assert.Equal(t, 4, inner.calls)
	assert.True(t, IsUnavailable(err))
	assert.Contains(t, err.Error(), "after 3 retries")
}

func TestRetryDoesNotRetryFinalErrors(t *testing.T) {
	inner := &scriptClient{errs: []error{
		&StoreError{Kind: KindNotFound, Status: 404, Message: "gone"},
	}}
	rc := NewRetryClient(inner, fastRetryConfig())

	err := rc.MoveToTrash(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, IsNotFound(err))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	cfg := fastRetryConfig()
	// Cancellation must cut the wait short; the cap has to leave the
	// long backoff intact or the retries would simply outrun the cancel.
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	inner := &scriptClient{errs: []error{unavailableErr(), unavailableErr()}}
	rc := NewRetryClient(inner, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := rc.MergeTags(ctx, "x", []string{"a"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, inner.calls)
	assert.Contains(t, err.Error(), "retry cancelled")
}

func TestBackoffGrowthAndCap(t *testing.T) {
	rc := NewRetryClient(nil, &RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     400 * time.Millisecond,
		JitterFraction: 0,
	})

	assert.Equal(t, 100*time.Millisecond, rc.backoff(0))
	assert.Equal(t, 200*time.Millisecond, rc.backoff(1))
	assert.Equal(t, 400*time.Millisecond, rc.backoff(2))
	assert.Equal(t, 400*time.Millisecond, rc.backoff(3))
}

func TestBackoffJitterStaysInBand(t *testing.T) {
	rc := NewRetryClient(nil, &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		JitterFraction: 0.25,
	})

	for i := 0; i < 50; i++ {
		d := rc.backoff(0)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 0.25, cfg.JitterFraction)
}
