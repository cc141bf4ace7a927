package eagle

import (
	"context"

	"github.com/kilupskalvis/eagledup/internal/models"
)

// ClientInterface defines the contract for library store operations.
// This interface enables mocking for testing the core package.
type ClientInterface interface {
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// FetchAllItems pulls the complete item inventory. Pagination is
	// internal; the returned snapshot is complete and sorted by id.
	FetchAllItems(ctx context.Context) ([]*models.LibraryItem, error)

	// MoveToTrash requests reversible removal of an item. Fails with a
	// not_found or permission StoreError; never deletes permanently.
	MoveToTrash(ctx context.Context, itemID string) error

	// MergeTags additively applies tags to an item. The full desired
	// tag set is sent; the store replaces the item's tags with it.
	MergeTags(ctx context.Context, itemID string, tags []string) error
}

// Verify that *HTTPClient implements ClientInterface at compile time
var _ ClientInterface = (*HTTPClient)(nil)
