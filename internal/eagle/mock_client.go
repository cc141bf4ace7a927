package eagle

import (
	"context"
	"sort"
	"sync"

	"github.com/kilupskalvis/eagledup/internal/models"
)

// MockClient is an in-memory implementation of ClientInterface for
// testing. Safe for concurrent use; the executor calls it from
// per-group goroutines.
type MockClient struct {
	mu sync.Mutex

	// Items stores library items by id.
	Items map[string]*models.LibraryItem
	// Err can be set to make every method return an error.
	Err error
	// FailTrash maps item ids to errors returned from MoveToTrash.
	FailTrash map[string]error
	// FailMerge maps item ids to errors returned from MergeTags.
	FailMerge map[string]error
	// Trashed records ids passed to MoveToTrash, in call order.
	Trashed []string
	// MergedTags records the last tag set applied per item id.
	MergedTags map[string][]string
	// FetchCalls counts FetchAllItems invocations.
	FetchCalls int
}

// NewMockClient creates a new MockClient for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		Items:      make(map[string]*models.LibraryItem),
		FailTrash:  make(map[string]error),
		FailMerge:  make(map[string]error),
		MergedTags: make(map[string][]string),
	}
}

// AddItem adds an item to the mock store.
func (m *MockClient) AddItem(item *models.LibraryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items[item.ID] = item
}

// Ping returns the configured error, if any.
func (m *MockClient) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

// FetchAllItems returns all items sorted by id.
func (m *MockClient) FetchAllItems(ctx context.Context) ([]*models.LibraryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	items := make([]*models.LibraryItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// MoveToTrash removes an item from the mock store.
func (m *MockClient) MoveToTrash(ctx context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err, ok := m.FailTrash[itemID]; ok {
		return err
	}
	if _, ok := m.Items[itemID]; !ok {
		return &StoreError{Kind: KindNotFound, Status: 404, Message: "item not found: " + itemID}
	}
	delete(m.Items, itemID)
	m.Trashed = append(m.Trashed, itemID)
	return nil
}

// MergeTags records the applied tag set for an item.
func (m *MockClient) MergeTags(ctx context.Context, itemID string, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err, ok := m.FailMerge[itemID]; ok {
		return err
	}
	item, ok := m.Items[itemID]
	if !ok {
		return &StoreError{Kind: KindNotFound, Status: 404, Message: "item not found: " + itemID}
	}
	item.Tags = append([]string(nil), tags...)
	m.MergedTags[itemID] = append([]string(nil), tags...)
	return nil
}

// Verify MockClient implements ClientInterface
var _ ClientInterface = (*MockClient)(nil)
