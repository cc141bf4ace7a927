// Package eagle provides a client for the Eagle-style library HTTP API.
// It is the only component that talks to the external store: inventory
// reads during the scan phase, trash and tag mutations during execution.
package eagle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/kilupskalvis/eagledup/internal/logging"
	"github.com/kilupskalvis/eagledup/internal/models"
)

const fetchPageSize = 200

// HTTPClient implements ClientInterface over the store's local HTTP API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// ClientOptions tune the HTTP client. Zero values fall back to defaults.
type ClientOptions struct {
	Timeout   time.Duration // per-call timeout
	RateLimit float64       // store requests per second, 0 disables limiting
}

// NewHTTPClient creates a store client for the given base URL and API token.
func NewHTTPClient(baseURL, token string, opts ClientOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
		limiter:    limiter,
		timeout:    opts.Timeout,
	}
}

func (c *HTTPClient) apiURL(path string) string {
	return fmt.Sprintf("%s/api%s?token=%s", c.baseURL, path, c.token)
}

// apiResponse is the envelope every endpoint wraps its payload in.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, reqBody interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &StoreError{Kind: KindUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if envelope.Status != "success" {
		return nil, &StoreError{
			Kind:    KindBadRequest,
			Status:  resp.StatusCode,
			Message: envelope.Message,
		}
	}

	return envelope.Data, nil
}

func decodeError(resp *http.Response) error {
	kind := kindFromStatus(resp.StatusCode)

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Message == "" {
		return &StoreError{
			Kind:    kind,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	return &StoreError{Kind: kind, Status: resp.StatusCode, Message: envelope.Message}
}

// Ping verifies the store is reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	if _, err := c.doJSON(ctx, "GET", c.apiURL("/application/info"), nil); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

// wireItem is the store's item representation. Fields absent from the
// payload stay at their zero value; validation happens in toModel.
type wireItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ext         string   `json:"ext"`
	Fingerprint string   `json:"fingerprint"`
	Tags        []string `json:"tags"`
	Folders     []string `json:"folders"`
	Size        int64    `json:"size"`
	Duration    float64  `json:"duration"`
	Bitrate     int64    `json:"bitrate"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	BTime       int64    `json:"btime"`            // creation, epoch millis
	MTime       int64    `json:"modificationTime"` // epoch millis
}

func (w *wireItem) toModel() (*models.LibraryItem, error) {
	if w.ID == "" {
		return nil, fmt.Errorf("item without id (name %q)", w.Name)
	}
	item := &models.LibraryItem{
		ID:          w.ID,
		Name:        w.Name,
		Ext:         w.Ext,
		Fingerprint: w.Fingerprint,
		Tags:        w.Tags,
		Folders:     w.Folders,
		Size:        w.Size,
		Duration:    w.Duration,
		Bitrate:     w.Bitrate,
		Width:       w.Width,
		Height:      w.Height,
	}
	if w.BTime > 0 {
		item.CreatedAt = time.UnixMilli(w.BTime).UTC()
	}
	if w.MTime > 0 {
		item.ModifiedAt = time.UnixMilli(w.MTime).UTC()
	}
	return item, nil
}

// FetchAllItems pulls the full inventory with offset pagination and
// returns it sorted by id so downstream processing is deterministic.
func (c *HTTPClient) FetchAllItems(ctx context.Context) ([]*models.LibraryItem, error) {
	var items []*models.LibraryItem
	offset := 0

	for {
		url := fmt.Sprintf("%s&limit=%d&offset=%d", c.apiURL("/item/list"), fetchPageSize, offset)
		data, err := c.doJSON(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("list items (offset %d): %w", offset, err)
		}

		var page []*wireItem
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("decode item page: %w", err)
		}

		for _, w := range page {
			item, err := w.toModel()
			if err != nil {
				// Malformed entries are dropped rather than aborting
				// the inventory pull.
				logging.Log.WithField("name", w.Name).Warnf("skipping malformed item: %v", err)
				continue
			}
			items = append(items, item)
		}

		if len(page) < fetchPageSize {
			break
		}
		offset += len(page)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// MoveToTrash requests reversible removal of a single item.
func (c *HTTPClient) MoveToTrash(ctx context.Context, itemID string) error {
	req := map[string]interface{}{"itemIds": []string{itemID}}
	if _, err := c.doJSON(ctx, "POST", c.apiURL("/item/moveToTrash"), req); err != nil {
		return fmt.Errorf("move to trash %s: %w", itemID, err)
	}
	return nil
}

// MergeTags replaces an item's tag set with the given tags. Callers
// pass the union of old and new tags, so the update is additive.
func (c *HTTPClient) MergeTags(ctx context.Context, itemID string, tags []string) error {
	req := map[string]interface{}{"id": itemID, "tags": tags}
	if _, err := c.doJSON(ctx, "POST", c.apiURL("/item/update"), req); err != nil {
		return fmt.Errorf("merge tags %s: %w", itemID, err)
	}
	return nil
}
