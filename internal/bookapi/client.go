// Implements the collection store API client with rate limiting.

// Package bookapi is the HTTP client for the remote collection store that
// holds the four base collections (stores, books, authors, inventory) and the
// user credential records.
package bookapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bookstand/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds any single request to the collection store.
	DefaultTimeout = 30 * time.Second
	// requestsPerSecond is the sustained request rate against the store.
	requestsPerSecond = 20
	// burst is how many requests may fire back to back, sized so the four
	// initial collection fetches never wait on each other.
	burst = 8
)

// Client is a rate-limited collection store API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new collection store client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(requestsPerSecond, burst),
	}
}

// Error is a non-2xx response from the collection store.
type Error struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("collection store returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("collection store returned status %d: %s", e.StatusCode, e.Body)
}

// do performs an HTTP request with rate limiting.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// get performs a GET request and decodes the JSON response into out.
func get[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return out, nil
}

// Stores lists all stores.
func (c *Client) Stores(ctx context.Context) ([]models.Store, error) {
	return get[models.Store](ctx, c, "/stores")
}

// Books lists all books.
func (c *Client) Books(ctx context.Context) ([]models.Book, error) {
	return get[models.Book](ctx, c, "/books")
}

// Authors lists all authors.
func (c *Client) Authors(ctx context.Context) ([]models.Author, error) {
	return get[models.Author](ctx, c, "/authors")
}

// Inventory lists all inventory items.
func (c *Client) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	return get[models.InventoryItem](ctx, c, "/inventory")
}

// FindUsers returns the user records matching the given credential pair. The
// credential check is performed server side by exact field match.
func (c *Client) FindUsers(ctx context.Context, email, password string) ([]models.User, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("password", password)
	return get[models.User](ctx, c, "/users?"+q.Encode())
}

// CreateInventory creates an inventory item with the full item payload. The
// response body is not consumed.
func (c *Client) CreateInventory(ctx context.Context, item models.InventoryItem) error {
	_, err := c.do(ctx, http.MethodPost, "/inventory", item)
	return err
}

// UpdateInventoryPrice applies a partial update with the new price.
func (c *Client) UpdateInventoryPrice(ctx context.Context, invID models.ID, price float64) error {
	body := map[string]float64{"price": price}
	_, err := c.do(ctx, http.MethodPatch, "/inventory/"+url.PathEscape(invID.String()), body)
	return err
}

// DeleteInventory removes an inventory item by id.
func (c *Client) DeleteInventory(ctx context.Context, invID models.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/inventory/"+url.PathEscape(invID.String()), nil)
	return err
}
