// Package snapshot retrieves the crawler's point-in-time data bundle.
// Retrieval is the one asynchronous boundary in the service; everything
// downstream is a pure recomputation over the returned Snapshot.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"hallkal/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrFetchFailed marks any snapshot retrieval failure, transport or
// non-success status alike. Callers retry only on explicit user action.
var ErrFetchFailed = errors.New("snapshot fetch failed")

const cacheKey = "snapshot:data"

// Client fetches the snapshot JSON over HTTP, with an optional Redis
// read-through cache in front of the origin.
type Client struct {
	url        string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for the snapshot resource URL.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UseRedisCache configures optional Redis caching of fetched snapshots.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Fetch retrieves and decodes the snapshot. A transport error, a
// non-2xx status or an undecodable body all wrap ErrFetchFailed so a
// partially populated snapshot can never escape.
func (c *Client) Fetch(ctx context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	if c.readCache(ctx, &snap) {
		return &snap, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrFetchFailed, err)
	}

	c.writeCache(ctx, snap)
	return &snap, nil
}

func (c *Client) readCache(ctx context.Context, out *model.Snapshot) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, snap model.Snapshot) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err()
}

// LoadFile reads a snapshot from a local JSON file, for offline runs and
// fixtures.
func LoadFile(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrFetchFailed, path, err)
	}
	return &snap, nil
}
