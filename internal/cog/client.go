// Package cog looks up dataset metadata for Cloud-Optimized GeoTIFF sources
// through the tiling service.
package cog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"terrain-desktop/internal/common"
	"terrain-desktop/internal/ratelimit"
)

// ErrNoBounds is returned when the info response carries no usable extent
var ErrNoBounds = errors.New("cog info has no bounds")

// Cache stores looked-up extents by dataset URL
type Cache interface {
	Get(url string) (common.Bounds, bool)
	Set(url string, b common.Bounds) error
}

// Limiter keeps requests away from a rate-limited tiling service
type Limiter interface {
	IsRateLimited(service string) bool
	CheckStatus(service string, statusCode int) bool
}

// Client queries {endpoint}/cog/info.geojson
type Client struct {
	endpoint string
	http     *http.Client
	cache    Cache
	limiter  Limiter
}

// NewClient creates a client. cache may be nil.
func NewClient(endpoint string, cache Cache, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
	}
}

// SetLimiter installs a rate limit gate for info requests
func (c *Client) SetLimiter(l Limiter) {
	c.limiter = l
}

// InfoURL returns the info request URL for a dataset
func (c *Client) InfoURL(src string) string {
	return c.endpoint + "/cog/info.geojson?url=" + url.QueryEscape(src)
}

// Bounds returns the WGS84 extent of the dataset at src
func (c *Client) Bounds(ctx context.Context, src string) (common.Bounds, error) {
	if c.cache != nil {
		if b, ok := c.cache.Get(src); ok {
			return b, nil
		}
	}

	infoURL := c.InfoURL(src)
	service := ratelimit.ServiceKey(infoURL)
	if c.limiter != nil && c.limiter.IsRateLimited(service) {
		return common.Bounds{}, fmt.Errorf("cog info skipped: %s is rate limited", service)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return common.Bounds{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return common.Bounds{}, fmt.Errorf("failed to fetch cog info: %w", err)
	}
	defer resp.Body.Close()

	if c.limiter != nil {
		c.limiter.CheckStatus(service, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return common.Bounds{}, fmt.Errorf("cog info returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.Bounds{}, fmt.Errorf("failed to read cog info: %w", err)
	}

	b, err := ParseInfo(data)
	if err != nil {
		return common.Bounds{}, err
	}

	if c.cache != nil {
		// Cache write failures only cost a refetch
		_ = c.cache.Set(src, b)
	}
	return b, nil
}

// ParseInfo extracts the extent from an info.geojson feature. The feature
// bbox wins, then the footprint geometry, then properties.bounds.
func ParseInfo(data []byte) (common.Bounds, error) {
	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return common.Bounds{}, fmt.Errorf("failed to parse cog info: %w", err)
	}

	if f.BBox.Valid() {
		if b := common.BoundsFromOrb(f.BBox.Bound()); b.Valid() {
			return b, nil
		}
	}

	if f.Geometry != nil {
		if b := common.BoundsFromOrb(f.Geometry.Bound()); b.Valid() {
			return b, nil
		}
	}

	if raw, ok := f.Properties["bounds"].([]interface{}); ok && len(raw) == 4 {
		var v [4]float64
		for i, r := range raw {
			n, ok := r.(float64)
			if !ok {
				return common.Bounds{}, ErrNoBounds
			}
			v[i] = n
		}
		b := common.Bounds{West: v[0], South: v[1], East: v[2], North: v[3]}
		if b.Valid() {
			return b, nil
		}
	}

	return common.Bounds{}, ErrNoBounds
}
