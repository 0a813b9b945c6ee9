// SPDX-License-Identifier: Unlicense OR MIT

// Package ipgeo implements a location provider that approximates the
// device position from its public IP address. It stands in for the
// platform location cache on desktop systems.
package ipgeo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"gioui.org/example/location/location"
)

// DefaultURL is the ip-api.com JSON endpoint, documented at
// https://ip-api.com/docs/api:json.
const DefaultURL = "http://ip-api.com/json/"

// response is the subset of the ip-api.com JSON document the provider
// reads.
type response struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Query   string  `json:"query"`
}

// Client looks up the position of the host's public IP address. The
// first successful lookup is cached and reported by later calls.
type Client struct {
	httpClient *http.Client
	url        string

	mu   sync.Mutex
	last *location.Fix
	now  func() time.Time
}

// NewClient returns a Client for the lookup endpoint url. An empty url
// selects DefaultURL; a non-positive timeout disables the client timeout.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		httpClient: &http.Client{},
		url:        url,
		now:        time.Now,
	}
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// LastKnown returns the cached fix, performing the lookup if there is
// none yet. A lookup that the service answers without a position
// reports location.ErrNoLocation.
func (c *Client) LastKnown(ctx context.Context) (location.Fix, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil {
		return *c.last, nil
	}
	fix, err := c.lookup(ctx)
	if err != nil {
		return location.Fix{}, err
	}
	c.last = &fix
	return fix, nil
}

func (c *Client) lookup(ctx context.Context) (location.Fix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return location.Fix{}, fmt.Errorf("ipgeo: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return location.Fix{}, fmt.Errorf("ipgeo: failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return location.Fix{}, fmt.Errorf("ipgeo: fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return location.Fix{}, fmt.Errorf("ipgeo: failed to decode response: %w", err)
	}
	if r.Status != "success" {
		// Private and reserved ranges have no position.
		return location.Fix{}, location.ErrNoLocation
	}
	coord := location.Coordinate{Latitude: r.Lat, Longitude: r.Lon}
	if !coord.Valid() {
		return location.Fix{}, fmt.Errorf("ipgeo: coordinate out of range: %v", coord)
	}
	return location.Fix{Coordinate: coord, Time: c.now()}, nil
}
