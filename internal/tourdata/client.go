package tourdata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"
)

// Client fetches the tour schedule feed over HTTP. Parsed results are
// cached in-process with a TTL so browsing the shows page does not hammer
// the feed host.
type Client struct {
	url    string
	http   *http.Client
	cache  *expirable.LRU[string, []Show]
	genres map[string]string
}

func NewClient(url string, genres map[string]string, timeout, ttl time.Duration) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		cache:  expirable.NewLRU[string, []Show](4, nil, ttl),
		genres: genres,
	}
}

// Shows returns the upcoming shows with genres applied, serving from the
// cache while the TTL holds.
func (c *Client) Shows(ctx context.Context) ([]Show, error) {
	if shows, ok := c.cache.Get(c.url); ok {
		return shows, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build tour data request: %w", err)
	}
	// The feed host rejects requests without a browser-ish agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tour data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tour data: unexpected status %d", resp.StatusCode)
	}

	shows, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	shows = WithGenres(shows, c.genres)

	c.cache.Add(c.url, shows)
	log.WithFields(log.Fields{
		"shows": len(shows),
		"url":   c.url,
	}).Debug("tour data refreshed")

	return shows, nil
}
