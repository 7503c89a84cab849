// Package scrape classifies unstructured HTML status pages.
package scrape

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/fetch"
)

// Fetcher is the transport used by Client.
type Fetcher interface {
	Get(ctx context.Context, url string) (fetch.Response, error)
}

type Client struct {
	fetcher Fetcher
}

func New(f Fetcher) *Client {
	return &Client{fetcher: f}
}

// Fetch downloads url and classifies its text. A page with no recognizable
// hint is not an error, it classifies as unknown.
func (c *Client) Fetch(ctx context.Context, url string, titlePriority bool) (domain.Classification, error) {
	if url == "" {
		return domain.Classification{}, &domain.TransportError{Err: fmt.Errorf("no HTML page configured")}
	}

	resp, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("scrape %s: %w", url, err)
	}

	cl := domain.ClassifyText(string(resp.Body), titlePriority)
	cl.Details = fmt.Sprintf("%s (scraped from %s)", cl.Details, url)
	return cl, nil
}
