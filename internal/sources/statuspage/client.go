// Package statuspage reads status-page style JSON endpoints
// (the /api/v2/status.json and /api/v2/summary.json family).
package statuspage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/fetch"
)

const (
	statusFile  = "status.json"
	summaryFile = "summary.json"

	defaultDetails = "status reported by status page"
)

// Fetcher is the transport used by Client.
type Fetcher interface {
	Get(ctx context.Context, url string) (fetch.Response, error)
}

// Client resolves a status from one of several candidate endpoints.
type Client struct {
	fetcher Fetcher
}

func New(f Fetcher) *Client {
	return &Client{fetcher: f}
}

// payload is the subset of the document we read. Everything else is ignored.
type payload struct {
	Status *struct {
		Indicator   string `json:"indicator"`
		Description string `json:"description"`
	} `json:"status"`
}

// Candidates lists the URLs to try in order: primary, the explicit
// candidates, then the summary.json sibling of a status.json primary
// unless it is already listed. Blank entries are skipped.
func Candidates(primary string, extra []string) []string {
	out := make([]string, 0, len(extra)+2)
	if p := strings.TrimSpace(primary); p != "" {
		out = append(out, p)
	}
	for _, c := range extra {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}

	p := strings.TrimSpace(primary)
	if strings.HasSuffix(p, statusFile) {
		sibling := strings.TrimSuffix(p, statusFile) + summaryFile
		if !slices.Contains(out, sibling) {
			out = append(out, sibling)
		}
	}
	return out
}

// Fetch tries each candidate until one answers with usable JSON.
// When all fail the error is a *domain.AttemptsError.
func (c *Client) Fetch(ctx context.Context, primary string, candidates []string) (domain.Classification, error) {
	if strings.TrimSpace(primary) == "" {
		return domain.Classification{}, domain.ErrNoEndpoint
	}

	var attempts []domain.Attempt
	for _, u := range Candidates(primary, candidates) {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, domain.Attempt{URL: u, Err: &domain.TransportError{URL: u, Err: err}})
			break
		}

		cl, err := c.fetchOne(ctx, u)
		if err != nil {
			attempts = append(attempts, domain.Attempt{URL: u, Err: err})
			continue
		}
		cl.Details = fmt.Sprintf("%s (API %s)", cl.Details, u)
		return cl, nil
	}

	return domain.Classification{}, &domain.AttemptsError{Attempts: attempts}
}

func (c *Client) fetchOne(ctx context.Context, u string) (domain.Classification, error) {
	resp, err := c.fetcher.Get(ctx, u)
	if err != nil {
		return domain.Classification{}, err
	}

	if !isJSON(resp.ContentType) {
		ct := resp.ContentType
		if ct == "" {
			ct = "unknown"
		}
		return domain.Classification{}, &domain.FormatError{
			URL:    u,
			Reason: "unexpected response (Content-Type: " + ct + ")",
		}
	}

	if !json.Valid(resp.Body) {
		return domain.Classification{}, &domain.FormatError{URL: u, Reason: "invalid JSON body"}
	}

	// Any valid document counts as an answer; other shapes map to unknown.
	var p payload
	_ = json.Unmarshal(resp.Body, &p)

	var indicator, description string
	if p.Status != nil {
		indicator = p.Status.Indicator
		description = strings.TrimSpace(p.Status.Description)
	}
	if description == "" {
		description = defaultDetails
	}

	return domain.Classification{
		Status:  domain.MapIndicator(indicator),
		Details: description,
	}, nil
}

// isJSON accepts application/json and any +json structured suffix.
// Malformed parameters do not matter, only the media type does.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
