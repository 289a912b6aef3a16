package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/epeers/holdings-dashboard/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Worksheets are read through the Google Sheets visualization endpoint, which
// returns a worksheet as CSV for any spreadsheet shared by link.
// https://developers.google.com/chart/interactive/docs/spreadsheets
const DefaultBaseURL = "https://docs.google.com/spreadsheets/d"

// Client reads worksheets from one spreadsheet.
type Client struct {
	sheetID    string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new spreadsheet client. requestsPerSecond <= 0 disables rate limiting.
func NewClient(sheetID string, requestsPerSecond float64) *Client {
	return NewClientWithBaseURL(sheetID, DefaultBaseURL, requestsPerSecond)
}

// NewClientWithBaseURL creates a new spreadsheet client with a custom base URL (for testing)
func NewClientWithBaseURL(sheetID, baseURL string, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		sheetID: sheetID,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 3),
	}
}

// ReadTable fetches a worksheet by name and returns its rows keyed by header.
func (c *Client) ReadTable(ctx context.Context, name string) ([]models.Record, error) {
	params := url.Values{}
	params.Set("tqx", "out:csv")
	params.Set("sheet", name)

	resp, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	records, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse worksheet %q: %w", name, err)
	}
	log.Debugf("read %d rows from worksheet %q", len(records), name)
	return records, nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s/gviz/tq?%s", c.baseURL, url.PathEscape(c.sheetID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("spreadsheet returned status %d", resp.StatusCode)
	}

	// A sheet that isn't shared redirects to a login page that answers 200 with HTML.
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/html") {
		resp.Body.Close()
		return nil, fmt.Errorf("spreadsheet returned HTML instead of CSV (is the sheet shared?)")
	}

	return resp, nil
}
