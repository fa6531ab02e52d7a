// Package events scrapes upcoming corporate actions (dividends, results, ex-dates).
package events

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/pkg/httputil"
	"github.com/wonny/watchlist/pkg/logger"
)

// Action is one corporate action row
type Action struct {
	Type    string    `json:"type"`
	Date    time.Time `json:"date"`
	Details string    `json:"details"`
}

// dateLayouts seen on exchange corporate-action pages
var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-2006",
	"02 Jan 2006",
	"02/01/2006",
}

// Client fetches the corporate-actions HTML page for a symbol
// ⭐ SSOT: 기업 이벤트 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	location   *time.Location
}

// NewClient creates a client; an empty baseURL disables lookups
func NewClient(baseURL string, httpClient *httputil.Client, loc *time.Location, log *logger.Logger) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("events"),
		baseURL:    baseURL,
		location:   loc,
	}
}

// Actions returns corporate actions for symbol
func (c *Client) Actions(ctx context.Context, symbol string) ([]Action, error) {
	if c.baseURL == "" {
		return []Action{}, nil
	}

	fullURL := fmt.Sprintf("%s?%s", c.baseURL, url.Values{"symbol": {symbol}}.Encode())
	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, &contracts.UpstreamError{Op: "corporate_actions", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &contracts.UpstreamError{Op: "corporate_actions", Status: resp.StatusCode, Err: fmt.Errorf("unexpected status code")}
	}

	actions, err := ParseActions(resp.Body, c.location)
	if err != nil {
		return nil, &contracts.UpstreamError{Op: "corporate_actions", Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(actions),
	}).Debug("Fetched corporate actions")

	return actions, nil
}

// ParseActions reads the first table: type | date | details.
// Header rows (th only) and rows with fewer than three cells are skipped.
func ParseActions(r io.Reader, loc *time.Location) ([]Action, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	actions := []Action{}
	doc.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		a := Action{
			Type:    clean(cells.Eq(0).Text()),
			Details: clean(cells.Eq(2).Text()),
		}
		if a.Type == "" {
			return
		}
		a.Date = parseDate(clean(cells.Eq(1).Text()), loc)

		actions = append(actions, a)
	})

	return actions, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseDate returns the zero time for blank or unrecognized dates
func parseDate(s string, loc *time.Location) time.Time {
	if s == "" || s == "-" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
