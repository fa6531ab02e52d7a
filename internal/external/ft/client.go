package ft

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/pkg/config"
	"github.com/wonny/watchlist/pkg/httputil"
	"github.com/wonny/watchlist/pkg/logger"
)

// Headline is one search hit
type Headline struct {
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"` // RFC3339 as returned by FT
	Source      string `json:"source"`
}

// Client searches the FT content API
// ⭐ SSOT: FT 뉴스 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	searchURL  string
}

// NewClient creates a new FT client
func NewClient(cfg config.NewsConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("ft"),
		apiKey:     cfg.FTAPIKey,
		searchURL:  cfg.FTSearchURL,
	}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type searchRequest struct {
	QueryString   string        `json:"queryString"`
	ResultContext resultContext `json:"resultContext"`
}

type resultContext struct {
	MaxResults int `json:"maxResults"`
}

type searchResponse struct {
	Results []struct {
		Title struct {
			Title string `json:"title"`
		} `json:"title"`
		Lifecycle struct {
			FirstPublishedDateTime string `json:"firstPublishedDateTime"`
		} `json:"lifecycle"`
		Location struct {
			URI string `json:"uri"`
		} `json:"location"`
	} `json:"results"`
}

// Search returns up to count headlines matching query.
// Without an API key it returns an empty list.
func (c *Client) Search(ctx context.Context, query string, count int) ([]Headline, error) {
	if !c.Enabled() {
		return []Headline{}, nil
	}

	headers := http.Header{"X-Api-Key": {c.apiKey}}
	body := searchRequest{QueryString: query, ResultContext: resultContext{MaxResults: count}}

	resp, err := c.httpClient.PostJSON(ctx, c.searchURL, body, headers)
	if err != nil {
		return nil, &contracts.UpstreamError{Op: "ft_search", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &contracts.UpstreamError{Op: "ft_search", Status: resp.StatusCode, Err: fmt.Errorf("unexpected status code")}
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &contracts.UpstreamError{Op: "ft_search", Err: fmt.Errorf("decode response: %w", err)}
	}

	out := make([]Headline, 0, len(data.Results))
	for _, r := range data.Results {
		out = append(out, Headline{
			Title:       r.Title.Title,
			PublishedAt: r.Lifecycle.FirstPublishedDateTime,
			Source:      r.Location.URI,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"query": query,
		"count": len(out),
	}).Debug("FT search complete")

	return out, nil
}
