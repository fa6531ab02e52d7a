package kite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/watchlist/internal/contracts"
	"github.com/wonny/watchlist/pkg/config"
	"github.com/wonny/watchlist/pkg/httputil"
	"github.com/wonny/watchlist/pkg/logger"
)

const apiVersion = "3"

// ErrMissingCredentials is returned when api key or access token is not configured
var ErrMissingCredentials = errors.New("kite api key / access token not configured")

// Client handles communication with the Kite Connect REST API
// ⭐ SSOT: Kite API 호출은 이 클라이언트에서만
type Client struct {
	cfg        config.KiteConfig
	logger     *logger.Logger
	location   *time.Location
	instrument *httputil.Client // catalog dumps and misc endpoints
	historical *httputil.Client
	quote      *httputil.Client
}

// Transports bundles one HTTP client per Kite rate-limit bucket
type Transports struct {
	Default    *httputil.Client
	Historical *httputil.Client
	Quote      *httputil.Client
}

// NewClient creates a new Kite client.
// loc is the exchange timezone used to format historical request windows.
func NewClient(cfg config.KiteConfig, t Transports, loc *time.Location, log *logger.Logger) *Client {
	if t.Historical == nil {
		t.Historical = t.Default
	}
	if t.Quote == nil {
		t.Quote = t.Default
	}
	return &Client{
		cfg:        cfg,
		logger:     log.WithComponent("kite"),
		location:   loc,
		instrument: t.Default,
		historical: t.Historical,
		quote:      t.Quote,
	}
}

// envelope is the common Kite response wrapper
type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	ErrorType string          `json:"error_type"`
}

func (c *Client) headers() http.Header {
	return http.Header{
		"X-Kite-Version": {apiVersion},
		"Authorization":  {fmt.Sprintf("token %s:%s", c.cfg.APIKey, c.cfg.AccessToken)},
	}
}

// get performs an authenticated GET and returns the raw body after status checks
func (c *Client) get(ctx context.Context, hc *httputil.Client, op, path string) ([]byte, error) {
	if c.cfg.APIKey == "" || c.cfg.AccessToken == "" {
		return nil, &contracts.UpstreamError{Op: op, Err: ErrMissingCredentials}
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	resp, err := hc.GetWithHeaders(ctx, url, c.headers())
	if err != nil {
		return nil, &contracts.UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &contracts.UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			return nil, &contracts.UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s: %s", env.ErrorType, env.Message)}
		}
		return nil, &contracts.UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", truncate(body, 200))}
	}

	return body, nil
}

// getJSON performs get and unwraps the {"status":"success","data":...} envelope
func (c *Client) getJSON(ctx context.Context, hc *httputil.Client, op, path string, dest interface{}) error {
	body, err := c.get(ctx, hc, op, path)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &contracts.UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Status != "success" {
		return &contracts.UpstreamError{Op: op, Err: fmt.Errorf("%s: %s", env.ErrorType, env.Message)}
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return &contracts.UpstreamError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ contracts.MarketDataProvider = (*Client)(nil)
