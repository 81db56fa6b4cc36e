// Package feed fetches gameset results from the score provider.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gradingdomain "github.com/Black-And-White-Club/picker-bot/app/modules/grading/domain"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"golang.org/x/time/rate"
)

const DefaultTimeout = 10 * time.Second

// maxBody caps a results document; a full season of games is far below it.
const maxBody = 1 << 20

var ErrNotConfigured = errors.New("results feed url not configured")

// Client requests /<league slug>/results?season=&sequence= from the provider,
// never faster than its limiter allows.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a client. rps <= 0 disables rate limiting.
func NewClient(baseURL string, rps float64, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// Fetch returns the provider's results for gs. A 404 or an empty document
// means nothing is published yet and yields nil, nil.
func (c *Client) Fetch(ctx context.Context, league leaguedomain.League, gs leaguedomain.GameSet) (*gradingdomain.Results, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("feed.Fetch: %w", err)
	}

	q := url.Values{}
	q.Set("season", fmt.Sprint(gs.Season))
	q.Set("sequence", fmt.Sprint(gs.Sequence))
	endpoint := fmt.Sprintf("%s/%s/results?%s", c.baseURL, url.PathEscape(league.Slug), q.Encode())

	c.logger.DebugContext(ctx, "Requesting results",
		attr.League(league.Abbr),
		attr.GameSetID(gs.ID),
		attr.String("url", endpoint),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("feed.Fetch: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed.Fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("feed.Fetch: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "Results request failed",
			attr.League(league.Abbr),
			attr.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("feed.Fetch: provider returned %d", resp.StatusCode)
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var results gradingdomain.Results
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("feed.Fetch: decode: %w", err)
	}
	return &results, nil
}
