// Package sleeper is a read-only client for the public Sleeper NFL
// API: trending adds, the global player directory, and season PPR stat
// totals. All endpoints are unauthenticated.
package sleeper

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/logging"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/resilience"
	"github.com/gridironhq/fantasy-dashboard/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const defaultBaseURL = "https://api.sleeper.app/v1"

var errSleeperTransient = crerr.New("sleeper transient failure")

type ClientConfig struct {
	BaseURL             string
	Timeout             time.Duration
	MaxRetries          int
	TrendingLookbackHrs int
	TrendingLimit       int
	Logger              *logging.Logger
	CircuitBreaker      resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient          *fasthttp.Client
	baseURL             string
	timeout             time.Duration
	maxRetries          int
	trendingLookbackHrs int
	trendingLimit       int
	logger              *logging.Logger
	breaker             *resilience.CircuitBreaker
	circuitEnabled      bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	lookback := cfg.TrendingLookbackHrs
	if lookback < 1 {
		lookback = 48
	}
	limit := cfg.TrendingLimit
	if limit < 1 {
		limit = 50
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			// The player directory response is large (~12 MB).
			MaxResponseBodySize: 64 << 20,
		},
		baseURL:             baseURL,
		timeout:             timeout,
		maxRetries:          maxInt(cfg.MaxRetries, 0),
		trendingLookbackHrs: lookback,
		trendingLimit:       limit,
		logger:              logger,
		breaker:             resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled:      breakerCfg.Enabled,
	}
}

type trendingItem struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

type directoryItem struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Team      string `json:"team"`
}

// FetchTrendingAdds returns the most-added players over the configured
// lookback window.
func (c *Client) FetchTrendingAdds(ctx context.Context) ([]usecase.ExternalTrendingPlayer, error) {
	path := "/players/nfl/trending/add?lookback_hours=" + strconv.Itoa(c.trendingLookbackHrs) +
		"&limit=" + strconv.Itoa(c.trendingLimit)

	var items []trendingItem
	if err := c.doJSON(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("fetch trending adds: %w", err)
	}

	out := make([]usecase.ExternalTrendingPlayer, 0, len(items))
	for _, item := range items {
		if item.PlayerID == "" {
			continue
		}
		out = append(out, usecase.ExternalTrendingPlayer{
			PlayerID: item.PlayerID,
			AddCount: item.Count,
		})
	}
	return out, nil
}

// FetchPlayerDirectory returns the full NFL player directory keyed by
// Sleeper player id.
func (c *Client) FetchPlayerDirectory(ctx context.Context) (map[string]usecase.ExternalPlayerInfo, error) {
	var items map[string]directoryItem
	if err := c.doJSON(ctx, "/players/nfl", &items); err != nil {
		return nil, fmt.Errorf("fetch player directory: %w", err)
	}

	out := make(map[string]usecase.ExternalPlayerInfo, len(items))
	for playerID, item := range items {
		out[playerID] = usecase.ExternalPlayerInfo{
			PlayerID:  playerID,
			FirstName: strings.TrimSpace(item.FirstName),
			LastName:  strings.TrimSpace(item.LastName),
			Position:  strings.TrimSpace(item.Position),
			Team:      strings.TrimSpace(item.Team),
		}
	}
	return out, nil
}

// FetchSeasonPoints returns PPR point totals for the regular season,
// keyed by player id. Entries without a PPR total are skipped.
func (c *Client) FetchSeasonPoints(ctx context.Context, season int) (map[string]float64, error) {
	if season <= 0 {
		return nil, fmt.Errorf("season must be greater than zero")
	}

	var items map[string]map[string]any
	path := "/stats/nfl/regular/" + strconv.Itoa(season)
	if err := c.doJSON(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("fetch season stats season=%d: %w", season, err)
	}

	out := make(map[string]float64, len(items))
	for playerID, stats := range items {
		points, ok := stats["pts_ppr"]
		if !ok {
			continue
		}
		if value, isNumber := points.(float64); isNumber {
			out[playerID] = value
		}
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: stats provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString(path)
	fullURL := buf.String()

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errSleeperTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if stderrors.Is(err, errSleeperTransient) {
			return fmt.Errorf("%w: stats provider request failed", usecase.ErrDependencyUnavailable)
		}
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode sleeper payload: %w", err)
	}
	return nil
}

// fasthttp has no context plumbing; cancellation is honored between
// attempts and per-attempt deadlines come from DoTimeout.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		raw, err := c.attempt(fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !stderrors.Is(err, errSleeperTransient) {
			return nil, err
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("sleeper request failed")
	}
	c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) attempt(fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errSleeperTransient, err)
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		// Copy out of the pooled response before release.
		return append([]byte(nil), resp.Body()...), nil
	}

	if isRetryableStatus(status) {
		return nil, fmt.Errorf("%w: sleeper status=%d body=%s", errSleeperTransient, status, abbreviateBody(resp.Body()))
	}
	return nil, fmt.Errorf("sleeper status=%d body=%s", status, abbreviateBody(resp.Body()))
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const maxLen = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > maxLen {
		return body[:maxLen] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
