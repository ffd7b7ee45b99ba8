// Package espn is a read-only client for the ESPN fantasy football v3
// API. Responses are decoded into loose envelopes and raw roster
// entries are passed through untyped; normalization happens in the
// roster domain package.
package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/logging"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/resilience"
	"github.com/gridironhq/fantasy-dashboard/internal/usecase"
)

const defaultBaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"

var espnS2ParamRegex = regexp.MustCompile(`espn_s2=[^;&\s"']+`)
var errESPNTransient = crerr.New("espn transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	SWID           string
	ESPNS2         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client issues league-scoped reads. Concurrent requests for the same
// league are intentionally not deduplicated: every caller gets a fresh
// fetch.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	swid           string
	espnS2         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		swid:           strings.TrimSpace(cfg.SWID),
		espnS2:         strings.TrimSpace(cfg.ESPNS2),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type leagueEnvelope struct {
	ID       int64 `json:"id"`
	Settings struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	} `json:"settings"`
	Status struct {
		CurrentMatchupPeriod int `json:"currentMatchupPeriod"`
	} `json:"status"`
}

type teamsEnvelope struct {
	Teams []teamItem `json:"teams"`
}

type teamItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Nickname string `json:"nickname"`
	Abbrev   string `json:"abbrev"`
	Record   struct {
		Overall struct {
			Wins          int     `json:"wins"`
			Losses        int     `json:"losses"`
			Ties          int     `json:"ties"`
			PointsFor     float64 `json:"pointsFor"`
			PointsAgainst float64 `json:"pointsAgainst"`
		} `json:"overall"`
	} `json:"record"`
	Roster struct {
		Entries []map[string]any `json:"entries"`
	} `json:"roster"`
}

type scheduleEnvelope struct {
	Schedule []matchupItem `json:"schedule"`
}

type matchupItem struct {
	MatchupPeriodID int      `json:"matchupPeriodId"`
	Home            sideItem `json:"home"`
	Away            sideItem `json:"away"`
}

type sideItem struct {
	TeamID                        int64   `json:"teamId"`
	TotalPoints                   float64 `json:"totalPoints"`
	RosterForCurrentScoringPeriod struct {
		Entries []map[string]any `json:"entries"`
	} `json:"rosterForCurrentScoringPeriod"`
}

// FetchLeague loads league settings (name, size, current matchup
// period) for one league and season.
func (c *Client) FetchLeague(ctx context.Context, leagueID int64, season int) (usecase.ExternalLeague, error) {
	if leagueID <= 0 {
		return usecase.ExternalLeague{}, fmt.Errorf("league id must be greater than zero")
	}

	path := fmt.Sprintf("/seasons/%d/segments/0/leagues/%d", season, leagueID)
	query := url.Values{}
	query.Add("view", "mSettings")

	var envelope leagueEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return usecase.ExternalLeague{}, fmt.Errorf("fetch league league_id=%d: %w", leagueID, err)
	}

	return usecase.ExternalLeague{
		LeagueID:    envelope.ID,
		Name:        strings.TrimSpace(envelope.Settings.Name),
		Size:        envelope.Settings.Size,
		CurrentWeek: envelope.Status.CurrentMatchupPeriod,
	}, nil
}

// FetchTeams loads every team's metadata and raw roster for one week.
func (c *Client) FetchTeams(ctx context.Context, leagueID int64, season, week int) ([]usecase.ExternalTeam, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}

	path := fmt.Sprintf("/seasons/%d/segments/0/leagues/%d", season, leagueID)
	query := url.Values{}
	query.Add("view", "mTeam")
	query.Add("view", "mRoster")
	if week > 0 {
		query.Set("scoringPeriodId", strconv.Itoa(week))
	}

	var envelope teamsEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch teams league_id=%d week=%d: %w", leagueID, week, err)
	}

	out := make([]usecase.ExternalTeam, 0, len(envelope.Teams))
	for _, item := range envelope.Teams {
		out = append(out, usecase.ExternalTeam{
			TeamID:        item.ID,
			Name:          teamDisplayName(item),
			Abbrev:        strings.TrimSpace(item.Abbrev),
			Wins:          item.Record.Overall.Wins,
			Losses:        item.Record.Overall.Losses,
			Ties:          item.Record.Overall.Ties,
			PointsFor:     item.Record.Overall.PointsFor,
			PointsAgainst: item.Record.Overall.PointsAgainst,
			RawRoster:     item.Roster.Entries,
		})
	}
	return out, nil
}

// FetchMatchups loads the boxscore pairings for one week, filtered to
// that week's matchup period.
func (c *Client) FetchMatchups(ctx context.Context, leagueID int64, season, week int) ([]usecase.ExternalMatchup, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}

	path := fmt.Sprintf("/seasons/%d/segments/0/leagues/%d", season, leagueID)
	query := url.Values{}
	query.Add("view", "mMatchup")
	query.Add("view", "mBoxscore")
	if week > 0 {
		query.Set("scoringPeriodId", strconv.Itoa(week))
	}

	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch matchups league_id=%d week=%d: %w", leagueID, week, err)
	}

	out := make([]usecase.ExternalMatchup, 0, len(envelope.Schedule))
	for _, item := range envelope.Schedule {
		if week > 0 && item.MatchupPeriodID != week {
			continue
		}
		out = append(out, usecase.ExternalMatchup{
			Week:          item.MatchupPeriodID,
			HomeTeamID:    item.Home.TeamID,
			AwayTeamID:    item.Away.TeamID,
			HomeScore:     item.Home.TotalPoints,
			AwayScore:     item.Away.TotalPoints,
			HomeRawRoster: item.Home.RosterForCurrentScoringPeriod.Entries,
			AwayRawRoster: item.Away.RosterForCurrentScoringPeriod.Entries,
		})
	}
	return out, nil
}

func teamDisplayName(item teamItem) string {
	if name := strings.TrimSpace(item.Name); name != "" {
		return name
	}
	location := strings.TrimSpace(item.Location)
	nickname := strings.TrimSpace(item.Nickname)
	if location != "" && nickname != "" {
		return location + " " + nickname
	}
	if nickname != "" {
		return nickname
	}
	return location
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: fantasy provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errESPNTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if stderrors.Is(err, errESPNTransient) {
			return fmt.Errorf("%w: fantasy provider request failed", usecase.ErrDependencyUnavailable)
		}
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode espn payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.swid != "" && c.espnS2 != "" {
			req.AddCookie(&http.Cookie{Name: "SWID", Value: c.swid})
			req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.espnS2})
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errESPNTransient, sanitizeSensitiveText(err.Error(), c.espnS2))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errESPNTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: espn status=%d body=%s", errESPNTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("espn status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
			}
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
		lastErr = fmt.Errorf("espn request failed")
	}
	c.logger.WarnContext(ctx, "espn request failed", "url", redactCookieURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if secret != "" {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return espnS2ParamRegex.ReplaceAllString(value, "espn_s2=REDACTED")
}

func redactCookieURL(fullURL string) string {
	return espnS2ParamRegex.ReplaceAllString(fullURL, "espn_s2=REDACTED")
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
