package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gridironhq/fantasy-dashboard/internal/usecase"
)

func TestFetchTeams_MapsEnvelope(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"teams": [
				{
					"id": 3,
					"location": "Chicago",
					"nickname": "Cloud Gazers",
					"abbrev": "CCG",
					"record": {"overall": {"wins": 5, "losses": 2, "ties": 1, "pointsFor": 812.4, "pointsAgainst": 700.1}},
					"roster": {"entries": [{"lineupSlotId": 0, "playerPoolEntry": {"player": {"fullName": "QB One"}}}]}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	teams, err := client.FetchTeams(context.Background(), 4242, 2025, 6)
	if err != nil {
		t.Fatalf("fetch teams: %v", err)
	}

	if gotPath != "/seasons/2025/segments/0/leagues/4242" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotQuery == "" {
		t.Fatalf("expected view and scoringPeriodId query params")
	}

	if len(teams) != 1 {
		t.Fatalf("expected one team, got %d", len(teams))
	}
	team := teams[0]
	if team.TeamID != 3 {
		t.Fatalf("unexpected team id: %d", team.TeamID)
	}
	if team.Name != "Chicago Cloud Gazers" {
		t.Fatalf("unexpected team name: %q", team.Name)
	}
	if team.Wins != 5 || team.Losses != 2 || team.Ties != 1 {
		t.Fatalf("unexpected record: %d-%d-%d", team.Wins, team.Losses, team.Ties)
	}
	if team.PointsFor != 812.4 {
		t.Fatalf("unexpected points for: %v", team.PointsFor)
	}
	if len(team.RawRoster) != 1 {
		t.Fatalf("expected one raw roster entry, got %d", len(team.RawRoster))
	}
}

func TestFetchMatchups_FiltersToWeek(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"schedule": [
				{"matchupPeriodId": 5, "home": {"teamId": 1, "totalPoints": 99.5}, "away": {"teamId": 2, "totalPoints": 88.1}},
				{"matchupPeriodId": 6, "home": {"teamId": 3, "totalPoints": 101.0}, "away": {"teamId": 4, "totalPoints": 95.2}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	matchups, err := client.FetchMatchups(context.Background(), 4242, 2025, 6)
	if err != nil {
		t.Fatalf("fetch matchups: %v", err)
	}

	if len(matchups) != 1 {
		t.Fatalf("expected one matchup for week 6, got %d", len(matchups))
	}
	if matchups[0].HomeTeamID != 3 || matchups[0].AwayTeamID != 4 {
		t.Fatalf("unexpected pairing: %+v", matchups[0])
	}
	if matchups[0].HomeScore != 101.0 {
		t.Fatalf("unexpected home score: %v", matchups[0].HomeScore)
	}
}

func TestFetchLeague_MapsSettings(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 4242, "settings": {"name": "Office League", "size": 10}, "status": {"currentMatchupPeriod": 7}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	league, err := client.FetchLeague(context.Background(), 4242, 2025)
	if err != nil {
		t.Fatalf("fetch league: %v", err)
	}
	if league.Name != "Office League" || league.Size != 10 || league.CurrentWeek != 7 {
		t.Fatalf("unexpected league: %+v", league)
	}
}

func TestDoJSON_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"teams": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, MaxRetries: 1})
	if _, err := client.FetchTeams(context.Background(), 1, 2025, 1); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestDoJSON_NoRetryOnClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, MaxRetries: 3})
	_, err := client.FetchTeams(context.Background(), 1, 2025, 1)
	if err == nil {
		t.Fatalf("expected error for 404 response")
	}
	if errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("a client error is not a provider outage: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt for non-retryable status, got %d", calls.Load())
	}
}

func TestDoJSON_ExhaustedRetriesMapToDependencyUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.FetchTeams(context.Background(), 1, 2025, 1)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable for upstream 503, got %v", err)
	}
}

func TestDoJSON_NetworkFailureMapsToDependencyUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.FetchTeams(context.Background(), 1, 2025, 1)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable for unreachable provider, got %v", err)
	}
}

func TestDoJSON_SendsAuthCookies(t *testing.T) {
	t.Parallel()

	var gotSWID, gotS2 string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("SWID"); err == nil {
			gotSWID = cookie.Value
		}
		if cookie, err := r.Cookie("espn_s2"); err == nil {
			gotS2 = cookie.Value
		}
		_, _ = w.Write([]byte(`{"teams": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, SWID: "{abc}", ESPNS2: "secret"})
	if _, err := client.FetchTeams(context.Background(), 1, 2025, 1); err != nil {
		t.Fatalf("fetch teams: %v", err)
	}
	if gotSWID != "{abc}" || gotS2 != "secret" {
		t.Fatalf("cookies not forwarded: swid=%q s2=%q", gotSWID, gotS2)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText("dial failed espn_s2=topsecret&x=1", "topsecret")
	if got != "dial failed espn_s2=REDACTED&x=1" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}
