package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
)

// Fixed mid-season instant: 2025 season, week 6.
var testNow = time.Date(2025, time.October, 10, 12, 0, 0, 0, time.UTC)

type stubLeagueLinkRepository struct {
	mu      sync.Mutex
	byID    map[string]leaguelink.LeagueLink
	teamSet map[string]int64
	deleted []string
	created []leaguelink.LeagueLink
}

func newStubLinkRepo(links ...leaguelink.LeagueLink) *stubLeagueLinkRepository {
	byID := make(map[string]leaguelink.LeagueLink, len(links))
	for _, link := range links {
		byID[link.ID] = link
	}
	return &stubLeagueLinkRepository{
		byID:    byID,
		teamSet: make(map[string]int64),
	}
}

func (r *stubLeagueLinkRepository) ListByUser(_ context.Context, userID string) ([]leaguelink.LeagueLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]leaguelink.LeagueLink, 0)
	for _, link := range r.byID {
		if link.UserID == userID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (r *stubLeagueLinkRepository) GetByID(_ context.Context, linkID string) (leaguelink.LeagueLink, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.byID[linkID]
	return link, ok, nil
}

func (r *stubLeagueLinkRepository) Create(_ context.Context, link leaguelink.LeagueLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[link.ID] = link
	r.created = append(r.created, link)
	return nil
}

func (r *stubLeagueLinkRepository) UpdateTeam(_ context.Context, linkID string, teamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teamSet[linkID] = teamID
	return nil
}

func (r *stubLeagueLinkRepository) Delete(_ context.Context, linkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, linkID)
	r.deleted = append(r.deleted, linkID)
	return nil
}

type stubFantasyGateway struct {
	mu             sync.Mutex
	league         ExternalLeague
	leagueErr      error
	teams          []ExternalTeam
	teamsErr       error
	matchups       []ExternalMatchup
	matchupsErr    error
	requestedWeeks []int
}

func (g *stubFantasyGateway) FetchLeague(_ context.Context, _ int64, _ int) (ExternalLeague, error) {
	return g.league, g.leagueErr
}

func (g *stubFantasyGateway) FetchTeams(_ context.Context, _ int64, _, week int) ([]ExternalTeam, error) {
	g.mu.Lock()
	g.requestedWeeks = append(g.requestedWeeks, week)
	g.mu.Unlock()
	return g.teams, g.teamsErr
}

func (g *stubFantasyGateway) FetchMatchups(_ context.Context, _ int64, _, _ int) ([]ExternalMatchup, error) {
	return g.matchups, g.matchupsErr
}

func (g *stubFantasyGateway) lastRequestedWeek() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requestedWeeks) == 0 {
		return 0
	}
	return g.requestedWeeks[len(g.requestedWeeks)-1]
}

func testLink() leaguelink.LeagueLink {
	return leaguelink.LeagueLink{
		ID:           "link-1",
		UserID:       "user-1",
		ESPNLeagueID: 4242,
		SeasonYear:   2025,
		TeamID:       1,
		LeagueName:   "Office League",
	}
}

func rawEntry(slotID int, name, position string, total, projected float64) map[string]any {
	return map[string]any{
		"lineupSlotId": float64(slotID),
		"playerPoolEntry": map[string]any{
			"player": map[string]any{
				"id":              float64(1001),
				"fullName":        name,
				"defaultPosition": position,
				"totalPoints":     total,
				"projectedPoints": projected,
			},
		},
	}
}

func TestDashboardService_TeamsAtWeek_NormalizesAndSorts(t *testing.T) {
	t.Parallel()

	gateway := &stubFantasyGateway{
		teams: []ExternalTeam{
			{TeamID: 2, Name: "Team Two", RawRoster: []map[string]any{
				rawEntry(20, "Bench Guy", "RB", 10, 8),
				rawEntry(0, "Starter QB", "QB", 90, 18),
			}},
			{TeamID: 1, Name: "Team One"},
		},
	}
	service := NewDashboardService(newStubLinkRepo(testLink()), gateway)
	service.now = func() time.Time { return testNow }

	teams, err := service.TeamsAtWeek(context.Background(), "user-1", "link-1", 0)
	if err != nil {
		t.Fatalf("TeamsAtWeek error: %v", err)
	}

	if gateway.lastRequestedWeek() != 6 {
		t.Fatalf("expected week 0 to clamp to current week 6, got %d", gateway.lastRequestedWeek())
	}
	if len(teams) != 2 || teams[0].TeamID != 1 || teams[1].TeamID != 2 {
		t.Fatalf("expected teams sorted by id, got %+v", teams)
	}

	rosterOut := teams[1].Roster
	if len(rosterOut) != 2 {
		t.Fatalf("expected 2 roster entries, got %d", len(rosterOut))
	}
	if !rosterOut[0].IsStarter || rosterOut[0].PlayerName != "Starter QB" {
		t.Fatalf("expected starter first after sort, got %+v", rosterOut[0])
	}
	if rosterOut[1].IsStarter {
		t.Fatalf("expected bench entry last, got %+v", rosterOut[1])
	}
}

func TestDashboardService_TeamsAtWeek_ForeignLinkReadsAsNotFound(t *testing.T) {
	t.Parallel()

	service := NewDashboardService(newStubLinkRepo(testLink()), &stubFantasyGateway{})
	service.now = func() time.Time { return testNow }

	_, err := service.TeamsAtWeek(context.Background(), "someone-else", "link-1", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDashboardService_MatchupsAtWeek_ComputesWinOdds(t *testing.T) {
	t.Parallel()

	gateway := &stubFantasyGateway{
		teams: []ExternalTeam{
			{TeamID: 1, Name: "Team One"},
			{TeamID: 2, Name: "Team Two"},
		},
		matchups: []ExternalMatchup{
			{
				Week:       6,
				HomeTeamID: 1,
				AwayTeamID: 2,
				HomeScore:  101.5,
				AwayScore:  88.0,
				HomeRawRoster: []map[string]any{
					rawEntry(0, "Home QB", "QB", 90, 30),
				},
				AwayRawRoster: []map[string]any{
					rawEntry(0, "Away QB", "QB", 80, 12),
				},
			},
		},
	}
	service := NewDashboardService(newStubLinkRepo(testLink()), gateway)
	service.now = func() time.Time { return testNow }

	matchups, err := service.MatchupsAtWeek(context.Background(), "user-1", "link-1", 6)
	if err != nil {
		t.Fatalf("MatchupsAtWeek error: %v", err)
	}
	if len(matchups) != 1 {
		t.Fatalf("expected one matchup, got %d", len(matchups))
	}

	m := matchups[0]
	if m.HomeTeam.Name != "Team One" || m.AwayTeam.Name != "Team Two" {
		t.Fatalf("expected team metadata joined in: %+v", m)
	}
	if m.HomeWinPercent <= 50 {
		t.Fatalf("expected home favored with higher projection, got %v", m.HomeWinPercent)
	}
	if got := m.HomeWinPercent + m.AwayWinPercent; got != 100 {
		t.Fatalf("expected win percents to sum to 100, got %v", got)
	}
	if len(m.HomeTeam.Roster) != 1 || m.HomeTeam.Roster[0].PlayerName != "Home QB" {
		t.Fatalf("expected boxscore roster on home team, got %+v", m.HomeTeam.Roster)
	}
}

func TestDashboardService_MatchupsAtWeek_PropagatesFetchError(t *testing.T) {
	t.Parallel()

	gateway := &stubFantasyGateway{matchupsErr: errors.New("upstream down")}
	service := NewDashboardService(newStubLinkRepo(testLink()), gateway)
	service.now = func() time.Time { return testNow }

	if _, err := service.MatchupsAtWeek(context.Background(), "user-1", "link-1", 6); err == nil {
		t.Fatalf("expected matchup fetch error to propagate")
	}
}

func TestDashboardService_Standings_SortsByRecordThenPoints(t *testing.T) {
	t.Parallel()

	gateway := &stubFantasyGateway{
		teams: []ExternalTeam{
			{TeamID: 1, Name: "Low", Wins: 2, Losses: 4, PointsFor: 500},
			{TeamID: 2, Name: "HighPF", Wins: 4, Losses: 2, PointsFor: 700},
			{TeamID: 3, Name: "LowPF", Wins: 4, Losses: 2, PointsFor: 650},
			{TeamID: 4, Name: "Tied", Wins: 3, Losses: 2, Ties: 1, PointsFor: 600},
		},
	}
	service := NewDashboardService(newStubLinkRepo(testLink()), gateway)
	service.now = func() time.Time { return testNow }

	rows, err := service.Standings(context.Background(), "user-1", "link-1")
	if err != nil {
		t.Fatalf("Standings error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	if rows[0].TeamID != 2 || rows[1].TeamID != 3 {
		t.Fatalf("expected points-for tiebreak between equal records, got %+v", rows[:2])
	}
	if rows[2].TeamID != 4 {
		t.Fatalf("expected tie counted as half win, got %+v", rows[2])
	}
	if rows[3].TeamID != 1 {
		t.Fatalf("expected worst record last, got %+v", rows[3])
	}
	if rows[2].WinPercent <= 0.58 || rows[2].WinPercent >= 0.59 {
		t.Fatalf("unexpected win percent for 3-2-1 record: %v", rows[2].WinPercent)
	}
}
