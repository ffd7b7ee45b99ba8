package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gridironhq/fantasy-dashboard/internal/platform/cache"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/logging"
)

type stubStatsGateway struct {
	mu             sync.Mutex
	trending       []ExternalTrendingPlayer
	trendingErr    error
	directory      map[string]ExternalPlayerInfo
	directoryErr   error
	directoryCalls int
	seasonPoints   map[string]float64
	pointsErr      error
}

func (g *stubStatsGateway) FetchTrendingAdds(_ context.Context) ([]ExternalTrendingPlayer, error) {
	return g.trending, g.trendingErr
}

func (g *stubStatsGateway) FetchPlayerDirectory(_ context.Context) (map[string]ExternalPlayerInfo, error) {
	g.mu.Lock()
	g.directoryCalls++
	g.mu.Unlock()
	return g.directory, g.directoryErr
}

func (g *stubStatsGateway) FetchSeasonPoints(_ context.Context, _ int) (map[string]float64, error) {
	return g.seasonPoints, g.pointsErr
}

func waiverStatsFixture() *stubStatsGateway {
	return &stubStatsGateway{
		trending: []ExternalTrendingPlayer{
			{PlayerID: "q1", AddCount: 50},
			{PlayerID: "r1", AddCount: 50},
		},
		directory: map[string]ExternalPlayerInfo{
			"q1": {PlayerID: "q1", FirstName: "Quincy", LastName: "Arm", Position: "QB", Team: "KC"},
			"r1": {PlayerID: "r1", FirstName: "Rush", LastName: "Back", Position: "RB", Team: "GB"},
		},
		seasonPoints: map[string]float64{"q1": 60, "r1": 60},
	}
}

func TestWaiverService_Targets_BoostsWeakPositions(t *testing.T) {
	t.Parallel()

	// Week 6: QB averages 3 points per week (weak), RB averages 15.
	gateway := &stubFantasyGateway{
		teams: []ExternalTeam{
			{TeamID: 1, RawRoster: []map[string]any{
				rawEntry(0, "My QB", "QB", 18, 14),
				rawEntry(2, "My RB", "RB", 90, 16),
			}},
		},
	}
	service := NewWaiverService(newStubLinkRepo(testLink()), gateway, waiverStatsFixture(), nil, logging.NewNop())
	service.now = func() time.Time { return testNow }

	candidates, err := service.Targets(context.Background(), "user-1", "link-1")
	if err != nil {
		t.Fatalf("Targets error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	if candidates[0].PlayerID != "q1" {
		t.Fatalf("expected weak-position QB ranked first, got %+v", candidates[0])
	}
	if diff := candidates[0].Score - candidates[1].Score; diff != 100 {
		t.Fatalf("expected exactly the weak-position boost between equal candidates, got %v", diff)
	}
}

func TestWaiverService_Targets_DegradesToTrendingOnRosterFailure(t *testing.T) {
	t.Parallel()

	gateway := &stubFantasyGateway{teamsErr: errors.New("espn timeout")}
	service := NewWaiverService(newStubLinkRepo(testLink()), gateway, waiverStatsFixture(), nil, logging.NewNop())
	service.now = func() time.Time { return testNow }

	candidates, err := service.Targets(context.Background(), "user-1", "link-1")
	if err != nil {
		t.Fatalf("expected trending-only degrade, got error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Score != candidates[1].Score {
		t.Fatalf("expected no weak-position boosts without a roster, got %v vs %v",
			candidates[0].Score, candidates[1].Score)
	}
}

func TestWaiverService_Targets_NoTeamSelected(t *testing.T) {
	t.Parallel()

	link := testLink()
	link.TeamID = 0
	gateway := &stubFantasyGateway{}
	service := NewWaiverService(newStubLinkRepo(link), gateway, waiverStatsFixture(), nil, logging.NewNop())
	service.now = func() time.Time { return testNow }

	candidates, err := service.Targets(context.Background(), "user-1", "link-1")
	if err != nil {
		t.Fatalf("Targets error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected generic rankings without a team, got %d candidates", len(candidates))
	}
	if got := gateway.lastRequestedWeek(); got != 0 {
		t.Fatalf("expected no roster fetch without a selected team, saw week %d", got)
	}
}

func TestWaiverService_Targets_CachesPlayerDirectory(t *testing.T) {
	t.Parallel()

	stats := waiverStatsFixture()
	gateway := &stubFantasyGateway{
		teams: []ExternalTeam{{TeamID: 1}},
	}
	store := cache.NewStore(time.Minute)
	service := NewWaiverService(newStubLinkRepo(testLink()), gateway, stats, store, logging.NewNop())
	service.now = func() time.Time { return testNow }

	for i := 0; i < 3; i++ {
		if _, err := service.Targets(context.Background(), "user-1", "link-1"); err != nil {
			t.Fatalf("Targets error on call %d: %v", i, err)
		}
	}

	stats.mu.Lock()
	calls := stats.directoryCalls
	stats.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected one directory fetch with cache enabled, got %d", calls)
	}
}

func TestWaiverService_Targets_TrendingFailureIsFatal(t *testing.T) {
	t.Parallel()

	stats := waiverStatsFixture()
	stats.trendingErr = errors.New("sleeper down")
	service := NewWaiverService(newStubLinkRepo(testLink()), &stubFantasyGateway{}, stats, nil, logging.NewNop())
	service.now = func() time.Time { return testNow }

	if _, err := service.Targets(context.Background(), "user-1", "link-1"); err == nil {
		t.Fatalf("expected trending failure to fail the request")
	}
}
