package waiver

import (
	"testing"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/roster"
)

func TestWeakPositions(t *testing.T) {
	t.Parallel()

	week := 4
	userRoster := []roster.NormalizedPlayer{
		{Position: "QB", TotalPoints: 12}, // 3.0/week, weak
		{Position: "RB", TotalPoints: 48}, // 12.0/week
		{Position: "RB", TotalPoints: 40}, // avg 11.0/week
		{Position: "WR", TotalPoints: 30}, // 7.5/week, weak
	}

	weak := WeakPositions(userRoster, week)
	if !weak["QB"] {
		t.Fatalf("expected QB weak")
	}
	if weak["RB"] {
		t.Fatalf("expected RB strong")
	}
	if !weak["WR"] {
		t.Fatalf("expected WR weak")
	}
	// Positions with no rostered player are weak by definition.
	if !weak["TE"] || !weak["K"] || !weak["D/ST"] {
		t.Fatalf("expected empty positions to be weak: %+v", weak)
	}
}

func TestWeakPositions_EmptyRoster(t *testing.T) {
	t.Parallel()

	if got := WeakPositions(nil, 4); got != nil {
		t.Fatalf("expected nil weak map for missing roster, got %+v", got)
	}
}

func TestRank_WeakPositionBoost(t *testing.T) {
	t.Parallel()

	trending := []TrendingAdd{{PlayerID: "qb1", AddCount: 40}}
	directory := map[string]PlayerInfo{
		"qb1": {FirstName: "Backup", LastName: "Quarterback", Position: "QB", Team: "DEN"},
	}
	seasonPoints := map[string]float64{"qb1": 40} // 10/week at week 4

	weakRoster := []roster.NormalizedPlayer{{Position: "QB", TotalPoints: 12}}
	strongRoster := []roster.NormalizedPlayer{{Position: "QB", TotalPoints: 48}}

	boosted := Rank(trending, directory, seasonPoints, WeakPositions(weakRoster, 4), 4)
	flat := Rank(trending, directory, seasonPoints, WeakPositions(strongRoster, 4), 4)

	if len(boosted) != 1 || len(flat) != 1 {
		t.Fatalf("expected one candidate each, got %d and %d", len(boosted), len(flat))
	}
	if diff := boosted[0].Score - flat[0].Score; diff != 100 {
		t.Fatalf("expected exactly 100-point weak boost, got %v", diff)
	}
	if boosted[0].Recommendation != "Upgrade weak QB position" {
		t.Fatalf("unexpected recommendation: %q", boosted[0].Recommendation)
	}
	if flat[0].Recommendation != "Trending high-value pickup" {
		t.Fatalf("unexpected recommendation: %q", flat[0].Recommendation)
	}
}

func TestRank_ScoreFormula(t *testing.T) {
	t.Parallel()

	trending := []TrendingAdd{{PlayerID: "wr1", AddCount: 25}}
	directory := map[string]PlayerInfo{
		"wr1": {FirstName: "Deep", LastName: "Threat", Position: "WR"},
	}
	seasonPoints := map[string]float64{"wr1": 60} // 12/week at week 5

	got := Rank(trending, directory, seasonPoints, nil, 5)
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}
	// 25 adds + 10*12.0 weekly average, no weak boost.
	if got[0].Score != 145 {
		t.Fatalf("unexpected score: %v", got[0].Score)
	}
	if got[0].WeeklyAvg != 12 {
		t.Fatalf("unexpected weekly average: %v", got[0].WeeklyAvg)
	}
}

func TestRank_FiltersUnknownAndUndraftable(t *testing.T) {
	t.Parallel()

	trending := []TrendingAdd{
		{PlayerID: "known", AddCount: 10},
		{PlayerID: "missing", AddCount: 500},
		{PlayerID: "longsnapper", AddCount: 300},
	}
	directory := map[string]PlayerInfo{
		"known":       {LastName: "Known", Position: "RB"},
		"longsnapper": {LastName: "Snap", Position: "LS"},
	}

	got := Rank(trending, directory, nil, nil, 3)
	if len(got) != 1 || got[0].PlayerID != "known" {
		t.Fatalf("expected only the known draftable candidate, got %+v", got)
	}
}

func TestRank_DefensePositionBridging(t *testing.T) {
	t.Parallel()

	trending := []TrendingAdd{{PlayerID: "def1", AddCount: 5}}
	directory := map[string]PlayerInfo{
		"def1": {LastName: "Bears", Position: "DEF", Team: "CHI"},
	}
	// Roster has no D/ST at all, so the DEF candidate fills a weak spot.
	weak := WeakPositions([]roster.NormalizedPlayer{{Position: "QB", TotalPoints: 100}}, 2)

	got := Rank(trending, directory, nil, weak, 2)
	if len(got) != 1 || !got[0].FillsWeakSpot {
		t.Fatalf("expected DEF candidate to fill the D/ST hole, got %+v", got)
	}
}

func TestRank_CapsAtTopTwentyFive(t *testing.T) {
	t.Parallel()

	var trending []TrendingAdd
	directory := make(map[string]PlayerInfo)
	for i := 0; i < 40; i++ {
		id := string(rune('a'+i%26)) + string(rune('a'+i/26))
		trending = append(trending, TrendingAdd{PlayerID: id, AddCount: i})
		directory[id] = PlayerInfo{LastName: "P" + id, Position: "RB"}
	}

	got := Rank(trending, directory, nil, nil, 1)
	if len(got) != 25 {
		t.Fatalf("expected 25 candidates, got %d", len(got))
	}
	// Highest add counts should rank first when nothing else differs.
	if got[0].AddCount != 39 {
		t.Fatalf("unexpected top candidate: %+v", got[0])
	}
}
