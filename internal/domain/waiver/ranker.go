// Package waiver ranks trending waiver-wire pickups against the
// requesting user's positional needs.
package waiver

import (
	"sort"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/roster"
)

const (
	// A position averaging fewer weekly points than this is "weak".
	WeakPositionThreshold = 8.0

	weakPositionBoost = 100.0
	weeklyAvgWeight   = 10.0
	maxCandidates     = 25
)

// TrendingAdd is one entry from the trending-adds feed.
type TrendingAdd struct {
	PlayerID string
	AddCount int
}

// PlayerInfo is a directory record for one NFL player.
type PlayerInfo struct {
	FirstName string
	LastName  string
	Position  string
	Team      string
}

func (p PlayerInfo) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.LastName != "":
		return p.LastName
	default:
		return p.FirstName
	}
}

// Candidate is one ranked waiver suggestion.
type Candidate struct {
	PlayerID       string  `json:"playerId"`
	Name           string  `json:"name"`
	Position       string  `json:"position"`
	Team           string  `json:"team,omitempty"`
	AddCount       int     `json:"addCount"`
	SeasonPoints   float64 `json:"seasonPoints"`
	WeeklyAvg      float64 `json:"weeklyAvg"`
	Score          float64 `json:"score"`
	FillsWeakSpot  bool    `json:"fillsWeakSpot"`
	Recommendation string  `json:"recommendation"`
}

var draftablePositions = map[string]bool{
	"QB":  true,
	"RB":  true,
	"WR":  true,
	"TE":  true,
	"K":   true,
	"DEF": true,
}

// WeakPositions computes the user's weak positions from their
// normalized roster: empty positions and positions whose weekly
// average falls below the threshold. A nil or empty roster yields nil,
// which disables the positional boost entirely.
func WeakPositions(userRoster []roster.NormalizedPlayer, currentWeek int) map[string]bool {
	if len(userRoster) == 0 {
		return nil
	}
	if currentWeek < 1 {
		currentWeek = 1
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, p := range userRoster {
		pos := p.Position
		if pos == "" || pos == "N/A" {
			continue
		}
		totals[pos] += p.TotalPoints / float64(currentWeek)
		counts[pos]++
	}

	weak := make(map[string]bool)
	for _, pos := range []string{"QB", "RB", "WR", "TE", "K", "D/ST"} {
		count := counts[pos]
		if count == 0 {
			weak[pos] = true
			continue
		}
		if totals[pos]/float64(count) < WeakPositionThreshold {
			weak[pos] = true
		}
	}
	return weak
}

// Rank merges trending adds with the player directory and season stat
// totals, boosts candidates that fill one of the user's weak
// positions, and returns the top candidates by composite score. When
// weakPositions is nil the ranking degrades to trending-only.
func Rank(
	trending []TrendingAdd,
	directory map[string]PlayerInfo,
	seasonPoints map[string]float64,
	weakPositions map[string]bool,
	currentWeek int,
) []Candidate {
	if currentWeek < 1 {
		currentWeek = 1
	}

	candidates := make([]Candidate, 0, len(trending))
	for _, add := range trending {
		info, known := directory[add.PlayerID]
		if !known || !draftablePositions[info.Position] {
			continue
		}

		season := seasonPoints[add.PlayerID]
		weeklyAvg := season / float64(currentWeek)
		fillsWeak := weakPositions[rosterPosition(info.Position)]

		score := float64(add.AddCount) + weeklyAvgWeight*weeklyAvg
		if fillsWeak {
			score += weakPositionBoost
		}

		recommendation := "Trending high-value pickup"
		if fillsWeak {
			recommendation = "Upgrade weak " + info.Position + " position"
		}

		candidates = append(candidates, Candidate{
			PlayerID:       add.PlayerID,
			Name:           info.FullName(),
			Position:       info.Position,
			Team:           info.Team,
			AddCount:       add.AddCount,
			SeasonPoints:   season,
			WeeklyAvg:      weeklyAvg,
			Score:          score,
			FillsWeakSpot:  fillsWeak,
			Recommendation: recommendation,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].AddCount != candidates[j].AddCount {
			return candidates[i].AddCount > candidates[j].AddCount
		}
		return candidates[i].PlayerID < candidates[j].PlayerID
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

// The directory speaks "DEF", normalized rosters speak "D/ST".
func rosterPosition(directoryPosition string) string {
	if directoryPosition == "DEF" {
		return "D/ST"
	}
	return directoryPosition
}
