package matchup

import "github.com/gridironhq/fantasy-dashboard/internal/domain/roster"

// TeamView is one fantasy team's metadata plus its normalized roster,
// sorted starters-first.
type TeamView struct {
	TeamID        int64                     `json:"teamId"`
	Name          string                    `json:"name"`
	Abbrev        string                    `json:"abbrev,omitempty"`
	Wins          int                       `json:"wins"`
	Losses        int                       `json:"losses"`
	Ties          int                       `json:"ties"`
	PointsFor     float64                   `json:"pointsFor"`
	PointsAgainst float64                   `json:"pointsAgainst"`
	Roster        []roster.NormalizedPlayer `json:"roster"`
}

// MatchupView pairs two team views for one scheduling period.
type MatchupView struct {
	Week           int      `json:"week"`
	HomeTeam       TeamView `json:"homeTeam"`
	AwayTeam       TeamView `json:"awayTeam"`
	HomeScore      float64  `json:"homeScore"`
	AwayScore      float64  `json:"awayScore"`
	HomeWinPercent float64  `json:"homeWinPercent"`
	AwayWinPercent float64  `json:"awayWinPercent"`
}

// Starters filters the roster down to active lineup slots.
func (t TeamView) Starters() []roster.NormalizedPlayer {
	out := make([]roster.NormalizedPlayer, 0, len(t.Roster))
	for _, p := range t.Roster {
		if p.IsStarter {
			out = append(out, p)
		}
	}
	return out
}

// StandingRow is a team's record line derived from upstream metadata,
// without the roster payload.
type StandingRow struct {
	TeamID        int64   `json:"teamId"`
	Name          string  `json:"name"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	WinPercent    float64 `json:"winPercent"`
	PointsFor     float64 `json:"pointsFor"`
	PointsAgainst float64 `json:"pointsAgainst"`
}
