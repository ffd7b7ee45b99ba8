package leaguelink

import (
	"fmt"
	"time"
)

// LeagueLink ties a user account to one ESPN fantasy league, optionally
// pinned to the team the user owns inside it. Links are the only state
// this service persists; every view is recomputed from upstream.
type LeagueLink struct {
	ID           string
	UserID       string
	ESPNLeagueID int64
	SeasonYear   int
	TeamID       int64 // 0 until the user selects their team
	LeagueName   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l LeagueLink) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league link id is required")
	}
	if l.UserID == "" {
		return fmt.Errorf("league link user id is required")
	}
	if l.ESPNLeagueID <= 0 {
		return fmt.Errorf("espn league id must be positive")
	}
	if l.SeasonYear < 2000 {
		return fmt.Errorf("season year %d is not plausible", l.SeasonYear)
	}

	return nil
}

// HasTeam reports whether the user has picked their own team yet.
// Waiver and trade views need a team; roster and matchup views do not.
func (l LeagueLink) HasTeam() bool {
	return l.TeamID > 0
}
