package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/matchup"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/roster"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/schedule"
	"github.com/sourcegraph/conc"
)

// DashboardService serves the league views backing the dashboard:
// teams with normalized rosters, weekly matchups with win odds, and
// the standings table.
type DashboardService struct {
	linkRepo leaguelink.Repository
	fantasy  FantasyGateway
	now      func() time.Time
}

func NewDashboardService(linkRepo leaguelink.Repository, fantasy FantasyGateway) *DashboardService {
	return &DashboardService{
		linkRepo: linkRepo,
		fantasy:  fantasy,
		now:      time.Now,
	}
}

func (s *DashboardService) TeamsAtWeek(ctx context.Context, userID, linkID string, week int) ([]matchup.TeamView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.TeamsAtWeek")
	defer span.End()

	link, err := ownedLeagueLink(ctx, s.linkRepo, userID, linkID)
	if err != nil {
		return nil, err
	}
	week = schedule.ClampWeek(week, s.now())

	teams, err := s.fantasy.FetchTeams(ctx, link.ESPNLeagueID, link.SeasonYear, week)
	if err != nil {
		return nil, fmt.Errorf("fetch teams week=%d: %w", week, err)
	}

	out := make([]matchup.TeamView, 0, len(teams))
	for _, team := range teams {
		out = append(out, teamViewFromExternal(team, team.RawRoster))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TeamID < out[j].TeamID
	})

	return out, nil
}

func (s *DashboardService) MatchupsAtWeek(ctx context.Context, userID, linkID string, week int) ([]matchup.MatchupView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.MatchupsAtWeek")
	defer span.End()

	link, err := ownedLeagueLink(ctx, s.linkRepo, userID, linkID)
	if err != nil {
		return nil, err
	}
	week = schedule.ClampWeek(week, s.now())

	// Team metadata and the boxscore schedule come from separate views,
	// so fetch them concurrently.
	var (
		teams       []ExternalTeam
		teamsErr    error
		matchups    []ExternalMatchup
		matchupsErr error
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		teams, teamsErr = s.fantasy.FetchTeams(ctx, link.ESPNLeagueID, link.SeasonYear, week)
	})
	wg.Go(func() {
		matchups, matchupsErr = s.fantasy.FetchMatchups(ctx, link.ESPNLeagueID, link.SeasonYear, week)
	})
	wg.Wait()

	if teamsErr != nil {
		return nil, fmt.Errorf("fetch teams week=%d: %w", week, teamsErr)
	}
	if matchupsErr != nil {
		return nil, fmt.Errorf("fetch matchups week=%d: %w", week, matchupsErr)
	}

	teamsByID := make(map[int64]ExternalTeam, len(teams))
	for _, team := range teams {
		teamsByID[team.TeamID] = team
	}

	out := make([]matchup.MatchupView, 0, len(matchups))
	for _, m := range matchups {
		home := teamViewFromExternal(teamsByID[m.HomeTeamID], m.HomeRawRoster)
		away := teamViewFromExternal(teamsByID[m.AwayTeamID], m.AwayRawRoster)
		home.TeamID = m.HomeTeamID
		away.TeamID = m.AwayTeamID

		homeWin := matchup.WinProbability(home.Roster, away.Roster)

		out = append(out, matchup.MatchupView{
			Week:           week,
			HomeTeam:       home,
			AwayTeam:       away,
			HomeScore:      m.HomeScore,
			AwayScore:      m.AwayScore,
			HomeWinPercent: homeWin,
			AwayWinPercent: 100 - homeWin,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HomeTeam.TeamID < out[j].HomeTeam.TeamID
	})

	return out, nil
}

// Standings ranks teams by win percentage, breaking ties on points for.
func (s *DashboardService) Standings(ctx context.Context, userID, linkID string) ([]matchup.StandingRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Standings")
	defer span.End()

	link, err := ownedLeagueLink(ctx, s.linkRepo, userID, linkID)
	if err != nil {
		return nil, err
	}

	teams, err := s.fantasy.FetchTeams(ctx, link.ESPNLeagueID, link.SeasonYear, schedule.CurrentWeek(s.now()))
	if err != nil {
		return nil, fmt.Errorf("fetch teams for standings: %w", err)
	}

	rows := make([]matchup.StandingRow, 0, len(teams))
	for _, team := range teams {
		rows = append(rows, matchup.StandingRow{
			TeamID:        team.TeamID,
			Name:          team.Name,
			Wins:          team.Wins,
			Losses:        team.Losses,
			Ties:          team.Ties,
			WinPercent:    winPercent(team.Wins, team.Losses, team.Ties),
			PointsFor:     team.PointsFor,
			PointsAgainst: team.PointsAgainst,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WinPercent != rows[j].WinPercent {
			return rows[i].WinPercent > rows[j].WinPercent
		}
		if rows[i].PointsFor != rows[j].PointsFor {
			return rows[i].PointsFor > rows[j].PointsFor
		}
		return rows[i].TeamID < rows[j].TeamID
	})

	return rows, nil
}

func teamViewFromExternal(team ExternalTeam, rawRoster []map[string]any) matchup.TeamView {
	normalized := make([]roster.NormalizedPlayer, 0, len(rawRoster))
	for _, entry := range rawRoster {
		normalized = append(normalized, roster.Normalize(entry))
	}
	roster.SortRoster(normalized)

	return matchup.TeamView{
		TeamID:        team.TeamID,
		Name:          team.Name,
		Abbrev:        team.Abbrev,
		Wins:          team.Wins,
		Losses:        team.Losses,
		Ties:          team.Ties,
		PointsFor:     team.PointsFor,
		PointsAgainst: team.PointsAgainst,
		Roster:        normalized,
	}
}

func winPercent(wins, losses, ties int) float64 {
	games := wins + losses + ties
	if games == 0 {
		return 0
	}
	return (float64(wins) + 0.5*float64(ties)) / float64(games)
}
