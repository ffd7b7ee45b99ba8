package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/roster"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/schedule"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/trade"
	"github.com/panjf2000/ants/v2"
)

const tradeNormalizeWorkers = 4

// TradeService proposes swaps between the user's team and the rest of
// the league.
type TradeService struct {
	linkRepo leaguelink.Repository
	fantasy  FantasyGateway
	now      func() time.Time
}

func NewTradeService(linkRepo leaguelink.Repository, fantasy FantasyGateway) *TradeService {
	return &TradeService{
		linkRepo: linkRepo,
		fantasy:  fantasy,
		now:      time.Now,
	}
}

// Suggestions returns an empty list when the user has not picked their
// team yet, or when the pick no longer matches a team upstream, since
// there is no roster to trade from.
func (s *TradeService) Suggestions(ctx context.Context, userID, linkID string, week int) ([]trade.Suggestion, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TradeService.Suggestions")
	defer span.End()

	link, err := ownedLeagueLink(ctx, s.linkRepo, userID, linkID)
	if err != nil {
		return nil, err
	}
	if !link.HasTeam() {
		return []trade.Suggestion{}, nil
	}
	week = schedule.ClampWeek(week, s.now())

	teams, err := s.fantasy.FetchTeams(ctx, link.ESPNLeagueID, link.SeasonYear, week)
	if err != nil {
		return nil, fmt.Errorf("fetch teams for trade suggestions: %w", err)
	}

	rosters, err := normalizeLeagueRosters(teams)
	if err != nil {
		return nil, err
	}

	var user trade.TeamRoster
	others := make([]trade.TeamRoster, 0, len(rosters))
	found := false
	for _, r := range rosters {
		if r.TeamID == link.TeamID {
			user = r
			found = true
			continue
		}
		others = append(others, r)
	}
	if !found {
		// The selected team can disappear from a fresh fetch when the
		// league is reset or membership changes. Degrade to no
		// suggestions instead of failing the request.
		return []trade.Suggestion{}, nil
	}

	return trade.Suggestions(user, others, week), nil
}

// normalizeLeagueRosters fans roster normalization out over a small
// worker pool. A twelve-team league carries a few hundred loose-map
// entries, enough to be worth parallelizing.
func normalizeLeagueRosters(teams []ExternalTeam) ([]trade.TeamRoster, error) {
	out := make([]trade.TeamRoster, len(teams))

	pool, err := ants.NewPool(tradeNormalizeWorkers)
	if err != nil {
		return nil, fmt.Errorf("create normalize worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, team := range teams {
		i, team := i, team
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			normalized := make([]roster.NormalizedPlayer, 0, len(team.RawRoster))
			for _, entry := range team.RawRoster {
				normalized = append(normalized, roster.Normalize(entry))
			}
			out[i] = trade.TeamRoster{
				TeamID:   team.TeamID,
				TeamName: team.Name,
				Players:  normalized,
			}
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit roster to worker pool: %w", err)
		}
	}
	workers.Wait()

	return out, nil
}
