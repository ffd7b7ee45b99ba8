package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/roster"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/schedule"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/waiver"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/cache"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const playerDirectoryCacheKey = "sleeper:players:nfl"

// WaiverService ranks trending free agents against the user's roster
// needs.
type WaiverService struct {
	linkRepo leaguelink.Repository
	fantasy  FantasyGateway
	stats    StatsGateway
	store    *cache.Store
	logger   *logging.Logger
	now      func() time.Time
}

// NewWaiverService accepts a nil store, which disables directory
// caching.
func NewWaiverService(linkRepo leaguelink.Repository, fantasy FantasyGateway, stats StatsGateway, store *cache.Store, logger *logging.Logger) *WaiverService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WaiverService{
		linkRepo: linkRepo,
		fantasy:  fantasy,
		stats:    stats,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *WaiverService) Targets(ctx context.Context, userID, linkID string) ([]waiver.Candidate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WaiverService.Targets")
	defer span.End()

	link, err := ownedLeagueLink(ctx, s.linkRepo, userID, linkID)
	if err != nil {
		return nil, err
	}
	week := schedule.CurrentWeek(s.now())

	var (
		trending     []ExternalTrendingPlayer
		trendingErr  error
		directory    map[string]ExternalPlayerInfo
		directoryErr error
		seasonPoints map[string]float64
		pointsErr    error
		userRoster   []roster.NormalizedPlayer
		rosterErr    error
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		trending, trendingErr = s.stats.FetchTrendingAdds(ctx)
	})
	wg.Go(func() {
		directory, directoryErr = s.loadPlayerDirectory(ctx)
	})
	wg.Go(func() {
		seasonPoints, pointsErr = s.stats.FetchSeasonPoints(ctx, link.SeasonYear)
	})
	wg.Go(func() {
		userRoster, rosterErr = s.loadUserRoster(ctx, link, week)
	})
	wg.Wait()

	if trendingErr != nil {
		return nil, fmt.Errorf("fetch trending adds: %w", trendingErr)
	}
	if directoryErr != nil {
		return nil, fmt.Errorf("fetch player directory: %w", directoryErr)
	}
	if pointsErr != nil {
		return nil, fmt.Errorf("fetch season points: %w", pointsErr)
	}

	// Trending data alone is still useful, so a roster fetch failure
	// degrades to generic rankings instead of failing the request.
	if rosterErr != nil {
		s.logger.WarnContext(ctx, "waiver targets degrading to trending-only", "error", rosterErr)
		userRoster = nil
	}
	weakPositions := waiver.WeakPositions(userRoster, week)

	trendingAdds := make([]waiver.TrendingAdd, 0, len(trending))
	for _, item := range trending {
		trendingAdds = append(trendingAdds, waiver.TrendingAdd{
			PlayerID: item.PlayerID,
			AddCount: item.AddCount,
		})
	}

	infoByID := make(map[string]waiver.PlayerInfo, len(directory))
	for playerID, info := range directory {
		infoByID[playerID] = waiver.PlayerInfo{
			FirstName: info.FirstName,
			LastName:  info.LastName,
			Position:  info.Position,
			Team:      info.Team,
		}
	}

	return waiver.Rank(trendingAdds, infoByID, seasonPoints, weakPositions, week), nil
}

// loadUserRoster returns nil without error when no team is selected
// yet; rankings then fall back to trending order.
func (s *WaiverService) loadUserRoster(ctx context.Context, link leaguelink.LeagueLink, week int) ([]roster.NormalizedPlayer, error) {
	if !link.HasTeam() {
		return nil, nil
	}

	teams, err := s.fantasy.FetchTeams(ctx, link.ESPNLeagueID, link.SeasonYear, week)
	if err != nil {
		return nil, fmt.Errorf("fetch teams for roster: %w", err)
	}

	for _, team := range teams {
		if team.TeamID != link.TeamID {
			continue
		}
		normalized := make([]roster.NormalizedPlayer, 0, len(team.RawRoster))
		for _, entry := range team.RawRoster {
			normalized = append(normalized, roster.Normalize(entry))
		}
		return normalized, nil
	}

	return nil, fmt.Errorf("team %d not found in league %d", link.TeamID, link.ESPNLeagueID)
}

// The Sleeper player directory weighs several megabytes and changes
// rarely, so it is the one upstream payload worth caching.
func (s *WaiverService) loadPlayerDirectory(ctx context.Context) (map[string]ExternalPlayerInfo, error) {
	if s.store == nil {
		return s.stats.FetchPlayerDirectory(ctx)
	}

	value, err := s.store.GetOrLoad(ctx, playerDirectoryCacheKey, func(ctx context.Context) (any, error) {
		return s.stats.FetchPlayerDirectory(ctx)
	})
	if err != nil {
		return nil, err
	}

	directory, ok := value.(map[string]ExternalPlayerInfo)
	if !ok {
		return nil, fmt.Errorf("unexpected cached player directory type %T", value)
	}
	return directory, nil
}
