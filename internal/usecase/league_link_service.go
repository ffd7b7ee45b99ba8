package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/schedule"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/id"
)

// LeagueLinkService manages the links between dashboard users and
// their ESPN leagues.
type LeagueLinkService struct {
	linkRepo leaguelink.Repository
	fantasy  FantasyGateway
	idGen    id.Generator
	now      func() time.Time
}

func NewLeagueLinkService(linkRepo leaguelink.Repository, fantasy FantasyGateway, idGen id.Generator) *LeagueLinkService {
	return &LeagueLinkService{
		linkRepo: linkRepo,
		fantasy:  fantasy,
		idGen:    idGen,
		now:      time.Now,
	}
}

func (s *LeagueLinkService) ListLinks(ctx context.Context, userID string) ([]leaguelink.LeagueLink, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	links, err := s.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list league links: %w", err)
	}

	return links, nil
}

// CreateLink verifies the league exists upstream before persisting the
// link, so a typo in the league id fails fast instead of producing a
// dashboard that can never load.
func (s *LeagueLinkService) CreateLink(ctx context.Context, userID string, espnLeagueID int64, seasonYear int) (leaguelink.LeagueLink, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueLinkService.CreateLink")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return leaguelink.LeagueLink{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if espnLeagueID <= 0 {
		return leaguelink.LeagueLink{}, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}
	if seasonYear <= 0 {
		seasonYear = schedule.SeasonYear(s.now())
	}

	league, err := s.fantasy.FetchLeague(ctx, espnLeagueID, seasonYear)
	if err != nil {
		return leaguelink.LeagueLink{}, fmt.Errorf("verify league %d: %w", espnLeagueID, err)
	}

	linkID, err := s.idGen.NewID()
	if err != nil {
		return leaguelink.LeagueLink{}, fmt.Errorf("generate league link id: %w", err)
	}

	link := leaguelink.LeagueLink{
		ID:           linkID,
		UserID:       userID,
		ESPNLeagueID: espnLeagueID,
		SeasonYear:   seasonYear,
		LeagueName:   league.Name,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := link.Validate(); err != nil {
		return leaguelink.LeagueLink{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return leaguelink.LeagueLink{}, fmt.Errorf("create league link: %w", err)
	}

	return link, nil
}

// SelectTeam records which team in the league belongs to the user. The
// team id is checked against the league's actual teams.
func (s *LeagueLinkService) SelectTeam(ctx context.Context, userID, linkID string, teamID int64) (leaguelink.LeagueLink, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueLinkService.SelectTeam")
	defer span.End()

	if teamID <= 0 {
		return leaguelink.LeagueLink{}, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}

	link, err := ownedLeagueLink(ctx, s.linkRepo, userID, linkID)
	if err != nil {
		return leaguelink.LeagueLink{}, err
	}

	teams, err := s.fantasy.FetchTeams(ctx, link.ESPNLeagueID, link.SeasonYear, schedule.CurrentWeek(s.now()))
	if err != nil {
		return leaguelink.LeagueLink{}, fmt.Errorf("fetch teams for team selection: %w", err)
	}

	found := false
	for _, team := range teams {
		if team.TeamID == teamID {
			found = true
			break
		}
	}
	if !found {
		return leaguelink.LeagueLink{}, fmt.Errorf("%w: team %d is not in league %d", ErrInvalidInput, teamID, link.ESPNLeagueID)
	}

	if err := s.linkRepo.UpdateTeam(ctx, link.ID, teamID); err != nil {
		return leaguelink.LeagueLink{}, fmt.Errorf("update league link team: %w", err)
	}

	link.TeamID = teamID
	return link, nil
}

func (s *LeagueLinkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	link, err := ownedLeagueLink(ctx, s.linkRepo, userID, linkID)
	if err != nil {
		return err
	}

	if err := s.linkRepo.Delete(ctx, link.ID); err != nil {
		return fmt.Errorf("delete league link: %w", err)
	}

	return nil
}

// ownedLeagueLink loads a link and checks it belongs to the user.
// Links owned by someone else read as not found so link ids are not
// probeable across accounts.
func ownedLeagueLink(ctx context.Context, repo leaguelink.Repository, userID, linkID string) (leaguelink.LeagueLink, error) {
	userID = strings.TrimSpace(userID)
	linkID = strings.TrimSpace(linkID)
	if userID == "" {
		return leaguelink.LeagueLink{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if linkID == "" {
		return leaguelink.LeagueLink{}, fmt.Errorf("%w: league link id is required", ErrInvalidInput)
	}

	link, exists, err := repo.GetByID(ctx, linkID)
	if err != nil {
		return leaguelink.LeagueLink{}, fmt.Errorf("get league link: %w", err)
	}
	if !exists || link.UserID != userID {
		return leaguelink.LeagueLink{}, fmt.Errorf("%w: league link=%s", ErrNotFound, linkID)
	}

	return link, nil
}
