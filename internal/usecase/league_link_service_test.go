package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridironhq/fantasy-dashboard/internal/platform/id"
)

func TestLeagueLinkService_CreateLink_VerifiesUpstreamAndStoresName(t *testing.T) {
	t.Parallel()

	repo := newStubLinkRepo()
	gateway := &stubFantasyGateway{
		league: ExternalLeague{LeagueID: 4242, Name: "Office League", Size: 10, CurrentWeek: 6},
	}
	service := NewLeagueLinkService(repo, gateway, id.NewRandomGenerator())
	service.now = func() time.Time { return testNow }

	link, err := service.CreateLink(context.Background(), "user-1", 4242, 0)
	if err != nil {
		t.Fatalf("CreateLink error: %v", err)
	}

	if link.ID == "" {
		t.Fatalf("expected generated link id")
	}
	if link.LeagueName != "Office League" {
		t.Fatalf("expected league name from provider, got %q", link.LeagueName)
	}
	if link.SeasonYear != 2025 {
		t.Fatalf("expected season to default to current season 2025, got %d", link.SeasonYear)
	}
	if link.HasTeam() {
		t.Fatalf("new link should have no team selected")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted link, got %d", len(repo.created))
	}
}

func TestLeagueLinkService_CreateLink_RejectsInvalidLeagueID(t *testing.T) {
	t.Parallel()

	service := NewLeagueLinkService(newStubLinkRepo(), &stubFantasyGateway{}, id.NewRandomGenerator())

	_, err := service.CreateLink(context.Background(), "user-1", 0, 2025)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeagueLinkService_CreateLink_PropagatesProviderFailure(t *testing.T) {
	t.Parallel()

	gateway := &stubFantasyGateway{
		leagueErr: errors.New("espn returned 404"),
	}
	service := NewLeagueLinkService(newStubLinkRepo(), gateway, id.NewRandomGenerator())

	if _, err := service.CreateLink(context.Background(), "user-1", 999999, 2025); err == nil {
		t.Fatalf("expected provider failure to block link creation")
	}
}

func TestLeagueLinkService_SelectTeam_ChecksMembership(t *testing.T) {
	t.Parallel()

	link := testLink()
	link.TeamID = 0
	repo := newStubLinkRepo(link)
	gateway := &stubFantasyGateway{
		teams: []ExternalTeam{{TeamID: 3, Name: "Team Three"}, {TeamID: 7, Name: "Team Seven"}},
	}
	service := NewLeagueLinkService(repo, gateway, id.NewRandomGenerator())
	service.now = func() time.Time { return testNow }

	updated, err := service.SelectTeam(context.Background(), "user-1", "link-1", 7)
	if err != nil {
		t.Fatalf("SelectTeam error: %v", err)
	}
	if updated.TeamID != 7 {
		t.Fatalf("expected team id 7 on returned link, got %d", updated.TeamID)
	}
	if repo.teamSet["link-1"] != 7 {
		t.Fatalf("expected team id persisted, got %d", repo.teamSet["link-1"])
	}

	_, err = service.SelectTeam(context.Background(), "user-1", "link-1", 99)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for team outside league, got %v", err)
	}
}

func TestLeagueLinkService_DeleteLink_OwnershipRequired(t *testing.T) {
	t.Parallel()

	repo := newStubLinkRepo(testLink())
	service := NewLeagueLinkService(repo, &stubFantasyGateway{}, id.NewRandomGenerator())

	if err := service.DeleteLink(context.Background(), "intruder", "link-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign link, got %v", err)
	}

	if err := service.DeleteLink(context.Background(), "user-1", "link-1"); err != nil {
		t.Fatalf("DeleteLink error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "link-1" {
		t.Fatalf("expected link-1 deleted, got %v", repo.deleted)
	}
}

func TestLeagueLinkService_ListLinks_RequiresUser(t *testing.T) {
	t.Parallel()

	service := NewLeagueLinkService(newStubLinkRepo(), &stubFantasyGateway{}, id.NewRandomGenerator())

	if _, err := service.ListLinks(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
