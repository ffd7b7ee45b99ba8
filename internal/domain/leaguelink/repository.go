package leaguelink

import "context"

// Repository describes league-link persistence needs from use cases.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]LeagueLink, error)
	GetByID(ctx context.Context, linkID string) (LeagueLink, bool, error)
	Create(ctx context.Context, link LeagueLink) error
	UpdateTeam(ctx context.Context, linkID string, teamID int64) error
	Delete(ctx context.Context, linkID string) error
}
