package postgres

import (
	"context"
	"fmt"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
	qb "github.com/gridironhq/fantasy-dashboard/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

type LeagueLinkRepository struct {
	db *sqlx.DB
}

func NewLeagueLinkRepository(db *sqlx.DB) *LeagueLinkRepository {
	return &LeagueLinkRepository{db: db}
}

func (r *LeagueLinkRepository) ListByUser(ctx context.Context, userID string) ([]leaguelink.LeagueLink, error) {
	query, args, err := qb.Select("*").From("league_links").
		Where(
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league links query: %w", err)
	}

	var rows []leagueLinkTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league links: %w", err)
	}

	out := make([]leaguelink.LeagueLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueLinkFromRow(row))
	}
	return out, nil
}

func (r *LeagueLinkRepository) GetByID(ctx context.Context, linkID string) (leaguelink.LeagueLink, bool, error) {
	query, args, err := qb.Select("*").From("league_links").
		Where(
			qb.Eq("public_id", linkID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return leaguelink.LeagueLink{}, false, fmt.Errorf("build get league link by id query: %w", err)
	}

	var row leagueLinkTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaguelink.LeagueLink{}, false, nil
		}
		return leaguelink.LeagueLink{}, false, fmt.Errorf("get league link by id: %w", err)
	}

	return leagueLinkFromRow(row), true, nil
}

func (r *LeagueLinkRepository) Create(ctx context.Context, link leaguelink.LeagueLink) error {
	insertModel := leagueLinkInsertModel{
		PublicID:     link.ID,
		UserID:       link.UserID,
		ESPNLeagueID: link.ESPNLeagueID,
		SeasonYear:   link.SeasonYear,
		LeagueName:   link.LeagueName,
	}
	query, args, err := qb.InsertModel("league_links", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create league link query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create league link: %w", err)
	}

	return nil
}

func (r *LeagueLinkRepository) UpdateTeam(ctx context.Context, linkID string, teamID int64) error {
	query, args, err := qb.Update("league_links").
		Set("espn_team_id", teamID).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", linkID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league link team query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update league link team: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update league link team: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update league link team: not found")
	}

	return nil
}

func (r *LeagueLinkRepository) Delete(ctx context.Context, linkID string) error {
	query, args, err := qb.Update("league_links").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", linkID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build soft delete league link query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("soft delete league link: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected soft delete league link: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("soft delete league link: not found")
	}

	return nil
}

func leagueLinkFromRow(row leagueLinkTableModel) leaguelink.LeagueLink {
	return leaguelink.LeagueLink{
		ID:           row.PublicID,
		UserID:       row.UserID,
		ESPNLeagueID: row.ESPNLeagueID,
		SeasonYear:   row.SeasonYear,
		TeamID:       nullInt64ToInt64(row.ESPNTeamID),
		LeagueName:   row.LeagueName,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
