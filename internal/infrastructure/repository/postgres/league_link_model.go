package postgres

import (
	"database/sql"
	"time"
)

type leagueLinkTableModel struct {
	ID           int64         `db:"id"`
	PublicID     string        `db:"public_id"`
	UserID       string        `db:"user_id"`
	ESPNLeagueID int64         `db:"espn_league_id"`
	SeasonYear   int           `db:"season_year"`
	ESPNTeamID   sql.NullInt64 `db:"espn_team_id"`
	LeagueName   string        `db:"league_name"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
	DeletedAt    *time.Time    `db:"deleted_at"`
}

type leagueLinkInsertModel struct {
	PublicID     string `db:"public_id"`
	UserID       string `db:"user_id"`
	ESPNLeagueID int64  `db:"espn_league_id"`
	SeasonYear   int    `db:"season_year"`
	LeagueName   string `db:"league_name"`
}
