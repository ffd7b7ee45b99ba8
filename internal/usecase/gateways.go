package usecase

import "context"

// ExternalLeague is league metadata from the fantasy provider.
type ExternalLeague struct {
	LeagueID    int64
	Name        string
	Size        int
	CurrentWeek int
}

// ExternalTeam is one team's metadata plus its raw, un-normalized
// roster entries exactly as the provider shaped them.
type ExternalTeam struct {
	TeamID        int64
	Name          string
	Abbrev        string
	Wins          int
	Losses        int
	Ties          int
	PointsFor     float64
	PointsAgainst float64
	RawRoster     []map[string]any
}

// ExternalMatchup is one boxscore pairing with raw rosters per side.
type ExternalMatchup struct {
	Week          int
	HomeTeamID    int64
	AwayTeamID    int64
	HomeScore     float64
	AwayScore     float64
	HomeRawRoster []map[string]any
	AwayRawRoster []map[string]any
}

// ExternalTrendingPlayer is one entry from the trending-adds feed.
type ExternalTrendingPlayer struct {
	PlayerID string
	AddCount int
}

// ExternalPlayerInfo is one player directory record.
type ExternalPlayerInfo struct {
	PlayerID  string
	FirstName string
	LastName  string
	Position  string
	Team      string
}

// FantasyGateway reads league data from the fantasy provider.
type FantasyGateway interface {
	FetchLeague(ctx context.Context, leagueID int64, season int) (ExternalLeague, error)
	FetchTeams(ctx context.Context, leagueID int64, season, week int) ([]ExternalTeam, error)
	FetchMatchups(ctx context.Context, leagueID int64, season, week int) ([]ExternalMatchup, error)
}

// StatsGateway reads global NFL player data from the stats provider.
type StatsGateway interface {
	FetchTrendingAdds(ctx context.Context) ([]ExternalTrendingPlayer, error)
	FetchPlayerDirectory(ctx context.Context) (map[string]ExternalPlayerInfo, error)
	FetchSeasonPoints(ctx context.Context, season int) (map[string]float64, error)
}
