package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fortuna/dugout/internal/kbo"
	"github.com/fortuna/dugout/internal/store"
)

// RankingRepository handles the daily_team_rankings table: one row per
// team per calendar day, keyed by (date, team_id). Historical days are
// preserved for trend charts.
type RankingRepository struct {
	db *store.Database
}

// NewRankingRepository creates a new ranking repository.
func NewRankingRepository(db *store.Database) *RankingRepository {
	return &RankingRepository{db: db}
}

// Upsert inserts or overwrites one team's standing for one day.
func (r *RankingRepository) Upsert(ctx context.Context, tr *store.TeamRanking) error {
	query := `
		INSERT INTO daily_team_rankings
			(date, team_id, team_name, rank, wins, losses, ties, win_rate, games_back)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (date, team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			rank = EXCLUDED.rank,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			ties = EXCLUDED.ties,
			win_rate = EXCLUDED.win_rate,
			games_back = EXCLUDED.games_back,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		tr.Date, tr.TeamID, tr.TeamName, tr.Rank,
		tr.Wins, tr.Losses, tr.Ties, tr.WinRate, tr.GamesBack,
	)
	if err != nil {
		return fmt.Errorf("upserting ranking for %s on %s: %w", tr.TeamID, tr.Date.Format("2006-01-02"), err)
	}
	return nil
}

// CountForDate returns how many teams have a ranking row for one day.
func (r *RankingRepository) CountForDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM daily_team_rankings WHERE date = $1", date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting rankings: %w", err)
	}
	return count, nil
}

// Latest returns the most recent day's standings ordered by rank.
func (r *RankingRepository) Latest(ctx context.Context) ([]*store.TeamRanking, error) {
	query := `
		SELECT date, team_id, team_name, rank, wins, losses, ties, win_rate,
			games_back, updated_at
		FROM daily_team_rankings
		WHERE date = (SELECT MAX(date) FROM daily_team_rankings)
		ORDER BY rank
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	return scanRankings(rows)
}

// History returns all teams' ranking rows over the trailing number of
// days, oldest first, for chart rendering.
func (r *RankingRepository) History(ctx context.Context, days int) ([]*store.TeamRanking, error) {
	query := `
		SELECT date, team_id, team_name, rank, wins, losses, ties, win_rate,
			games_back, updated_at
		FROM daily_team_rankings
		WHERE date >= CURRENT_DATE - $1::int
		ORDER BY date, rank
	`

	rows, err := r.db.DB().QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("querying ranking history: %w", err)
	}
	defer rows.Close()

	return scanRankings(rows)
}

// TeamHistory returns one team's ranking rows over the trailing number of
// days, oldest first.
func (r *RankingRepository) TeamHistory(ctx context.Context, teamID kbo.TeamID, days int) ([]*store.TeamRanking, error) {
	query := `
		SELECT date, team_id, team_name, rank, wins, losses, ties, win_rate,
			games_back, updated_at
		FROM daily_team_rankings
		WHERE team_id = $1 AND date >= CURRENT_DATE - $2::int
		ORDER BY date
	`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, days)
	if err != nil {
		return nil, fmt.Errorf("querying team ranking history: %w", err)
	}
	defer rows.Close()

	return scanRankings(rows)
}

func scanRankings(rows *sql.Rows) ([]*store.TeamRanking, error) {
	var rankings []*store.TeamRanking
	for rows.Next() {
		tr := &store.TeamRanking{}
		err := rows.Scan(
			&tr.Date, &tr.TeamID, &tr.TeamName, &tr.Rank,
			&tr.Wins, &tr.Losses, &tr.Ties, &tr.WinRate, &tr.GamesBack,
			&tr.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning ranking: %w", err)
		}
		rankings = append(rankings, tr)
	}
	return rankings, rows.Err()
}
