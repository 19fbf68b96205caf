package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fortuna/dugout/internal/kbo"
	"github.com/fortuna/dugout/internal/store"
)

// GameRepository handles the game_schedule table. Fixtures are pre-seeded
// by the schedule import; the sync pipeline locates rows by their
// (date, home_team, away_team) identity and updates only the mutable
// fields. Rows are never inserted or deleted here.
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository.
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `id, date, home_team, away_team, status, home_score, away_score, winner, updated_at`

// Find locates a fixture by its identity tuple. Returns nil when the
// fixture has not been seeded.
func (r *GameRepository) Find(ctx context.Context, date time.Time, home, away kbo.TeamID) (*store.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_schedule
		WHERE date = $1 AND home_team = $2 AND away_team = $3
		LIMIT 1
	`

	game := &store.Game{}
	err := r.db.DB().QueryRowContext(ctx, query, date, home, away).Scan(
		&game.ID, &game.Date, &game.HomeTeam, &game.AwayTeam, &game.Status,
		&game.HomeScore, &game.AwayScore, &game.Winner, &game.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}
	return game, nil
}

// UpdateResult overwrites a fixture's mutable fields (status, scores,
// winner) and refreshes updated_at.
func (r *GameRepository) UpdateResult(ctx context.Context, game *store.Game) error {
	query := `
		UPDATE game_schedule
		SET status = $2,
			home_score = $3,
			away_score = $4,
			winner = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		game.ID, game.Status, game.HomeScore, game.AwayScore, game.Winner,
	)
	if err != nil {
		return fmt.Errorf("updating game %d: %w", game.ID, err)
	}
	return nil
}

// CountForDate returns how many fixtures exist on one day.
func (r *GameRepository) CountForDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM game_schedule WHERE date = $1", date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting games: %w", err)
	}
	return count, nil
}

// GetByMonth returns all fixtures in one calendar month, ordered by date.
func (r *GameRepository) GetByMonth(ctx context.Context, year int, month time.Month) ([]*store.Game, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `
		SELECT ` + gameColumns + `
		FROM game_schedule
		WHERE date >= $1 AND date < $2
		ORDER BY date, id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying month schedule: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetByTeam returns a team's fixtures, home or away, ordered by date.
func (r *GameRepository) GetByTeam(ctx context.Context, teamID kbo.TeamID, limit int) ([]*store.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_schedule
		WHERE home_team = $1 OR away_team = $1
		ORDER BY date
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying team schedule: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// NextGame returns a team's next scheduled fixture on or after the given
// date, or nil when none remain.
func (r *GameRepository) NextGame(ctx context.Context, teamID kbo.TeamID, from time.Time) (*store.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_schedule
		WHERE (home_team = $1 OR away_team = $1)
			AND status = 'scheduled'
			AND date >= $2
		ORDER BY date
		LIMIT 1
	`

	game := &store.Game{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID, from).Scan(
		&game.ID, &game.Date, &game.HomeTeam, &game.AwayTeam, &game.Status,
		&game.HomeScore, &game.AwayScore, &game.Winner, &game.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying next game: %w", err)
	}
	return game, nil
}

func scanGames(rows *sql.Rows) ([]*store.Game, error) {
	var games []*store.Game
	for rows.Next() {
		game := &store.Game{}
		err := rows.Scan(
			&game.ID, &game.Date, &game.HomeTeam, &game.AwayTeam, &game.Status,
			&game.HomeScore, &game.AwayScore, &game.Winner, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}
