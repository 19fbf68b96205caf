package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/dugout/internal/kbo"
	"github.com/fortuna/dugout/internal/store"
)

// StatsRepository handles the four season-total stat tables. Each table
// holds exactly one row per team, keyed by team_id and continuously
// overwritten: upserts are idempotent and last write wins.
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// UpsertBatting inserts or overwrites a team's batting totals.
func (r *StatsRepository) UpsertBatting(ctx context.Context, s *store.BattingStats) error {
	query := `
		INSERT INTO batting_stats
			(team_id, team_name, avg, gp, ab, r, h, doubles, triples, hr, tb, rbi, sac, sf)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			avg = EXCLUDED.avg,
			gp = EXCLUDED.gp,
			ab = EXCLUDED.ab,
			r = EXCLUDED.r,
			h = EXCLUDED.h,
			doubles = EXCLUDED.doubles,
			triples = EXCLUDED.triples,
			hr = EXCLUDED.hr,
			tb = EXCLUDED.tb,
			rbi = EXCLUDED.rbi,
			sac = EXCLUDED.sac,
			sf = EXCLUDED.sf,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		s.TeamID, s.TeamName, s.Avg, s.GP, s.AB, s.R, s.H,
		s.Doubles, s.Triples, s.HR, s.TB, s.RBI, s.SAC, s.SF,
	)
	if err != nil {
		return fmt.Errorf("upserting batting stats for %s: %w", s.TeamID, err)
	}
	return nil
}

// UpsertPitching inserts or overwrites a team's pitching totals.
func (r *StatsRepository) UpsertPitching(ctx context.Context, s *store.PitchingStats) error {
	query := `
		INSERT INTO pitching_stats
			(team_id, team_name, era, g, w, l, sv, hld, wpct, ip, h, hr, bb, hbp, so, r, er, whip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			era = EXCLUDED.era,
			g = EXCLUDED.g,
			w = EXCLUDED.w,
			l = EXCLUDED.l,
			sv = EXCLUDED.sv,
			hld = EXCLUDED.hld,
			wpct = EXCLUDED.wpct,
			ip = EXCLUDED.ip,
			h = EXCLUDED.h,
			hr = EXCLUDED.hr,
			bb = EXCLUDED.bb,
			hbp = EXCLUDED.hbp,
			so = EXCLUDED.so,
			r = EXCLUDED.r,
			er = EXCLUDED.er,
			whip = EXCLUDED.whip,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		s.TeamID, s.TeamName, s.ERA, s.G, s.W, s.L, s.SV, s.HLD, s.WPct,
		s.IP, s.H, s.HR, s.BB, s.HBP, s.SO, s.R, s.ER, s.WHIP,
	)
	if err != nil {
		return fmt.Errorf("upserting pitching stats for %s: %w", s.TeamID, err)
	}
	return nil
}

// UpsertFielding inserts or overwrites a team's fielding totals.
func (r *StatsRepository) UpsertFielding(ctx context.Context, s *store.FieldingStats) error {
	query := `
		INSERT INTO fielding_stats
			(team_id, team_name, g, e, pk, po, a, dp, fpct, pb, sb, cs, cs_pct)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			g = EXCLUDED.g,
			e = EXCLUDED.e,
			pk = EXCLUDED.pk,
			po = EXCLUDED.po,
			a = EXCLUDED.a,
			dp = EXCLUDED.dp,
			fpct = EXCLUDED.fpct,
			pb = EXCLUDED.pb,
			sb = EXCLUDED.sb,
			cs = EXCLUDED.cs,
			cs_pct = EXCLUDED.cs_pct,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		s.TeamID, s.TeamName, s.G, s.E, s.PK, s.PO, s.A, s.DP,
		s.FPct, s.PB, s.SB, s.CS, s.CSPct,
	)
	if err != nil {
		return fmt.Errorf("upserting fielding stats for %s: %w", s.TeamID, err)
	}
	return nil
}

// UpsertBaserunning inserts or overwrites a team's baserunning totals.
func (r *StatsRepository) UpsertBaserunning(ctx context.Context, s *store.BaserunningStats) error {
	query := `
		INSERT INTO baserunning_stats
			(team_id, team_name, g, sba, sb, cs, sb_pct, oob, pko)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			g = EXCLUDED.g,
			sba = EXCLUDED.sba,
			sb = EXCLUDED.sb,
			cs = EXCLUDED.cs,
			sb_pct = EXCLUDED.sb_pct,
			oob = EXCLUDED.oob,
			pko = EXCLUDED.pko,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		s.TeamID, s.TeamName, s.G, s.SBA, s.SB, s.CS, s.SBPct, s.OOB, s.PKO,
	)
	if err != nil {
		return fmt.Errorf("upserting baserunning stats for %s: %w", s.TeamID, err)
	}
	return nil
}

// Count returns the number of rows in one of the stat tables. Used by the
// pipelines for the post-write sanity check.
func (r *StatsRepository) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case "batting_stats", "pitching_stats", "fielding_stats", "baserunning_stats":
	default:
		return 0, fmt.Errorf("unknown stats table: %s", table)
	}

	var count int
	err := r.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return count, nil
}

// GetBatting returns one team's batting totals.
func (r *StatsRepository) GetBatting(ctx context.Context, teamID kbo.TeamID) (*store.BattingStats, error) {
	query := `
		SELECT team_id, team_name, avg, gp, ab, r, h, doubles, triples, hr,
			tb, rbi, sac, sf, updated_at
		FROM batting_stats
		WHERE team_id = $1
	`

	s := &store.BattingStats{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID).Scan(
		&s.TeamID, &s.TeamName, &s.Avg, &s.GP, &s.AB, &s.R, &s.H,
		&s.Doubles, &s.Triples, &s.HR, &s.TB, &s.RBI, &s.SAC, &s.SF,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying batting stats: %w", err)
	}
	return s, nil
}

// GetPitching returns one team's pitching totals.
func (r *StatsRepository) GetPitching(ctx context.Context, teamID kbo.TeamID) (*store.PitchingStats, error) {
	query := `
		SELECT team_id, team_name, era, g, w, l, sv, hld, wpct, ip, h, hr,
			bb, hbp, so, r, er, whip, updated_at
		FROM pitching_stats
		WHERE team_id = $1
	`

	s := &store.PitchingStats{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID).Scan(
		&s.TeamID, &s.TeamName, &s.ERA, &s.G, &s.W, &s.L, &s.SV, &s.HLD,
		&s.WPct, &s.IP, &s.H, &s.HR, &s.BB, &s.HBP, &s.SO, &s.R, &s.ER,
		&s.WHIP, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying pitching stats: %w", err)
	}
	return s, nil
}

// GetFielding returns one team's fielding totals.
func (r *StatsRepository) GetFielding(ctx context.Context, teamID kbo.TeamID) (*store.FieldingStats, error) {
	query := `
		SELECT team_id, team_name, g, e, pk, po, a, dp, fpct, pb, sb, cs,
			cs_pct, updated_at
		FROM fielding_stats
		WHERE team_id = $1
	`

	s := &store.FieldingStats{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID).Scan(
		&s.TeamID, &s.TeamName, &s.G, &s.E, &s.PK, &s.PO, &s.A, &s.DP,
		&s.FPct, &s.PB, &s.SB, &s.CS, &s.CSPct, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying fielding stats: %w", err)
	}
	return s, nil
}

// GetBaserunning returns one team's baserunning totals.
func (r *StatsRepository) GetBaserunning(ctx context.Context, teamID kbo.TeamID) (*store.BaserunningStats, error) {
	query := `
		SELECT team_id, team_name, g, sba, sb, cs, sb_pct, oob, pko, updated_at
		FROM baserunning_stats
		WHERE team_id = $1
	`

	s := &store.BaserunningStats{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID).Scan(
		&s.TeamID, &s.TeamName, &s.G, &s.SBA, &s.SB, &s.CS, &s.SBPct,
		&s.OOB, &s.PKO, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying baserunning stats: %w", err)
	}
	return s, nil
}
