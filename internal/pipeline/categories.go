package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/fortuna/dugout/internal/kbo"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

// Source page URLs. The KBO record pages are classic ASP.NET and respond
// to a plain GET with fully rendered tables.
const (
	BattingURL     = "https://www.koreabaseball.com/Record/Team/Hitter/Basic1.aspx"
	PitchingURL    = "https://www.koreabaseball.com/Record/Team/Pitcher/Basic1.aspx"
	FieldingURL    = "https://www.koreabaseball.com/Record/Team/Defense/Basic.aspx"
	BaserunningURL = "https://www.koreabaseball.com/Record/Team/Runner/Basic.aspx"
	RankingsURL    = "https://www.koreabaseball.com/Record/TeamRank/TeamRankDaily.aspx"

	// StatTableSelector matches the data table shared by all record pages.
	StatTableSelector = "table.tData"
)

// Column layouts of the record pages as of the 2025 season. Index 0 is the
// rank cell, index 1 the team name.
var (
	battingSchema = kbo.ColumnSchema{
		NameCol:  1,
		MinCells: 15,
		Fields: []kbo.Field{
			{Name: "avg", Col: 2, Kind: kbo.Float, Required: true, Digits: 3},
			{Name: "gp", Col: 3, Kind: kbo.Int, Required: true},
			{Name: "ab", Col: 5, Kind: kbo.Int, Required: true},
			{Name: "r", Col: 6, Kind: kbo.Int, Required: true},
			{Name: "h", Col: 7, Kind: kbo.Int, Required: true},
			{Name: "doubles", Col: 8, Kind: kbo.Int},
			{Name: "triples", Col: 9, Kind: kbo.Int},
			{Name: "hr", Col: 10, Kind: kbo.Int, Required: true},
			{Name: "tb", Col: 11, Kind: kbo.Int},
			{Name: "rbi", Col: 12, Kind: kbo.Int},
			{Name: "sac", Col: 13, Kind: kbo.Int},
			{Name: "sf", Col: 14, Kind: kbo.Int},
		},
	}

	pitchingSchema = kbo.ColumnSchema{
		NameCol:  1,
		MinCells: 18,
		Fields: []kbo.Field{
			{Name: "era", Col: 2, Kind: kbo.Float, Required: true, Digits: 2},
			{Name: "g", Col: 3, Kind: kbo.Int, Required: true},
			{Name: "w", Col: 4, Kind: kbo.Int, Required: true},
			{Name: "l", Col: 5, Kind: kbo.Int, Required: true},
			{Name: "sv", Col: 6, Kind: kbo.Int},
			{Name: "hld", Col: 7, Kind: kbo.Int},
			{Name: "wpct", Col: 8, Kind: kbo.Float, Required: true, Digits: 3},
			{Name: "ip", Col: 9, Kind: kbo.Innings, Required: true},
			{Name: "h", Col: 10, Kind: kbo.Int, Required: true},
			{Name: "hr", Col: 11, Kind: kbo.Int},
			{Name: "bb", Col: 12, Kind: kbo.Int},
			{Name: "hbp", Col: 13, Kind: kbo.Int},
			{Name: "so", Col: 14, Kind: kbo.Int},
			{Name: "r", Col: 15, Kind: kbo.Int},
			{Name: "er", Col: 16, Kind: kbo.Int},
			{Name: "whip", Col: 17, Kind: kbo.Float, Digits: 2},
		},
	}

	fieldingSchema = kbo.ColumnSchema{
		NameCol:  1,
		MinCells: 13,
		Fields: []kbo.Field{
			{Name: "g", Col: 2, Kind: kbo.Int, Required: true},
			{Name: "e", Col: 3, Kind: kbo.Int, Required: true},
			{Name: "pk", Col: 4, Kind: kbo.Int},
			{Name: "po", Col: 5, Kind: kbo.Int, Required: true},
			{Name: "a", Col: 6, Kind: kbo.Int, Required: true},
			{Name: "dp", Col: 7, Kind: kbo.Int},
			{Name: "fpct", Col: 8, Kind: kbo.Float, Required: true, Digits: 3},
			{Name: "pb", Col: 9, Kind: kbo.Int},
			{Name: "sb", Col: 10, Kind: kbo.Int},
			{Name: "cs", Col: 11, Kind: kbo.Int},
			{Name: "cs_pct", Col: 12, Kind: kbo.Float, Digits: 1},
		},
	}

	baserunningSchema = kbo.ColumnSchema{
		NameCol:  1,
		MinCells: 9,
		Fields: []kbo.Field{
			{Name: "g", Col: 2, Kind: kbo.Int, Required: true},
			{Name: "sba", Col: 3, Kind: kbo.Int, Required: true},
			{Name: "sb", Col: 4, Kind: kbo.Int, Required: true},
			{Name: "cs", Col: 5, Kind: kbo.Int, Required: true},
			{Name: "sb_pct", Col: 6, Kind: kbo.Float, Required: true, Digits: 1},
			{Name: "oob", Col: 7, Kind: kbo.Int},
			{Name: "pko", Col: 8, Kind: kbo.Int},
		},
	}

	rankingsSchema = kbo.ColumnSchema{
		NameCol:  1,
		MinCells: 8,
		Fields: []kbo.Field{
			{Name: "rank", Col: 0, Kind: kbo.Int, Required: true},
			{Name: "wins", Col: 3, Kind: kbo.Int, Required: true},
			{Name: "losses", Col: 4, Kind: kbo.Int, Required: true},
			{Name: "ties", Col: 5, Kind: kbo.Int, Required: true},
			{Name: "win_rate", Col: 6, Kind: kbo.Float, Required: true, Digits: 3},
			{Name: "games_back", Col: 7, Kind: kbo.Float, Digits: 1},
		},
	}
)

// NewBattingPipeline scrapes the team batting record page.
func NewBattingPipeline(fetcher *kbo.Fetcher, repo *repository.StatsRepository) *Pipeline {
	return New(Config{
		Name:          "batting",
		URL:           BattingURL,
		TableSelector: StatTableSelector,
		Schema:        battingSchema,
		Sink:          &battingSink{repo: repo},
	}, fetcher)
}

// NewPitchingPipeline scrapes the team pitching record page.
func NewPitchingPipeline(fetcher *kbo.Fetcher, repo *repository.StatsRepository) *Pipeline {
	return New(Config{
		Name:          "pitching",
		URL:           PitchingURL,
		TableSelector: StatTableSelector,
		Schema:        pitchingSchema,
		Sink:          &pitchingSink{repo: repo},
	}, fetcher)
}

// NewFieldingPipeline scrapes the team fielding record page.
func NewFieldingPipeline(fetcher *kbo.Fetcher, repo *repository.StatsRepository) *Pipeline {
	return New(Config{
		Name:          "fielding",
		URL:           FieldingURL,
		TableSelector: StatTableSelector,
		Schema:        fieldingSchema,
		Sink:          &fieldingSink{repo: repo},
	}, fetcher)
}

// NewBaserunningPipeline scrapes the team baserunning record page.
func NewBaserunningPipeline(fetcher *kbo.Fetcher, repo *repository.StatsRepository) *Pipeline {
	return New(Config{
		Name:          "baserunning",
		URL:           BaserunningURL,
		TableSelector: StatTableSelector,
		Schema:        baserunningSchema,
		Sink:          &baserunningSink{repo: repo},
	}, fetcher)
}

// NewRankingsPipeline scrapes the daily team rankings page. Rows are
// stamped with the date printed on the page itself, not the server clock,
// so a page cached overnight lands on the right day.
func NewRankingsPipeline(fetcher *kbo.Fetcher, repo *repository.RankingRepository) *Pipeline {
	return New(Config{
		Name:          "rankings",
		URL:           RankingsURL,
		TableSelector: StatTableSelector,
		Schema:        rankingsSchema,
		Sink:          &rankingSink{repo: repo},
		PageDate:      rankingsPageDate,
	}, fetcher)
}

// rankingsPageDate reads the date label printed above the rankings table,
// e.g. "2025.06.15". Falls back to today in KST when the label is missing
// or malformed.
func rankingsPageDate(res *kbo.TableResult) time.Time {
	if res.Doc != nil {
		label := strings.TrimSpace(res.Doc.Find(`span[id*="lblSearchDateTitle"]`).First().Text())
		if label != "" {
			if d, err := time.Parse("2006-01-02", strings.ReplaceAll(label, ".", "-")); err == nil {
				return d
			}
		}
	}
	now := time.Now().In(kstLocation())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// kstLocation returns Asia/Seoul, or a fixed +09:00 zone when tzdata is
// unavailable in the container image.
func kstLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

type battingSink struct {
	repo *repository.StatsRepository
}

func (s *battingSink) Upsert(ctx context.Context, rec *kbo.StatRecord) error {
	return s.repo.UpsertBatting(ctx, &store.BattingStats{
		TeamID:   rec.TeamID,
		TeamName: rec.TeamName,
		Avg:      rec.Float("avg"),
		GP:       rec.Int("gp"),
		AB:       rec.Int("ab"),
		R:        rec.Int("r"),
		H:        rec.Int("h"),
		Doubles:  rec.Int("doubles"),
		Triples:  rec.Int("triples"),
		HR:       rec.Int("hr"),
		TB:       rec.Int("tb"),
		RBI:      rec.Int("rbi"),
		SAC:      rec.Int("sac"),
		SF:       rec.Int("sf"),
	})
}

func (s *battingSink) Count(ctx context.Context, _ time.Time) (int, error) {
	return s.repo.Count(ctx, "batting_stats")
}

type pitchingSink struct {
	repo *repository.StatsRepository
}

func (s *pitchingSink) Upsert(ctx context.Context, rec *kbo.StatRecord) error {
	return s.repo.UpsertPitching(ctx, &store.PitchingStats{
		TeamID:   rec.TeamID,
		TeamName: rec.TeamName,
		ERA:      rec.Float("era"),
		G:        rec.Int("g"),
		W:        rec.Int("w"),
		L:        rec.Int("l"),
		SV:       rec.Int("sv"),
		HLD:      rec.Int("hld"),
		WPct:     rec.Float("wpct"),
		IP:       rec.Float("ip"),
		H:        rec.Int("h"),
		HR:       rec.Int("hr"),
		BB:       rec.Int("bb"),
		HBP:      rec.Int("hbp"),
		SO:       rec.Int("so"),
		R:        rec.Int("r"),
		ER:       rec.Int("er"),
		WHIP:     rec.Float("whip"),
	})
}

func (s *pitchingSink) Count(ctx context.Context, _ time.Time) (int, error) {
	return s.repo.Count(ctx, "pitching_stats")
}

type fieldingSink struct {
	repo *repository.StatsRepository
}

func (s *fieldingSink) Upsert(ctx context.Context, rec *kbo.StatRecord) error {
	return s.repo.UpsertFielding(ctx, &store.FieldingStats{
		TeamID:   rec.TeamID,
		TeamName: rec.TeamName,
		G:        rec.Int("g"),
		E:        rec.Int("e"),
		PK:       rec.Int("pk"),
		PO:       rec.Int("po"),
		A:        rec.Int("a"),
		DP:       rec.Int("dp"),
		FPct:     rec.Float("fpct"),
		PB:       rec.Int("pb"),
		SB:       rec.Int("sb"),
		CS:       rec.Int("cs"),
		CSPct:    rec.Float("cs_pct"),
	})
}

func (s *fieldingSink) Count(ctx context.Context, _ time.Time) (int, error) {
	return s.repo.Count(ctx, "fielding_stats")
}

type baserunningSink struct {
	repo *repository.StatsRepository
}

func (s *baserunningSink) Upsert(ctx context.Context, rec *kbo.StatRecord) error {
	return s.repo.UpsertBaserunning(ctx, &store.BaserunningStats{
		TeamID:   rec.TeamID,
		TeamName: rec.TeamName,
		G:        rec.Int("g"),
		SBA:      rec.Int("sba"),
		SB:       rec.Int("sb"),
		CS:       rec.Int("cs"),
		SBPct:    rec.Float("sb_pct"),
		OOB:      rec.Int("oob"),
		PKO:      rec.Int("pko"),
	})
}

func (s *baserunningSink) Count(ctx context.Context, _ time.Time) (int, error) {
	return s.repo.Count(ctx, "baserunning_stats")
}

type rankingSink struct {
	repo *repository.RankingRepository
}

func (s *rankingSink) Upsert(ctx context.Context, rec *kbo.StatRecord) error {
	return s.repo.Upsert(ctx, &store.TeamRanking{
		Date:      rec.Date,
		TeamID:    rec.TeamID,
		TeamName:  rec.TeamName,
		Rank:      rec.Int("rank"),
		Wins:      rec.Int("wins"),
		Losses:    rec.Int("losses"),
		Ties:      rec.Int("ties"),
		WinRate:   rec.Float("win_rate"),
		GamesBack: rec.Float("games_back"),
	})
}

func (s *rankingSink) Count(ctx context.Context, date time.Time) (int, error) {
	return s.repo.CountForDate(ctx, date)
}
