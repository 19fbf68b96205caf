package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/dugout/internal/kbo"
	"github.com/fortuna/dugout/internal/store"
)

// ScheduleBaseURL is the mobile schedule page; it renders server-side and
// needs no script execution.
const ScheduleBaseURL = "https://m.sports.naver.com/kbaseball/schedule/index"

// GameStore is the slice of the game repository the sync needs.
// Satisfied by repository.GameRepository.
type GameStore interface {
	Find(ctx context.Context, date time.Time, home, away kbo.TeamID) (*store.Game, error)
	UpdateResult(ctx context.Context, game *store.Game) error
	CountForDate(ctx context.Context, date time.Time) (int, error)
}

// GameNotifier receives fixtures whose result or status just changed.
// Implementations must not block; failures are theirs to log.
type GameNotifier interface {
	NotifyGameUpdate(ctx context.Context, game *store.Game)
}

// GameSyncSelectors are the CSS hooks for the schedule page. The site is
// built with hashed CSS-module class names that change on every deploy,
// so these match on the stable class prefix and live in configuration.
type GameSyncSelectors struct {
	Section   string // one league's block of games
	Title     string // league name inside a section
	Match     string // one game box
	EmptyItem string // placeholder box on league-off days
	Status    string // game state text
	TeamItem  string // one side's team block (away first, home second)
	TeamName  string // team display name inside a team block
	HomeMark  string // marker present on the home side
	ScoreWrap string // one side's score block
	Score     string // score text inside a score block
}

// DefaultGameSyncSelectors returns prefix matches for the page's current
// class names.
func DefaultGameSyncSelectors() GameSyncSelectors {
	return GameSyncSelectors{
		Section:   `[class*="ScheduleAllType_match_list_group__"]`,
		Title:     `[class*="ScheduleAllType_title__"]`,
		Match:     `[class*="MatchBox_match_item__"]`,
		EmptyItem: `ScheduleAllType_match_item_empty__`,
		Status:    `[class*="MatchBox_status__"]`,
		TeamItem:  `[class*="MatchBoxHeadToHeadArea_team_item__"]`,
		TeamName:  `[class*="MatchBoxHeadToHeadArea_team__"]`,
		HomeMark:  `[class*="MatchBoxHeadToHeadArea_home_mark__"]`,
		ScoreWrap: `[class*="MatchBoxHeadToHeadArea_score_wrap__"]`,
		Score:     `[class*="MatchBoxHeadToHeadArea_score__"]`,
	}
}

// LeagueMarker identifies the KBO section among the leagues on the page.
const LeagueMarker = "KBO리그"

var gameStatuses = map[string]string{
	"예정": store.GameScheduled,
	"종료": store.GameCompleted,
	"연기": store.GamePostponed,
	"취소": store.GameCancelled,
}

var scorePattern = regexp.MustCompile(`\d+`)

// GameSync scrapes the day's KBO fixtures from the schedule page and
// updates the pre-seeded rows in game_schedule. It never inserts: a
// scraped game without a seeded fixture is reported, not created.
type GameSync struct {
	fetcher   *kbo.Fetcher
	games     GameStore
	notifiers []GameNotifier
	selectors GameSyncSelectors
	baseURL   string

	// now is swapped in tests to pin the target date.
	now func() time.Time
}

// NewGameSync creates the sync against the default schedule URL and
// selectors. Notifiers receive every fixture that actually changed.
func NewGameSync(fetcher *kbo.Fetcher, games GameStore, notifiers ...GameNotifier) *GameSync {
	return &GameSync{
		fetcher:   fetcher,
		games:     games,
		notifiers: notifiers,
		selectors: DefaultGameSyncSelectors(),
		baseURL:   ScheduleBaseURL,
		now:       time.Now,
	}
}

// Name implements Runner.
func (g *GameSync) Name() string { return "games" }

// Run scrapes today's fixtures (today in KST, the league's clock) and
// applies any result changes.
func (g *GameSync) Run(ctx context.Context) *ScrapeReport {
	report := &ScrapeReport{Pipeline: g.Name(), Timestamp: time.Now()}

	now := g.now().In(kstLocation())
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	url := fmt.Sprintf("%s?date=%s", g.baseURL, date.Format("2006-01-02"))

	doc, err := g.fetcher.FetchDocument(ctx, "", url)
	if err != nil {
		log.Printf("⚠️ [games] fetch failed: %v", err)
		return report.failed(err)
	}

	updates, rejections := parseScheduleDoc(doc, g.selectors)
	report.RowsFetched = len(updates)
	report.Rejections = rejections
	report.RowsRejected = len(rejections)

	if len(updates) == 0 && len(rejections) == 0 {
		report.Success = true
		log.Printf("✓ [games] no KBO games on %s", date.Format("2006-01-02"))
		return report
	}

	for _, u := range updates {
		existing, err := g.games.Find(ctx, date, u.home, u.away)
		if err != nil {
			if fatalPersistErr(ctx, err) {
				log.Printf("⚠️ [games] persistence unavailable: %v", err)
				return report.failed(err)
			}
			report.RowsRejected++
			report.Rejections = append(report.Rejections, fmt.Sprintf("%s vs %s: lookup: %v", u.away, u.home, err))
			continue
		}
		if existing == nil {
			report.RowsRejected++
			report.Rejections = append(report.Rejections, fmt.Sprintf("%s vs %s: no seeded fixture", u.away, u.home))
			log.Printf("⚠️ [games] no seeded fixture for %s vs %s on %s", u.away, u.home, date.Format("2006-01-02"))
			continue
		}

		if !u.changes(existing) {
			continue
		}

		u.apply(existing)
		if err := g.games.UpdateResult(ctx, existing); err != nil {
			if fatalPersistErr(ctx, err) {
				log.Printf("⚠️ [games] persistence unavailable: %v", err)
				return report.failed(err)
			}
			report.RowsRejected++
			report.Rejections = append(report.Rejections, fmt.Sprintf("%s vs %s: update: %v", u.away, u.home, err))
			continue
		}
		report.RowsAccepted++

		for _, n := range g.notifiers {
			n.NotifyGameUpdate(ctx, existing)
		}
		log.Printf("✓ [games] updated %s vs %s: %s", u.away, u.home, existing.Status)
	}

	if count, err := g.games.CountForDate(ctx, date); err != nil {
		log.Printf("⚠️ [games] post-write count failed: %v", err)
	} else {
		report.RowsPersisted = count
	}

	report.Success = true
	log.Printf("✓ [games] %d scraped, %d updated, %d skipped",
		report.RowsFetched, report.RowsAccepted, report.RowsFetched-report.RowsAccepted-report.RowsRejected)
	return report
}

// gameUpdate is one game as scraped, before matching it to a fixture.
type gameUpdate struct {
	home, away kbo.TeamID
	status     string
	homeScore  *int
	awayScore  *int
	winner     kbo.TeamID // zero when tied or not completed
}

// changes reports whether the scraped state differs from the stored row.
func (u *gameUpdate) changes(g *store.Game) bool {
	if g.Status != u.status {
		return true
	}
	if !nullIntEqual(g.HomeScore, u.homeScore) || !nullIntEqual(g.AwayScore, u.awayScore) {
		return true
	}
	winner := sql.NullString{String: string(u.winner), Valid: u.winner != ""}
	return g.Winner != winner
}

// apply copies the scraped state onto the stored row's mutable fields.
func (u *gameUpdate) apply(g *store.Game) {
	g.Status = u.status
	g.HomeScore = nullInt(u.homeScore)
	g.AwayScore = nullInt(u.awayScore)
	g.Winner = sql.NullString{String: string(u.winner), Valid: u.winner != ""}
}

func nullInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func nullIntEqual(a sql.NullInt32, b *int) bool {
	if b == nil {
		return !a.Valid
	}
	return a.Valid && a.Int32 == int32(*b)
}

// parseScheduleDoc walks the schedule page and extracts the KBO section's
// games. Games with an unresolvable team are skipped with a reason rather
// than guessed at.
func parseScheduleDoc(doc *goquery.Document, sel GameSyncSelectors) ([]*gameUpdate, []string) {
	var updates []*gameUpdate
	var rejections []string

	doc.Find(sel.Section).Each(func(_ int, section *goquery.Selection) {
		if !strings.Contains(section.Find(sel.Title).Text(), LeagueMarker) {
			return
		}

		section.Find(sel.Match).Each(func(i int, item *goquery.Selection) {
			if cls, _ := item.Attr("class"); strings.Contains(cls, sel.EmptyItem) {
				return
			}

			u, err := parseMatchBox(item, sel)
			if err != nil {
				rejections = append(rejections, fmt.Sprintf("game %d: %v", i, err))
				return
			}
			updates = append(updates, u)
		})
	})

	return updates, rejections
}

func parseMatchBox(item *goquery.Selection, sel GameSyncSelectors) (*gameUpdate, error) {
	u := &gameUpdate{status: store.GameScheduled}

	if statusText := strings.TrimSpace(item.Find(sel.Status).First().Text()); statusText != "" {
		if mapped, ok := gameStatuses[statusText]; ok {
			u.status = mapped
		}
	}

	teamItems := item.Find(sel.TeamItem)
	if teamItems.Length() < 2 {
		return nil, fmt.Errorf("expected 2 team blocks, found %d", teamItems.Length())
	}

	// The page lists the away side first, but on some layouts the order
	// flips; the home mark on the second block is authoritative.
	firstName := strings.TrimSpace(teamItems.Eq(0).Find(sel.TeamName).First().Text())
	secondName := strings.TrimSpace(teamItems.Eq(1).Find(sel.TeamName).First().Text())
	secondIsHome := teamItems.Eq(1).Find(sel.HomeMark).Length() > 0

	homeName, awayName := secondName, firstName
	if !secondIsHome {
		homeName, awayName = firstName, secondName
	}

	home, err := kbo.ResolveTeam(homeName)
	if err != nil {
		return nil, fmt.Errorf("home team: %w", err)
	}
	away, err := kbo.ResolveTeam(awayName)
	if err != nil {
		return nil, fmt.Errorf("away team: %w", err)
	}
	u.home, u.away = home, away

	if u.status == store.GameCompleted {
		scoreWraps := item.Find(sel.ScoreWrap)
		if scoreWraps.Length() >= 2 {
			first := extractScore(scoreWraps.Eq(0).Find(sel.Score).First().Text())
			second := extractScore(scoreWraps.Eq(1).Find(sel.Score).First().Text())

			// Score blocks follow the team blocks' order.
			u.homeScore, u.awayScore = second, first
			if !secondIsHome {
				u.homeScore, u.awayScore = first, second
			}

			if u.homeScore != nil && u.awayScore != nil {
				switch {
				case *u.homeScore > *u.awayScore:
					u.winner = u.home
				case *u.awayScore > *u.homeScore:
					u.winner = u.away
				}
			}
		}
	}

	return u, nil
}

// extractScore pulls the first run of digits out of a score cell, which
// may carry extra text ("5 승리").
func extractScore(text string) *int {
	m := scorePattern.FindString(text)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}
