package store

import (
	"database/sql"
	"time"

	"github.com/fortuna/dugout/internal/kbo"
)

// BattingStats holds a team's current-season batting totals. One row per
// team, overwritten by every scrape tick.
type BattingStats struct {
	TeamID    kbo.TeamID `json:"team_id" db:"team_id"`
	TeamName  string     `json:"team_name" db:"team_name"`
	Avg       float64    `json:"avg" db:"avg"`
	GP        int        `json:"gp" db:"gp"`
	AB        int        `json:"ab" db:"ab"`
	R         int        `json:"r" db:"r"`
	H         int        `json:"h" db:"h"`
	Doubles   int        `json:"doubles" db:"doubles"`
	Triples   int        `json:"triples" db:"triples"`
	HR        int        `json:"hr" db:"hr"`
	TB        int        `json:"tb" db:"tb"`
	RBI       int        `json:"rbi" db:"rbi"`
	SAC       int        `json:"sac" db:"sac"`
	SF        int        `json:"sf" db:"sf"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// PitchingStats holds a team's current-season pitching totals.
type PitchingStats struct {
	TeamID    kbo.TeamID `json:"team_id" db:"team_id"`
	TeamName  string     `json:"team_name" db:"team_name"`
	ERA       float64    `json:"era" db:"era"`
	G         int        `json:"g" db:"g"`
	W         int        `json:"w" db:"w"`
	L         int        `json:"l" db:"l"`
	SV        int        `json:"sv" db:"sv"`
	HLD       int        `json:"hld" db:"hld"`
	WPct      float64    `json:"wpct" db:"wpct"`
	IP        float64    `json:"ip" db:"ip"`
	H         int        `json:"h" db:"h"`
	HR        int        `json:"hr" db:"hr"`
	BB        int        `json:"bb" db:"bb"`
	HBP       int        `json:"hbp" db:"hbp"`
	SO        int        `json:"so" db:"so"`
	R         int        `json:"r" db:"r"`
	ER        int        `json:"er" db:"er"`
	WHIP      float64    `json:"whip" db:"whip"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// FieldingStats holds a team's current-season fielding totals.
type FieldingStats struct {
	TeamID    kbo.TeamID `json:"team_id" db:"team_id"`
	TeamName  string     `json:"team_name" db:"team_name"`
	G         int        `json:"g" db:"g"`
	E         int        `json:"e" db:"e"`
	PK        int        `json:"pk" db:"pk"`
	PO        int        `json:"po" db:"po"`
	A         int        `json:"a" db:"a"`
	DP        int        `json:"dp" db:"dp"`
	FPct      float64    `json:"fpct" db:"fpct"`
	PB        int        `json:"pb" db:"pb"`
	SB        int        `json:"sb" db:"sb"`
	CS        int        `json:"cs" db:"cs"`
	CSPct     float64    `json:"cs_pct" db:"cs_pct"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// BaserunningStats holds a team's current-season baserunning totals.
type BaserunningStats struct {
	TeamID    kbo.TeamID `json:"team_id" db:"team_id"`
	TeamName  string     `json:"team_name" db:"team_name"`
	G         int        `json:"g" db:"g"`
	SBA       int        `json:"sba" db:"sba"`
	SB        int        `json:"sb" db:"sb"`
	CS        int        `json:"cs" db:"cs"`
	SBPct     float64    `json:"sb_pct" db:"sb_pct"`
	OOB       int        `json:"oob" db:"oob"`
	PKO       int        `json:"pko" db:"pko"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// TeamRanking is one team's standing on one calendar day. Historical days
// are preserved so rank trends can be charted.
type TeamRanking struct {
	Date      time.Time  `json:"date" db:"date"`
	TeamID    kbo.TeamID `json:"team_id" db:"team_id"`
	TeamName  string     `json:"team_name" db:"team_name"`
	Rank      int        `json:"rank" db:"rank"`
	Wins      int        `json:"wins" db:"wins"`
	Losses    int        `json:"losses" db:"losses"`
	Ties      int        `json:"ties" db:"ties"`
	WinRate   float64    `json:"win_rate" db:"win_rate"`
	GamesBack float64    `json:"games_back" db:"games_back"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Game statuses as reported by the schedule source.
const (
	GameScheduled = "scheduled"
	GameCompleted = "completed"
	GamePostponed = "postponed"
	GameCancelled = "cancelled"
)

// Game is one scheduled or played fixture. Rows are pre-seeded by the
// schedule import; the sync pipeline only updates status, scores and
// winner, and never inserts or deletes.
type Game struct {
	ID        int            `json:"id" db:"id"`
	Date      time.Time      `json:"date" db:"date"`
	HomeTeam  kbo.TeamID     `json:"home_team" db:"home_team"`
	AwayTeam  kbo.TeamID     `json:"away_team" db:"away_team"`
	Status    string         `json:"status" db:"status"`
	HomeScore sql.NullInt32  `json:"home_score,omitempty" db:"home_score"`
	AwayScore sql.NullInt32  `json:"away_score,omitempty" db:"away_score"`
	Winner    sql.NullString `json:"winner,omitempty" db:"winner"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
