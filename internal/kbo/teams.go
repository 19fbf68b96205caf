package kbo

import (
	"fmt"
	"strings"
)

// TeamID is the stable short code for one of the ten KBO clubs.
type TeamID string

const (
	TeamKIA     TeamID = "KIA"
	TeamSamsung TeamID = "SS"
	TeamLG      TeamID = "LG"
	TeamKT      TeamID = "KT"
	TeamKiwoom  TeamID = "KW"
	TeamNC      TeamID = "NC"
	TeamLotte   TeamID = "LT"
	TeamSSG     TeamID = "SSG"
	TeamDoosan  TeamID = "DU"
	TeamHanwha  TeamID = "HH"
)

// TeamCount is the fixed number of clubs in the league; scrape results are
// capped at this many rows.
const TeamCount = 10

// Teams lists all club codes in a stable order.
var Teams = []TeamID{
	TeamKIA, TeamSamsung, TeamLG, TeamKT, TeamKiwoom,
	TeamNC, TeamLotte, TeamSSG, TeamDoosan, TeamHanwha,
}

// fullNames maps each code to the club's full display name.
var fullNames = map[TeamID]string{
	TeamKIA:     "KIA 타이거즈",
	TeamSamsung: "삼성 라이온즈",
	TeamLG:      "LG 트윈스",
	TeamKT:      "KT 위즈",
	TeamKiwoom:  "키움 히어로즈",
	TeamNC:      "NC 다이노스",
	TeamLotte:   "롯데 자이언츠",
	TeamSSG:     "SSG 랜더스",
	TeamDoosan:  "두산 베어스",
	TeamHanwha:  "한화 이글스",
}

// displayNames maps every display-name variant the KBO and Naver pages are
// known to emit to a club code. The stat pages use short names (roman codes
// or the Korean city/sponsor word), the schedule page sometimes the full
// club name. Historical sponsor names are included so old pages still
// resolve. Lookups on roman-letter variants are case-insensitive; there is
// deliberately no fuzzy or partial matching — an unknown name is dropped,
// never guessed.
var displayNames = map[string]TeamID{
	"KIA":      TeamKIA,
	"삼성":       TeamSamsung,
	"LG":       TeamLG,
	"KT":       TeamKT,
	"키움":       TeamKiwoom,
	"NC":       TeamNC,
	"롯데":       TeamLotte,
	"SSG":      TeamSSG,
	"두산":       TeamDoosan,
	"한화":       TeamHanwha,
	"KIA 타이거즈": TeamKIA,
	"삼성 라이온즈":  TeamSamsung,
	"LG 트윈스":   TeamLG,
	"KT 위즈":    TeamKT,
	"키움 히어로즈":  TeamKiwoom,
	"NC 다이노스":  TeamNC,
	"롯데 자이언츠":  TeamLotte,
	"SSG 랜더스":  TeamSSG,
	"두산 베어스":   TeamDoosan,
	"한화 이글스":   TeamHanwha,

	// Pre-2021 / pre-2019 franchise names still present in archived pages.
	"SK":      TeamSSG,
	"SK 와이번스": TeamSSG,
	"넥센":      TeamKiwoom,
	"넥센 히어로즈": TeamKiwoom,
}

// ErrUnknownTeam is returned by ResolveTeam for names outside the mapping.
type ErrUnknownTeam struct {
	Name string
}

func (e *ErrUnknownTeam) Error() string {
	return fmt.Sprintf("unknown team: %q", e.Name)
}

// ResolveTeam maps a scraped display name to its club code.
func ResolveTeam(displayName string) (TeamID, error) {
	name := strings.TrimSpace(displayName)
	if id, ok := displayNames[name]; ok {
		return id, nil
	}
	// Roman-letter variants ("kia", "Ssg") fold to upper case.
	if id, ok := displayNames[strings.ToUpper(name)]; ok {
		return id, nil
	}
	return "", &ErrUnknownTeam{Name: displayName}
}

// ValidTeam reports whether id is one of the ten club codes.
func ValidTeam(id TeamID) bool {
	_, ok := fullNames[id]
	return ok
}

// TeamName returns the full club display name for a code, or the code
// itself if it is not a known club.
func TeamName(id TeamID) string {
	if name, ok := fullNames[id]; ok {
		return name
	}
	return string(id)
}
