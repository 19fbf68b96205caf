package kbo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RowRejected reports a single malformed table row. It is a value, not a
// panic: the caller records the reason and moves on to the next row.
type RowRejected struct {
	Row    int    // ordinal position of the row in the source table
	Team   string // display name, when recoverable
	Reason string
}

func (e *RowRejected) Error() string {
	if e.Team != "" {
		return fmt.Sprintf("row %d (%s): %s", e.Row, e.Team, e.Reason)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

var inningsPattern = regexp.MustCompile(`^(\d+)(?:\s+(\d+)/(\d+))?`)

// ParseRow extracts, parses and validates one table row against a schema.
// Required fields that fail to parse reject the row; optional ones default
// to zero (the source site leaves rarely-populated columns blank). The
// team display name is resolved to a club code; unknown teams reject the
// row rather than guess. Malformed input never panics.
func ParseRow(cells []string, row int, schema ColumnSchema) (*StatRecord, *RowRejected) {
	if len(cells) < schema.MinCells {
		return nil, &RowRejected{
			Row:    row,
			Reason: fmt.Sprintf("insufficient columns: got %d, need %d", len(cells), schema.MinCells),
		}
	}

	teamName := strings.TrimSpace(cells[schema.NameCol])

	values := make(map[string]float64, len(schema.Fields))
	for _, f := range schema.Fields {
		v, ok := parseCell(cells[f.Col], f)
		if !ok {
			if f.Required {
				return nil, &RowRejected{
					Row:    row,
					Team:   teamName,
					Reason: fmt.Sprintf("invalid required field %q: %q", f.Name, strings.TrimSpace(cells[f.Col])),
				}
			}
			v = 0
		}
		values[f.Name] = v
	}

	teamID, err := ResolveTeam(teamName)
	if err != nil {
		return nil, &RowRejected{Row: row, Team: teamName, Reason: "unknown team"}
	}

	return &StatRecord{
		TeamID:   teamID,
		TeamName: teamName,
		Row:      row,
		Values:   values,
	}, nil
}

func parseCell(raw string, f Field) (float64, bool) {
	text := strings.TrimSpace(raw)

	switch f.Kind {
	case Int:
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, false
		}
		return float64(n), true

	case Float:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return roundTo(v, f.Digits), true

	case Innings:
		v, ok := parseInnings(text)
		if !ok {
			return 0, false
		}
		return v, true
	}

	return 0, false
}

// parseInnings handles "innings pitched" text: a whole number optionally
// followed by a thirds fraction, e.g. "5 2/3" → 5.7, "10" → 10.0.
func parseInnings(text string) (float64, bool) {
	m := inningsPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	whole, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	innings := float64(whole)

	if m[2] != "" && m[3] != "" {
		num, _ := strconv.Atoi(m[2])
		den, _ := strconv.Atoi(m[3])
		if den == 0 {
			return 0, false
		}
		innings += float64(num) / float64(den)
	}

	return roundTo(innings, 1), true
}

// roundTo rounds half away from zero at the given number of decimal digits.
func roundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
