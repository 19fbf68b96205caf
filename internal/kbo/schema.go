package kbo

import "time"

// NumericKind selects how a cell's text is parsed.
type NumericKind int

const (
	// Int parses the cell as a plain integer.
	Int NumericKind = iota
	// Float parses the cell as a decimal, rounded to Field.Digits.
	Float
	// Innings parses "innings pitched" text of the form "5 2/3",
	// rounded to one decimal place.
	Innings
)

// Field describes one typed column of a stat table.
type Field struct {
	Name     string
	Col      int         // zero-based cell index in the row
	Kind     NumericKind
	Required bool        // a parse failure rejects the whole row
	Digits   int         // rounding digits for Float kinds
}

// ColumnSchema declares how the positional text cells of one stat
// category's table rows map to typed fields.
type ColumnSchema struct {
	NameCol  int     // cell index holding the team display name
	MinCells int     // rows with fewer cells are rejected outright
	Fields   []Field
}

// StatRecord is one parsed, validated table row: a team plus its numeric
// fields. Integer fields are held as float64 and read back via Int.
type StatRecord struct {
	TeamID   TeamID
	TeamName string
	Row      int // ordinal position in the source table, for diagnostics
	Values   map[string]float64

	// Date tags the record with the page's calendar date. Only set for
	// dated categories (daily rankings); zero otherwise.
	Date time.Time
}

// Float returns the named field's value, or 0 if absent.
func (r *StatRecord) Float(name string) float64 {
	return r.Values[name]
}

// Int returns the named field's value truncated to int, or 0 if absent.
func (r *StatRecord) Int(name string) int {
	return int(r.Values[name])
}
