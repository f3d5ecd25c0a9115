package student

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	GradeAPlus = "A+"
	GradeA     = "A"
	GradeB     = "B"
	GradeC     = "C"
	GradeF     = "F"

	StatusEligible    = "Eligible"
	StatusNotEligible = "Not Eligible"

	StatusPaid    = "Paid"
	StatusPending = "Pending"

	// EligibilityThreshold is the minimum attendance percentage to be Eligible.
	EligibilityThreshold = 75.0

	suggestionMinRatio = 0.7
)

type threshold struct {
	min   float64
	grade string
	point int
}

var (
	gradeLadder = []threshold{
		{min: 90, grade: GradeAPlus},
		{min: 80, grade: GradeA},
		{min: 70, grade: GradeB},
		{min: 60, grade: GradeC},
	}

	gradePointLadder = []threshold{
		{min: 90, point: 10},
		{min: 80, point: 9},
		{min: 70, point: 8},
		{min: 60, point: 7},
		{min: 50, point: 6},
		{min: 40, point: 5},
	}
)

// MissingColumnsError is returned when an upload lacks required numeric columns.
type MissingColumnsError struct {
	Missing []string
	// Suggestions maps a missing column to the closest uploaded header, when one looks like a typo.
	Suggestions map[string]string
}

func (e *MissingColumnsError) Error() string {
	return "missing columns: " + strings.Join(e.Missing, ", ")
}

// Message is the user-facing description of the error.
func (e *MissingColumnsError) Message() string {
	msg := fmt.Sprintf("Missing columns: [%s]", strings.Join(e.Missing, ", "))
	var hints []string
	for _, col := range e.Missing {
		if s, ok := e.Suggestions[col]; ok {
			hints = append(hints, fmt.Sprintf("%q for %q", s, col))
		}
	}
	if len(hints) > 0 {
		msg += " (did you mean " + strings.Join(hints, ", ") + "?)"
	}
	return msg
}

// Validate checks that every required column is part of columns.
func Validate(columns []string) error {
	present := toSet(columns)
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingColumnsError{Missing: missing, Suggestions: suggest(missing, columns)}
}

func suggest(missing, columns []string) map[string]string {
	ratio := func(a, b string) float64 {
		a, b = strings.ToLower(a), strings.ToLower(b)
		return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
	}

	var suggestions map[string]string
	for _, col := range missing {
		best, bestRatio := "", suggestionMinRatio
		for _, c := range columns {
			if knownColumns[c] {
				continue
			}
			if r := ratio(col, c); r >= bestRatio {
				best, bestRatio = c, r
			}
		}
		if best != "" {
			if suggestions == nil {
				suggestions = make(map[string]string)
			}
			suggestions[col] = best
		}
	}
	return suggestions
}

// ParseTable validates the header of t and types its rows.
// No record is returned when a required column is missing.
func ParseTable(t Table) ([]RawRecord, error) {
	if err := Validate(t.Columns); err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		var rec RawRecord
		for i, col := range t.Columns {
			if col == "" || IsDerived(col) {
				continue
			}
			var cell Cell
			if i < len(row) {
				cell = row[i]
			}
			rec.set(col, cell)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Load parses and processes t.
func Load(t Table) (Dataset, error) {
	raws, err := ParseTable(t)
	if err != nil {
		return Dataset{}, err
	}
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c != "" && !IsDerived(c) {
			cols = append(cols, c)
		}
	}
	return Dataset{Columns: cols, Records: Process(raws)}, nil
}

// Process computes the derived columns of every record.
func Process(raws []RawRecord) []Record {
	records := make([]Record, len(raws))
	for i, raw := range raws {
		records[i] = Record{RawRecord: raw, Derived: Derive(raw)}
	}
	return records
}

// Derive computes the derived columns of a single record.
func Derive(r RawRecord) Derived {
	total := finite(r.InternalMarks + r.ExternalMarks)
	pct := AttendancePercentage(r.Attended, r.TotalClasses)
	due := finite(r.TuitionFees - r.FeePaid)
	return Derived{
		TotalMarks: total,
		Grade:      Grade(total),
		// both columns bucket the external marks
		GPASub:               GradePoint(r.ExternalMarks),
		SGPA:                 GradePoint(r.ExternalMarks),
		AttendancePercentage: pct,
		AttendanceStatus:     AttendanceStatus(pct),
		FeeDue:               due,
		PaymentStatus:        PaymentStatus(due),
	}
}

// Grade buckets the total marks into a letter grade.
func Grade(totalMarks float64) string {
	for _, t := range gradeLadder {
		if totalMarks >= t.min {
			return t.grade
		}
	}
	return GradeF
}

// GradePoint buckets marks into a 0-10 grade point.
func GradePoint(marks float64) int {
	for _, t := range gradePointLadder {
		if marks >= t.min {
			return t.point
		}
	}
	return 0
}

// AttendancePercentage returns attended/total*100, or 0 when no class took place.
// Overflowing ratios saturate at ±MaxFloat64.
func AttendancePercentage(attended, totalClasses float64) float64 {
	if totalClasses == 0 {
		return 0
	}
	return finite(attended / totalClasses * 100)
}

func AttendanceStatus(percentage float64) string {
	if percentage >= EligibilityThreshold {
		return StatusEligible
	}
	return StatusNotEligible
}

func PaymentStatus(feeDue float64) string {
	if feeDue <= 0 {
		return StatusPaid
	}
	return StatusPending
}
