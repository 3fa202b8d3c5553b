// Package schema infers column definitions from parsed rows.
package schema

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

// minDateLength is the length a string must exceed before it is tried as a date.
const minDateLength = 5

// calendarLayouts are tried after cast's layouts. All of them carry a year,
// month and day.
var calendarLayouts = []string{
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006/1/2",
	"2006/1/2 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"Mon, January 2, 2006",
}

// InferSchema returns one column per key of the first row, in that row's key
// order. Only the first row is sampled; see Conflicts for later rows.
func InferSchema(rows []domain.Row) []domain.ColumnDefinition {
	if len(rows) == 0 {
		return []domain.ColumnDefinition{}
	}

	sample := rows[0]
	columns := make([]domain.ColumnDefinition, 0, sample.Len())
	for _, f := range sample.Fields() {
		columns = append(columns, domain.ColumnDefinition{
			Name: f.Key,
			Type: Classify(f.Value),
		})
	}
	return columns
}

// Classify maps a single value to a column type. Precedence: number, boolean,
// native date, date-like string, string. Null is unknown.
func Classify(v domain.Scalar) domain.ColumnType {
	switch v.Kind() {
	case domain.KindNumber:
		return domain.ColumnTypeNumber
	case domain.KindBool:
		return domain.ColumnTypeBoolean
	case domain.KindTime:
		return domain.ColumnTypeDate
	case domain.KindString:
		if LooksLikeDate(v.Text()) {
			return domain.ColumnTypeDate
		}
		return domain.ColumnTypeString
	default:
		return domain.ColumnTypeUnknown
	}
}

// LooksLikeDate reports whether s is longer than five characters, contains a
// digit and parses as a calendar date. Time-only values such as "3:04PM" are
// not dates.
func LooksLikeDate(s string) bool {
	if utf8.RuneCountInString(s) <= minDateLength {
		return false
	}
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return false
	}
	s = strings.TrimSpace(s)
	// cast also accepts clock-only layouts (Kitchen, Stamp), which parse to
	// year zero.
	if t, err := cast.StringToDate(s); err == nil && t.Year() != 0 {
		return true
	}
	for _, layout := range calendarLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// Conflicts returns the names of columns whose values after the first row
// classify differently from the inferred type. Nulls never conflict, and
// columns inferred as unknown are skipped.
func Conflicts(rows []domain.Row, columns []domain.ColumnDefinition) []string {
	var out []string
	if len(rows) < 2 {
		return out
	}
	for _, col := range columns {
		if col.Type == domain.ColumnTypeUnknown {
			continue
		}
		for _, row := range rows[1:] {
			v, ok := row.Get(col.Name)
			if !ok || v.IsNull() {
				continue
			}
			if Classify(v) != col.Type {
				out = append(out, col.Name)
				break
			}
		}
	}
	return out
}

// Describe renders columns as the flat "name (type), ..." list used in prompts.
func Describe(columns []domain.ColumnDefinition) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c.Name + " (" + string(c.Type) + ")"
	}
	return strings.Join(parts, ", ")
}

// ColumnsOfType returns the columns with the given type, in order.
func ColumnsOfType(columns []domain.ColumnDefinition, t domain.ColumnType) []domain.ColumnDefinition {
	var out []domain.ColumnDefinition
	for _, c := range columns {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
