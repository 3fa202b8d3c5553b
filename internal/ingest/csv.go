package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

var (
	floatPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)
	isoPattern   = regexp.MustCompile(`^\d{4}-[01]\d-[0-3]\dT[0-2]\d:[0-5]\d(:[0-5]\d(\.\d+)?)?([+-][0-2]\d:[0-5]\d|Z)$`)
)

// Numbers outside this range lose precision as float64 and stay strings.
const maxExactFloat = 1 << 53

const utf8BOM = "\ufeff"

// ParseCSV reads a header row followed by records. Blank lines are skipped
// and every cell goes through CoerceScalar.
func ParseCSV(ctx context.Context, r io.Reader) ([]domain.Row, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Row{}, nil
	}
	if err != nil {
		return nil, decodeError(FormatCSV, err)
	}
	headers := normalizeHeaders(header)

	rows := make([]domain.Row, 0)
	values := make([]domain.Scalar, 0, len(headers))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decodeError(FormatCSV, err)
		}

		values = values[:0]
		for _, cell := range record {
			values = append(values, CoerceScalar(cell))
		}
		rows = append(rows, buildRow(headers, values))
	}
	return rows, nil
}

// CoerceScalar converts one text cell into a typed value: boolean literals,
// decimal or exponent numbers, ISO-8601 timestamps with a zone, empty as
// null, anything else as a string.
func CoerceScalar(s string) domain.Scalar {
	switch s {
	case "":
		return domain.Null()
	case "true", "TRUE":
		return domain.Bool(true)
	case "false", "FALSE":
		return domain.Bool(false)
	}

	if floatPattern.MatchString(s) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && math.Abs(f) <= maxExactFloat {
			return domain.Number(f)
		}
		return domain.String(s)
	}

	if isoPattern.MatchString(s) {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return domain.Time(t)
		}
		if t, err := time.Parse("2006-01-02T15:04Z07:00", s); err == nil {
			return domain.Time(t)
		}
	}

	return domain.String(s)
}
