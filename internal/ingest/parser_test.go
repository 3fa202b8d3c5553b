package ingest

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
)

// untouchedReader fails the test if anything reads from it.
type untouchedReader struct{ t *testing.T }

func (r untouchedReader) Read([]byte) (int, error) {
	r.t.Fatal("reader must not be consumed")
	return 0, nil
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"sales.csv", FormatCSV, false},
		{"Report.XLSX", FormatXLSX, false},
		{"legacy.xls", FormatXLS, false},
		{"archive.tar.csv", FormatCSV, false},
		{"notes.txt", "", true},
		{"noext", "", true},
		{"data.csv.json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				assert.True(t, lerrors.IsKind(err, lerrors.KindUnsupportedInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFileRejectsBeforeDecoding(t *testing.T) {
	rows, err := ParseFile(context.Background(), "image.png", untouchedReader{t})
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseCSV(t *testing.T) {
	input := "region,sales,active,when,note\n" +
		"West,100,true,2024-01-05T10:00:00Z,\n" +
		"\n" +
		"East,2.5e3,FALSE,2024-01-05,\"a, quoted\"\n"

	rows, err := ParseFile(context.Background(), "sales.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"region", "sales", "active", "when", "note"}, rows[0].Keys())
	assert.True(t, rows[0].Equal(domain.NewRow(
		domain.F("region", domain.String("West")),
		domain.F("sales", domain.Number(100)),
		domain.F("active", domain.Bool(true)),
		domain.F("when", domain.Time(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))),
		domain.F("note", domain.Null()),
	)), "got %v", rows[0].Fields())
	assert.True(t, rows[1].Equal(domain.NewRow(
		domain.F("region", domain.String("East")),
		domain.F("sales", domain.Number(2500)),
		domain.F("active", domain.Bool(false)),
		domain.F("when", domain.String("2024-01-05")),
		domain.F("note", domain.String("a, quoted")),
	)), "got %v", rows[1].Fields())
}

func TestParseCSVHeaderEdgeCases(t *testing.T) {
	input := "\ufeffname,,name,\n" +
		"a,b,c,d,extra\n" +
		"short\n"

	rows, err := ParseCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"name", "__EMPTY", "name_1", "__EMPTY_1"}, rows[0].Keys())
	v, _ := rows[0].Get("name_1")
	assert.Equal(t, "c", v.Text())

	short, _ := rows[1].Get("__EMPTY_1")
	assert.True(t, short.IsNull())
	assert.Equal(t, 4, rows[1].Len())
}

func TestParseCSVEmpty(t *testing.T) {
	rows, err := ParseCSV(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = ParseCSV(context.Background(), strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCSVCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseCSV(ctx, strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCoerceScalar(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Scalar
	}{
		{"", domain.Null()},
		{"true", domain.Bool(true)},
		{"TRUE", domain.Bool(true)},
		{"False", domain.String("False")},
		{"false", domain.Bool(false)},
		{"42", domain.Number(42)},
		{"-3.25", domain.Number(-3.25)},
		{".5", domain.Number(0.5)},
		{"1e3", domain.Number(1000)},
		{" 7 ", domain.Number(7)},
		{"9007199254740993", domain.String("9007199254740993")},
		{"1,000", domain.String("1,000")},
		{"0x10", domain.String("0x10")},
		{"2024-03-01T08:30:00+02:00", domain.Time(time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC))},
		{"2024-03-01", domain.String("2024-03-01")},
		{"West", domain.String("West")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := CoerceScalar(tt.in)
			assert.True(t, tt.want.Equal(got), "CoerceScalar(%q) = %v (%s)", tt.in, got, got.Kind())
		})
	}
}

func TestProperty_CoerceScalarReadsFormattedNumbers(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("decimal text of a finite float parses back to the same number", prop.ForAll(
		func(f float64) bool {
			got := CoerceScalar(strconv.FormatFloat(f, 'f', -1, 64))
			return got.Kind() == domain.KindNumber && got.Float() == f
		},
		gen.Float64Range(-math.Pow(2, 40), math.Pow(2, 40)),
	))

	properties.Property("integers keep their value", prop.ForAll(
		func(n int32) bool {
			got := CoerceScalar(strconv.Itoa(int(n)))
			return got.Kind() == domain.KindNumber && got.Float() == float64(n)
		},
		gen.Int32(),
	))

	properties.TestingRun(t)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"customer_id", "tenure", "churn", "contract_type"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"C-1", 12, true, "Monthly"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"C-2", 3.5, false}))

	_, err := f.NewSheet("Ignored")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Ignored", "A1", "nope"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseFile(context.Background(), "churn.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, rows, 2, "blank row 3 is skipped")

	assert.Equal(t, []string{"customer_id", "tenure", "churn", "contract_type"}, rows[0].Keys())
	assert.True(t, rows[0].Equal(domain.NewRow(
		domain.F("customer_id", domain.String("C-1")),
		domain.F("tenure", domain.Number(12)),
		domain.F("churn", domain.Bool(true)),
		domain.F("contract_type", domain.String("Monthly")),
	)), "got %v", rows[0].Fields())

	tenure, _ := rows[1].Get("tenure")
	assert.Equal(t, 3.5, tenure.Float())
	contract, _ := rows[1].Get("contract_type")
	assert.True(t, contract.IsNull())
}

func TestParseXLSXTableBelowFirstRow(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"month", "revenue"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"Jan", 4000}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{"Feb", 3000}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseXLSX(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"month", "revenue"}, rows[0].Keys())
	assert.True(t, rows[1].Equal(domain.NewRow(
		domain.F("month", domain.String("Feb")),
		domain.F("revenue", domain.Number(3000)),
	)), "got %v", rows[1].Fields())
}

func TestParseXLSXEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseXLSX(context.Background(), buf)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// testdata/regions.xls holds one sheet: no row 1, a header on row 2 with a
// trailing blank header cell, two full rows, a missing row, then a short row.
func TestParseXLS(t *testing.T) {
	f, err := os.Open("testdata/regions.xls")
	require.NoError(t, err)
	defer f.Close()

	rows, err := ParseFile(context.Background(), "regions.xls", f)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"region", "sales", "promo", "day", "__EMPTY"}, rows[0].Keys())
	assert.True(t, rows[0].Equal(domain.NewRow(
		domain.F("region", domain.String("West")),
		domain.F("sales", domain.Number(100)),
		domain.F("promo", domain.Bool(true)),
		domain.F("day", domain.Time(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))),
		domain.F("__EMPTY", domain.Null()),
	)), "got %v", rows[0].Fields())
	assert.True(t, rows[1].Equal(domain.NewRow(
		domain.F("region", domain.String("East")),
		domain.F("sales", domain.Number(42.5)),
		domain.F("promo", domain.Bool(false)),
		domain.F("day", domain.Time(time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC))),
		domain.F("__EMPTY", domain.Null()),
	)), "got %v", rows[1].Fields())
	assert.True(t, rows[2].Equal(domain.NewRow(
		domain.F("region", domain.String("North")),
		domain.F("sales", domain.Number(7)),
		domain.F("promo", domain.Null()),
		domain.F("day", domain.Null()),
		domain.F("__EMPTY", domain.Null()),
	)), "got %v", rows[2].Fields())
}

func TestParseSpreadsheetDecodeErrors(t *testing.T) {
	for _, name := range []string{"broken.xlsx", "broken.xls"} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFile(context.Background(), name, strings.NewReader("definitely not a workbook"))
			require.Error(t, err)
			assert.True(t, lerrors.IsKind(err, lerrors.KindDecode), "got %v", err)
		})
	}
}
