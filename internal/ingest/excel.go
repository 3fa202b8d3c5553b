package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

// ParseXLSX decodes the first sheet of an Office Open XML workbook. The first
// non-empty row is the header; fully empty rows are skipped.
func ParseXLSX(ctx context.Context, r io.Reader) ([]domain.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, decodeError(FormatXLSX, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, decodeError(FormatXLSX, fmt.Errorf("no sheets found in workbook"))
	}
	sheet := sheets[0]

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, decodeError(FormatXLSX, err)
	}
	// Tables that start below the first row have leading empty rows.
	start := 0
	for start < len(grid) && blankRecord(grid[start]) {
		start++
	}
	if start == len(grid) {
		return []domain.Row{}, nil
	}

	headers := normalizeHeaders(grid[start])
	rows := make([]domain.Row, 0, len(grid)-start-1)
	for i := start + 1; i < len(grid); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := grid[i]
		values := make([]domain.Scalar, len(record))
		for j, raw := range record {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, decodeError(FormatXLSX, err)
			}
			kind, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, decodeError(FormatXLSX, err)
			}
			values[j] = xlsxScalar(kind, raw)
		}
		if allNull(values) {
			continue
		}
		rows = append(rows, buildRow(headers, values))
	}
	return rows, nil
}

// xlsxScalar types a raw cell value by its stored cell type. Date cells
// without an explicit type are serial numbers and stay numeric.
func xlsxScalar(kind excelize.CellType, raw string) domain.Scalar {
	if raw == "" {
		return domain.Null()
	}
	switch kind {
	case excelize.CellTypeBool:
		return domain.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return domain.Number(f)
		}
		return domain.String(raw)
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return domain.Time(t)
		}
		return domain.String(raw)
	default:
		return domain.String(raw)
	}
}

// ParseXLS decodes the first sheet of a legacy BIFF workbook. The format
// carries no reliable cell types through the decoder, so cells are typed with
// CoerceScalar. The first non-empty row is the header.
func ParseXLS(ctx context.Context, r io.Reader) ([]domain.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, decodeError(FormatXLS, err)
	}

	grid, err := readXLSGrid(data)
	if err != nil {
		return nil, decodeError(FormatXLS, err)
	}

	var headers []string
	rows := make([]domain.Row, 0, len(grid))
	for _, cells := range grid {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if headers == nil {
			if !blankRecord(cells) {
				headers = normalizeHeaders(cells)
			}
			continue
		}
		values := make([]domain.Scalar, len(cells))
		for j, c := range cells {
			values[j] = CoerceScalar(c)
		}
		if allNull(values) {
			continue
		}
		rows = append(rows, buildRow(headers, values))
	}
	return rows, nil
}

// readXLSGrid returns the first sheet as trimmed cell text, one entry per row
// up to the last row. Rows the file holds no record for are nil. The decoder
// panics on some malformed inputs.
func readXLSGrid(data []byte) (grid [][]string, err error) {
	defer func() {
		if p := recover(); p != nil {
			grid, err = nil, fmt.Errorf("malformed workbook: %v", p)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, fmt.Errorf("no workbook stream found")
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}
	sheet := wb.GetSheet(0)

	grid = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		// LastCol is one past the last used column.
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, strings.TrimSpace(row.Col(j)))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// sheetRow returns nil for a row index with no record; WorkSheet.Row
// dereferences the missing entry.
func sheetRow(s *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return s.Row(i)
}

func blankRecord(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
