// Package ingest turns uploaded CSV and spreadsheet files into rows.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
)

// Format is a supported upload format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// ErrUnsupportedFormat is returned for files whose extension is not accepted.
var ErrUnsupportedFormat = lerrors.New(lerrors.KindUnsupportedInput, "unsupported file format, please upload CSV or Excel")

// DetectFormat picks the format from the file extension, case-insensitively.
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch Format(ext) {
	case FormatCSV, FormatXLSX, FormatXLS:
		return Format(ext), nil
	}
	return "", ErrUnsupportedFormat
}

// ParseFile decodes r according to the extension of name. The reader is not
// touched when the extension is rejected.
func ParseFile(ctx context.Context, name string, r io.Reader) ([]domain.Row, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return ParseCSV(ctx, r)
	case FormatXLSX:
		return ParseXLSX(ctx, r)
	case FormatXLS:
		return ParseXLS(ctx, r)
	default:
		return nil, fmt.Errorf("no decoder for %s", format)
	}
}

func decodeError(format Format, err error) error {
	return lerrors.Wrap(lerrors.KindDecode, fmt.Sprintf("failed to decode %s file", strings.ToUpper(string(format))), err)
}

// normalizeHeaders names empty header cells __EMPTY, __EMPTY_1, ... and
// suffixes repeated names with _1, _2, ... so every column key is unique.
// Names are compared case-insensitively, as SQL column names are.
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		for n := 1; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

// buildRow pairs headers with values. Short records are padded with nulls,
// surplus cells are dropped.
func buildRow(headers []string, values []domain.Scalar) domain.Row {
	fields := make([]domain.Field, len(headers))
	for i, h := range headers {
		v := domain.Null()
		if i < len(values) {
			v = values[i]
		}
		fields[i] = domain.F(h, v)
	}
	return domain.NewRow(fields...)
}

func allNull(values []domain.Scalar) bool {
	for _, v := range values {
		if !v.IsNull() {
			return false
		}
	}
	return true
}
