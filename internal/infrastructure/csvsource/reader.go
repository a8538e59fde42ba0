package csvsource

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/vitos/kalshi_ledger/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader decodes Kalshi transaction exports into raw rows.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) ReadFile(path string) ([]domain.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()
	return r.Read(path, f)
}

// Read checks the header for required columns before decoding. A file
// missing any of them is rejected with a *domain.SchemaError.
func (r *Reader) Read(source string, in io.Reader) ([]domain.RawRow, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("%s: error reading: %w", source, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &domain.SchemaError{Source: source, Missing: domain.RequiredColumns}
	}

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, fmt.Errorf("%s: error reading header: %w", source, err)
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &domain.SchemaError{Source: source, Missing: missing}
	}

	var rows []*domain.RawRow
	if err := gocsv.Unmarshal(bytes.NewReader(normalizeHeader(data, header)), &rows); err != nil {
		return nil, fmt.Errorf("%s: error decoding rows: %w", source, err)
	}

	out := make([]domain.RawRow, 0, len(rows))
	for i, row := range rows {
		row.Source = source
		row.Line = i + 1
		out = append(out, *row)
	}
	return out, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, col := range domain.RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// normalizeHeader rewrites the first line with trimmed column names so
// struct tags match exports that pad the header.
func normalizeHeader(data []byte, header []string) []byte {
	trimmed := make([]string, len(header))
	changed := false
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
		if trimmed[i] != h {
			changed = true
		}
	}
	if !changed {
		return data
	}
	rest := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		rest = data[idx+1:]
	} else {
		rest = nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(trimmed)
	w.Flush()
	buf.Write(rest)
	return buf.Bytes()
}
