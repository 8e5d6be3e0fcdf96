package wdi

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sentinel errors for unreadable inputs
var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrEmptyTable        = errors.New("input table has no header row")
	ErrMissingColumns    = errors.New("input table is missing required columns")
)

const utf8BOM = "\ufeff"

// Table is a header row plus data rows from a CSV file or a workbook sheet.
// Rows may be shorter than the header; missing trailing cells read as "".
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a table, normalizing header labels
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: make([]string, len(header)), Rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t
}

// Index returns the position of the named column, or -1
func (t *Table) Index(column string) int {
	if i, ok := t.index[column]; ok {
		return i
	}
	return -1
}

// Has reports whether the named column exists
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Cell returns the value at row/col, or "" when the row is short or col is -1
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Require fails with ErrMissingColumns naming every absent column
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// ReadTable loads path as a CSV file or .xlsx workbook.
// For workbooks, sheet is preferred when present, else the first sheet is read.
func ReadTable(ctx context.Context, path, sheet string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return readWorkbook(path, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadCSV parses a comma separated table with a header row
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}
	return NewTable(records[0], records[1:]), nil
}

func readWorkbook(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}
	name := sheets[0]
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), sheet) {
			name = s
			break
		}
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	return NewTable(rows[0], rows[1:]), nil
}
