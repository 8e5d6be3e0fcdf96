package wdi

import (
	"context"
	"fmt"
	"unicode/utf8"

	apierrors "edustats/internal/errors"
	"edustats/pkg/contracts/domain"
)

// Metadata columns
const (
	ColumnShortName   = "Short Name"
	ColumnTableName   = "TableName"
	ColumnRegion      = "Region"
	ColumnIncomeGroup = "Income Group"
)

// AggregatesRegion marks WDI rows that describe groups of countries
const AggregatesRegion = "Aggregates"

// CountrySheet is the preferred workbook sheet for the metadata table
const CountrySheet = "Country"

// nameColumns in order of preference; "Table Name" is the label used by
// current WDI bulk downloads.
var nameColumns = []string{ColumnShortName, ColumnTableName, "Table Name", ColumnCountryName}

// ParseCountryMeta extracts real countries from the metadata table.
// Codes must be exactly three characters and the Aggregates region is dropped.
// The first row wins when a code repeats.
func ParseCountryMeta(t *Table) ([]domain.CountryMeta, error) {
	if err := t.Require(ColumnCountryCode); err != nil {
		return nil, err
	}

	codeCol := t.Index(ColumnCountryCode)
	nameCol := -1
	for _, c := range nameColumns {
		if i := t.Index(c); i >= 0 {
			nameCol = i
			break
		}
	}
	regionCol := t.Index(ColumnRegion)
	incomeCol := t.Index(ColumnIncomeGroup)

	seen := make(map[string]bool, len(t.Rows))
	out := make([]domain.CountryMeta, 0, len(t.Rows))
	for _, row := range t.Rows {
		code := t.Cell(row, codeCol)
		if utf8.RuneCountInString(code) != 3 || seen[code] {
			continue
		}
		region := t.Cell(row, regionCol)
		if region == AggregatesRegion {
			continue
		}
		seen[code] = true
		out = append(out, domain.CountryMeta{
			Code:        code,
			Name:        t.Cell(row, nameCol),
			Region:      region,
			IncomeGroup: t.Cell(row, incomeCol),
		})
	}
	return out, nil
}

// LoadCountryMeta reads and filters the WDI country metadata file
func LoadCountryMeta(ctx context.Context, path string) ([]domain.CountryMeta, error) {
	table, err := ReadTable(ctx, path, CountrySheet)
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("read country table %s", path), err)
	}
	meta, err := ParseCountryMeta(table)
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("parse country table %s", path), err)
	}
	return meta, nil
}
