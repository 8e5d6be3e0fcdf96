package wdi

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	apierrors "edustats/internal/errors"
	"edustats/pkg/contracts/domain"
)

// Identifying columns of the WDI wide table
const (
	ColumnCountryName   = "Country Name"
	ColumnCountryCode   = "Country Code"
	ColumnIndicatorName = "Indicator Name"
	ColumnIndicatorCode = "Indicator Code"
)

// DataSheet is the preferred workbook sheet for the indicator table
const DataSheet = "Data"

// IsYearColumn reports whether a header label names a year.
// Accepted: "2019" and "2019 [YR2019]".
func IsYearColumn(label string) bool {
	if isFourDigits(label) {
		return true
	}
	if strings.Contains(label, " [YR") {
		head, _, _ := strings.Cut(label, " ")
		return isFourDigits(head)
	}
	return false
}

// ParseYear parses the portion of label before the first space
func ParseYear(label string) (int, bool) {
	head, _, _ := strings.Cut(label, " ")
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return year, true
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseValue converts a cell to a number; blanks, ".." and non-finite values are nil
func ParseValue(cell string) *float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type yearColumn struct {
	index int
	year  *int
}

// Melt reshapes the wide table into one observation per (row, year column)
func Melt(t *Table) ([]domain.Observation, error) {
	if err := t.Require(ColumnCountryName, ColumnCountryCode, ColumnIndicatorName, ColumnIndicatorCode); err != nil {
		return nil, err
	}

	var years []yearColumn
	for i, label := range t.Header {
		if !IsYearColumn(label) {
			continue
		}
		yc := yearColumn{index: i}
		if y, ok := ParseYear(label); ok {
			yc.year = &y
		}
		years = append(years, yc)
	}

	nameCol := t.Index(ColumnCountryName)
	codeCol := t.Index(ColumnCountryCode)
	indNameCol := t.Index(ColumnIndicatorName)
	indCodeCol := t.Index(ColumnIndicatorCode)

	out := make([]domain.Observation, 0, len(t.Rows)*len(years))
	for _, row := range t.Rows {
		if isBlankRow(row) {
			continue
		}
		for _, yc := range years {
			out = append(out, domain.Observation{
				CountryCode:   t.Cell(row, codeCol),
				CountryName:   t.Cell(row, nameCol),
				IndicatorCode: t.Cell(row, indCodeCol),
				IndicatorName: t.Cell(row, indNameCol),
				Year:          yc.year,
				Value:         ParseValue(t.Cell(row, yc.index)),
			})
		}
	}
	return out, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// LoadLong reads a WDI extract and returns its long observations
func LoadLong(ctx context.Context, path string) ([]domain.Observation, error) {
	table, err := ReadTable(ctx, path, DataSheet)
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("read indicator table %s", path), err)
	}
	obs, err := Melt(table)
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("reshape indicator table %s", path), err)
	}
	return obs, nil
}
