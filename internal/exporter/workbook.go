package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"edustats/internal/files"
	"edustats/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetClean        = "Clean"
	SheetTopYLS       = "Top YLS"
	SheetBottomYLS    = "Bottom YLS"
	SheetImprovers    = "Improvers"
	SheetCorrelations = "Correlations"
)

// WriteWorkbook saves the clean table and insights as an .xlsx workbook
func WriteWorkbook(path string, rows []domain.CleanRow, insights domain.InsightsSnapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetClean); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetTopYLS, SheetBottomYLS, SheetImprovers, SheetCorrelations} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	clean := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		var year interface{}
		if r.LatestYear != nil {
			year = *r.LatestYear
		}
		clean = append(clean, []interface{}{
			r.Country,
			r.CountryCode,
			cellValue(r.YouthLiteracyRate),
			cellValue(r.PrimaryEnrollmentRate),
			cellValue(r.SecondaryEnrollmentRate),
			cellValue(r.GovEducationSpendingPctGDP),
			year,
			r.Region,
			r.IncomeGroup,
			r.EducationProfile,
		})
	}
	if err := writeSheet(f, SheetClean, header, domain.CleanColumns, clean); err != nil {
		return err
	}

	scoreHeaders := []string{domain.ColumnCountryCode, domain.ColumnCountry, "yls_score"}
	if err := writeSheet(f, SheetTopYLS, header, scoreHeaders, scoreRows(insights.TopYLS)); err != nil {
		return err
	}
	if err := writeSheet(f, SheetBottomYLS, header, scoreHeaders, scoreRows(insights.BottomYLS)); err != nil {
		return err
	}

	improvers := make([][]interface{}, 0, len(insights.TopImproversLiteracy5y))
	for _, e := range insights.TopImproversLiteracy5y {
		improvers = append(improvers, []interface{}{e.CountryCode, e.Country, cellValue(e.LitChange5y)})
	}
	if err := writeSheet(f, SheetImprovers, header,
		[]string{domain.ColumnCountryCode, domain.ColumnCountry, "lit_change_5y"}, improvers); err != nil {
		return err
	}

	corr := make([][]interface{}, 0, len(domain.HeadlineIndicators))
	for _, a := range domain.HeadlineIndicators {
		line := []interface{}{a}
		for _, b := range domain.HeadlineIndicators {
			line = append(line, cellValue(insights.Correlations[a][b]))
		}
		corr = append(corr, line)
	}
	if err := writeSheet(f, SheetCorrelations, header, append([]string{""}, domain.HeadlineIndicators...), corr); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return files.WriteAtomic(path, func(out io.Writer) error {
		return f.Write(out)
	})
}

func scoreRows(entries []domain.ScoreEntry) [][]interface{} {
	out := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, []interface{}{e.CountryCode, e.Country, cellValue(e.YLSScore)})
	}
	return out
}

// writeSheet fills a sheet with a styled, frozen header row and data rows
func writeSheet(f *excelize.File, sheet string, style int, headers []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
