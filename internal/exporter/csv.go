package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"edustats/internal/files"
	"edustats/internal/wdi"
	"edustats/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
}

// WriteCSV writes headers and records to path, replacing any previous file
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", len(options.Records)))

	return files.WriteAtomic(path, func(out io.Writer) error {
		writer := csv.NewWriter(out)
		if len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// WriteCleanTable persists the clean table with the canonical column order
func (w *CSVWriter) WriteCleanTable(path string, rows []domain.CleanRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, cleanRecord(r))
	}
	return w.WriteCSV(path, WriteOptions{
		Headers: domain.CleanColumns,
		Records: records,
	})
}

func cleanRecord(r domain.CleanRow) []string {
	return []string{
		r.Country,
		r.CountryCode,
		formatFloat(r.YouthLiteracyRate),
		formatFloat(r.PrimaryEnrollmentRate),
		formatFloat(r.SecondaryEnrollmentRate),
		formatFloat(r.GovEducationSpendingPctGDP),
		formatInt(r.LatestYear),
		r.Region,
		r.IncomeGroup,
		r.EducationProfile,
	}
}

// ReadCleanTable loads a clean table written by WriteCleanTable. A file
// lacking any canonical column fails with wdi.ErrMissingColumns; extra
// columns are ignored. Rows with a blank or repeated country code are
// logged and skipped; the first row for a code wins.
func (w *CSVWriter) ReadCleanTable(ctx context.Context, path string) ([]domain.CleanRow, error) {
	table, err := wdi.ReadTable(ctx, path, "")
	if err != nil {
		return nil, err
	}
	if err := table.Require(domain.CleanColumns...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	col := make(map[string]int, len(domain.CleanColumns))
	for _, name := range domain.CleanColumns {
		col[name] = table.Index(name)
	}
	text := func(row []string, name string) string {
		return strings.TrimSpace(table.Cell(row, col[name]))
	}

	rows := make([]domain.CleanRow, 0, len(table.Rows))
	seen := make(map[string]struct{}, len(table.Rows))
	for i, row := range table.Rows {
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		code := text(row, domain.ColumnCountryCode)
		if code == "" {
			w.logger.WarnContext(ctx, "Skipping clean table row without country code",
				slog.String("file_path", path),
				slog.Int("row", i+2))
			continue
		}
		if _, dup := seen[code]; dup {
			w.logger.WarnContext(ctx, "Skipping duplicate country code",
				slog.String("file_path", path),
				slog.Int("row", i+2),
				slog.String("country_code", code))
			continue
		}
		seen[code] = struct{}{}

		rows = append(rows, domain.CleanRow{
			Country:                    text(row, domain.ColumnCountry),
			CountryCode:                code,
			YouthLiteracyRate:          wdi.ParseValue(text(row, domain.ColumnYouthLiteracy)),
			PrimaryEnrollmentRate:      wdi.ParseValue(text(row, domain.ColumnPrimary)),
			SecondaryEnrollmentRate:    wdi.ParseValue(text(row, domain.ColumnSecondary)),
			GovEducationSpendingPctGDP: wdi.ParseValue(text(row, domain.ColumnSpending)),
			LatestYear:                 parseInt(text(row, domain.ColumnLatestYear)),
			Region:                     text(row, domain.ColumnRegion),
			IncomeGroup:                text(row, domain.ColumnIncomeGroup),
			EducationProfile:           text(row, domain.ColumnEducationProfile),
		})
	}
	return rows, nil
}
