package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gonum.org/v1/gonum/stat"

	"edustats/internal/config"
	apierrors "edustats/internal/errors"
	"edustats/internal/exporter"
	"edustats/internal/infrastructure"
	"edustats/internal/scoring"
	"edustats/pkg/contracts/domain"
)

// Counts is the row count block shared by several responses
type Counts struct {
	Countries int `json:"countries"`
}

// MetaResponse lists the filter vocabularies of the loaded table
type MetaResponse struct {
	Regions      []string `json:"regions"`
	IncomeGroups []string `json:"income_groups"`
	Profiles     []string `json:"profiles"`
	Indicators   []string `json:"indicators"`
	LastYear     *int     `json:"last_year"`
	Counts       Counts   `json:"counts"`
}

// Averages are indicator means over a filtered view
type Averages struct {
	Literacy  *float64 `json:"literacy"`
	Primary   *float64 `json:"primary"`
	Secondary *float64 `json:"secondary"`
	Spend     *float64 `json:"spend"`
}

// StatsResponse summarizes a filtered view
type StatsResponse struct {
	Avg    Averages `json:"avg"`
	Counts Counts   `json:"counts"`
}

// CountriesResponse is one page of the filtered, sorted table
type CountriesResponse struct {
	Results []domain.CleanRow `json:"results"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
	Total   int               `json:"total"`
	Pages   int               `json:"pages"`
}

// QueryService answers read-only queries over the clean table
type QueryService struct {
	rows          []domain.CleanRow
	insights      domain.InsightsSnapshot
	insightsFound bool
	logger        *slog.Logger
	metrics       *infrastructure.QueryMetrics
}

// NewQueryService wraps an already loaded table and snapshot. The caller
// must not modify rows afterwards. metrics may be nil.
func NewQueryService(rows []domain.CleanRow, insights domain.InsightsSnapshot, insightsFound bool, logger *slog.Logger, metrics *infrastructure.QueryMetrics) *QueryService {
	if rows == nil {
		rows = []domain.CleanRow{}
	}
	return &QueryService{
		rows:          rows,
		insights:      insights,
		insightsFound: insightsFound,
		logger:        infrastructure.WithComponent(logger, "query_service"),
		metrics:       metrics,
	}
}

// LoadQueryService reads the persisted artifacts. A missing or
// schema-incomplete clean table is an error; a missing insights file is not.
func LoadQueryService(ctx context.Context, paths *config.Paths, logger *slog.Logger, metrics *infrastructure.QueryMetrics) (*QueryService, error) {
	rows, err := exporter.NewCSVWriter(logger).ReadCleanTable(ctx, paths.CleanCSV)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load clean table: %w", apierrors.NewNotFoundError(paths.CleanCSV, err))
	}
	if err != nil {
		return nil, fmt.Errorf("load clean table: %w", err)
	}

	insights, found, err := exporter.ReadInsights(paths.InsightsJSON)
	if err != nil {
		return nil, fmt.Errorf("load insights: %w", err)
	}

	svc := NewQueryService(rows, insights, found, logger, metrics)
	svc.logger.InfoContext(ctx, "Clean table loaded",
		slog.String("path", paths.CleanCSV),
		slog.Int("countries", len(rows)),
		slog.Bool("insights_available", found))
	return svc, nil
}

// Len is the number of rows in the loaded table
func (s *QueryService) Len() int {
	return len(s.rows)
}

// InsightsAvailable reports whether a persisted snapshot was found
func (s *QueryService) InsightsAvailable() bool {
	return s.insightsFound
}

// Meta describes the whole table, ignoring filters
func (s *QueryService) Meta(ctx context.Context) MetaResponse {
	regions := make(map[string]struct{})
	incomes := make(map[string]struct{})
	profiles := make(map[string]struct{})
	for _, r := range s.rows {
		addLabel(regions, r.Region)
		addLabel(incomes, r.IncomeGroup)
		addLabel(profiles, r.EducationProfile)
	}

	return MetaResponse{
		Regions:      sortedKeys(regions),
		IncomeGroups: sortedKeys(incomes),
		Profiles:     sortedKeys(profiles),
		Indicators:   append([]string(nil), domain.HeadlineIndicators...),
		LastYear:     scoring.LastYear(s.rows),
		Counts:       Counts{Countries: len(s.rows)},
	}
}

// "nan" is how a missing label reads back from tables written by other tools
func addLabel(set map[string]struct{}, v string) {
	if v == "" || strings.EqualFold(v, "nan") {
		return
	}
	set[v] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// filter applies f and records the view size
func (s *QueryService) filter(ctx context.Context, f Filter, endpoint string) []domain.CleanRow {
	view := f.Apply(s.rows)
	if s.metrics != nil {
		s.metrics.RowsFiltered.Record(ctx, int64(len(view)),
			metric.WithAttributes(attribute.String("endpoint", endpoint)))
	}
	return view
}

// Stats averages each indicator over the filtered view
func (s *QueryService) Stats(ctx context.Context, f Filter) StatsResponse {
	view := s.filter(ctx, f, "stats")
	return StatsResponse{
		Avg: Averages{
			Literacy:  average(view, domain.ColumnYouthLiteracy),
			Primary:   average(view, domain.ColumnPrimary),
			Secondary: average(view, domain.ColumnSecondary),
			Spend:     average(view, domain.ColumnSpending),
		},
		Counts: Counts{Countries: len(view)},
	}
}

func average(rows []domain.CleanRow, column string) *float64 {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := r.Indicator(column); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	mean := math.Round(stat.Mean(values, nil)*10) / 10
	return &mean
}

// Countries returns one sorted page of the filtered view
func (s *QueryService) Countries(ctx context.Context, f Filter, order Sort, page Page) CountriesResponse {
	view := s.filter(ctx, f, "countries")
	order.Rows(view)

	return CountriesResponse{
		Results: page.Slice(view),
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   len(view),
		Pages:   page.Pages(len(view)),
	}
}

// Country looks a row up by code, case-insensitively
func (s *QueryService) Country(ctx context.Context, code string) (domain.CleanRow, error) {
	for _, r := range s.rows {
		if strings.EqualFold(r.CountryCode, code) {
			return r, nil
		}
	}

	if s.metrics != nil {
		s.metrics.CountryLookupMiss.Add(ctx, 1)
	}
	s.logger.DebugContext(ctx, "Country lookup missed", slog.String("country_code", code))
	return domain.CleanRow{}, fmt.Errorf("%w: %s", ErrCountryNotFound, code)
}

// Insights returns the persisted snapshot, or the empty payload when the
// pipeline wrote none
func (s *QueryService) Insights(ctx context.Context) domain.InsightsSnapshot {
	if !s.insightsFound {
		return domain.EmptyInsights()
	}
	return s.insights
}

// LiveInsights recomputes rankings, correlations and last_year over the
// filtered view. Improvers are not recomputed: the persisted list is masked
// to the view's countries.
func (s *QueryService) LiveInsights(ctx context.Context, f Filter) domain.InsightsSnapshot {
	if s.metrics != nil {
		s.metrics.LiveInsightsTotal.Add(ctx, 1)
	}

	view := s.filter(ctx, f, "insights_live")
	if len(view) == 0 {
		return domain.EmptyInsights()
	}

	top, bottom := scoring.RankYLS(view, scoring.ComputeYLS(view))

	codes := make(map[string]struct{}, len(view))
	for _, r := range view {
		codes[r.CountryCode] = struct{}{}
	}
	improvers := []domain.ImproverEntry{}
	if s.insightsFound {
		improvers = scoring.MaskImprovers(s.insights.TopImproversLiteracy5y, codes)
	}

	return domain.InsightsSnapshot{
		LastYear:               scoring.LastYear(view),
		TopYLS:                 top,
		BottomYLS:              bottom,
		TopImproversLiteracy5y: improvers,
		Correlations:           scoring.Correlations(view),
	}
}
