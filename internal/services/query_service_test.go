package services

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustats/internal/config"
	apierrors "edustats/internal/errors"
	"edustats/internal/exporter"
	"edustats/internal/shared/testutil"
	"edustats/pkg/contracts/domain"
)

func newService(t *testing.T, rows []domain.CleanRow, insights *domain.InsightsSnapshot) *QueryService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	if insights == nil {
		return NewQueryService(rows, domain.InsightsSnapshot{}, false, logger, nil)
	}
	return NewQueryService(rows, *insights, true, logger, nil)
}

func TestQueryServiceMeta(t *testing.T) {
	svc := newService(t, sampleRows(), nil)
	meta := svc.Meta(context.Background())

	assert.Equal(t, []string{"Africa", "Asia", "Europe"}, meta.Regions)
	assert.Equal(t, []string{"High income", "Low income"}, meta.IncomeGroups, "blank and nan labels are excluded")
	assert.Equal(t, []string{"high_access_literacy", "low_access_literacy", "mixed_profile"}, meta.Profiles)
	assert.Equal(t, domain.HeadlineIndicators, meta.Indicators)
	assert.Equal(t, 2021, *meta.LastYear)
	assert.Equal(t, 4, meta.Counts.Countries)

	empty := newService(t, nil, nil).Meta(context.Background())
	assert.Nil(t, empty.LastYear)
	assert.NotNil(t, empty.Regions)
	assert.Equal(t, 0, empty.Counts.Countries)
}

func TestQueryServiceStats(t *testing.T) {
	svc := newService(t, sampleRows(), nil)

	all := svc.Stats(context.Background(), Filter{})
	assert.Equal(t, 4, all.Counts.Countries)
	assert.InDelta(t, 89.7, *all.Avg.Literacy, 1e-9)
	assert.InDelta(t, 83.3, *all.Avg.Primary, 1e-9)
	assert.InDelta(t, 75.0, *all.Avg.Secondary, 1e-9)
	assert.InDelta(t, 4.0, *all.Avg.Spend, 1e-9)

	none := svc.Stats(context.Background(), ParseFilter(url.Values{ParamRegion: {"Oceania"}}))
	assert.Equal(t, 0, none.Counts.Countries)
	assert.Nil(t, none.Avg.Literacy)
	assert.Nil(t, none.Avg.Primary)
	assert.Nil(t, none.Avg.Secondary)
	assert.Nil(t, none.Avg.Spend)
}

func TestQueryServiceCountries(t *testing.T) {
	svc := newService(t, sampleRows(), nil)
	ctx := context.Background()

	resp := svc.Countries(ctx, Filter{}, Sort{Key: SortCountry}, Page{Page: 1, PerPage: 3})
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, codes(resp.Results))
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 2, resp.Pages)
	assert.Equal(t, 3, resp.PerPage)

	last := svc.Countries(ctx, Filter{}, Sort{Key: SortCountry}, Page{Page: 2, PerPage: 3})
	assert.Equal(t, []string{"XKX"}, codes(last.Results))

	beyond := svc.Countries(ctx, Filter{}, Sort{Key: SortCountry}, Page{Page: 3, PerPage: 3})
	assert.Empty(t, beyond.Results)
	assert.Equal(t, 4, beyond.Total)

	again := svc.Countries(ctx, Filter{}, Sort{Key: SortCountry}, Page{Page: 1, PerPage: 50})
	assert.Len(t, again.Results, 4)
	assert.Equal(t, "CCC", svc.rows[0].CountryCode, "sorting must not reorder the shared table")
}

func TestQueryServiceCountry(t *testing.T) {
	svc := newService(t, sampleRows(), nil)

	row, err := svc.Country(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "Aland", row.Country)

	_, err = svc.Country(context.Background(), "ZZZ")
	assert.True(t, errors.Is(err, ErrCountryNotFound))
}

func TestQueryServiceInsights(t *testing.T) {
	assert.Equal(t, domain.EmptyInsights(), newService(t, sampleRows(), nil).Insights(context.Background()))

	snapshot := domain.InsightsSnapshot{LastYear: domain.Int(2020), TopYLS: []domain.ScoreEntry{{CountryCode: "AAA"}}}
	assert.Equal(t, snapshot, newService(t, sampleRows(), &snapshot).Insights(context.Background()))
}

func TestQueryServiceLiveInsights(t *testing.T) {
	persisted := domain.EmptyInsights()
	persisted.TopImproversLiteracy5y = []domain.ImproverEntry{
		{CountryCode: "CCC", LitChange5y: domain.Float(6)},
		{CountryCode: "AAA", LitChange5y: domain.Float(3)},
		{CountryCode: "BBB", LitChange5y: domain.Float(1)},
	}
	svc := newService(t, sampleRows(), &persisted)
	ctx := context.Background()

	t.Run("filtered view", func(t *testing.T) {
		live := svc.LiveInsights(ctx, ParseFilter(url.Values{ParamRegion: {"Europe,Asia"}}))

		require.NotNil(t, live.LastYear)
		assert.Equal(t, 2021, *live.LastYear)
		assert.Equal(t, []string{"AAA", "BBB"}, improverCodes(live.TopImproversLiteracy5y), "persisted list masked, not recomputed")
		require.NotEmpty(t, live.TopYLS)
		assert.Equal(t, "AAA", live.TopYLS[0].CountryCode)
		assert.Equal(t, 100.0, *live.TopYLS[0].YLSScore)
		assert.Len(t, live.Correlations, 4)
	})

	t.Run("empty view", func(t *testing.T) {
		live := svc.LiveInsights(ctx, ParseFilter(url.Values{ParamProfile: {"unknown"}}))
		assert.Equal(t, domain.EmptyInsights(), live)
	})

	t.Run("no persisted snapshot", func(t *testing.T) {
		live := newService(t, sampleRows(), nil).LiveInsights(ctx, Filter{})
		assert.NotNil(t, live.TopImproversLiteracy5y)
		assert.Empty(t, live.TopImproversLiteracy5y)
		assert.Len(t, live.TopYLS, 4)
	})
}

func improverCodes(entries []domain.ImproverEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.CountryCode
	}
	return out
}

func TestLoadQueryService(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	paths, err := config.NewPaths(config.PathsConfig{RootDir: t.TempDir(), RawDir: "raw", CleanDir: "clean"})
	require.NoError(t, err)

	_, err = LoadQueryService(context.Background(), paths, logger, nil)
	require.Error(t, err, "missing clean table is fatal")
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeNotFound, appErr.Type)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, exporter.NewCSVWriter(logger).WriteCleanTable(paths.CleanCSV, testutil.CleanRows()))
	svc, err := LoadQueryService(context.Background(), paths, logger, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Len())
	assert.False(t, svc.InsightsAvailable())

	require.NoError(t, exporter.WriteInsights(paths.InsightsJSON, domain.InsightsSnapshot{LastYear: domain.Int(2020)}))
	svc, err = LoadQueryService(context.Background(), paths, logger, nil)
	require.NoError(t, err)
	assert.True(t, svc.InsightsAvailable())
	assert.Equal(t, 2020, *svc.Insights(context.Background()).LastYear)

	require.NoError(t, os.WriteFile(paths.CleanCSV, []byte("country,country_code\nAland,AAA\n"), 0644))
	_, err = LoadQueryService(context.Background(), paths, logger, nil)
	assert.Error(t, err, "schema-incomplete clean table is fatal")
	assert.FileExists(t, filepath.Join(paths.CleanDir, config.InsightsJSONName))
}
