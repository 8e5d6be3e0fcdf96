package pipeline

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustats/internal/config"
	apierrors "edustats/internal/errors"
	"edustats/internal/exporter"
	"edustats/internal/infrastructure"
	"edustats/internal/shared/testutil"
)

func newTestRunner(t *testing.T) (*Runner, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    infrastructure.ServiceName,
		TraceExporter:  "none",
		MetricExporter: "none",
	}, logger)
	require.NoError(t, err)

	runner, err := NewRunner(logger, providers)
	require.NoError(t, err)
	return runner, handler
}

func fixturePaths(t *testing.T) *config.Paths {
	t.Helper()
	root := t.TempDir()
	testutil.WriteWDIFixtures(t, filepath.Join(root, "raw"))

	paths, err := config.NewPaths(config.PathsConfig{
		RootDir:     root,
		RawDir:      "raw",
		CleanDir:    "clean",
		WDIFile:     "WDICSV.csv",
		CountryFile: "WDICountry.csv",
	})
	require.NoError(t, err)
	return paths
}

func TestRunnerRun(t *testing.T) {
	runner, handler := newTestRunner(t)
	paths := fixturePaths(t)

	result, err := runner.Run(context.Background(), Options{
		Paths:        paths,
		ChangeWindow: 1,
		Workbook:     true,
		Chart:        true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, testutil.CleanRows(), result.Rows)
	assert.Equal(t, []string{paths.CleanCSV, paths.InsightsJSON, paths.CleanWorkbook, paths.YLSChart}, result.Outputs)
	for _, out := range result.Outputs {
		assert.FileExists(t, out)
	}

	persisted, err := exporter.NewCSVWriter(nil).ReadCleanTable(context.Background(), paths.CleanCSV)
	require.NoError(t, err)
	assert.Equal(t, result.Rows, persisted)

	insights, found, err := exporter.ReadInsights(paths.InsightsJSON)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2020, *insights.LastYear)
	require.Len(t, insights.TopImproversLiteracy5y, 2)
	assert.Equal(t, "BBB", insights.TopImproversLiteracy5y[0].CountryCode)
	assert.Equal(t, 2.0, *insights.TopImproversLiteracy5y[0].LitChange5y)
	assert.Equal(t, 0.5, *insights.TopImproversLiteracy5y[1].LitChange5y)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Pipeline finished")
	testutil.AssertNoErrors(t, handler)
}

func TestRunnerDefaultWindowHasNoImprovers(t *testing.T) {
	runner, _ := newTestRunner(t)
	paths := fixturePaths(t)

	result, err := runner.Run(context.Background(), Options{Paths: paths})
	require.NoError(t, err)

	assert.Empty(t, result.Insights.TopImproversLiteracy5y, "2018..2020 holds no 5 year gap")
	assert.Equal(t, []string{paths.CleanCSV, paths.InsightsJSON}, result.Outputs)
	assert.NoFileExists(t, paths.CleanWorkbook)
	assert.NoFileExists(t, paths.YLSChart)
}

func TestRunnerEmptyInput(t *testing.T) {
	runner, handler := newTestRunner(t)
	paths := fixturePaths(t)
	require.NoError(t, os.WriteFile(paths.WDIFile, []byte(testutil.WDIHeader+"\n"), 0644))

	result, err := runner.Run(context.Background(), Options{Paths: paths, Chart: true})
	require.NoError(t, err)

	assert.Empty(t, result.Rows)
	assert.Nil(t, result.Insights.LastYear)
	assert.Equal(t, []string{paths.CleanCSV, paths.InsightsJSON}, result.Outputs)
	assert.True(t, handler.ContainsMessage("Skipped chart, no scores available"))
}

func TestRunnerFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T, paths *config.Paths)
		wantType apierrors.ErrorType
	}{
		{
			name: "missing indicator file",
			mutate: func(t *testing.T, paths *config.Paths) {
				require.NoError(t, os.Remove(paths.WDIFile))
			},
			wantType: apierrors.ErrTypeValidation,
		},
		{
			name: "indicator file without identifying columns",
			mutate: func(t *testing.T, paths *config.Paths) {
				require.NoError(t, os.WriteFile(paths.WDIFile, []byte("Country Code,2020\nAAA,1\n"), 0644))
			},
			wantType: apierrors.ErrTypeParsing,
		},
		{
			name: "metadata file without country code",
			mutate: func(t *testing.T, paths *config.Paths) {
				require.NoError(t, os.WriteFile(paths.CountryFile, []byte("Short Name\nAland\n"), 0644))
			},
			wantType: apierrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, handler := newTestRunner(t)
			paths := fixturePaths(t)
			tt.mutate(t, paths)

			result, err := runner.Run(context.Background(), Options{Paths: paths})
			require.Error(t, err)
			assert.Nil(t, result)

			var appErr *apierrors.AppError
			require.True(t, stderrors.As(err, &appErr), "got %T", err)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.NoFileExists(t, paths.CleanCSV)
			assert.True(t, handler.ContainsMessage("Pipeline failed"))
		})
	}
}

func TestRunnerRequiresPaths(t *testing.T) {
	runner, _ := newTestRunner(t)
	_, err := runner.Run(context.Background(), Options{})
	assert.Error(t, err)

	_, err = NewRunner(nil, nil)
	assert.Error(t, err)
}
