package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustats/pkg/contracts/domain"
)

func TestInsightsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights.json")
	snapshot := domain.InsightsSnapshot{
		LastYear:  domain.Int(2020),
		TopYLS:    []domain.ScoreEntry{{CountryCode: "AAA", Country: "Aland", YLSScore: domain.Float(100)}},
		BottomYLS: []domain.ScoreEntry{{CountryCode: "BBB", Country: "Bretoria", YLSScore: domain.Float(0)}},
		TopImproversLiteracy5y: []domain.ImproverEntry{
			{CountryCode: "BBB", Country: "Bretoria", LitChange5y: domain.Float(2)},
		},
		Correlations: domain.CorrelationMatrix{
			domain.ColumnYouthLiteracy: {domain.ColumnYouthLiteracy: domain.Float(1), domain.ColumnSpending: nil},
		},
	}

	require.NoError(t, WriteInsights(path, snapshot))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"gov_education_spending_pct_gdp": null`)
	assert.Contains(t, string(raw), `"top_improvers_literacy_5y"`)

	got, found, err := ReadInsights(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snapshot, got)
}

func TestWriteInsightsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights.json")
	require.NoError(t, WriteInsights(path, domain.InsightsSnapshot{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_year":null,"top_yls":[],"bottom_yls":[],"top_improvers_literacy_5y":[],"correlations":{}}`, string(raw))
}

func TestReadInsights(t *testing.T) {
	t.Run("missing file yields the empty payload", func(t *testing.T) {
		got, found, err := ReadInsights(filepath.Join(t.TempDir(), "insights.json"))
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, domain.EmptyInsights(), got)
	})

	t.Run("null collections are normalized", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "insights.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"last_year":2019,"top_yls":null}`), 0644))

		got, found, err := ReadInsights(path)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 2019, *got.LastYear)
		assert.NotNil(t, got.TopYLS)
		assert.NotNil(t, got.Correlations)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "insights.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"last_year":`), 0644))

		_, _, err := ReadInsights(path)
		assert.Error(t, err)
	})
}
