package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"edustats/internal/scoring"
	"edustats/internal/shared/testutil"
	"edustats/pkg/contracts/domain"
)

func TestWriteWorkbook(t *testing.T) {
	rows := testutil.CleanRows()
	insights := scoring.BuildInsights(rows, scoring.ComputeYLS(rows), map[string]*float64{"BBB": domain.Float(2)})
	path := filepath.Join(t.TempDir(), "education_clean.xlsx")

	require.NoError(t, WriteWorkbook(path, rows, insights))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetClean, SheetTopYLS, SheetBottomYLS, SheetImprovers, SheetCorrelations}, f.GetSheetList())

	clean, err := f.GetRows(SheetClean)
	require.NoError(t, err)
	require.Len(t, clean, 3)
	assert.Equal(t, domain.CleanColumns, clean[0])
	assert.Equal(t, "AAA", clean[1][1])
	assert.Equal(t, "96.5", clean[1][2])
	assert.Equal(t, "2020", clean[1][6])

	top, err := f.GetRows(SheetTopYLS)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"AAA", "Aland", "100"}, top[1])

	improvers, err := f.GetRows(SheetImprovers)
	require.NoError(t, err)
	require.Len(t, improvers, 2)
	assert.Equal(t, "BBB", improvers[1][0])

	corr, err := f.GetRows(SheetCorrelations)
	require.NoError(t, err)
	require.Len(t, corr, 5)
	assert.Equal(t, domain.ColumnYouthLiteracy, corr[1][0])
	assert.Equal(t, "1", corr[1][1])
}

func TestWriteYLSChart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yls_top.png")

	err := WriteYLSChart(path, []domain.ScoreEntry{
		{CountryCode: "AAA", YLSScore: domain.Float(100)},
		{CountryCode: "BBB", YLSScore: domain.Float(42.5)},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG\r\n\x1a\n")))

	err = WriteYLSChart(filepath.Join(dir, "empty.png"), []domain.ScoreEntry{{CountryCode: "AAA"}})
	assert.ErrorIs(t, err, ErrNoScores)
	assert.NoFileExists(t, filepath.Join(dir, "empty.png"))
}
