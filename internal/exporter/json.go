package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"edustats/internal/files"
	"edustats/pkg/contracts/domain"
)

// WriteInsights persists the insights snapshot as indented JSON
func WriteInsights(path string, insights domain.InsightsSnapshot) error {
	return files.WriteAtomic(path, func(out io.Writer) error {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(normalize(insights)); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	})
}

// ReadInsights loads a snapshot. found is false, with the empty payload,
// when the file does not exist.
func ReadInsights(path string) (insights domain.InsightsSnapshot, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.EmptyInsights(), false, nil
	}
	if err != nil {
		return domain.EmptyInsights(), false, fmt.Errorf("read insights: %w", err)
	}

	if err := json.Unmarshal(data, &insights); err != nil {
		return domain.EmptyInsights(), false, fmt.Errorf("decode insights %s: %w", path, err)
	}
	return normalize(insights), true, nil
}

// normalize replaces nil collections so they encode as [] and {}
func normalize(s domain.InsightsSnapshot) domain.InsightsSnapshot {
	if s.TopYLS == nil {
		s.TopYLS = []domain.ScoreEntry{}
	}
	if s.BottomYLS == nil {
		s.BottomYLS = []domain.ScoreEntry{}
	}
	if s.TopImproversLiteracy5y == nil {
		s.TopImproversLiteracy5y = []domain.ImproverEntry{}
	}
	if s.Correlations == nil {
		s.Correlations = domain.CorrelationMatrix{}
	}
	return s
}
