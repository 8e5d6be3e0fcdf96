package scoring

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"edustats/pkg/contracts/domain"
)

// Weights are the YLS contribution of each headline indicator
var Weights = map[string]float64{
	domain.ColumnYouthLiteracy: 0.4,
	domain.ColumnPrimary:       0.2,
	domain.ColumnSecondary:     0.2,
	domain.ColumnSpending:      0.2,
}

// ScaleMid is the score given to every row when all composites are equal
const ScaleMid = 50.0

// column returns the non-nil values of one indicator
func column(rows []domain.CleanRow, name string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := r.Indicator(name); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// zScores standardizes one indicator with the sample standard deviation.
// When the deviation is zero or undefined every row holding a value scores 0.
// Rows without a value stay nil.
func zScores(rows []domain.CleanRow, name string) []*float64 {
	out := make([]*float64, len(rows))

	values := column(rows, name)
	var mean, sd float64
	if len(values) >= 2 && !constant(values) {
		mean, sd = stat.MeanStdDev(values, nil)
	}
	if sd == 0 || math.IsNaN(sd) {
		for i, r := range rows {
			if r.Indicator(name) != nil {
				out[i] = domain.Float(0)
			}
		}
		return out
	}

	for i, r := range rows {
		if v := r.Indicator(name); v != nil {
			out[i] = domain.Float((*v - mean) / sd)
		}
	}
	return out
}

// ComputeYLS scores every row; the result is index aligned with rows.
// A row without any present z-score has a nil score.
func ComputeYLS(rows []domain.CleanRow) []*float64 {
	composite := make([]float64, len(rows))
	weight := make([]float64, len(rows))

	for _, name := range domain.HeadlineIndicators {
		w := Weights[name]
		for i, z := range zScores(rows, name) {
			if z == nil {
				continue
			}
			composite[i] += w * *z
			weight[i] += w
		}
	}

	scores := make([]*float64, len(rows))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range rows {
		if weight[i] == 0 {
			continue
		}
		c := composite[i] / weight[i]
		scores[i] = domain.Float(c)
		lo = math.Min(lo, c)
		hi = math.Max(hi, c)
	}

	for _, s := range scores {
		if s == nil {
			continue
		}
		if hi == lo {
			*s = ScaleMid
			continue
		}
		*s = round(100*(*s-lo)/(hi-lo), 1)
	}
	return scores
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
