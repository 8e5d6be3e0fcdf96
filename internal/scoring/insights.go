package scoring

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"edustats/pkg/contracts/domain"
)

// TopN caps every ranked insights list
const TopN = 10

// Correlations returns the pairwise Pearson matrix of the headline
// indicators. Each pair uses the rows where both values are present; the
// coefficient is nil for fewer than two pairs or a constant series.
func Correlations(rows []domain.CleanRow) domain.CorrelationMatrix {
	matrix := make(domain.CorrelationMatrix, len(domain.HeadlineIndicators))
	for _, a := range domain.HeadlineIndicators {
		matrix[a] = make(map[string]*float64, len(domain.HeadlineIndicators))
		for _, b := range domain.HeadlineIndicators {
			matrix[a][b] = pearson(rows, a, b)
		}
	}
	return matrix
}

func pearson(rows []domain.CleanRow, a, b string) *float64 {
	var xs, ys []float64
	for _, r := range rows {
		x, y := r.Indicator(a), r.Indicator(b)
		if x == nil || y == nil {
			continue
		}
		xs = append(xs, *x)
		ys = append(ys, *y)
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return nil
	}
	return domain.Float(round(stat.Correlation(xs, ys, nil), 2))
}

// LastYear is the most recent latest_year in the table
func LastYear(rows []domain.CleanRow) *int {
	var out *int
	for _, r := range rows {
		if r.LatestYear != nil && (out == nil || *r.LatestYear > *out) {
			out = domain.Int(*r.LatestYear)
		}
	}
	return out
}

// RankYLS returns the highest and lowest scored rows, nil scores dropped.
// Ties keep table order.
func RankYLS(rows []domain.CleanRow, scores []*float64) (top, bottom []domain.ScoreEntry) {
	entries := make([]domain.ScoreEntry, 0, len(rows))
	for i, r := range rows {
		if i >= len(scores) || scores[i] == nil {
			continue
		}
		entries = append(entries, domain.ScoreEntry{
			CountryCode: r.CountryCode,
			Country:     r.Country,
			YLSScore:    domain.Float(*scores[i]),
		})
	}

	desc := make([]domain.ScoreEntry, len(entries))
	copy(desc, entries)
	sort.SliceStable(desc, func(i, j int) bool { return *desc[i].YLSScore > *desc[j].YLSScore })
	asc := make([]domain.ScoreEntry, len(entries))
	copy(asc, entries)
	sort.SliceStable(asc, func(i, j int) bool { return *asc[i].YLSScore < *asc[j].YLSScore })

	return head(desc), head(asc)
}

// TopImprovers ranks clean-table countries by literacy change, largest first
func TopImprovers(rows []domain.CleanRow, change map[string]*float64) []domain.ImproverEntry {
	entries := make([]domain.ImproverEntry, 0, len(rows))
	for _, r := range rows {
		delta := change[r.CountryCode]
		if delta == nil {
			continue
		}
		entries = append(entries, domain.ImproverEntry{
			CountryCode: r.CountryCode,
			Country:     r.Country,
			LitChange5y: domain.Float(*delta),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return *entries[i].LitChange5y > *entries[j].LitChange5y })
	return head(entries)
}

// MaskImprovers keeps the persisted improvers whose code is in codes
func MaskImprovers(improvers []domain.ImproverEntry, codes map[string]struct{}) []domain.ImproverEntry {
	out := make([]domain.ImproverEntry, 0, len(improvers))
	for _, e := range improvers {
		if _, ok := codes[e.CountryCode]; ok {
			out = append(out, e)
		}
	}
	return head(out)
}

// BuildInsights assembles the snapshot persisted next to the clean table
func BuildInsights(rows []domain.CleanRow, scores []*float64, litChange map[string]*float64) domain.InsightsSnapshot {
	top, bottom := RankYLS(rows, scores)
	return domain.InsightsSnapshot{
		LastYear:               LastYear(rows),
		TopYLS:                 top,
		BottomYLS:              bottom,
		TopImproversLiteracy5y: TopImprovers(rows, litChange),
		Correlations:           Correlations(rows),
	}
}

func head[T any](s []T) []T {
	if len(s) > TopN {
		return s[:TopN]
	}
	return s
}
