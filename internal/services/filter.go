package services

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"edustats/pkg/contracts/domain"
)

// Query parameter names
const (
	ParamRegion       = "region"
	ParamIncomeGroup  = "income_group"
	ParamProfile      = "profile"
	ParamMinLiteracy  = "min_literacy"
	ParamMinPrimary   = "min_primary"
	ParamMinSecondary = "min_secondary"
	ParamMinSpend     = "min_spend"
	ParamSort         = "sort"
	ParamOrder        = "order"
	ParamPage         = "page"
	ParamPerPage      = "per_page"
)

// Pagination defaults and bounds
const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 200
)

// Filter selects clean-table rows. Values within a list are OR-ed, fields
// are AND-ed, and a nil threshold is not applied.
type Filter struct {
	Regions      []string
	IncomeGroups []string
	Profiles     []string

	MinLiteracy  *float64
	MinPrimary   *float64
	MinSecondary *float64
	MinSpend     *float64
}

// ParseFilter reads filters from query parameters. Malformed thresholds are
// ignored rather than rejected.
func ParseFilter(q url.Values) Filter {
	return Filter{
		Regions:      splitList(q.Get(ParamRegion)),
		IncomeGroups: splitList(q.Get(ParamIncomeGroup)),
		Profiles:     splitList(q.Get(ParamProfile)),
		MinLiteracy:  parseThreshold(q.Get(ParamMinLiteracy)),
		MinPrimary:   parseThreshold(q.Get(ParamMinPrimary)),
		MinSecondary: parseThreshold(q.Get(ParamMinSecondary)),
		MinSpend:     parseThreshold(q.Get(ParamMinSpend)),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseThreshold(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Matches reports whether a single row passes every filter
func (f Filter) Matches(r domain.CleanRow) bool {
	if !oneOf(f.Regions, r.Region) ||
		!oneOf(f.IncomeGroups, r.IncomeGroup) ||
		!oneOf(f.Profiles, r.EducationProfile) {
		return false
	}
	return atLeast(r.YouthLiteracyRate, f.MinLiteracy) &&
		atLeast(r.PrimaryEnrollmentRate, f.MinPrimary) &&
		atLeast(r.SecondaryEnrollmentRate, f.MinSecondary) &&
		atLeast(r.GovEducationSpendingPctGDP, f.MinSpend)
}

// Apply returns the matching rows in table order as a new slice
func (f Filter) Apply(rows []domain.CleanRow) []domain.CleanRow {
	out := make([]domain.CleanRow, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func oneOf(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// atLeast passes when no threshold is set; a missing value never passes one
func atLeast(v, threshold *float64) bool {
	if threshold == nil {
		return true
	}
	return v != nil && *v >= *threshold
}

// Sort keys accepted by the countries listing
const (
	SortCountry   = "country"
	SortLiteracy  = "literacy"
	SortPrimary   = "primary"
	SortSecondary = "secondary"
	SortSpend     = "spend"
	SortYear      = "year"
)

// Sort orders the countries listing
type Sort struct {
	Key  string
	Desc bool
}

// ParseSort reads sort and order. Unknown keys sort by country, and any
// order other than "desc" is ascending.
func ParseSort(q url.Values) Sort {
	key := q.Get(ParamSort)
	switch key {
	case SortCountry, SortLiteracy, SortPrimary, SortSecondary, SortSpend, SortYear:
	default:
		key = SortCountry
	}
	return Sort{Key: key, Desc: q.Get(ParamOrder) == "desc"}
}

// Rows sorts rows in place, stable, with missing values last in both
// directions
func (s Sort) Rows(rows []domain.CleanRow) {
	if s.Key == SortCountry {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].Country, rows[j].Country
			if a == "" || b == "" {
				return a != "" && b == ""
			}
			if s.Desc {
				return a > b
			}
			return a < b
		})
		return
	}

	key := func(r domain.CleanRow) (float64, bool) {
		switch s.Key {
		case SortYear:
			if r.LatestYear == nil {
				return 0, false
			}
			return float64(*r.LatestYear), true
		case SortLiteracy:
			return deref(r.YouthLiteracyRate)
		case SortPrimary:
			return deref(r.PrimaryEnrollmentRate)
		case SortSecondary:
			return deref(r.SecondaryEnrollmentRate)
		default:
			return deref(r.GovEducationSpendingPctGDP)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, okA := key(rows[i])
		b, okB := key(rows[j])
		if !okA || !okB {
			return okA && !okB
		}
		if s.Desc {
			return a > b
		}
		return a < b
	})
}

func deref(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}

// Page is a validated pagination request
type Page struct {
	Page    int
	PerPage int
}

// ParsePage reads page and per_page. page is at least 1 and per_page is
// clamped to [1, MaxPerPage]; if either fails to parse both fall back to
// the defaults.
func ParsePage(q url.Values) Page {
	page, perPage := DefaultPage, DefaultPerPage
	var err error

	if q.Has(ParamPage) {
		if page, err = strconv.Atoi(strings.TrimSpace(q.Get(ParamPage))); err != nil {
			return Page{Page: DefaultPage, PerPage: DefaultPerPage}
		}
	}
	if q.Has(ParamPerPage) {
		if perPage, err = strconv.Atoi(strings.TrimSpace(q.Get(ParamPerPage))); err != nil {
			return Page{Page: DefaultPage, PerPage: DefaultPerPage}
		}
	}

	return Page{
		Page:    max(1, page),
		PerPage: max(1, min(MaxPerPage, perPage)),
	}
}

// Slice returns the page window of rows; out of range pages are empty
func (p Page) Slice(rows []domain.CleanRow) []domain.CleanRow {
	start := (p.Page - 1) * p.PerPage
	if start >= len(rows) {
		return []domain.CleanRow{}
	}
	end := min(start+p.PerPage, len(rows))
	return rows[start:end]
}

// Pages is the page count for total rows
func (p Page) Pages(total int) int {
	return int(math.Ceil(float64(total) / float64(p.PerPage)))
}
