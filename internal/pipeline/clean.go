package pipeline

import (
	"math"
	"sort"

	"edustats/internal/indicators"
	"edustats/pkg/contracts/domain"
)

// Clamp bounds for the headline indicators
const (
	RateMin  = 0.0
	RateMax  = 100.0
	SpendMin = 0.0
	SpendMax = 15.0
)

// Profile thresholds, applied to rounded values
const (
	LiteracyTarget  = 95.0
	PrimaryTarget   = 90.0
	SecondaryTarget = 85.0
	SpendTarget     = 4.0
)

// Clamp bounds v to [lo, hi]; nil stays nil
func Clamp(v *float64, lo, hi float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(math.Min(math.Max(*v, lo), hi))
}

// Round1 rounds half away from zero to one decimal place
func Round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(math.Round(*v*10) / 10)
}

// ClassifyProfile labels a country from its headline indicators
func ClassifyProfile(lit, prim, sec, spend *float64) domain.EducationProfile {
	hitLit := atLeast(lit, LiteracyTarget)
	hitAccess := atLeast(prim, PrimaryTarget) || atLeast(sec, SecondaryTarget)
	hitSpend := atLeast(spend, SpendTarget)

	if hitLit && hitAccess && hitSpend {
		return domain.ProfileHighAccessLiteracy
	}

	hits := 0
	for _, h := range []bool{hitLit, hitAccess, hitSpend} {
		if h {
			hits++
		}
	}
	if hits >= 2 {
		return domain.ProfileMixed
	}
	return domain.ProfileLowAccessLiteracy
}

func atLeast(v *float64, threshold float64) bool {
	return v != nil && *v >= threshold
}

// LatestSet is the per-indicator latest-value extraction feeding the builder
type LatestSet struct {
	Literacy       map[string]domain.YearValue
	PrimaryNet     map[string]domain.YearValue
	SecondaryNet   map[string]domain.YearValue
	SecondaryGross map[string]domain.YearValue
	EducationSpend map[string]domain.YearValue
}

// ExtractLatest runs the latest-value extractor for every clean-table indicator
func ExtractLatest(obs []domain.Observation) LatestSet {
	return LatestSet{
		Literacy:       indicators.Latest(obs, domain.IndicatorYouthLiteracy),
		PrimaryNet:     indicators.Latest(obs, domain.IndicatorPrimaryNet),
		SecondaryNet:   indicators.Latest(obs, domain.IndicatorSecondaryNet),
		SecondaryGross: indicators.Latest(obs, domain.IndicatorSecondaryGross),
		EducationSpend: indicators.Latest(obs, domain.IndicatorEducationSpend),
	}
}

// BuildCleanTable outer-joins the latest values on country code and attaches
// metadata. Rows are ordered by country code.
func BuildCleanTable(obs []domain.Observation, meta []domain.CountryMeta) []domain.CleanRow {
	return BuildFromLatest(ExtractLatest(obs), meta)
}

// BuildFromLatest is BuildCleanTable over pre-computed extractions
func BuildFromLatest(latest LatestSet, meta []domain.CountryMeta) []domain.CleanRow {
	byCode := make(map[string]domain.CountryMeta, len(meta))
	for _, m := range meta {
		if _, dup := byCode[m.Code]; !dup {
			byCode[m.Code] = m
		}
	}

	codes := unionCodes(latest.Literacy, latest.PrimaryNet, latest.SecondaryNet, latest.SecondaryGross, latest.EducationSpend)
	rows := make([]domain.CleanRow, 0, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}

		lit, litYear := lookup(latest.Literacy, code)
		prim, primYear := lookup(latest.PrimaryNet, code)
		sec, secYear := lookup(latest.SecondaryNet, code)
		if sec == nil {
			sec, secYear = lookup(latest.SecondaryGross, code)
		}
		spend, spendYear := lookup(latest.EducationSpend, code)

		lit = Round1(Clamp(lit, RateMin, RateMax))
		prim = Round1(Clamp(prim, RateMin, RateMax))
		sec = Round1(Clamp(sec, RateMin, RateMax))
		spend = Round1(Clamp(spend, SpendMin, SpendMax))

		m := byCode[code]
		rows = append(rows, domain.CleanRow{
			Country:                    m.Name,
			CountryCode:                code,
			YouthLiteracyRate:          lit,
			PrimaryEnrollmentRate:      prim,
			SecondaryEnrollmentRate:    sec,
			GovEducationSpendingPctGDP: spend,
			LatestYear:                 maxYear(litYear, primYear, secYear, spendYear),
			Region:                     m.Region,
			IncomeGroup:                m.IncomeGroup,
			EducationProfile:           string(ClassifyProfile(lit, prim, sec, spend)),
		})
	}
	return rows
}

func unionCodes(sets ...map[string]domain.YearValue) []string {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for code := range set {
			seen[code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func lookup(set map[string]domain.YearValue, code string) (*float64, *int) {
	yv, ok := set[code]
	if !ok {
		return nil, nil
	}
	return domain.Float(yv.Value), domain.Int(yv.Year)
}

func maxYear(years ...*int) *int {
	var out *int
	for _, y := range years {
		if y != nil && (out == nil || *y > *out) {
			out = domain.Int(*y)
		}
	}
	return out
}
