package domain

// WDI indicator codes consumed by the pipeline
const (
	IndicatorYouthLiteracy  = "SE.ADT.1524.LT.ZS"
	IndicatorPrimaryNet     = "SE.PRM.NENR"
	IndicatorSecondaryNet   = "SE.SEC.NENR"
	IndicatorSecondaryGross = "SE.SEC.ENRR"
	IndicatorEducationSpend = "SE.XPD.TOTL.GD.ZS"
)

// Clean table column names, in persisted order
const (
	ColumnCountry          = "country"
	ColumnCountryCode      = "country_code"
	ColumnYouthLiteracy    = "youth_literacy_rate"
	ColumnPrimary          = "primary_enrollment_rate"
	ColumnSecondary        = "secondary_enrollment_rate"
	ColumnSpending         = "gov_education_spending_pct_gdp"
	ColumnLatestYear       = "latest_year"
	ColumnRegion           = "region"
	ColumnIncomeGroup      = "income_group"
	ColumnEducationProfile = "education_profile"
)

// CleanColumns is the exact column order of education_clean.csv
var CleanColumns = []string{
	ColumnCountry,
	ColumnCountryCode,
	ColumnYouthLiteracy,
	ColumnPrimary,
	ColumnSecondary,
	ColumnSpending,
	ColumnLatestYear,
	ColumnRegion,
	ColumnIncomeGroup,
	ColumnEducationProfile,
}

// HeadlineIndicators are the four numeric columns scored and correlated
var HeadlineIndicators = []string{
	ColumnYouthLiteracy,
	ColumnPrimary,
	ColumnSecondary,
	ColumnSpending,
}

// EducationProfile is the categorical label derived per country
type EducationProfile string

const (
	ProfileHighAccessLiteracy EducationProfile = "high_access_literacy"
	ProfileMixed              EducationProfile = "mixed_profile"
	ProfileLowAccessLiteracy  EducationProfile = "low_access_literacy"
)

// Observation is one (country, indicator, year) cell of the reshaped WDI table.
// Year and Value are nil when the source cell was missing or malformed.
type Observation struct {
	CountryCode   string
	CountryName   string
	IndicatorCode string
	IndicatorName string
	Year          *int
	Value         *float64
}

// Valid reports whether the observation carries both a year and a value
func (o Observation) Valid() bool {
	return o.Year != nil && o.Value != nil
}

// CountryMeta holds descriptive attributes for a real country
type CountryMeta struct {
	Code        string `json:"country_code"`
	Name        string `json:"country"`
	Region      string `json:"region"`
	IncomeGroup string `json:"income_group"`
}

// YearValue is a single dated observation value
type YearValue struct {
	Year  int
	Value float64
}

// CleanRow is one country of the clean table
type CleanRow struct {
	Country                    string   `json:"country"`
	CountryCode                string   `json:"country_code"`
	YouthLiteracyRate          *float64 `json:"youth_literacy_rate"`
	PrimaryEnrollmentRate      *float64 `json:"primary_enrollment_rate"`
	SecondaryEnrollmentRate    *float64 `json:"secondary_enrollment_rate"`
	GovEducationSpendingPctGDP *float64 `json:"gov_education_spending_pct_gdp"`
	LatestYear                 *int     `json:"latest_year"`
	Region                     string   `json:"region"`
	IncomeGroup                string   `json:"income_group"`
	EducationProfile           string   `json:"education_profile"`
}

// Indicator returns the headline value stored under the given column name
func (r CleanRow) Indicator(column string) *float64 {
	switch column {
	case ColumnYouthLiteracy:
		return r.YouthLiteracyRate
	case ColumnPrimary:
		return r.PrimaryEnrollmentRate
	case ColumnSecondary:
		return r.SecondaryEnrollmentRate
	case ColumnSpending:
		return r.GovEducationSpendingPctGDP
	default:
		return nil
	}
}

// ScoreEntry is a ranked YLS result
type ScoreEntry struct {
	CountryCode string   `json:"country_code"`
	Country     string   `json:"country"`
	YLSScore    *float64 `json:"yls_score"`
}

// ImproverEntry is a ranked literacy change result
type ImproverEntry struct {
	CountryCode string   `json:"country_code"`
	Country     string   `json:"country"`
	LitChange5y *float64 `json:"lit_change_5y"`
}

// CorrelationMatrix maps column -> column -> Pearson coefficient (nil when undefined)
type CorrelationMatrix map[string]map[string]*float64

// InsightsSnapshot is the analytics artifact written next to the clean table
type InsightsSnapshot struct {
	LastYear               *int              `json:"last_year"`
	TopYLS                 []ScoreEntry      `json:"top_yls"`
	BottomYLS              []ScoreEntry      `json:"bottom_yls"`
	TopImproversLiteracy5y []ImproverEntry   `json:"top_improvers_literacy_5y"`
	Correlations           CorrelationMatrix `json:"correlations"`
}

// EmptyInsights returns the well-defined payload served when no insights exist
func EmptyInsights() InsightsSnapshot {
	return InsightsSnapshot{
		TopYLS:                 []ScoreEntry{},
		BottomYLS:              []ScoreEntry{},
		TopImproversLiteracy5y: []ImproverEntry{},
		Correlations:           CorrelationMatrix{},
	}
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}
