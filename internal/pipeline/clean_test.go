package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustats/internal/shared/testutil"
	"edustats/internal/wdi"
	"edustats/pkg/contracts/domain"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name   string
		in     *float64
		lo, hi float64
		want   *float64
	}{
		{name: "nil", in: nil, lo: 0, hi: 100, want: nil},
		{name: "inside", in: domain.Float(55.5), lo: 0, hi: 100, want: domain.Float(55.5)},
		{name: "above rate", in: domain.Float(104.2), lo: RateMin, hi: RateMax, want: domain.Float(100)},
		{name: "below rate", in: domain.Float(-3), lo: RateMin, hi: RateMax, want: domain.Float(0)},
		{name: "above spend", in: domain.Float(22), lo: SpendMin, hi: SpendMax, want: domain.Float(15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.in, tt.lo, tt.hi))
		})
	}
}

func TestRound1(t *testing.T) {
	assert.Nil(t, Round1(nil))
	assert.Equal(t, 91.2, *Round1(domain.Float(91.23)))
	assert.Equal(t, 4.7, *Round1(domain.Float(4.66)))
	assert.Equal(t, 100.0, *Round1(domain.Float(99.96)))
}

func TestClassifyProfile(t *testing.T) {
	f := domain.Float
	tests := []struct {
		name                  string
		lit, prim, sec, spend *float64
		want                  domain.EducationProfile
	}{
		{name: "all targets via primary", lit: f(95), prim: f(90), sec: f(10), spend: f(4), want: domain.ProfileHighAccessLiteracy},
		{name: "all targets via secondary", lit: f(99), prim: nil, sec: f(85), spend: f(6), want: domain.ProfileHighAccessLiteracy},
		{name: "literacy and access", lit: f(97), prim: f(95), sec: nil, spend: f(3.9), want: domain.ProfileMixed},
		{name: "access and spend", lit: f(80), prim: f(91), sec: nil, spend: f(5), want: domain.ProfileMixed},
		{name: "spend only", lit: f(90), prim: f(89.5), sec: f(83), spend: f(4), want: domain.ProfileLowAccessLiteracy},
		{name: "nothing known", want: domain.ProfileLowAccessLiteracy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyProfile(tt.lit, tt.prim, tt.sec, tt.spend))
		})
	}
}

func obs(country, code string, year int, value float64) domain.Observation {
	return domain.Observation{CountryCode: country, IndicatorCode: code, Year: domain.Int(year), Value: domain.Float(value)}
}

func TestBuildCleanTable(t *testing.T) {
	observations := []domain.Observation{
		obs("ZZZ", domain.IndicatorYouthLiteracy, 2015, 120),
		obs("ZZZ", domain.IndicatorSecondaryNet, 2012, 70.04),
		obs("ZZZ", domain.IndicatorSecondaryGross, 2019, 99),
		obs("ZZZ", domain.IndicatorEducationSpend, 2011, 31),
		obs("MMM", domain.IndicatorSecondaryGross, 2018, 77.77),
		obs("MMM", domain.IndicatorPrimaryNet, 2016, -2),
		obs("", domain.IndicatorPrimaryNet, 2016, 50),
		obs("QQQ", "SP.POP.TOTL", 2020, 1e6),
	}
	meta := []domain.CountryMeta{
		{Code: "ZZZ", Name: "Zembla", Region: "Europe & Central Asia", IncomeGroup: "High income"},
	}

	rows := BuildCleanTable(observations, meta)
	require.Len(t, rows, 2)

	mmm, zzz := rows[0], rows[1]
	assert.Equal(t, "MMM", mmm.CountryCode, "ordered by code")
	assert.Empty(t, mmm.Country, "orphan codes keep empty metadata")
	assert.Empty(t, mmm.Region)
	assert.Equal(t, 0.0, *mmm.PrimaryEnrollmentRate)
	assert.Equal(t, 77.8, *mmm.SecondaryEnrollmentRate, "gross fills in when net is missing")
	assert.Equal(t, 2018, *mmm.LatestYear)
	assert.Nil(t, mmm.YouthLiteracyRate)

	assert.Equal(t, "Zembla", zzz.Country)
	assert.Equal(t, 100.0, *zzz.YouthLiteracyRate)
	assert.Equal(t, 70.0, *zzz.SecondaryEnrollmentRate, "net wins over gross")
	assert.Equal(t, 15.0, *zzz.GovEducationSpendingPctGDP)
	assert.Equal(t, 2015, *zzz.LatestYear, "gross year is ignored when net is used")
	assert.Equal(t, string(domain.ProfileMixed), zzz.EducationProfile)
}

func TestBuildCleanTableEmpty(t *testing.T) {
	rows := BuildCleanTable(nil, nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestBuildCleanTableFixtures(t *testing.T) {
	wdiPath, countryPath := testutil.WriteWDIFixtures(t, t.TempDir())
	ctx := context.Background()

	long, err := wdi.LoadLong(ctx, wdiPath)
	require.NoError(t, err)
	meta, err := wdi.LoadCountryMeta(ctx, countryPath)
	require.NoError(t, err)

	assert.Equal(t, testutil.CleanRows(), BuildCleanTable(long, meta))
}
