package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"edustats/pkg/contracts/domain"
)

// WDIHeader is the header row of WDICSV, with the trailing empty column
// found in World Bank bulk downloads
const WDIHeader = "Country Name,Country Code,Indicator Name,Indicator Code,2018,2019,2020,"

// WDICSV is a two-country indicator extract covering 2018-2020.
// BBB has no net secondary enrolment so the gross series fills in.
const WDICSV = WDIHeader + `
Aland,AAA,"Literacy rate, youth total (% of people ages 15-24)",SE.ADT.1524.LT.ZS,,96.0,96.5,
Aland,AAA,"School enrollment, primary (% net)",SE.PRM.NENR,,91.0,91.2,
Aland,AAA,"School enrollment, secondary (% net)",SE.SEC.NENR,84.0,86.0,86.5,
Aland,AAA,"Government expenditure on education, total (% of GDP)",SE.XPD.TOTL.GD.ZS,4.1,4.5,4.6,
Aland,AAA,"Population, total",SP.POP.TOTL,1000,1010,1020,
Bretoria,BBB,"Literacy rate, youth total (% of people ages 15-24)",SE.ADT.1524.LT.ZS,88.0,..,90.0,
Bretoria,BBB,"School enrollment, primary (% net)",SE.PRM.NENR,89.0,89.5,,
Bretoria,BBB,"School enrollment, secondary (% gross)",SE.SEC.ENRR,,82.0,83.0,
Bretoria,BBB,"Government expenditure on education, total (% of GDP)",SE.XPD.TOTL.GD.ZS,3.9,,4.0,
`

// CountryCSV is the matching metadata file including an aggregate row.
const CountryCSV = `Country Code,Short Name,Table Name,Long Name,Region,Income Group
AAA,Aland,Aland Islands,Republic of Aland,Europe & Central Asia,High income
BBB,Bretoria,Bretoria,Kingdom of Bretoria,East Asia & Pacific,Upper middle income
WLD,World,World,World,Aggregates,
`

// WriteWDIFixtures writes WDICSV and CountryCSV below dir and returns their paths
func WriteWDIFixtures(t *testing.T, dir string) (wdiPath, countryPath string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	wdiPath = filepath.Join(dir, "WDICSV.csv")
	countryPath = filepath.Join(dir, "WDICountry.csv")
	if err := os.WriteFile(wdiPath, []byte(WDICSV), 0644); err != nil {
		t.Fatalf("failed to write WDI fixture: %v", err)
	}
	if err := os.WriteFile(countryPath, []byte(CountryCSV), 0644); err != nil {
		t.Fatalf("failed to write country fixture: %v", err)
	}
	return wdiPath, countryPath
}

// CleanRows is the clean table the pipeline derives from the fixtures
func CleanRows() []domain.CleanRow {
	return []domain.CleanRow{
		{
			Country:                    "Aland",
			CountryCode:                "AAA",
			YouthLiteracyRate:          domain.Float(96.5),
			PrimaryEnrollmentRate:      domain.Float(91.2),
			SecondaryEnrollmentRate:    domain.Float(86.5),
			GovEducationSpendingPctGDP: domain.Float(4.6),
			LatestYear:                 domain.Int(2020),
			Region:                     "Europe & Central Asia",
			IncomeGroup:                "High income",
			EducationProfile:           string(domain.ProfileHighAccessLiteracy),
		},
		{
			Country:                    "Bretoria",
			CountryCode:                "BBB",
			YouthLiteracyRate:          domain.Float(90.0),
			PrimaryEnrollmentRate:      domain.Float(89.5),
			SecondaryEnrollmentRate:    domain.Float(83.0),
			GovEducationSpendingPctGDP: domain.Float(4.0),
			LatestYear:                 domain.Int(2020),
			Region:                     "East Asia & Pacific",
			IncomeGroup:                "Upper middle income",
			EducationProfile:           string(domain.ProfileLowAccessLiteracy),
		},
	}
}
