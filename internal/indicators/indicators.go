// Package indicators extracts per-country values from long WDI observations.
package indicators

import (
	"edustats/pkg/contracts/domain"
)

// DefaultWindow is the look-back, in years, used for literacy improvement
const DefaultWindow = 5

// validSeries groups the valid observations of one indicator by country,
// preserving input order.
func validSeries(obs []domain.Observation, code string) map[string][]domain.YearValue {
	series := make(map[string][]domain.YearValue)
	for _, o := range obs {
		if o.IndicatorCode != code || !o.Valid() {
			continue
		}
		series[o.CountryCode] = append(series[o.CountryCode], domain.YearValue{Year: *o.Year, Value: *o.Value})
	}
	return series
}

// latestOf picks the maximum year; on equal years the later entry wins
func latestOf(values []domain.YearValue) domain.YearValue {
	best := values[0]
	for _, v := range values[1:] {
		if v.Year >= best.Year {
			best = v
		}
	}
	return best
}

// Latest returns, for each country with at least one valid observation of
// code, the observation with the greatest year.
func Latest(obs []domain.Observation, code string) map[string]domain.YearValue {
	series := validSeries(obs, code)
	out := make(map[string]domain.YearValue, len(series))
	for country, values := range series {
		out[country] = latestOf(values)
	}
	return out
}

// WindowChange returns latest minus the nearest value at least window years
// older. Every country with a latest value is present; the delta is nil
// when no earlier value qualifies.
func WindowChange(obs []domain.Observation, code string, window int) map[string]*float64 {
	series := validSeries(obs, code)
	out := make(map[string]*float64, len(series))
	for country, values := range series {
		latest := latestOf(values)
		cutoff := latest.Year - window

		var prior *domain.YearValue
		for i := range values {
			v := values[i]
			if v.Year > cutoff {
				continue
			}
			if prior == nil || v.Year >= prior.Year {
				prior = &values[i]
			}
		}

		if prior == nil {
			out[country] = nil
			continue
		}
		out[country] = domain.Float(latest.Value - prior.Value)
	}
	return out
}
