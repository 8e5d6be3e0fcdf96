// Package wdi reads World Development Indicators extracts.
//
// WDI data ships as a wide table: one row per (country, indicator) with one
// column per year. Melt reshapes it into long observations, one per
// (country, indicator, year) cell. Malformed numbers become nil values and
// never fail the load; only unreadable files or missing identifying columns do.
//
// Both CSV files and .xlsx workbooks are accepted. For workbooks the sheet
// named "Data" (indicators) or "Country" (metadata) is read when present,
// otherwise the first sheet.
package wdi
