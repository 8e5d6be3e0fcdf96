// Package http implements the HTTP handlers of the education statistics API.
// Handlers stay thin: they parse query parameters, call the query service and
// render JSON. Failures are rendered as RFC 7807 problems by the shared
// errors.ErrorHandler.
//
// # Routes
//
// EducationHandler.Routes is mounted under /api:
//
//	GET /meta             filter vocabularies, indicator names, last year, counts
//	GET /stats            indicator averages over the filtered view
//	GET /countries        filtered, sorted, paginated rows
//	GET /country/{code}   one row, case-insensitive code, 404 when unknown
//	GET /download/clean   education_clean.csv as an attachment
//	GET /insights         persisted insights snapshot
//	GET /insights/live    insights recomputed over the filtered view
//
// HealthHandler.Routes is mounted under /api/health and exposes /, /live and
// /ready.
//
// # Filters
//
// region, income_group and profile take comma separated values that are
// OR-ed; different parameters are AND-ed. min_literacy, min_primary,
// min_secondary and min_spend drop rows below the threshold and are ignored
// when malformed.
package http
