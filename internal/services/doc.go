// Package services implements the read-only business logic behind the HTTP
// API.
//
// QueryService holds the clean table loaded at startup and never mutates it.
// Every call builds its own filtered view, so handlers share one service
// across goroutines without locking.
//
// HealthService reports liveness and whether the table is loaded.
package services
