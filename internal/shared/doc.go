// Package shared holds helpers used by more than one edustats package.
//
// The testutil sub-package provides a capturing slog handler and small
// World Development Indicators fixtures (two countries, three years) that
// the loader, pipeline, service and handler tests share.
package shared
