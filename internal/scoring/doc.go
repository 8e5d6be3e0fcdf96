// Package scoring derives the Youth Learning Score and the insights snapshot
// from the clean table.
//
// YLS is a weighted mean of per-indicator z-scores rescaled onto 0..100.
// Insights rank countries by YLS and by five-year literacy change and hold
// the pairwise correlations of the four headline indicators.
package scoring
