// Package pipeline turns a WDI extract into the clean country table and the
// insights snapshot.
//
// BuildCleanTable is the pure transformation. Runner wraps it in a one-shot
// batch run: validate inputs, load both tables concurrently, build, score and
// persist every artifact under the clean directory.
package pipeline
