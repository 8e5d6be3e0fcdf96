// Package files provides the file replacement primitives shared by every
// artifact writer.
//
// WriteAtomic streams content into a temp file next to the target and moves
// it into place, so readers see either the old file or the complete new one.
// MoveFile renames and falls back to copy-and-delete across file systems.
package files
