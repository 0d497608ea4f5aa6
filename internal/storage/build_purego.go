//go:build purego || !cgo_sqlite

package storage

// Compiled when building without CGO or without the cgo_sqlite tag:
//
//	CGO_ENABLED=0 go build ./...
//
// The pure Go driver needs no C toolchain and cross-compiles everywhere,
// which is what the default build wants.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver registered by this build.
	DriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
