// Package types defines the shared data model for the repolens pipeline:
// the per-file Record, the Snapshot sequence, diff results, pack bundles,
// and the error taxonomy used across scanner, diff engine, and chunk packer.
package types
