package types

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound is returned when the scan root cannot be opened.
	ErrRootNotFound = errors.New("root directory not found")
	// ErrSnapshotNotFound is returned when a snapshot file does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrUnwritableDestination is returned when an output file or
	// directory cannot be created.
	ErrUnwritableDestination = errors.New("unwritable destination")
)

// InvariantViolationError reports a malformed Snapshot handed to a consumer,
// such as a duplicate path. It indicates a producer bug and must never be
// swallowed.
type InvariantViolationError struct {
	Path   string
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("snapshot invariant violation at %q: %s", e.Path, e.Reason)
}

// SkipReason classifies why the scanner excluded a file. Skips are not
// errors; they are counted and summarized, never fatal.
type SkipReason string

const (
	SkipBinary     SkipReason = "binary"
	SkipOversize   SkipReason = "oversize"
	SkipUnreadable SkipReason = "unreadable"
	SkipIgnored    SkipReason = "ignored"
)
