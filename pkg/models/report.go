package models

import (
	"time"
)

// Report is the outcome of one CLI run (compare, update or diff)
type Report struct {
	RunID    string
	Command  string
	Live     string
	Snapshot string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Status Status

	// Kind and Message are set when Status is StatusMismatch or StatusError
	Kind    ErrorKind
	Message string

	// FilesCopied and BytesCopied are set by snapshot updates
	FilesCopied int
	BytesCopied int64

	// SnapshotID is set when the snapshot was derived from a test identity
	SnapshotID string

	// Files holds per-file classifications (classify and diff commands)
	Files []Classification
}

// Status represents the overall result of a run
type Status string

const (
	// StatusPassed indicates the trees (or files) are equivalent
	StatusPassed Status = "passed"
	// StatusUpdated indicates the snapshot was (re)created
	StatusUpdated Status = "updated"
	// StatusMismatch indicates a structural or content difference
	StatusMismatch Status = "mismatch"
	// StatusError indicates the run could not complete
	StatusError Status = "error"
)

// ExitCode returns the appropriate exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusPassed, StatusUpdated:
		return 0
	case StatusMismatch:
		return 1
	case StatusError:
		return 2
	default:
		return 2
	}
}

// StatusForError picks the run status for a failure: filesystem and path
// problems are errors, everything else is a mismatch
func StatusForError(err error) Status {
	if err == nil {
		return StatusPassed
	}
	switch KindOf(err).Class() {
	case ClassStructural, ClassContent, ClassFileType:
		return StatusMismatch
	default:
		return StatusError
	}
}
