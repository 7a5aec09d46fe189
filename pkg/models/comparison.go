package models

// Outcome is the tagged result of comparing a single file pair
type Outcome string

const (
	// OutcomeIdentical means the pair matched and needs no further inspection
	OutcomeIdentical Outcome = "identical"
	// OutcomeNeedsDetailedDiff means both files are small text files whose
	// contents must be diffed line by line
	OutcomeNeedsDetailedDiff Outcome = "needs_detailed_diff"
	// OutcomeMismatch means the pair differs; the accompanying error says why
	OutcomeMismatch Outcome = "mismatch"
)

// Classification describes how a file should be compared.
// It is computed fresh for every comparison and never cached.
type Classification struct {
	Path         string
	IsBinary     bool
	Size         int64
	ShouldStream bool

	// Digest is the hex SHA-256 of the content, empty until computed
	Digest string
}

// FileStats is the result of a stat-backed classification
type FileStats struct {
	Path         string
	Size         int64
	IsBinary     bool
	ShouldStream bool
}

// FileComparison holds the result of comparing a live file with its snapshot
type FileComparison struct {
	LivePath     string
	SnapshotPath string
	Outcome      Outcome

	// NeedsDetailedDiff is set when the caller must read both files and
	// render a line diff
	NeedsDetailedDiff bool

	Live     *Classification
	Snapshot *Classification
}
