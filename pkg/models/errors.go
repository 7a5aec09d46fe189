package models

import (
	"errors"
	"io/fs"
)

// ErrorKind is the machine-checkable category of a comparison failure
type ErrorKind string

const (
	// KindPathInvalid indicates an empty, relative or escaping path
	KindPathInvalid ErrorKind = "path_invalid"
	// KindNotFound indicates a path that does not exist
	KindNotFound ErrorKind = "not_found"
	// KindPermissionDenied indicates a path that cannot be accessed
	KindPermissionDenied ErrorKind = "permission_denied"
	// KindNotADirectory indicates a path that exists but is not a directory
	KindNotADirectory ErrorKind = "not_a_directory"
	// KindNotAFile indicates a path that exists but is not a regular file
	KindNotAFile ErrorKind = "not_a_file"
	// KindFilesystem indicates any other filesystem failure
	KindFilesystem ErrorKind = "filesystem"

	// KindEntryMissing indicates a live entry with no snapshot counterpart
	KindEntryMissing ErrorKind = "entry_missing_in_snapshot"
	// KindTypeMismatch indicates a file on one side and a directory on the other
	KindTypeMismatch ErrorKind = "type_mismatch"

	// KindBinaryDiffers indicates binary files with different digests
	KindBinaryDiffers ErrorKind = "binary_files_differ"
	// KindLargeDiffers indicates large text files with different digests
	KindLargeDiffers ErrorKind = "large_files_differ"
	// KindContentDiffers indicates small text files with a line-level difference
	KindContentDiffers ErrorKind = "file_content_differs"

	// KindFileTypeMismatch indicates one side is binary and the other text
	KindFileTypeMismatch ErrorKind = "file_type_mismatch"
)

// ErrorClass groups error kinds
type ErrorClass string

const (
	ClassPath       ErrorClass = "path"
	ClassFilesystem ErrorClass = "filesystem"
	ClassStructural ErrorClass = "structural"
	ClassContent    ErrorClass = "content"
	ClassFileType   ErrorClass = "file_type"
	ClassUnknown    ErrorClass = "unknown"
)

// Class returns the group the kind belongs to
func (k ErrorKind) Class() ErrorClass {
	switch k {
	case KindPathInvalid:
		return ClassPath
	case KindNotFound, KindPermissionDenied, KindNotADirectory, KindNotAFile, KindFilesystem:
		return ClassFilesystem
	case KindEntryMissing, KindTypeMismatch:
		return ClassStructural
	case KindBinaryDiffers, KindLargeDiffers, KindContentDiffers:
		return ClassContent
	case KindFileTypeMismatch:
		return ClassFileType
	default:
		return ClassUnknown
	}
}

// ComparisonError is raised at the point a mismatch or filesystem failure is
// detected and travels unchanged to the caller. Message is the full
// human-readable text shown to the user.
type ComparisonError struct {
	Kind    ErrorKind
	Paths   []string
	Message string
	Err     error
}

func (e *ComparisonError) Error() string {
	return e.Message
}

func (e *ComparisonError) Unwrap() error {
	return e.Err
}

// NewComparisonError creates a ComparisonError without an underlying cause
func NewComparisonError(kind ErrorKind, message string, paths ...string) *ComparisonError {
	return &ComparisonError{Kind: kind, Paths: paths, Message: message}
}

// KindOf returns the kind of the first ComparisonError in err's chain,
// or an empty kind if there is none
func KindOf(err error) ErrorKind {
	var cerr *ComparisonError
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// FilesystemKind maps an I/O error to NotFound, PermissionDenied or Filesystem
func FilesystemKind(err error) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	default:
		return KindFilesystem
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
