package models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============== DirectoryEntry Tests ==============

func TestKindFromMode(t *testing.T) {
	tests := []struct {
		name string
		mode fs.FileMode
		want EntryKind
	}{
		{"Regular", 0644, KindFile},
		{"Directory", fs.ModeDir | 0755, KindDirectory},
		{"Symlink", fs.ModeSymlink | 0777, KindOther},
		{"Pipe", fs.ModeNamedPipe, KindOther},
		{"Socket", fs.ModeSocket, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindFromMode(tt.mode))
		})
	}
}

func TestDirectoryEntryIsDir(t *testing.T) {
	assert.True(t, DirectoryEntry{Name: "sub", Kind: KindDirectory}.IsDir())
	assert.False(t, DirectoryEntry{Name: "a.txt", Kind: KindFile}.IsDir())
	assert.False(t, DirectoryEntry{Name: "link", Kind: KindOther}.IsDir())
}

// ============== Error Tests ==============

func TestErrorKindClass(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want ErrorClass
	}{
		{KindPathInvalid, ClassPath},
		{KindNotFound, ClassFilesystem},
		{KindPermissionDenied, ClassFilesystem},
		{KindNotADirectory, ClassFilesystem},
		{KindNotAFile, ClassFilesystem},
		{KindFilesystem, ClassFilesystem},
		{KindEntryMissing, ClassStructural},
		{KindTypeMismatch, ClassStructural},
		{KindBinaryDiffers, ClassContent},
		{KindLargeDiffers, ClassContent},
		{KindContentDiffers, ClassContent},
		{KindFileTypeMismatch, ClassFileType},
		{ErrorKind("bogus"), ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Class())
		})
	}
}

func TestComparisonError(t *testing.T) {
	cause := fmt.Errorf("lstat /x: %w", fs.ErrNotExist)
	err := &ComparisonError{
		Kind:    KindNotFound,
		Paths:   []string{"/x"},
		Message: `Source directory "/x" does not exist`,
		Err:     cause,
	}

	assert.Equal(t, `Source directory "/x" does not exist`, err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	wrapped := fmt.Errorf("compare: %w", err)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindTypeMismatch))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestNewComparisonError(t *testing.T) {
	err := NewComparisonError(KindBinaryDiffers, "differ", "/a", "/b")
	require.NotNil(t, err)
	assert.Equal(t, []string{"/a", "/b"}, err.Paths)
	assert.Nil(t, err.Unwrap())
}

func TestFilesystemKind(t *testing.T) {
	assert.Equal(t, KindNotFound, FilesystemKind(os.ErrNotExist))
	assert.Equal(t, KindPermissionDenied, FilesystemKind(&fs.PathError{Op: "open", Path: "/p", Err: fs.ErrPermission}))
	assert.Equal(t, KindFilesystem, FilesystemKind(errors.New("disk on fire")))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "compare.context_lines", Message: "must not be negative"}
	assert.Equal(t, "compare.context_lines: must not be negative", err.Error())
}

// ============== Report Tests ==============

func TestStatusExitCode(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusPassed, 0},
		{StatusUpdated, 0},
		{StatusMismatch, 1},
		{StatusError, 2},
		{Status("unknown"), 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.ExitCode())
		})
	}
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, StatusPassed, StatusForError(nil))
	assert.Equal(t, StatusMismatch, StatusForError(NewComparisonError(KindContentDiffers, "x")))
	assert.Equal(t, StatusMismatch, StatusForError(NewComparisonError(KindEntryMissing, "x")))
	assert.Equal(t, StatusMismatch, StatusForError(NewComparisonError(KindFileTypeMismatch, "x")))
	assert.Equal(t, StatusError, StatusForError(NewComparisonError(KindNotFound, "x")))
	assert.Equal(t, StatusError, StatusForError(errors.New("boom")))
}
