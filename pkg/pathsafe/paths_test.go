package pathsafe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	t.Run("AcceptsAbsolute", func(t *testing.T) {
		got, err := ValidatePath("/valid/absolute/path", "")
		require.NoError(t, err)
		assert.Equal(t, "/valid/absolute/path", got)
	})

	t.Run("NormalizesDotSegments", func(t *testing.T) {
		got, err := ValidatePath("/some/./path/../other", "")
		require.NoError(t, err)
		assert.Equal(t, "/some/other", got)
	})

	t.Run("ClampsTraversalAtRoot", func(t *testing.T) {
		got, err := ValidatePath("/valid/../../../etc/passwd", "")
		require.NoError(t, err)
		assert.Equal(t, "/etc/passwd", got)
	})

	t.Run("CollapsesDoubleSlashes", func(t *testing.T) {
		got, err := ValidatePath("/path//with//double//slashes", "")
		require.NoError(t, err)
		assert.Equal(t, "/path/with/double/slashes", got)
	})

	t.Run("RejectsEmpty", func(t *testing.T) {
		_, err := ValidatePath("", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path cannot be empty")

		var perr *PathError
		assert.True(t, errors.As(err, &perr))
	})

	t.Run("RejectsRelative", func(t *testing.T) {
		_, err := ValidatePath("./relative", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be absolute")
	})

	t.Run("WithinBase", func(t *testing.T) {
		got, err := ValidatePath("/allowed/base/subdir", "/allowed/base")
		require.NoError(t, err)
		assert.Equal(t, "/allowed/base/subdir", got)
	})

	t.Run("OutsideBase", func(t *testing.T) {
		_, err := ValidatePath("/outside/path", "/allowed/base")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolves outside of allowed base path")
	})

	t.Run("TraversalOutOfBase", func(t *testing.T) {
		_, err := ValidatePath("/allowed/base/../../../etc", "/allowed/base")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolves outside of allowed base path")
	})

	t.Run("BaseItselfRejected", func(t *testing.T) {
		_, err := ValidatePath("/allowed/base", "/allowed/base")
		require.Error(t, err)
	})

	t.Run("SiblingWithCommonPrefix", func(t *testing.T) {
		_, err := ValidatePath("/allowed/base-other/x", "/allowed/base")
		require.Error(t, err)
	})
}

func TestIsAbsolute(t *testing.T) {
	assert.True(t, IsAbsolute("/tmp"))
	assert.False(t, IsAbsolute("tmp"))
	assert.False(t, IsAbsolute(""))
}
