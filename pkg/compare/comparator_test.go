package compare

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dirsnap/pkg/classify"
	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

func newFileComparator(opts classify.Options) *FileComparator {
	return NewFileComparator(storage.NewLocal(), storage.NewLocal(), opts, nil)
}

func TestCompareFiles_TextNeedsDetailedDiff(t *testing.T) {
	f := newFixture(t)
	a := f.write(f.live, "a.txt", []byte("hello\n"))
	b := f.write(f.snapshot, "a.txt", []byte("hello, world\n"))

	result, err := newFileComparator(classify.DefaultOptions()).CompareFiles(context.Background(), a, b)
	require.NoError(t, err)
	assert.True(t, result.NeedsDetailedDiff)
	assert.Equal(t, models.OutcomeNeedsDetailedDiff, result.Outcome)
	assert.Empty(t, result.Live.Digest)
}

func TestCompareFiles_IdenticalBinary(t *testing.T) {
	content := append([]byte{0x00, 0x01, 0x02}, bytes.Repeat([]byte{0xff}, 4096)...)

	for _, threshold := range []int64{1, classify.DefaultStreamingThreshold} {
		f := newFixture(t)
		a := f.write(f.live, "img.bin", content)
		b := f.write(f.snapshot, "img.bin", content)

		result, err := newFileComparator(classify.Options{StreamingThreshold: threshold}).CompareFiles(context.Background(), a, b)
		require.NoError(t, err)
		assert.False(t, result.NeedsDetailedDiff)
		assert.Equal(t, models.OutcomeIdentical, result.Outcome)
		assert.Equal(t, result.Live.Digest, result.Snapshot.Digest)
		assert.Len(t, result.Live.Digest, 64)
	}
}

func TestCompareFiles_BinaryDiffers(t *testing.T) {
	f := newFixture(t)
	a := f.write(f.live, "x.bin", []byte{0, 1, 2, 3})
	b := f.write(f.snapshot, "x.bin", []byte{0, 1, 2, 4})

	result, err := newFileComparator(classify.DefaultOptions()).CompareFiles(context.Background(), a, b)
	require.Error(t, err)
	assert.Equal(t, models.OutcomeMismatch, result.Outcome)
	assert.Equal(t, models.KindBinaryDiffers, models.KindOf(err))
	assert.Equal(t, `Binary files differ: "`+a+`" and "`+b+`" have different content`, err.Error())

	// different sizes are settled without hashing
	b = f.write(f.snapshot, "y.bin", []byte{0, 1})
	_, err = newFileComparator(classify.DefaultOptions()).CompareFiles(context.Background(), a, b)
	assert.Equal(t, models.KindBinaryDiffers, models.KindOf(err))
}

func TestCompareFiles_LargeTextDiffers(t *testing.T) {
	f := newFixture(t)
	a := f.write(f.live, "big.txt", []byte(strings.Repeat("a", 64)))
	b := f.write(f.snapshot, "big.txt", []byte(strings.Repeat("b", 64)))

	_, err := newFileComparator(classify.Options{StreamingThreshold: 32}).CompareFiles(context.Background(), a, b)
	require.Error(t, err)
	assert.Equal(t, models.KindLargeDiffers, models.KindOf(err))
	assert.Contains(t, err.Error(), "Use a diff tool to compare.")
}

func TestCompareFiles_LargeOnOneSideOnly(t *testing.T) {
	f := newFixture(t)
	a := f.write(f.live, "f.txt", []byte("short"))
	b := f.write(f.snapshot, "f.txt", []byte(strings.Repeat("long ", 20)))

	_, err := newFileComparator(classify.Options{StreamingThreshold: 32}).CompareFiles(context.Background(), a, b)
	assert.Equal(t, models.KindLargeDiffers, models.KindOf(err))
}

func TestCompareFiles_FileTypeMismatch(t *testing.T) {
	f := newFixture(t)
	a := f.write(f.live, "f", []byte("plain text"))
	b := f.write(f.snapshot, "f", []byte{0x00, 0x10})

	result, err := newFileComparator(classify.DefaultOptions()).CompareFiles(context.Background(), a, b)
	require.Error(t, err)
	assert.Equal(t, models.OutcomeMismatch, result.Outcome)
	assert.Equal(t, models.KindFileTypeMismatch, models.KindOf(err))
	assert.Equal(t, `File type mismatch: "`+a+`" is text but "`+b+`" is binary`, err.Error())
}

func TestCompareFiles_MissingFile(t *testing.T) {
	f := newFixture(t)
	a := f.write(f.live, "f.txt", []byte("x"))

	_, err := newFileComparator(classify.DefaultOptions()).CompareFiles(context.Background(), a, f.snapshot+"/f.txt")
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
	assert.Contains(t, err.Error(), "Failed to get file stats for")
}
