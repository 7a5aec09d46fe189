package classify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

func sha(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func newLocal(t *testing.T, opts Options) (*Classifier, string) {
	t.Helper()
	return New(storage.NewLocal(), opts, nil), t.TempDir()
}

func write(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestNew_Defaults(t *testing.T) {
	c := New(storage.NewLocal(), Options{BufferSize: 10}, nil)
	opts := c.Options()
	assert.Equal(t, DefaultBinaryCheckSize, opts.BinaryCheckSize)
	assert.Equal(t, int64(DefaultStreamingThreshold), opts.StreamingThreshold)
	assert.Equal(t, DefaultBufferSize, opts.BufferSize)
}

func TestIsBinary(t *testing.T) {
	ctx := context.Background()
	c, dir := newLocal(t, DefaultOptions())

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"text", []byte("hello\nworld\n"), false},
		{"empty", nil, false},
		{"nul at start", []byte{0x00, 'a', 'b'}, true},
		{"png header", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00}, true},
		{"utf8", []byte("héllo wörld ✓"), false},
		{"nul just inside window", append(bytes.Repeat([]byte("a"), DefaultBinaryCheckSize-1), 0), true},
		{"nul beyond window", append(bytes.Repeat([]byte("a"), DefaultBinaryCheckSize), 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, dir, strings.ReplaceAll(tt.name, " ", "_"), tt.data)
			assert.Equal(t, tt.want, c.IsBinary(ctx, path))
			// stable across calls
			assert.Equal(t, tt.want, c.IsBinary(ctx, path))
		})
	}

	t.Run("unreadable counts as binary", func(t *testing.T) {
		assert.True(t, c.IsBinary(ctx, filepath.Join(dir, "missing")))
	})
}

func TestShouldStream(t *testing.T) {
	ctx := context.Background()
	c, dir := newLocal(t, Options{StreamingThreshold: 16})

	atThreshold := write(t, dir, "at.txt", bytes.Repeat([]byte("x"), 16))
	above := write(t, dir, "above.txt", bytes.Repeat([]byte("x"), 17))

	assert.False(t, c.ShouldStream(ctx, atThreshold))
	assert.True(t, c.ShouldStream(ctx, above))
	assert.False(t, c.ShouldStream(ctx, filepath.Join(dir, "missing")))
}

func TestDigest(t *testing.T) {
	ctx := context.Background()
	c, dir := newLocal(t, Options{BufferSize: minBufferSize})

	content := bytes.Repeat([]byte("snapshot-bytes "), 5000)
	a := write(t, dir, "a.bin", content)
	b := write(t, dir, "b.bin", content)

	whole, err := c.Digest(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, sha(content), whole)
	assert.Len(t, whole, 64)
	assert.Equal(t, strings.ToLower(whole), whole)

	streamed, err := c.DigestStream(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, whole, streamed, "digest depends only on content")

	empty := write(t, dir, "empty", nil)
	d, err := c.Digest(ctx, empty)
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", d)

	_, err = c.Digest(ctx, filepath.Join(dir, "missing"))
	assert.Error(t, err)
	_, err = c.DigestStream(ctx, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestDigestReader(t *testing.T) {
	c := New(storage.NewLocal(), DefaultOptions(), nil)

	digest, err := c.DigestReader(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, sha([]byte("hello")), digest)

	boom := errors.New("disk on fire")
	_, err = c.DigestReader(&failingReader{data: []byte("partial"), err: boom})
	assert.ErrorIs(t, err, boom)

	_, err = c.DigestReader(&failingReader{err: io.ErrUnexpectedEOF})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDigestStream_Progress(t *testing.T) {
	ctx := context.Background()
	var last, total int64
	c, dir := newLocal(t, Options{
		BufferSize: minBufferSize,
		Progress: func(_ string, current, size int64) {
			last, total = current, size
		},
	})

	path := write(t, dir, "big", bytes.Repeat([]byte("z"), 3*minBufferSize+7))
	_, err := c.DigestStream(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(3*minBufferSize+7), last)
	assert.Equal(t, last, total)
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	c, dir := newLocal(t, Options{StreamingThreshold: 4})

	text := write(t, dir, "small.txt", []byte("abc"))
	bin := write(t, dir, "big.bin", []byte{1, 2, 0, 3, 4, 5})

	got, err := c.Classify(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, &models.Classification{Path: text, Size: 3}, got)

	got, err = c.Classify(ctx, bin)
	require.NoError(t, err)
	assert.True(t, got.IsBinary)
	assert.True(t, got.ShouldStream)
	assert.Empty(t, got.Digest)
}

func TestFileStats(t *testing.T) {
	ctx := context.Background()
	c, dir := newLocal(t, DefaultOptions())

	path := write(t, dir, "f.txt", []byte("text"))
	stats, err := c.FileStats(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, &models.FileStats{Path: path, Size: 4}, stats)

	missing := filepath.Join(dir, "missing")
	_, err = c.FileStats(ctx, missing)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), `Failed to get file stats for "`+missing+`": `))
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestClassifier_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, util.WriteFile(mem.Raw(), "/f.bin", []byte{0, 1, 2}, 0644))

	c := New(mem, DefaultOptions(), nil)
	assert.True(t, c.IsBinary(ctx, "/f.bin"))

	digest, err := c.Digest(ctx, "/f.bin")
	require.NoError(t, err)
	assert.Equal(t, sha([]byte{0, 1, 2}), digest)
}
