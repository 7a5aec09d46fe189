package storage

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dirsnap/pkg/models"
)

func TestLocal_LstatAndStat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0644))

	local := NewLocal()
	defer local.Close()

	t.Run("File", func(t *testing.T) {
		info, err := local.Lstat(ctx, file)
		require.NoError(t, err)
		assert.Equal(t, models.KindFile, info.Kind)
		assert.Equal(t, int64(5), info.Size)
		assert.Equal(t, file, info.Path)
	})

	t.Run("Directory", func(t *testing.T) {
		info, err := local.Stat(ctx, dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := local.Lstat(ctx, filepath.Join(dir, "missing"))
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("SymlinkNotFollowed", func(t *testing.T) {
		link := filepath.Join(dir, "link")
		require.NoError(t, os.Symlink(file, link))

		info, err := local.Lstat(ctx, link)
		require.NoError(t, err)
		assert.Equal(t, models.KindOther, info.Kind)

		info, err = local.Stat(ctx, link)
		require.NoError(t, err)
		assert.Equal(t, models.KindFile, info.Kind)
	})
}

func TestLocal_ReadDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(dir, "link")))

	entries, err := NewLocal().ReadDir(ctx, dir)
	require.NoError(t, err)

	assert.Equal(t, []models.DirectoryEntry{
		{Name: "a.txt", Kind: models.KindFile},
		{Name: "b.txt", Kind: models.KindFile},
		{Name: "link", Kind: models.KindOther},
		{Name: "sub", Kind: models.KindDirectory},
	}, entries)

	_, err = NewLocal().ReadDir(ctx, filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLocal_ReadFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local := NewLocal()

	t.Run("Content", func(t *testing.T) {
		content := bytes.Repeat([]byte("0123456789"), 10000)
		path := filepath.Join(dir, "big.bin")
		require.NoError(t, os.WriteFile(path, content, 0644))

		data, err := local.ReadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, content, data)
	})

	t.Run("Empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		data, err := local.ReadFile(ctx, path)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := local.ReadFile(ctx, filepath.Join(dir, "missing"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestLocal_OpenAndWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local := NewLocal()

	path := filepath.Join(dir, "nested", "deeper", "out.txt")
	n, err := local.Write(ctx, path, bytes.NewReader([]byte("line1\nline2\n")), 0600)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	reader, err := local.Open(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", string(data))

	// Overwrite truncates
	_, err = local.Write(ctx, path, bytes.NewReader([]byte("x")), 0600)
	require.NoError(t, err)
	data, err = local.ReadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestLocal_SymlinkAndReadlink(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local := NewLocal()

	link := filepath.Join(dir, "sub", "link")
	require.NoError(t, local.Symlink(ctx, "../target.txt", link))

	target, err := local.Readlink(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, "../target.txt", target)
}

func TestLocal_MkdirAllAndRemoveAll(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local := NewLocal()

	nested := filepath.Join(dir, "a", "b", "c")
	require.NoError(t, local.MkdirAll(ctx, nested))
	assert.DirExists(t, nested)

	require.NoError(t, local.RemoveAll(ctx, filepath.Join(dir, "a")))
	assert.NoDirExists(t, filepath.Join(dir, "a"))

	// Removing a missing path is not an error
	assert.NoError(t, local.RemoveAll(ctx, filepath.Join(dir, "a")))
}
