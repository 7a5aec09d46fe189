package compare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture holds a live and a snapshot directory under one temp root
type fixture struct {
	t        *testing.T
	live     string
	snapshot string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		t:        t,
		live:     filepath.Join(root, "live"),
		snapshot: filepath.Join(root, "snapshot"),
	}
	require.NoError(t, os.MkdirAll(f.live, 0755))
	require.NoError(t, os.MkdirAll(f.snapshot, 0755))
	return f
}

func (f *fixture) write(root, name string, content []byte) string {
	f.t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.t, os.WriteFile(path, content, 0644))
	return path
}

// both writes the same content on both sides
func (f *fixture) both(name string, content []byte) {
	f.t.Helper()
	f.write(f.live, name, content)
	f.write(f.snapshot, name, content)
}

func (f *fixture) mkdir(root, name string) {
	f.t.Helper()
	require.NoError(f.t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(name)), 0755))
}
