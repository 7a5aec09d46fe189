package snapshot

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/pathsafe"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

// TB is the subset of testing.TB used by MatchDir
type TB interface {
	Helper()
	Name() string
	Errorf(format string, args ...any)
	Logf(format string, args ...any)
}

// Option adjusts the Options used by MatchDir
type Option func(*Options) error

// WithUpdate forces update mode on or off, overriding DIRSNAP_UPDATE
func WithUpdate(update bool) Option {
	return func(o *Options) error {
		o.Update = update
		return nil
	}
}

// WithExclude ignores entries matching the given patterns
func WithExclude(patterns ...string) Option {
	return func(o *Options) error {
		m, err := pathsafe.NewMatcher(patterns)
		if err != nil {
			return err
		}
		o.Exclude = m
		return nil
	}
}

// WithPlaceholder writes name into empty directories of new snapshots
func WithPlaceholder(name string) Option {
	return func(o *Options) error {
		o.Placeholder = name
		return nil
	}
}

// WithDirName stores snapshots under dirName next to the test file
func WithDirName(dirName string) Option {
	return func(o *Options) error {
		o.DirName = dirName
		return nil
	}
}

// WithBackends reads received trees from live and snapshots from store
func WithBackends(live, store storage.Backend) Option {
	return func(o *Options) error {
		o.Live = live
		o.Store = store
		return nil
	}
}

// WithTestPath sets the test file that snapshots are stored next to.
// Use it when MatchDir is called from a shared helper rather than from
// the test file itself.
func WithTestPath(testPath string) Option {
	return func(o *Options) error {
		o.TestPath = testPath
		return nil
	}
}

// WithLogger logs matcher activity
func WithLogger(logger logging.Logger) Option {
	return func(o *Options) error {
		o.Logger = logger
		return nil
	}
}

// UpdateFromEnv reports whether DIRSNAP_UPDATE asks for snapshot updates
func UpdateFromEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvUpdate))) {
	case "1", "true", "all":
		return true
	}
	return false
}

// MatchDir asserts that dir matches the snapshot recorded for the calling
// test. The snapshot lives in __dir_snapshots__ next to the source file of
// MatchDir's direct caller; a helper that wraps MatchDir puts snapshots next
// to the helper's file unless it passes WithTestPath. Set DIRSNAP_UPDATE=1
// to create or refresh the snapshot.
func MatchDir(t TB, dir string, opts ...Option) {
	t.Helper()

	_, testPath, _, ok := runtime.Caller(1)
	if !ok {
		testPath = ""
	}

	options := Options{
		Update:      UpdateFromEnv(),
		Placeholder: storage.DefaultPlaceholder,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			t.Errorf("dirsnap: %v", err)
			return
		}
	}

	if options.TestPath != "" {
		testPath = options.TestPath
	}

	result := NewMatcher(options).Match(context.Background(), Request{
		TestPath: testPath,
		TestName: t.Name(),
		Received: dir,
	})
	if !result.Pass {
		t.Errorf("%s", result.Message)
		return
	}
	if result.Created {
		t.Logf("dirsnap: wrote snapshot %s (%d files)", result.SnapshotPath, result.Stats.Files)
	}
}
