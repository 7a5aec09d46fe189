// Package classify decides how a file is compared: whether it is binary,
// whether it is large enough to be streamed, and what its SHA-256 digest is.
package classify

import (
	"bytes"
	"context"
	_ "crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/storage"
)

const (
	// DefaultBinaryCheckSize is how many leading bytes are inspected for a NUL byte
	DefaultBinaryCheckSize = 8192
	// DefaultStreamingThreshold is the size above which files are hashed in chunks (10MB)
	DefaultStreamingThreshold = 10 * 1024 * 1024
	// DefaultBufferSize is the chunk size used while streaming
	DefaultBufferSize = 64 * 1024

	minBufferSize = 4096
)

// Options tunes classification thresholds
type Options struct {
	BinaryCheckSize    int
	StreamingThreshold int64
	BufferSize         int

	// Progress, when set, is called while a digest is streamed
	Progress func(path string, current, total int64)
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		BinaryCheckSize:    DefaultBinaryCheckSize,
		StreamingThreshold: DefaultStreamingThreshold,
		BufferSize:         DefaultBufferSize,
	}
}

// Classifier inspects files on a storage backend. It holds no per-file
// state; every call reads the file again.
type Classifier struct {
	backend    storage.Backend
	opts       Options
	bufferPool *sync.Pool
	logger     logging.Logger
}

// New creates a classifier; zero option values fall back to the defaults
func New(backend storage.Backend, opts Options, logger logging.Logger) *Classifier {
	if opts.BinaryCheckSize <= 0 {
		opts.BinaryCheckSize = DefaultBinaryCheckSize
	}
	if opts.StreamingThreshold <= 0 {
		opts.StreamingThreshold = DefaultStreamingThreshold
	}
	if opts.BufferSize < minBufferSize {
		opts.BufferSize = DefaultBufferSize
	}

	bufferSize := opts.BufferSize
	return &Classifier{
		backend: backend,
		opts:    opts,
		logger:  logging.OrNull(logger),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Options returns the effective options
func (c *Classifier) Options() Options {
	return c.opts
}

// Backend returns the storage the classifier reads from
func (c *Classifier) Backend() storage.Backend {
	return c.backend
}

// IsBinary reports whether a NUL byte appears in the first BinaryCheckSize
// bytes. A file that cannot be opened or read counts as binary.
func (c *Classifier) IsBinary(ctx context.Context, path string) bool {
	reader, err := c.backend.Open(ctx, path)
	if err != nil {
		c.logger.Debug(ctx, "unreadable file treated as binary", logging.Fields{"path": path, "error": err.Error()})
		return true
	}
	defer reader.Close()

	head := make([]byte, c.opts.BinaryCheckSize)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		c.logger.Debug(ctx, "unreadable file treated as binary", logging.Fields{"path": path, "error": err.Error()})
		return true
	}

	return bytes.IndexByte(head[:n], 0) >= 0
}

// ShouldStream reports whether the file is larger than StreamingThreshold.
// A file that cannot be stat'ed is not streamed.
func (c *Classifier) ShouldStream(ctx context.Context, path string) bool {
	info, err := c.backend.Stat(ctx, path)
	if err != nil {
		return false
	}
	return info.Size > c.opts.StreamingThreshold
}

// Digest reads the whole file into memory and returns its lower-case hex SHA-256
func (c *Classifier) Digest(ctx context.Context, path string) (string, error) {
	data, err := c.backend.ReadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}
	return digest.Canonical.FromBytes(data).Encoded(), nil
}

// DigestStream hashes the file chunk by chunk
func (c *Classifier) DigestStream(ctx context.Context, path string) (string, error) {
	info, err := c.backend.Stat(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}

	reader, err := c.backend.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer reader.Close()

	sum, err := c.digestReader(reader, path, info.Size)
	if err != nil {
		return "", fmt.Errorf("failed to hash %q: %w", path, err)
	}
	return sum, nil
}

// DigestReader hashes everything r yields until EOF. A read error aborts
// the digest and is returned as is.
func (c *Classifier) DigestReader(r io.Reader) (string, error) {
	return c.digestReader(r, "", -1)
}

func (c *Classifier) digestReader(r io.Reader, path string, total int64) (string, error) {
	digester := digest.Canonical.Digester()
	hasher := digester.Hash()

	bufPtr := c.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer c.bufferPool.Put(bufPtr)

	const progressInterval = 50 * time.Millisecond
	var read int64
	lastReport := time.Now()

	for {
		n, err := r.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			read += int64(n)

			if c.opts.Progress != nil && time.Since(lastReport) >= progressInterval {
				c.opts.Progress(path, read, total)
				lastReport = time.Now()
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	if c.opts.Progress != nil {
		c.opts.Progress(path, read, total)
	}
	return digester.Digest().Encoded(), nil
}

// Classify gathers binary flag, size and streaming decision for path.
// The digest is left empty; the comparator fills it in when it needs one.
func (c *Classifier) Classify(ctx context.Context, path string) (*models.Classification, error) {
	stats, err := c.FileStats(ctx, path)
	if err != nil {
		return nil, err
	}
	return &models.Classification{
		Path:         path,
		IsBinary:     stats.IsBinary,
		Size:         stats.Size,
		ShouldStream: stats.ShouldStream,
	}, nil
}

// FileStats stats path and classifies it
func (c *Classifier) FileStats(ctx context.Context, path string) (*models.FileStats, error) {
	info, err := c.backend.Stat(ctx, path)
	if err != nil {
		return nil, &models.ComparisonError{
			Kind:    models.FilesystemKind(err),
			Paths:   []string{path},
			Message: fmt.Sprintf("Failed to get file stats for %q: %v", path, err),
			Err:     err,
		}
	}

	stats := &models.FileStats{
		Path:         path,
		Size:         info.Size,
		IsBinary:     c.IsBinary(ctx, path),
		ShouldStream: info.Size > c.opts.StreamingThreshold,
	}
	c.logger.Debug(ctx, "classified file", logging.Fields{
		"path":          path,
		"size":          stats.Size,
		"binary":        stats.IsBinary,
		"should_stream": stats.ShouldStream,
	})
	return stats, nil
}
