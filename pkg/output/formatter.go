// Package output renders run reports for people and for scripts.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/dirsnap/pkg/models"
)

// ProgressUpdate represents a progress notification during a snapshot update
type ProgressUpdate struct {
	FilePath     string
	FilesCopied  int
	BytesWritten int64
}

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Start initializes the formatter for a new run
	Start(writer io.Writer, command string) error

	// Progress reports a copied file during an update
	Progress(update ProgressUpdate) error

	// Complete displays the final report
	Complete(report *models.Report) error

	// Error reports an error that prevented a report
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// ColorMode selects when ANSI colours are emitted
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// New returns the formatter for format ("human" or "json")
func New(format string, color ColorMode) (Formatter, error) {
	switch format {
	case "human", "":
		return NewHumanFormatter(color), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// writerOrStdout avoids writing to a nil writer
func writerOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
