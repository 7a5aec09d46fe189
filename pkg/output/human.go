package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/sdejongh/dirsnap/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer    io.Writer
	command   string
	color     ColorMode
	startTime time.Time
	styles    styles
}

type styles struct {
	pass    lipgloss.Style
	fail    lipgloss.Style
	label   lipgloss.Style
	removed lipgloss.Style
	added   lipgloss.Style
	context lipgloss.Style
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(color ColorMode) *HumanFormatter {
	return &HumanFormatter{color: color}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, command string) error {
	f.writer = writerOrStdout(writer)
	f.command = command
	f.startTime = time.Now()
	f.styles = newStyles(f.writer, f.useColor(f.writer))
	return nil
}

func (f *HumanFormatter) useColor(w io.Writer) bool {
	switch f.color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		pass:    r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		label:   r.NewStyle().Faint(true),
		removed: r.NewStyle().Foreground(lipgloss.Color("1")),
		added:   r.NewStyle().Foreground(lipgloss.Color("2")),
		context: r.NewStyle().Faint(true),
	}
}

// Progress prints one line per copied file
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}
	fmt.Fprintf(f.writer, "[%d] ✓ %s\n", update.FilesCopied, update.FilePath)
	return nil
}

// Complete displays the report
func (f *HumanFormatter) Complete(report *models.Report) error {
	if f.writer == nil {
		if err := f.Start(os.Stdout, report.Command); err != nil {
			return err
		}
	}
	w := f.writer
	s := f.styles

	if report.Live != "" {
		fmt.Fprintf(w, "%s %s\n", s.label.Render("Live:    "), report.Live)
	}
	if report.Snapshot != "" {
		fmt.Fprintf(w, "%s %s\n", s.label.Render("Snapshot:"), report.Snapshot)
	}
	if report.SnapshotID != "" {
		fmt.Fprintf(w, "%s %s\n", s.label.Render("ID:      "), report.SnapshotID)
	}

	for _, c := range report.Files {
		kind := "text"
		if c.IsBinary {
			kind = "binary"
		}
		line := fmt.Sprintf("%s  %s  %s", kind, formatBytes(c.Size), c.Path)
		if c.ShouldStream {
			line += "  (streamed)"
		}
		if c.Digest != "" {
			line += "\n  sha256 " + c.Digest
		}
		fmt.Fprintln(w, line)
	}

	if report.Status == models.StatusUpdated {
		fmt.Fprintf(w, "%s %d files, %s\n", s.label.Render("Copied:  "), report.FilesCopied, formatBytes(report.BytesCopied))
	}

	if report.Message != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, f.colorize(report.Message))
	}

	status := strings.ToUpper(string(report.Status))
	if report.Status.ExitCode() == 0 {
		status = s.pass.Render(status)
	} else {
		status = s.fail.Render(status)
	}
	fmt.Fprintf(w, "\n%s %s in %s\n", status, report.Command, formatDuration(report.Duration))
	return nil
}

// colorize styles the rows of a rendered line diff
func (f *HumanFormatter) colorize(message string) string {
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "- "):
			lines[i] = f.styles.removed.Render(line)
		case strings.HasPrefix(line, "+ "):
			lines[i] = f.styles.added.Render(line)
		case strings.HasPrefix(line, "  ") && numbered(line[2:]):
			lines[i] = f.styles.context.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// numbered reports whether s looks like "%3d: text"
func numbered(s string) bool {
	s = strings.TrimLeft(s, " ")
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && strings.HasPrefix(s[i:], ":")
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	w := writerOrStdout(f.writer)
	fmt.Fprintf(w, "%s %v\n", f.styles.fail.Render("Error:"), err)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats duration in human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
