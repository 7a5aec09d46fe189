package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sdejongh/dirsnap/pkg/config"
	"github.com/sdejongh/dirsnap/pkg/logging"
	"github.com/sdejongh/dirsnap/pkg/models"
	"github.com/sdejongh/dirsnap/pkg/output"
)

// ExitError carries a non-zero exit status for a run that already
// reported its outcome
type ExitError struct {
	Code   int
	Status models.Status
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("run finished with status %s", e.Status)
}

// ExitCode returns the process exit status for err: 0 for nil, the run
// status for an *ExitError, and 2 for anything else
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return models.StatusError.ExitCode()
}

// run bundles everything a command needs for one invocation
type run struct {
	ctx       context.Context
	cfg       *config.Config
	logger    logging.Logger
	closer    io.Closer
	formatter output.Formatter
	errOut    io.Writer
	report    *models.Report
}

// newRun loads configuration, starts logging and opens the formatter
func newRun(cmd *cobra.Command, flags *GlobalFlags, command string) (*run, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	if err := applyFlagsToConfig(cfg, flags); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	base, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	logger := base.WithFields(logging.Fields{"run_id": runID, "command": command})

	formatter, err := output.New(cfg.Output.Format, output.ColorMode(cfg.Output.Color))
	if err != nil {
		base.Close()
		return nil, err
	}

	out := cmd.OutOrStdout()
	if cfg.Output.Quiet {
		out = io.Discard
	}
	if err := formatter.Start(out, command); err != nil {
		base.Close()
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r := &run{
		ctx:       ctx,
		cfg:       cfg,
		logger:    logger,
		closer:    base,
		formatter: formatter,
		errOut:    cmd.ErrOrStderr(),
		report: &models.Report{
			RunID:     runID,
			Command:   command,
			StartTime: time.Now(),
		},
	}
	logger.Debug(ctx, "run started", logging.Fields{"output": formatter.Name()})
	return r, nil
}

// createLogger creates a logger from the logging section. A log file gets
// a rotating file logger, otherwise enabled logging goes to w.
func createLogger(cfg *config.Config, w io.Writer) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	level := logging.ParseLevel(cfg.Logging.Level)

	if cfg.Logging.File != "" {
		logger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     logging.Format(cfg.Logging.Format),
			Level:      level,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return logger, nil
	}

	return logging.NewConsoleLogger(w, level, colorEnabled(cfg.Output.Color, w)), nil
}

// colorEnabled resolves a colour mode against the destination writer
func colorEnabled(mode string, w io.Writer) bool {
	switch output.ColorMode(mode) {
	case output.ColorAlways:
		return true
	case output.ColorNever:
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// fail records err on the report; comparison failures become mismatches
// and everything else an error
func (r *run) fail(err error) {
	r.report.Status = models.StatusForError(err)
	r.report.Kind = models.KindOf(err)
	r.report.Message = err.Error()
}

// finish completes the report, prints it and closes the logger. A non-zero
// status is returned as an *ExitError.
func (r *run) finish() error {
	defer r.closer.Close()

	if r.report.Status == "" {
		r.report.Status = models.StatusPassed
	}
	r.report.EndTime = time.Now()
	r.report.Duration = r.report.EndTime.Sub(r.report.StartTime)

	fields := logging.Fields{
		"status":   string(r.report.Status),
		"duration": r.report.Duration.String(),
	}
	if r.report.Kind != "" {
		fields["kind"] = string(r.report.Kind)
	}
	if r.report.Status == models.StatusError {
		r.logger.Error(r.ctx, "run failed", errors.New(r.report.Message), fields)
	} else {
		r.logger.Info(r.ctx, "run finished", fields)
	}

	if err := r.formatter.Complete(r.report); err != nil {
		return err
	}
	if r.cfg.Output.Quiet && r.report.Message != "" && r.report.Status.ExitCode() != 0 {
		fmt.Fprintln(r.errOut, r.report.Message)
	}

	if code := r.report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Status: r.report.Status}
	}
	return nil
}
