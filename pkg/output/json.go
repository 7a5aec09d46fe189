package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sdejongh/dirsnap/pkg/models"
)

// JSONFormatter writes one JSON document per event for automation and scripting
type JSONFormatter struct {
	writer  io.Writer
	encoder *json.Encoder
	command string
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONProgressData is the payload of a progress event
type JSONProgressData struct {
	Path         string `json:"path"`
	FilesCopied  int    `json:"files_copied"`
	BytesWritten int64  `json:"bytes_written"`
}

// JSONReportData is the payload of the final report event
type JSONReportData struct {
	RunID      string             `json:"run_id"`
	Command    string             `json:"command"`
	Status     string             `json:"status"`
	ExitCode   int                `json:"exit_code"`
	Live       string             `json:"live,omitempty"`
	Snapshot   string             `json:"snapshot,omitempty"`
	SnapshotID string             `json:"snapshot_id,omitempty"`
	Kind       string             `json:"kind,omitempty"`
	Class      string             `json:"class,omitempty"`
	Message    string             `json:"message,omitempty"`
	Duration   string             `json:"duration"`
	DurationMs int64              `json:"duration_ms"`
	Copied     *JSONCopyData      `json:"copied,omitempty"`
	Files      []JSONFileInfoData `json:"files,omitempty"`
}

// JSONCopyData summarizes a snapshot update
type JSONCopyData struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// JSONFileInfoData represents a classified file
type JSONFileInfoData struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Binary       bool   `json:"binary"`
	ShouldStream bool   `json:"should_stream"`
	SHA256       string `json:"sha256,omitempty"`
}

// JSONErrorData is the payload of an error event
type JSONErrorData struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, command string) error {
	f.writer = writerOrStdout(writer)
	f.encoder = json.NewEncoder(f.writer)
	f.command = command
	return nil
}

func (f *JSONFormatter) emit(eventType string, data any) error {
	if f.encoder == nil {
		if err := f.Start(nil, f.command); err != nil {
			return err
		}
	}
	return f.encoder.Encode(JSONEvent{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Data:      data,
	})
}

// Progress emits a progress event
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return f.emit("progress", JSONProgressData{
		Path:         update.FilePath,
		FilesCopied:  update.FilesCopied,
		BytesWritten: update.BytesWritten,
	})
}

// Complete emits the report event
func (f *JSONFormatter) Complete(report *models.Report) error {
	data := JSONReportData{
		RunID:      report.RunID,
		Command:    report.Command,
		Status:     string(report.Status),
		ExitCode:   report.Status.ExitCode(),
		Live:       report.Live,
		Snapshot:   report.Snapshot,
		SnapshotID: report.SnapshotID,
		Kind:       string(report.Kind),
		Message:    report.Message,
		Duration:   report.Duration.String(),
		DurationMs: report.Duration.Milliseconds(),
	}
	if report.Kind != "" {
		data.Class = string(report.Kind.Class())
	}
	if report.Status == models.StatusUpdated {
		data.Copied = &JSONCopyData{Files: report.FilesCopied, Bytes: report.BytesCopied}
	}
	for _, c := range report.Files {
		data.Files = append(data.Files, JSONFileInfoData{
			Path:         c.Path,
			Size:         c.Size,
			Binary:       c.IsBinary,
			ShouldStream: c.ShouldStream,
			SHA256:       c.Digest,
		})
	}
	return f.emit("report", data)
}

// Error emits an error event
func (f *JSONFormatter) Error(err error) error {
	return f.emit("error", JSONErrorData{
		Message: err.Error(),
		Kind:    string(models.KindOf(err)),
	})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
