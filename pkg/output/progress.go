package output

import (
	"io"

	"github.com/cheggaaa/pb/v3"
)

const progressTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]" }} {{percent . }} {{string . "file" }}`

// CopyProgress draws a byte progress bar while a snapshot is written
type CopyProgress struct {
	bar *pb.ProgressBar
}

// NewCopyProgress starts a bar expecting totalBytes
func NewCopyProgress(w io.Writer, totalBytes int64) *CopyProgress {
	bar := pb.New64(totalBytes)
	bar.SetWriter(writerOrStdout(w))
	bar.Set(pb.Bytes, true)
	bar.SetTemplateString(progressTemplate)
	bar.Start()
	return &CopyProgress{bar: bar}
}

// Update moves the bar to the bytes written so far
func (p *CopyProgress) Update(update ProgressUpdate) {
	p.bar.Set("file", update.FilePath)
	p.bar.SetCurrent(update.BytesWritten)
}

// Finish draws the final state and stops refreshing
func (p *CopyProgress) Finish() {
	p.bar.Finish()
}
