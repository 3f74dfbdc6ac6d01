package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/mitchellh/colorstring"
	"github.com/schollz/progressbar/v3"

	"transfer/internal/file"
	"transfer/internal/progress"
	"transfer/internal/transfer"
	"transfer/pkg/utils"
)

// BarUI renders progress as a progress bar
type BarUI struct {
	out       io.Writer
	color     *colorstring.Colorize
	colorOn   bool
	throttle  time.Duration
	bar       *progressbar.ProgressBar
	lastStats progress.Snapshot
}

// NewBarUI creates a new progress bar UI
func NewBarUI(out io.Writer, color bool) *BarUI {
	return &BarUI{
		out:      out,
		color:    newColorize(color),
		colorOn:  color,
		throttle: 100 * time.Millisecond,
	}
}

// initProgressBar creates the bar on the first progress update, once the
// run total is known
func (b *BarUI) initProgressBar(total int64) {
	if b.bar != nil {
		return
	}
	if total <= 0 {
		total = -1 // indeterminate
	}
	b.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("Copying"),
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionUseIECUnits(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(b.throttle),
		progressbar.OptionEnableColorCodes(b.colorOn),
		progressbar.OptionUseANSICodes(b.colorOn),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Warn prints a skipped-entry warning above the bar
func (b *BarUI) Warn(err *file.Error) {
	b.notice(warningMessage(b.color, err))
}

// FirstCopy prints the one-time notice naming the first copied file
func (b *BarUI) FirstCopy(name string) {
	b.notice(firstCopyMessage(b.color, name))
}

// Progress updates the bar with the run-wide counters
func (b *BarUI) Progress(s progress.Snapshot) {
	b.initProgressBar(s.TotalBytes)
	b.lastStats = s
	b.bar.Describe(b.color.Color(fmt.Sprintf("[light_green]%.2f MB/s[reset] [light_cyan]ETA %d min[reset]", s.ThroughputMBps, s.ETAMinutes)))
	_ = b.bar.Set64(s.CompletedBytes)
}

// Complete stops the bar and prints a summary of the run
func (b *BarUI) Complete(res transfer.Result) {
	b.Close()
	fmt.Fprintf(b.out, "\n%s\n", completeMessage(b.color))
	fmt.Fprintf(b.out, "+ Files: %d (copied %d, skipped %d, failed %d)\n", res.Files, res.Copied, res.Skipped, res.Failed)
	fmt.Fprintf(b.out, "+ Copied: %s, already present: %s\n", utils.FormatFileSize(res.BytesCopied), utils.FormatFileSize(res.BytesSkipped))
	fmt.Fprintf(b.out, "+ Transfer time: %s\n", res.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(b.out, "+ Average throughput: %.2f MB/s\n", b.lastStats.ThroughputMBps)
}

// Error prints a fatal error message
func (b *BarUI) Error(msg string) {
	b.notice(errorMessage(b.color, msg))
}

// Close leaves the bar in its current state and ends its line
func (b *BarUI) Close() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Exit()
	fmt.Fprintln(b.out)
	b.bar = nil
}

func (b *BarUI) notice(msg string) {
	if b.bar != nil {
		_ = b.bar.Clear()
	}
	fmt.Fprintln(b.out, msg)
}
