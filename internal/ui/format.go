package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/colorstring"
	"golang.org/x/term"

	"transfer/internal/config"
	"transfer/internal/file"
	"transfer/internal/progress"
	"transfer/pkg/utils"
)

const clearLine = "\033[K"

// FormatStatusLine renders a snapshot as colorstring markup:
// percentage, transferred/total GiB, MiB/s and ETA minutes.
func FormatStatusLine(s progress.Snapshot) string {
	return fmt.Sprintf("[[light_magenta]%.2f%%[reset]] [[light_cyan]%.2f/%.2f GB[reset]] [[light_green]%.2f MB/s[reset]] [[light_cyan]%d min[reset]]",
		s.Percentage, s.TransferredGiB(), s.TotalGiB(), s.ThroughputMBps, s.ETAMinutes)
}

// ColorEnabled resolves a color mode for out. In auto mode colors are used
// only when out is a terminal.
func ColorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return isTerminal(out)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newColorize(enabled bool) *colorstring.Colorize {
	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !enabled,
		Reset:   true,
	}
}

// Paths and names are appended after colorizing so brackets in them are
// never read as color codes.

func warningMessage(c *colorstring.Colorize, err *file.Error) string {
	path := utils.SanitizeFileName(err.Path)
	if err.Op == "walk" {
		if err.IsPermission() {
			return c.Color("[yellow]⚠️ Permission Denied:[reset] ") + path
		}
		return c.Color("[yellow]⚠️ Cannot read:[reset] ") + fmt.Sprintf("%s: %v", path, err.Err)
	}
	return c.Color("[yellow]⚠️ Error transferring[reset] ") + fmt.Sprintf("'%s': %v", path, err.Err)
}

func firstCopyMessage(c *colorstring.Colorize, name string) string {
	return c.Color("🔄 Transferring first file not already present:") + " " + name
}

func completeMessage(c *colorstring.Colorize) string {
	return c.Color("🎉 [light_green]Transfer Completed Successfully![reset]")
}

func errorMessage(c *colorstring.Colorize, msg string) string {
	return c.Color("[light_red]❌ Error:[reset] ") + msg
}
