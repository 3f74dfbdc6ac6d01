package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/colorstring"

	"transfer/internal/file"
	"transfer/internal/progress"
	"transfer/internal/transfer"
)

// ConsoleUI prints a single continuously overwritten status line, with
// one-shot notices each on a fresh line
type ConsoleUI struct {
	out          io.Writer
	color        *colorstring.Colorize
	clearLine    bool // out understands the clear-to-end-of-line sequence
	showProgress bool
	lineActive   bool // status line written and not yet terminated
	lastWidth    int
}

// NewConsoleUI creates a new console UI. With showProgress false only the
// notices are printed.
func NewConsoleUI(out io.Writer, color, showProgress bool) *ConsoleUI {
	return &ConsoleUI{
		out:          out,
		color:        newColorize(color),
		clearLine:    color || isTerminal(out),
		showProgress: showProgress,
	}
}

// Warn prints a skipped-entry warning
func (c *ConsoleUI) Warn(err *file.Error) {
	c.notice(warningMessage(c.color, err))
}

// FirstCopy prints the one-time notice naming the first copied file
func (c *ConsoleUI) FirstCopy(name string) {
	c.notice(firstCopyMessage(c.color, name))
}

// Progress overwrites the status line
func (c *ConsoleUI) Progress(s progress.Snapshot) {
	if !c.showProgress {
		return
	}
	line := c.color.Color(FormatStatusLine(s))
	width := utf8.RuneCountInString(line)
	prefix := "\r"
	if c.clearLine {
		prefix += clearLine
	} else if width < c.lastWidth {
		// pad over what is left of a longer previous line
		line += strings.Repeat(" ", c.lastWidth-width)
	}
	fmt.Fprint(c.out, prefix+line)
	c.lineActive = true
	c.lastWidth = width
}

// Complete prints the success message. Per-file failures do not change it.
func (c *ConsoleUI) Complete(transfer.Result) {
	c.endLine()
	fmt.Fprintf(c.out, "\n%s\n", completeMessage(c.color))
}

// Error prints a fatal error message
func (c *ConsoleUI) Error(msg string) {
	c.notice(errorMessage(c.color, msg))
}

// Close terminates a pending status line
func (c *ConsoleUI) Close() {
	c.endLine()
}

func (c *ConsoleUI) notice(msg string) {
	c.endLine()
	fmt.Fprintln(c.out, msg)
}

func (c *ConsoleUI) endLine() {
	if c.lineActive {
		fmt.Fprintln(c.out)
		c.lineActive = false
		c.lastWidth = 0
	}
}
