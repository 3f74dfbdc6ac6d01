package ui

import (
	"io"

	"transfer/internal/config"
	"transfer/internal/transfer"
)

// Reporter is a transfer.Reporter that can also print fatal errors and
// terminate its output cleanly
type Reporter interface {
	transfer.Reporter
	Error(msg string)
	Close()
}

// New returns the reporter selected by the display configuration
func New(cfg config.DisplayConfig, out io.Writer) Reporter {
	color := ColorEnabled(cfg.Color, out)
	switch cfg.Mode {
	case config.DisplayBar:
		return NewBarUI(out, color)
	case config.DisplayNone:
		return NewConsoleUI(out, color, false)
	default:
		return NewConsoleUI(out, color, true)
	}
}
