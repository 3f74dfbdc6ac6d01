// Package inventory builds the list of regular files to transfer and their
// total size before any copy starts.
package inventory

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"transfer/internal/file"
)

// Entry is a regular file found under the source root.
type Entry struct {
	Path string
	Size int64
}

// Inventory is built once per run and not modified afterwards.
type Inventory struct {
	Root       string
	Entries    []Entry
	TotalBytes int64
}

// Len returns the number of files in the inventory
func (inv *Inventory) Len() int {
	return len(inv.Entries)
}

// WarnFunc receives entries that could not be inventoried.
type WarnFunc func(err *file.Error)

// Builder walks a source tree
type Builder struct {
	files  file.FileService
	logger logrus.FieldLogger
	warn   WarnFunc
}

// NewBuilder creates a new inventory builder. warn may be nil.
func NewBuilder(files file.FileService, logger logrus.FieldLogger, warn WarnFunc) *Builder {
	if warn == nil {
		warn = func(*file.Error) {}
	}
	return &Builder{
		files:  files,
		logger: logger,
		warn:   warn,
	}
}

// Build walks root in lexical order. Symbolic links are never followed nor
// listed, and unreadable entries are reported through warn and skipped.
func (b *Builder) Build(root string) (*Inventory, error) {
	inv := &Inventory{Root: root}

	err := b.files.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			b.warn(file.NewError("walk", path, err))
			return nil
		}

		mode := info.Mode()
		switch {
		case mode&os.ModeSymlink != 0:
			b.logger.WithField("path", path).Debug("skipping symbolic link")
			return nil
		case info.IsDir():
			return nil
		case !mode.IsRegular():
			b.logger.WithFields(logrus.Fields{"path": path, "mode": mode.String()}).Debug("skipping non-regular file")
			return nil
		}

		inv.Entries = append(inv.Entries, Entry{Path: path, Size: info.Size()})
		inv.TotalBytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source tree: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"root":  root,
		"files": inv.Len(),
		"bytes": inv.TotalBytes,
	}).Debug("inventory built")

	return inv, nil
}
