// Package transfer copies an inventory into a destination tree, skipping
// files a previous run already completed.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"transfer/internal/config"
	"transfer/internal/file"
	"transfer/internal/inventory"
	"transfer/internal/progress"
	"transfer/pkg/utils"
)

// ErrDestinationLink is reported for entries whose destination directory is
// a symbolic link. Nothing is written through it.
var ErrDestinationLink = errors.New("destination directory is a symbolic link")

// Reporter receives the user-visible events of a run
type Reporter interface {
	// Warn reports a failure that skipped a single entry
	Warn(err *file.Error)
	// FirstCopy is called once, for the first file that is not skipped
	FirstCopy(name string)
	// Progress is called after every chunk written
	Progress(s progress.Snapshot)
	// Complete is called when every entry was processed
	Complete(res Result)
}

// Options tunes an Engine
type Options struct {
	ChunkSize int              // defaults to config.DefaultChunkSize
	Clock     func() time.Time // defaults to time.Now
}

// Result summarizes a finished run
type Result struct {
	Files        int
	Copied       int
	Skipped      int
	Failed       int
	BytesCopied  int64
	BytesSkipped int64
	Elapsed      time.Duration
}

// HasFailures reports whether any entry failed
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Engine performs transfer runs. It is not safe for concurrent use.
type Engine struct {
	files     file.FileService
	reporter  Reporter
	logger    logrus.FieldLogger
	chunkSize int
	now       func() time.Time
}

// NewEngine creates a new transfer engine
func NewEngine(files file.FileService, reporter Reporter, logger logrus.FieldLogger, opts Options) *Engine {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = config.DefaultChunkSize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		files:     files,
		reporter:  reporter,
		logger:    logger,
		chunkSize: opts.ChunkSize,
		now:       opts.Clock,
	}
}

// runState holds the counters of one run
type runState struct {
	start          time.Time
	totalBytes     int64
	completedBytes int64
	notified       bool
	buf            []byte
	result         Result
}

// Run copies every inventory entry below dstRoot. Per-file failures are
// reported and counted, never returned; the returned error is non-nil only
// when dstRoot cannot be created or ctx is done.
func (e *Engine) Run(ctx context.Context, inv *inventory.Inventory, dstRoot string) (Result, error) {
	if err := e.files.EnsureDir(dstRoot); err != nil {
		return Result{}, fmt.Errorf("failed to create destination %s: %w", dstRoot, err)
	}

	st := &runState{
		start:      e.now(),
		totalBytes: inv.TotalBytes,
		buf:        make([]byte, e.chunkSize),
		result:     Result{Files: inv.Len()},
	}

	for _, entry := range inv.Entries {
		if err := ctx.Err(); err != nil {
			st.result.Elapsed = e.now().Sub(st.start)
			return st.result, err
		}
		if err := e.transferEntry(ctx, st, inv.Root, entry, dstRoot); err != nil {
			st.result.Elapsed = e.now().Sub(st.start)
			return st.result, err
		}
	}

	st.result.Elapsed = e.now().Sub(st.start)
	e.logger.WithFields(logrus.Fields{
		"files":         st.result.Files,
		"copied":        st.result.Copied,
		"skipped":       st.result.Skipped,
		"failed":        st.result.Failed,
		"bytes_copied":  st.result.BytesCopied,
		"bytes_skipped": st.result.BytesSkipped,
		"elapsed":       st.result.Elapsed.Round(time.Millisecond),
	}).Info("transfer finished")
	e.reporter.Complete(st.result)

	return st.result, nil
}

// transferEntry skips or copies a single file. Only context errors are returned.
func (e *Engine) transferEntry(ctx context.Context, st *runState, srcRoot string, entry inventory.Entry, dstRoot string) error {
	log := e.logger.WithField("path", entry.Path)

	dst, err := DestinationPath(srcRoot, entry.Path, dstRoot)
	if err != nil {
		e.fail(st, file.NewError("map", entry.Path, err))
		return nil
	}
	if link := e.linkBelowRoot(dstRoot, filepath.Dir(dst)); link != "" {
		e.fail(st, file.NewError("mkdir", link, ErrDestinationLink))
		return nil
	}
	if err := e.files.EnsureDir(filepath.Dir(dst)); err != nil {
		e.fail(st, file.NewError("mkdir", filepath.Dir(dst), err))
		return nil
	}

	srcInfo, err := e.files.GetFileInfo(entry.Path)
	if err != nil {
		e.fail(st, file.NewError("stat", entry.Path, err))
		return nil
	}

	if dstInfo, err := e.files.GetLinkInfo(dst); err == nil {
		switch {
		case dstInfo.Mode()&os.ModeSymlink != 0:
			// never write through a link; replace it with the copied file
			if err := e.files.Remove(dst); err != nil {
				e.fail(st, file.NewError("create", dst, err))
				return nil
			}
			log.WithField("dst", dst).Debug("replacing symbolic link at destination")
		case !dstInfo.IsDir() && dstInfo.Size() == srcInfo.Size():
			st.completedBytes += srcInfo.Size()
			st.result.Skipped++
			st.result.BytesSkipped += srcInfo.Size()
			log.WithField("size", srcInfo.Size()).Debug("already transferred, skipping")
			return nil
		}
	}

	if !st.notified {
		e.reporter.FirstCopy(filepath.Base(dst))
		st.notified = true
	}

	written, err := e.copyFile(ctx, st, entry.Path, dst)
	if err != nil {
		var fe *file.Error
		if errors.As(err, &fe) {
			e.fail(st, fe)
			return nil
		}
		return err
	}

	st.result.Copied++
	st.result.BytesCopied += written
	log.WithFields(logrus.Fields{"dst": dst, "bytes": written}).Debug("copied")
	return nil
}

// copyFile streams src into dst in chunks of the configured size, emitting
// a progress snapshot after each one. A partially written dst is left as is
// on failure.
func (e *Engine) copyFile(ctx context.Context, st *runState, src, dst string) (written int64, err error) {
	in, err := e.files.OpenReader(src)
	if err != nil {
		return 0, file.NewError("open", src, err)
	}
	defer in.Close()

	out, err := e.files.CreateWriter(dst)
	if err != nil {
		return 0, file.NewError("create", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = file.NewError("close", dst, cerr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := io.ReadFull(in, st.buf)
		if n > 0 {
			if _, werr := out.Write(st.buf[:n]); werr != nil {
				return written, file.NewError("write", dst, werr)
			}
			written += int64(n)
			st.completedBytes += int64(n)
			e.reporter.Progress(progress.Compute(st.completedBytes, st.totalBytes, e.now().Sub(st.start)))
		}

		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return written, nil
		}
		if rerr != nil {
			return written, file.NewError("read", src, rerr)
		}
	}
}

// linkBelowRoot returns the first directory between dstRoot (exclusive) and
// dir (inclusive) that is a symbolic link, or "" if there is none.
func (e *Engine) linkBelowRoot(dstRoot, dir string) string {
	rel, err := filepath.Rel(dstRoot, dir)
	if err != nil || rel == "." {
		return ""
	}
	cur := dstRoot
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		info, err := e.files.GetLinkInfo(cur)
		if err != nil {
			// missing directories are created below as real ones
			return ""
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return cur
		}
	}
	return ""
}

func (e *Engine) fail(st *runState, err *file.Error) {
	st.result.Failed++
	e.logger.WithFields(logrus.Fields{"op": err.Op, "path": err.Path}).WithError(err.Err).Debug("entry failed")
	e.reporter.Warn(err)
}

// DestinationPath re-roots srcPath from srcRoot under dstRoot. Only the file
// name is sanitized; directory names are kept as they are.
func DestinationPath(srcRoot, srcPath, dstRoot string) (string, error) {
	rel, err := filepath.Rel(srcRoot, srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	name := utils.SanitizeFileName(filepath.Base(srcPath))
	return filepath.Join(dstRoot, filepath.Dir(rel), name), nil
}
