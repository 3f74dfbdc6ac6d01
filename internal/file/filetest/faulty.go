// Package filetest provides filesystem fakes for exercising failure paths
// that cannot be produced reliably with file modes (for example when tests
// run as root).
package filetest

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FaultyFs wraps an afero.Fs and injects permission errors on chosen paths.
type FaultyFs struct {
	afero.Fs
	denyOpen   map[string]bool
	denyCreate map[string]bool
	failRead   map[string]bool
	failWrite  map[string]bool
}

// NewFaultyFs wraps base. With no faults configured it behaves like base.
func NewFaultyFs(base afero.Fs) *FaultyFs {
	return &FaultyFs{
		Fs:         base,
		denyOpen:   make(map[string]bool),
		denyCreate: make(map[string]bool),
		failRead:   make(map[string]bool),
		failWrite:  make(map[string]bool),
	}
}

// DenyOpen makes opening path for reading (or listing it) fail.
func (f *FaultyFs) DenyOpen(path string) *FaultyFs {
	f.denyOpen[filepath.Clean(path)] = true
	return f
}

// DenyCreate makes opening path for writing fail.
func (f *FaultyFs) DenyCreate(path string) *FaultyFs {
	f.denyCreate[filepath.Clean(path)] = true
	return f
}

// FailRead lets path open but makes every read fail.
func (f *FaultyFs) FailRead(path string) *FaultyFs {
	f.failRead[filepath.Clean(path)] = true
	return f
}

// FailWrite lets path be created but makes every write fail.
func (f *FaultyFs) FailWrite(path string) *FaultyFs {
	f.failWrite[filepath.Clean(path)] = true
	return f
}

func (f *FaultyFs) Open(name string) (afero.File, error) {
	name = filepath.Clean(name)
	if f.denyOpen[name] {
		return nil, permissionError("open", name)
	}
	file, err := f.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	if f.failRead[name] {
		return &faultyFile{File: file, failRead: true}, nil
	}
	return file, nil
}

func (f *FaultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	name = filepath.Clean(name)
	writing := flag&(os.O_WRONLY|os.O_RDWR) != 0
	if writing && f.denyCreate[name] {
		return nil, permissionError("open", name)
	}
	if !writing && f.denyOpen[name] {
		return nil, permissionError("open", name)
	}
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if f.failRead[name] || f.failWrite[name] {
		return &faultyFile{File: file, failRead: f.failRead[name], failWrite: f.failWrite[name]}, nil
	}
	return file, nil
}

type faultyFile struct {
	afero.File
	failRead  bool
	failWrite bool
}

func (f *faultyFile) Read(p []byte) (int, error) {
	if f.failRead {
		return 0, permissionError("read", f.Name())
	}
	return f.File.Read(p)
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.failWrite {
		return 0, permissionError("write", f.Name())
	}
	return f.File.Write(p)
}

func permissionError(op, path string) error {
	return &os.PathError{Op: op, Path: path, Err: os.ErrPermission}
}
