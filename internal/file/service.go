package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Service implements FileService on top of an afero filesystem
type Service struct {
	fs afero.Fs
}

// NewFileService creates a new file service backed by fs
func NewFileService(fs afero.Fs) *Service {
	return &Service{fs: fs}
}

// NewOsFileService creates a file service on the host filesystem
func NewOsFileService() *Service {
	return NewFileService(afero.NewOsFs())
}

// OpenReader opens a file for reading
func (s *Service) OpenReader(filePath string) (afero.File, error) {
	f, err := s.fs.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// CreateWriter creates or truncates a file for writing
func (s *Service) CreateWriter(dstPath string) (afero.File, error) {
	f, err := s.fs.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return f, nil
}

// GetFileInfo returns information about a file by path
func (s *Service) GetFileInfo(filePath string) (os.FileInfo, error) {
	stat, err := s.fs.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	return stat, nil
}

// GetLinkInfo returns information about a file by path, using Lstat when the
// filesystem supports it
func (s *Service) GetLinkInfo(filePath string) (os.FileInfo, error) {
	stat, _, err := lstatIfPossible(s.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	return stat, nil
}

// Remove deletes a single file, link or empty directory
func (s *Service) Remove(filePath string) error {
	if err := s.fs.Remove(filePath); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// EnsureDir creates directory if it doesn't exist
func (s *Service) EnsureDir(dirPath string) error {
	if err := s.fs.MkdirAll(dirPath, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Walk walks the tree rooted at root. Entries are Lstat'ed when the
// filesystem supports it, so symbolic links are reported as links.
func (s *Service) Walk(root string, walkFn filepath.WalkFunc) error {
	return afero.Walk(s.fs, root, walkFn)
}

func lstatIfPossible(fs afero.Fs, name string) (os.FileInfo, bool, error) {
	if lfs, ok := fs.(afero.Lstater); ok {
		return lfs.LstatIfPossible(name)
	}
	info, err := fs.Stat(name)
	return info, false, err
}
