package file

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileService handles the filesystem operations of a transfer run
type FileService interface {
	// OpenReader opens a file for reading
	OpenReader(filePath string) (afero.File, error)

	// CreateWriter creates or truncates a file for writing
	CreateWriter(dstPath string) (afero.File, error)

	// GetFileInfo returns information about a file, following links
	GetFileInfo(filePath string) (os.FileInfo, error)

	// GetLinkInfo returns information about a file without following a
	// final symbolic link
	GetLinkInfo(filePath string) (os.FileInfo, error)

	// Remove deletes a file or an empty directory. A symbolic link is
	// removed itself, never its target.
	Remove(filePath string) error

	// EnsureDir creates a directory and its parents if missing
	EnsureDir(dirPath string) error

	// Walk visits root and everything below it without following links
	Walk(root string, walkFn filepath.WalkFunc) error
}
