package inventory

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"transfer/internal/file"
	"transfer/internal/file/filetest"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFiles(t *testing.T, fs afero.Fs, files map[string]int) {
	t.Helper()
	for path, size := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, make([]byte, size), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestBuild_CollectsRegularFilesAtAnyDepth(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]int{
		"/src/a.txt":             10,
		"/src/sub/b.bin":         2048,
		"/src/sub/deeper/c.dat":  1,
		"/src/sub/deeper/empty":  0,
		"/elsewhere/ignored.txt": 99,
	})

	inv, err := NewBuilder(file.NewFileService(fs), quietLogger(), nil).Build("/src")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"/src/a.txt", "/src/sub/b.bin", "/src/sub/deeper/c.dat", "/src/sub/deeper/empty"}
	if inv.Len() != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), inv.Len(), inv.Entries)
	}
	for i, p := range want {
		if inv.Entries[i].Path != p {
			t.Errorf("entry %d = %q, want %q", i, inv.Entries[i].Path, p)
		}
	}
	if inv.TotalBytes != 10+2048+1 {
		t.Errorf("TotalBytes = %d, want %d", inv.TotalBytes, 10+2048+1)
	}
	if inv.Root != "/src" {
		t.Errorf("Root = %q", inv.Root)
	}
}

func TestBuild_EmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/src/only/dirs", 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	inv, err := NewBuilder(file.NewFileService(fs), quietLogger(), nil).Build("/src")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Len() != 0 || inv.TotalBytes != 0 {
		t.Fatalf("expected empty inventory, got %d files / %d bytes", inv.Len(), inv.TotalBytes)
	}
}

func TestBuild_SingleFileRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]int{"/data/one.iso": 4096})

	inv, err := NewBuilder(file.NewFileService(fs), quietLogger(), nil).Build("/data/one.iso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Len() != 1 || inv.TotalBytes != 4096 {
		t.Fatalf("expected one 4096 byte entry, got %+v", inv)
	}
}

func TestBuild_ExcludesSymbolicLinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	mustWrite := func(path string, size int) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	mustWrite(filepath.Join(root, "real1.txt"), 100)
	mustWrite(filepath.Join(root, "nested", "real2.txt"), 200)
	mustWrite(filepath.Join(root, "nested", "deep", "real3.txt"), 300)
	mustWrite(filepath.Join(outside, "target.bin"), 5000)
	mustWrite(filepath.Join(outside, "dir", "inside.bin"), 7000)

	links := map[string]string{
		filepath.Join(root, "link-to-file"):                 filepath.Join(outside, "target.bin"),
		filepath.Join(root, "nested", "link-to-dir"):        filepath.Join(outside, "dir"),
		filepath.Join(root, "nested", "deep", "dangling"):   filepath.Join(outside, "missing"),
		filepath.Join(root, "nested", "deep", "local-link"): filepath.Join(root, "real1.txt"),
	}
	for link, target := range links {
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
	}

	var warnings []*file.Error
	b := NewBuilder(file.NewOsFileService(), quietLogger(), func(err *file.Error) {
		warnings = append(warnings, err)
	})
	inv, err := b.Build(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv.Len() != 3 {
		t.Fatalf("expected 3 regular files, got %d: %+v", inv.Len(), inv.Entries)
	}
	if inv.TotalBytes != 600 {
		t.Errorf("TotalBytes = %d, want 600", inv.TotalBytes)
	}
	for _, e := range inv.Entries {
		if _, isLink := links[e.Path]; isLink {
			t.Errorf("symbolic link %s was inventoried", e.Path)
		}
	}
	if len(warnings) != 0 {
		t.Errorf("links should be skipped silently, got warnings %v", warnings)
	}
}

func TestBuild_UnlistableDirectoryIsWarnedAndSkipped(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFiles(t, base, map[string]int{
		"/src/ok.txt":         5,
		"/src/locked/x.txt":   50,
		"/src/other/fine.txt": 7,
	})
	fs := filetest.NewFaultyFs(base).DenyOpen("/src/locked")

	var warnings []*file.Error
	b := NewBuilder(file.NewFileService(fs), quietLogger(), func(err *file.Error) {
		warnings = append(warnings, err)
	})
	inv, err := b.Build("/src")
	if err != nil {
		t.Fatalf("walk should not abort: %v", err)
	}

	if inv.Len() != 2 || inv.TotalBytes != 12 {
		t.Fatalf("expected ok.txt and fine.txt only, got %+v", inv.Entries)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	if warnings[0].Path != "/src/locked" {
		t.Errorf("warning path = %q, want /src/locked", warnings[0].Path)
	}
	if !errors.Is(warnings[0], os.ErrPermission) || !warnings[0].IsPermission() {
		t.Errorf("expected a permission error, got %v", warnings[0].Err)
	}
}
