package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrSourceMissing is returned when the source path does not exist.
var ErrSourceMissing = errors.New("source path does not exist")

// sanitizedNameFallback replaces names that have no printable ASCII left.
const sanitizedNameFallback = "_"

// ResolveSourcePath validates that the source path exists. A source root
// given as a symbolic link is resolved; links below the root never are.
func ResolveSourcePath(srcPath string) (string, error) {
	if srcPath == "" {
		return "", fmt.Errorf("%w: empty path", ErrSourceMissing)
	}
	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: '%s'", ErrSourceMissing, srcPath)
		}
		return "", fmt.Errorf("cannot access source path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(srcPath)
	if err != nil {
		return "", fmt.Errorf("cannot resolve source path: %w", err)
	}
	return resolved, nil
}

// SanitizeFileName decomposes name (NFKD) and drops every rune outside the
// printable ASCII range, so "café.txt" becomes "cafe.txt".
func SanitizeFileName(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(notPrintableASCII)))
	out, _, err := transform.String(t, name)
	if err != nil {
		// transform only fails on invalid input state; fall back to a plain filter
		out = strings.Map(func(r rune) rune {
			if notPrintableASCII(r) {
				return -1
			}
			return r
		}, name)
	}
	if out == "" || out == "." || out == ".." {
		return sanitizedNameFallback
	}
	return out
}

func notPrintableASCII(r rune) bool {
	return r > unicode.MaxASCII || !unicode.IsPrint(r)
}
