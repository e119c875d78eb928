// Package upload persists uploaded timesheet images to disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrTooLarge is returned by Save when the upload exceeds the size limit.
var ErrTooLarge = errors.New("upload too large")

// Store writes uploads under a single directory. Every saved file gets a
// random prefix so concurrent uploads with the same name never collide.
type Store struct {
	dir      string
	keep     bool
	maxBytes int64
}

// NewStore creates dir if needed. When keep is false, Discard removes
// files after processing. maxBytes <= 0 disables the size limit.
func NewStore(dir string, keep bool, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir, keep: keep, maxBytes: maxBytes}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Save copies r to a new file derived from name and returns its path.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	path := filepath.Join(s.dir, uuid.NewString()+"_"+SanitizeName(name))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, nil
}

// Discard removes a saved upload unless the store keeps uploads.
func (s *Store) Discard(path string) error {
	if s.keep {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SanitizeName reduces a client-supplied file name to a safe base name:
// accents folded to ASCII, path components dropped, runs of whitespace
// joined with "_", anything outside [A-Za-z0-9._-] removed. An empty
// result becomes "upload".
func SanitizeName(name string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r > unicode.MaxASCII:
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "upload"
	}
	return out
}
