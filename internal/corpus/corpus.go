// Package corpus provides read access to the input file corpus and the
// golden reference document.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Reader reads corpus files relative to a root directory, with a size cap
// so a single oversized file cannot blow up a prompt.
type Reader struct {
	root        string
	maxFileSize int64
}

// NewReader creates a reader rooted at dir. maxFileSizeMB <= 0 means 50MB.
func NewReader(dir string, maxFileSizeMB int) *Reader {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 50
	}
	return &Reader{root: dir, maxFileSize: int64(maxFileSizeMB) * 1024 * 1024}
}

// Root returns the corpus root directory.
func (r *Reader) Root() string {
	return r.root
}

// ListFiles walks the corpus and returns all regular files as sorted
// root-relative paths.
func (r *Reader) ListFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan corpus %s: %w", r.root, err)
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile returns the content of a corpus file by its relative path.
// Paths escaping the corpus root and oversized files are rejected.
func (r *Reader) ReadFile(relPath string) (string, error) {
	clean := filepath.Clean(relPath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("path %q escapes the corpus", relPath)
	}

	full := filepath.Join(r.root, clean)
	info, err := os.Stat(full)
	if err != nil {
		return "", fmt.Errorf("corpus file %s: %w", relPath, err)
	}
	if info.Size() > r.maxFileSize {
		return "", fmt.Errorf("corpus file %s is %d bytes, exceeds the %d byte limit", relPath, info.Size(), r.maxFileSize)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read corpus file %s: %w", relPath, err)
	}
	return string(data), nil
}

// ReadGoldenReference returns the golden BRD text used by consolidation
// prompts. A missing or unreadable file yields an empty string, never an
// error; consolidation proceeds without a reference.
func ReadGoldenReference(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
