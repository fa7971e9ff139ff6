// Package grouper batches corpus file paths into workbook-scoped groups.
//
// Spreadsheet exports arrive as one JSONL file per sheet, named
// "<workbook><delimiter><sheet>...". Files from the same workbook must be
// processed together by one agent invocation, while no single invocation
// may exceed the group size cap that keeps per-call token volume bounded.
package grouper

import (
	"path/filepath"
	"sort"
	"strings"
)

// Group is one batch of files sharing a workbook prefix.
type Group struct {
	// Key identifies the workbook: parent directory joined with the
	// name prefix before the first delimiter.
	Key string
	// Part numbers the chunk when a workbook was split by the size cap
	// (1-based). Zero for unsplit groups.
	Part int
	// Files are the group members in original input order.
	Files []string
}

// GroupFiles partitions paths into workbook groups.
//
// Two files land in the same group when they share a parent directory and
// the substring of their base name before the first occurrence of
// delimiter. A file whose name lacks the delimiter keys on its own name.
// An empty delimiter makes every file its own group.
//
// Groups are emitted sorted by key. A group larger than maxSize is split
// into consecutive chunks of exactly maxSize files, the last chunk holding
// the remainder. maxSize <= 0 disables splitting.
func GroupFiles(paths []string, delimiter string, maxSize int) []Group {
	if len(paths) == 0 {
		return nil
	}

	byKey := make(map[string][]string)
	var keys []string
	for _, p := range paths {
		key := groupKey(p, delimiter)
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], p)
	}

	sort.Strings(keys)

	var out []Group
	for _, key := range keys {
		files := byKey[key]
		if maxSize <= 0 || len(files) <= maxSize {
			out = append(out, Group{Key: key, Files: files})
			continue
		}
		part := 0
		for start := 0; start < len(files); start += maxSize {
			end := start + maxSize
			if end > len(files) {
				end = len(files)
			}
			part++
			out = append(out, Group{Key: key, Part: part, Files: files[start:end]})
		}
	}
	return out
}

// groupKey derives the workbook key for one path.
func groupKey(path, delimiter string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if delimiter == "" {
		return filepath.Join(dir, base)
	}
	if idx := strings.Index(base, delimiter); idx >= 0 {
		return filepath.Join(dir, base[:idx])
	}
	return filepath.Join(dir, base)
}
