// Package outputs persists each agent's full markdown output to disk so
// downstream agents can read complete upstream context, never a truncated
// preview. One file per agent under <output dir>/agent_outputs.
package outputs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const outputsDirName = "agent_outputs"

// Store is the file-backed output side channel. Save overwrites
// unconditionally; last writer wins.
type Store struct {
	dir string
}

// NewStore creates a store rooted under outputDir.
func NewStore(outputDir string) *Store {
	return &Store{dir: filepath.Join(outputDir, outputsDirName)}
}

// Dir returns the directory holding the output files.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes an agent's full markdown output, replacing any prior content.
func (s *Store) Save(agentName, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create outputs directory: %w", err)
	}
	path := s.path(agentName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("save output for %s: %w", agentName, err)
	}
	return path, nil
}

// Read returns an agent's stored output. A missing name is not an error at
// the caller's level: agents legitimately probe for optional upstream
// output, so the returned text enumerates what is available instead.
func (s *Store) Read(agentName string) string {
	data, err := os.ReadFile(s.path(agentName))
	if err != nil {
		return fmt.Sprintf("ERROR: No output found for agent '%s'. %s", agentName, s.List())
	}
	return string(data)
}

// Exists reports whether the named agent has stored output.
func (s *Store) Exists(agentName string) bool {
	_, err := os.Stat(s.path(agentName))
	return err == nil
}

// List returns a formatted listing of available outputs with sizes.
func (s *Store) List() string {
	entries, err := filepath.Glob(filepath.Join(s.dir, "*_output.md"))
	if err != nil || len(entries) == 0 {
		return "No agent outputs available yet."
	}
	sort.Strings(entries)

	lines := []string{"Available agent outputs:"}
	for _, e := range entries {
		name := strings.TrimSuffix(filepath.Base(e), "_output.md")
		info, err := os.Stat(e)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("  - %s (%d chars)", name, info.Size()))
	}
	return strings.Join(lines, "\n")
}

// Clear removes all stored outputs. Called once at pipeline start so no
// stale content bleeds across runs.
func (s *Store) Clear() error {
	entries, err := filepath.Glob(filepath.Join(s.dir, "*_output.md"))
	if err != nil {
		return fmt.Errorf("list outputs: %w", err)
	}
	for _, e := range entries {
		if err := os.Remove(e); err != nil {
			return fmt.Errorf("clear output %s: %w", e, err)
		}
	}
	return nil
}

func (s *Store) path(agentName string) string {
	return filepath.Join(s.dir, agentName+"_output.md")
}
