package fsops

import (
	"os"
	"sort"

	"github.com/petasbytes/dimensional-agent/internal/safety"
)

// ListDirs returns the sorted names of the directories directly under relDir.
// Hidden entries (leading dot) are skipped.
func (s *Sandbox) ListDirs(relDir string) ([]string, error) {
	if relDir == "" {
		relDir = "."
	}
	absDir, err := safety.ValidateRelPath(s.root, relDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
