package fsops

import (
	"os"
	"path/filepath"

	"github.com/petasbytes/dimensional-agent/internal/safety"
)

// WriteFile writes content below an outputs/ directory of the sandbox,
// creating parent directories as needed.
func (s *Sandbox) WriteFile(relPath string, content []byte) error {
	absPath, err := safety.ValidateWritePath(s.root, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(absPath, content, 0o644)
}
