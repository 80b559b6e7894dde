package fsops

import (
	"os"

	"github.com/petasbytes/dimensional-agent/internal/safety"
)

// ReadFile reads a file addressed by a path relative to the sandbox root.
// Policy violations surface as safety.PathError; a missing file keeps
// fs.ErrNotExist in its chain.
func (s *Sandbox) ReadFile(relPath string) ([]byte, error) {
	absPath, err := safety.ValidateRelPath(s.root, relPath)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, safety.PathError{Code: safety.CodeNotAFile, Message: "path is a directory"}
	}
	return os.ReadFile(absPath)
}
