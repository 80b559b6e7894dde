// Package fsops performs file I/O under a models root, enforcing the safety policy.
package fsops

import (
	"fmt"

	"github.com/petasbytes/dimensional-agent/internal/safety"
)

// Sandbox reads from and writes to paths relative to a resolved root.
type Sandbox struct {
	root string
}

// New resolves root once; all later operations are relative to it.
func New(root string) (*Sandbox, error) {
	abs, err := safety.ResolveRoot(root)
	if err != nil {
		return nil, fmt.Errorf("fsops: %w", err)
	}
	return &Sandbox{root: abs}, nil
}

// Root returns the absolute sandbox root.
func (s *Sandbox) Root() string { return s.root }
