// Package safety keeps model file access inside the models root.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Error codes carried by PathError.
const (
	CodeOutsideSandbox = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead     = "ERR_DENIED_READ"
	CodeDeniedWrite    = "ERR_DENIED_WRITE"
	CodeNotAFile       = "ERR_NOT_A_FILE"
)

// OutputsDir is the only directory segment under which writes are accepted.
const OutputsDir = "outputs"

// hidden directories are never read or written: VCS metadata and the telemetry dir.
var hidden = []string{".git", ".agent"}

// PathError is a machine-readable policy violation.
type PathError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact single-line JSON body.
func (e PathError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// ResolveRoot returns the absolute, symlink-resolved form of root.
// An empty root means the working directory.
func ResolveRoot(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs(%s): %w", root, err)
	}
	// A root that does not exist yet is kept as-is; later checks still hold.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

// ValidateRelPath resolves relPath under absRoot for reading. Absolute inputs,
// parent traversal, symlink escapes and hidden directories are rejected.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolveUnder(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if inHidden(rel) {
		return "", PathError{Code: CodeDeniedRead, Message: "reads under .git/ or .agent/ are not allowed"}
	}
	return candidate, nil
}

// ValidateWritePath resolves relPath under absRoot for writing. On top of the
// read rules, the target must sit below an outputs/ directory so model inputs
// are never overwritten.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolveUnder(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if inHidden(rel) {
		return "", PathError{Code: CodeDeniedWrite, Message: "writes under .git/ or .agent/ are not allowed"}
	}
	dirs := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	if !slices.Contains(dirs, OutputsDir) {
		return "", PathError{Code: CodeDeniedWrite, Message: "writes are limited to <model>/outputs/"}
	}
	return candidate, nil
}

func resolveUnder(absRoot, relPath string) (candidate, rel string, err error) {
	if filepath.IsAbs(relPath) {
		return "", "", PathError{Code: CodeOutsideSandbox, Message: "absolute paths are not allowed"}
	}
	candidate = resolveExisting(filepath.Join(absRoot, filepath.Clean(relPath)))

	rel, err = filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", PathError{Code: CodeOutsideSandbox, Message: "requested path resolves outside the sandbox root"}
	}
	return candidate, rel, nil
}

// resolveExisting resolves symlinks in the deepest existing ancestor of p and
// re-joins the segments that do not exist yet, so a symlinked ancestor at any
// depth cannot smuggle a new file outside the root.
func resolveExisting(p string) string {
	var missing []string
	for cur := p; ; {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			slices.Reverse(missing)
			return filepath.Join(append([]string{resolved}, missing...)...)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		missing = append(missing, filepath.Base(cur))
		cur = parent
	}
}

func inHidden(rel string) bool {
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	return slices.Contains(hidden, first)
}
