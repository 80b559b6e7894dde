package safety_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/petasbytes/dimensional-agent/internal/safety"
)

func resolvedTempDir(t *testing.T) string {
	t.Helper()
	root, err := safety.ResolveRoot(t.TempDir())
	if err != nil {
		t.Fatalf("resolve root: %v", err)
	}
	return root
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	var pe safety.PathError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PathError, got %T: %v", err, err)
	}
	if pe.Code != code {
		t.Fatalf("code: want %s, got %s", code, pe.Code)
	}
}

func TestValidateRelPath_BasicRejections(t *testing.T) {
	root := resolvedTempDir(t)

	abs, err := filepath.Abs(".")
	if err != nil {
		t.Skipf("cannot compute absolute path: %v", err)
	}
	_, err = safety.ValidateRelPath(root, abs)
	wantCode(t, err, safety.CodeOutsideSandbox)

	_, err = safety.ValidateRelPath(root, "../../x")
	wantCode(t, err, safety.CodeOutsideSandbox)

	_, err = safety.ValidateRelPath(root, "test1/../../escape/inputs/schema.json")
	wantCode(t, err, safety.CodeOutsideSandbox)
}

func TestValidateRelPath_HiddenDirsDenied(t *testing.T) {
	root := resolvedTempDir(t)
	_ = os.Mkdir(filepath.Join(root, ".agent"), 0o755)
	_ = os.Mkdir(filepath.Join(root, ".git"), 0o755)

	_, err := safety.ValidateRelPath(root, ".agent/events.jsonl")
	wantCode(t, err, safety.CodeDeniedRead)
	_, err = safety.ValidateRelPath(root, ".git/HEAD")
	wantCode(t, err, safety.CodeDeniedRead)
}

func TestValidateRelPath_AllowsModelInputs(t *testing.T) {
	root := resolvedTempDir(t)
	if err := os.MkdirAll(filepath.Join(root, "test1", "inputs"), 0o755); err != nil {
		t.Fatal(err)
	}
	p, err := safety.ValidateRelPath(root, "test1/inputs/schema.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(root, "test1", "inputs", "schema.json"); p != want {
		t.Fatalf("path: want %s, got %s", want, p)
	}
}

func TestValidateRelPath_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test skipped on Windows")
	}
	root := resolvedTempDir(t)
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlink not allowed on this FS: %v", err)
	}

	_, err := safety.ValidateRelPath(root, "linked/inputs/schema.json")
	wantCode(t, err, safety.CodeOutsideSandbox)
}

func TestValidateWritePath_SymlinkedAncestorEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test skipped on Windows")
	}
	root := resolvedTempDir(t)
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlink not allowed on this FS: %v", err)
	}

	_, err := safety.ValidateWritePath(root, "linked/outputs/run/dimensional_model.json")
	wantCode(t, err, safety.CodeOutsideSandbox)
}

func TestPathError_IsCompactJSON(t *testing.T) {
	err := safety.PathError{Code: safety.CodeNotAFile, Message: "path is a directory"}
	want := `{"code":"ERR_NOT_A_FILE","message":"path is a directory"}`
	if err.Error() != want {
		t.Fatalf("want %s, got %s", want, err.Error())
	}
}
