package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestTree represents a temporary directory tree for testing.
type TestTree struct {
	t    testing.TB
	Root string
}

// NewTestTree creates a new temporary directory tree.
// Cleanup is automatically registered via t.Cleanup().
func NewTestTree(t testing.TB) *TestTree { //nostyle:repetition
	t.Helper()

	dir, err := os.MkdirTemp("", "cf-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	// Resolve symlinks (macOS /var -> /private/var issue)
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("failed to resolve symlinks: %v", err)
	}

	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	return &TestTree{t: t, Root: dir}
}

// CreateFile creates a file with the given content, mode 0644.
// Parent directories are created as needed. It calls t.Fatal on error.
func (tr *TestTree) CreateFile(path, content string) {
	tr.t.Helper()
	tr.CreateFileMode(path, content, 0644)
}

// CreateFileMode creates a file with the given content and permission bits.
// It calls t.Fatal on error.
func (tr *TestTree) CreateFileMode(path, content string, mode os.FileMode) {
	tr.t.Helper()
	fullPath := filepath.Join(tr.Root, path)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		tr.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), mode); err != nil {
		tr.t.Fatalf("failed to create file %s: %v", path, err)
	}
	// WriteFile's mode is subject to the umask.
	if err := os.Chmod(fullPath, mode); err != nil {
		tr.t.Fatalf("failed to chmod %s: %v", path, err)
	}
}

// Mkdir creates a directory (and parents). It calls t.Fatal on error.
func (tr *TestTree) Mkdir(path string) {
	tr.t.Helper()
	if err := os.MkdirAll(filepath.Join(tr.Root, path), 0755); err != nil {
		tr.t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// Chtimes sets the modification time of a file. It calls t.Fatal on error.
func (tr *TestTree) Chtimes(path string, mtime time.Time) {
	tr.t.Helper()
	if err := os.Chtimes(filepath.Join(tr.Root, path), mtime, mtime); err != nil {
		tr.t.Fatalf("failed to set times of %s: %v", path, err)
	}
}

// ReadFile returns the content of a file. It calls t.Fatal on error.
func (tr *TestTree) ReadFile(path string) string {
	tr.t.Helper()
	data, err := os.ReadFile(filepath.Join(tr.Root, path))
	if err != nil {
		tr.t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}

// Mode returns the permission bits of a file. It calls t.Fatal on error.
func (tr *TestTree) Mode(path string) os.FileMode {
	tr.t.Helper()
	info, err := os.Stat(filepath.Join(tr.Root, path))
	if err != nil {
		tr.t.Fatalf("failed to stat %s: %v", path, err)
	}
	return info.Mode().Perm()
}

// Exists reports whether a path exists in the tree.
func (tr *TestTree) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(tr.Root, path))
	return err == nil
}

// Path returns the absolute path of a file in the tree.
func (tr *TestTree) Path(relPath string) string {
	return filepath.Join(tr.Root, relPath)
}
