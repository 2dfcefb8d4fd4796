package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/k1LoW/exec"

	"github.com/mkmn/cf/testutil"
)

// buildBinary builds the cf binary for testing and returns the path.
func buildBinary(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	binPath := filepath.Join(tmpDir, "cf")

	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to build binary: %v", err)
	}

	return binPath
}

// runCf runs cf and returns combined output (stdout + stderr).
func runCf(t *testing.T, binPath string, args ...string) (string, error) {
	t.Helper()

	cmd := exec.Command(binPath, args...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// runCfStdin runs cf with the given stdin content.
func runCfStdin(t *testing.T, binPath, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := exec.Command(binPath, args...)
	cmd.Stdin = strings.NewReader(stdin)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

func TestE2E_SingleFile(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFile("a.txt", "hello")

	out, err := runCf(t, binPath, tree.Path("a.txt"), tree.Path("b.txt"))
	if err != nil {
		t.Fatalf("cf failed: %v\noutput: %s", err, out)
	}

	if !strings.Contains(out, "Successfully copied from") {
		t.Errorf("output should contain success message, got: %s", out)
	}
	if got := tree.ReadFile("b.txt"); got != "hello" {
		t.Errorf("copied content = %q, want %q", got, "hello")
	}
}

func TestE2E_MissingSource(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)

	out, err := runCf(t, binPath, tree.Path("missing.txt"), tree.Path("b.txt"))
	if err == nil {
		t.Fatalf("cf should exit non-zero for a missing source, output: %s", out)
	}
	if !strings.Contains(out, "source does not exist") {
		t.Errorf("output should mention the missing source, got: %s", out)
	}
}

func TestE2E_UsageError(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFile("a.txt", "hello")

	// A third positional argument is an error.
	out, err := runCf(t, binPath, tree.Path("a.txt"), tree.Path("b.txt"), tree.Path("c.txt"))
	if err == nil {
		t.Fatalf("cf should exit non-zero for extra arguments, output: %s", out)
	}

	// So is a missing target.
	out, err = runCf(t, binPath, tree.Path("a.txt"))
	if err == nil {
		t.Fatalf("cf should exit non-zero for a missing target, output: %s", out)
	}
}

func TestE2E_TargetExists(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFile("a.txt", "new")
	tree.CreateFile("b.txt", "old")

	out, err := runCf(t, binPath, tree.Path("a.txt"), tree.Path("b.txt"))
	if err == nil {
		t.Fatalf("cf should exit non-zero for an existing target, output: %s", out)
	}
	if !strings.Contains(out, "file exists") {
		t.Errorf("output should mention the existing file, got: %s", out)
	}
	if got := tree.ReadFile("b.txt"); got != "old" {
		t.Errorf("target content = %q, want untouched %q", got, "old")
	}
}

func TestE2E_InteractiveDecline(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFile("a.txt", "new")
	tree.CreateFile("b.txt", "old")

	// Declining the overwrite is not a failure: exit 0, target untouched.
	out, err := runCfStdin(t, binPath, "n\n", "-i", tree.Path("a.txt"), tree.Path("b.txt"))
	if err != nil {
		t.Fatalf("cf should exit zero on decline: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "Skipping") {
		t.Errorf("output should contain skip message, got: %s", out)
	}
	if got := tree.ReadFile("b.txt"); got != "old" {
		t.Errorf("target content = %q, want untouched %q", got, "old")
	}
}

func TestE2E_InteractiveApprove(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFile("a.txt", "new")
	tree.CreateFile("b.txt", "old")

	out, err := runCfStdin(t, binPath, "y\n", "-i", tree.Path("a.txt"), tree.Path("b.txt"))
	if err != nil {
		t.Fatalf("cf failed: %v\noutput: %s", err, out)
	}
	if got := tree.ReadFile("b.txt"); got != "new" {
		t.Errorf("target content = %q, want %q", got, "new")
	}
}

func TestE2E_ArchiveMode(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFileMode("src/a.txt", "a", 0600)
	tree.CreateFileMode("src/sub/b.txt", "b", 0640)

	out, err := runCf(t, binPath, "-a", tree.Path("src"), tree.Path("dst"))
	if err != nil {
		t.Fatalf("cf failed: %v\noutput: %s", err, out)
	}

	if got := tree.ReadFile("dst/a.txt"); got != "a" {
		t.Errorf("dst/a.txt = %q, want %q", got, "a")
	}
	if got := tree.ReadFile("dst/sub/b.txt"); got != "b" {
		t.Errorf("dst/sub/b.txt = %q, want %q", got, "b")
	}
	if got := tree.Mode("dst/a.txt"); got != 0600 {
		t.Errorf("dst/a.txt mode = %o, want %o", got, 0600)
	}
	if got := tree.Mode("dst/sub/b.txt"); got != 0640 {
		t.Errorf("dst/sub/b.txt mode = %o, want %o", got, 0640)
	}
}

func TestE2E_LowerCaseRecursive(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFile("src/a.txt", "a")

	out, err := runCf(t, binPath, "-r", tree.Path("src"), tree.Path("dst"))
	if err != nil {
		t.Fatalf("cf failed: %v\noutput: %s", err, out)
	}
	if got := tree.ReadFile("dst/a.txt"); got != "a" {
		t.Errorf("dst/a.txt = %q, want %q", got, "a")
	}
}

func TestE2E_UpdateOnly(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFile("src/a.txt", "stale source")
	tree.CreateFile("dst/a.txt", "current target")
	tree.Chtimes("src/a.txt", time.Now().Add(-time.Hour))

	// The target is newer than the source: nothing is copied.
	out, err := runCf(t, binPath, "-u", "-R", tree.Path("src"), tree.Path("dst"))
	if err != nil {
		t.Fatalf("cf failed: %v\noutput: %s", err, out)
	}
	if got := tree.ReadFile("dst/a.txt"); got != "current target" {
		t.Errorf("target content = %q, want untouched %q", got, "current target")
	}
}

func TestE2E_DebugTracing(t *testing.T) {
	binPath := buildBinary(t)

	tree := testutil.NewTestTree(t)
	tree.CreateFile("a.txt", "hello")

	out, err := runCf(t, binPath, "-d", tree.Path("a.txt"), tree.Path("b.txt"))
	if err != nil {
		t.Fatalf("cf failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "cloning") {
		t.Errorf("debug output should contain trace lines, got: %s", out)
	}
	if !strings.Contains(out, "cloned") {
		t.Errorf("debug output should contain the action report, got: %s", out)
	}
}
