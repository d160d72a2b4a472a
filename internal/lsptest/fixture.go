package lsptest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// SolutionDir writes the given files (path relative to the root, forward
// slashes) into a temp directory and returns it. Use as the solution path
// for a test server.
func SolutionDir(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir
}

// FileURI returns the file: URI for a path inside a solution dir.
func FileURI(dir, rel string) string {
	return string(workspace.PathToURI(filepath.Join(dir, filepath.FromSlash(rel))))
}
