package prune

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func assertRemoved(t *testing.T, got, want []string) {
	t.Helper()
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("removed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("removed %v, want %v", got, want)
		}
	}
}

func TestJunk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.js":           "x",
		".DS_Store":          "",
		"lib/.DS_Store":      "",
		"lib/a.js":           "x",
		"lib/a.js.orig":      "x",
		"npm-debug.log":      "",
		"lib/._resource":     "",
		"docs/Thumbs.db":     "",
		"docs/notes.md":      "x",
		"yarn-error.log.txt": "x",
	})

	removed, err := Junk(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	assertRemoved(t, removed, []string{
		".DS_Store", "lib/.DS_Store", "lib/a.js.orig",
		"npm-debug.log", "lib/._resource", "docs/Thumbs.db",
	})
	for _, kept := range []string{"index.js", "lib/a.js", "docs/notes.md", "yarn-error.log.txt"} {
		if !exists(root, kept) {
			t.Errorf("%s should survive", kept)
		}
	}
}

func TestJunk_ExtraPatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.js":     "x",
		"a.js.bak": "x",
	})

	removed, err := Junk(root, []string{"*.bak"})
	if err != nil {
		t.Fatal(err)
	}
	assertRemoved(t, removed, []string{"a.js.bak"})
}

func TestExcluded(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.js":          "x",
		"index.test.js":     "x",
		"src/util.test.js":  "x",
		"src/util.js":       "x",
		"fixtures/data.txt": "x",
	})

	removed, err := Excluded(root, []string{"*.test.js", "fixtures/"})
	if err != nil {
		t.Fatal(err)
	}

	assertRemoved(t, removed, []string{"index.test.js", "src/util.test.js", "fixtures/"})
	if !exists(root, "src/util.js") || !exists(root, "index.js") {
		t.Error("non-matching files should survive")
	}
	if exists(root, "fixtures") {
		t.Error("excluded directory should be gone")
	}
}

func TestExcluded_NoPatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "x"})

	removed, err := Excluded(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if removed != nil {
		t.Errorf("no patterns should remove nothing, got %v", removed)
	}
}

func TestEnforceFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json":    "{}",
		"README.md":       "x",
		"LICENSE":         "x",
		"CHANGELOG.md":    "x",
		"dist/index.js":   "x",
		"dist/sub/b.js":   "x",
		"src/index.ts":    "x",
		"scripts/gen.sh":  "x",
		"docs/LICENSE.md": "x",
	})

	removed, err := EnforceFiles(root, []string{"dist"})
	if err != nil {
		t.Fatal(err)
	}

	assertRemoved(t, removed, []string{"src/index.ts", "scripts/gen.sh", "docs/LICENSE.md"})
	for _, kept := range []string{"package.json", "README.md", "LICENSE", "CHANGELOG.md", "dist/index.js", "dist/sub/b.js"} {
		if !exists(root, kept) {
			t.Errorf("%s should survive", kept)
		}
	}
	for _, gone := range []string{"src", "scripts", "docs"} {
		if exists(root, gone) {
			t.Errorf("emptied directory %s should be removed", gone)
		}
	}
}

func TestEnforceFiles_EmptyListIsNoOp(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"anything.txt": "x"})

	removed, err := EnforceFiles(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if removed != nil || !exists(root, "anything.txt") {
		t.Error("empty allow-list must not delete anything")
	}
}

func TestEnforceFiles_Globs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": "{}",
		"a.js":         "x",
		"a.d.ts":       "x",
		"a.txt":        "x",
	})

	_, err := EnforceFiles(root, []string{"*.js", "*.d.ts"})
	if err != nil {
		t.Fatal(err)
	}
	if !exists(root, "a.js") || !exists(root, "a.d.ts") {
		t.Error("glob-matched files should survive")
	}
	if exists(root, "a.txt") {
		t.Error("a.txt should be removed")
	}
}

func TestIsAlwaysKept(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"package.json", true},
		{"README.md", true},
		{"readme", true},
		{"LICENSE", true},
		{"LICENCE.txt", true},
		{"ChangeLog.md", true},
		{"NOTICE", true},
		{"index.js", false},
		{"readme-draft.md", false},
	}
	for _, tt := range tests {
		if got := isAlwaysKept(tt.name); got != tt.want {
			t.Errorf("isAlwaysKept(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
