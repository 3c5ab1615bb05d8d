// Package prune deletes files a published package should not carry:
// OS and editor debris, anything matching configured exclude patterns,
// and, when the manifest has a files allow-list, everything outside it.
package prune

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultJunk are base-name patterns deleted unconditionally.
var DefaultJunk = []string{
	".DS_Store",
	"._*",
	".Spotlight-V100",
	".Trashes",
	"Thumbs.db",
	"ehthumbs.db",
	"Desktop.ini",
	"*.orig",
	".lock-wscript",
	"npm-debug.log",
	"yarn-error.log",
}

// alwaysKept are root files npm publishes regardless of the files
// allow-list. Matched case-insensitively, extension ignored.
var alwaysKept = []string{
	"package.json",
	"readme",
	"license",
	"licence",
	"changelog",
	"notice",
}

// Junk walks root and deletes every file whose base name matches a
// junk pattern. extra patterns extend DefaultJunk. Deleted paths are
// returned root-relative with forward slashes.
func Junk(root string, extra []string) ([]string, error) {
	patterns := append(append([]string{}, DefaultJunk...), extra...)
	var removed []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		for _, pat := range patterns {
			ok, err := doublestar.Match(pat, info.Name())
			if err != nil {
				return fmt.Errorf("junk pattern %q: %w", pat, err)
			}
			if !ok {
				continue
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing %s: %w", path, err)
			}
			rel, _ := filepath.Rel(root, path)
			removed = append(removed, filepath.ToSlash(rel))
			break
		}
		return nil
	})
	return removed, err
}

// Excluded deletes every file matching the gitignore-style patterns.
func Excluded(root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	ignore := gitignore.CompileIgnoreLines(patterns...)

	var removed []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		slashRel := filepath.ToSlash(rel)
		if info.IsDir() {
			// Directory-only patterns ("fixtures/") need the slash to match.
			if !ignore.MatchesPath(slashRel) && !ignore.MatchesPath(slashRel+"/") {
				return nil
			}
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("removing %s: %w", path, err)
			}
			removed = append(removed, slashRel+"/")
			return filepath.SkipDir
		}
		if !ignore.MatchesPath(slashRel) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		removed = append(removed, slashRel)
		return nil
	})
	return removed, err
}

// EnforceFiles deletes every file not covered by the manifest files
// allow-list, an always-published root file, or the manifest itself.
// Directories emptied by the deletions are removed afterwards. A nil
// or empty allow-list is a no-op (npm publishes everything then).
func EnforceFiles(root string, files []string) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var removed []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		slashRel := filepath.ToSlash(rel)
		if allowed(slashRel, files) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		removed = append(removed, slashRel)
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, removeEmptyDirs(root)
}

// allowed reports whether a root-relative path survives the files
// allow-list.
func allowed(rel string, files []string) bool {
	if !strings.Contains(rel, "/") && isAlwaysKept(rel) {
		return true
	}
	for _, f := range files {
		f = strings.TrimSuffix(strings.TrimPrefix(f, "./"), "/")
		if f == rel || strings.HasPrefix(rel, f+"/") {
			return true
		}
		if ok, err := doublestar.Match(f, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func isAlwaysKept(name string) bool {
	lower := strings.ToLower(name)
	stem := lower
	if i := strings.IndexByte(lower, '.'); i > 0 {
		stem = lower[:i]
	}
	if lower == "package.json" {
		return true
	}
	for _, k := range alwaysKept[1:] {
		if stem == k {
			return true
		}
	}
	return false
}

// removeEmptyDirs deletes directories left empty, deepest first.
func removeEmptyDirs(root string) error {
	var dirs []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			if err := os.Remove(d); err != nil {
				return fmt.Errorf("removing %s: %w", d, err)
			}
		}
	}
	return nil
}
