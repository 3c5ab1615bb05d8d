// Package relocate flattens a publish directory (dist/, lib/, build/)
// up to the package root, producing the move table the source-map
// rewriter needs to keep references resolvable afterwards.
package relocate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleanpack/cleanpack/pkg/jsondoc"
	"github.com/cleanpack/cleanpack/pkg/sourcemap"
)

// Flatten moves every file under root/dir to root, preserving the
// layout below dir, and returns the move table (old root-relative path
// -> new root-relative path, forward slashes). Collisions with
// existing files abort before anything moves. The emptied dir is
// removed.
func Flatten(root, dir string) (map[string]string, error) {
	src := filepath.Join(root, dir)
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("flatten dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("flatten target %s is not a directory", dir)
	}

	moves := make(map[string]string)
	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		oldRel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		moves[filepath.ToSlash(oldRel)] = filepath.ToSlash(rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Check the whole table for collisions before the first move.
	for _, newRel := range moves {
		dest := filepath.Join(root, filepath.FromSlash(newRel))
		if _, err := os.Stat(dest); err == nil {
			return nil, fmt.Errorf("flatten would overwrite %s", newRel)
		}
	}

	for oldRel, newRel := range moves {
		from := filepath.Join(root, filepath.FromSlash(oldRel))
		to := filepath.Join(root, filepath.FromSlash(newRel))
		if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(to), err)
		}
		if err := os.Rename(from, to); err != nil {
			return nil, fmt.Errorf("moving %s: %w", oldRel, err)
		}
	}

	if err := os.RemoveAll(src); err != nil {
		return nil, fmt.Errorf("removing %s: %w", dir, err)
	}
	return moves, nil
}

// RewriteMaps rewrites the sources of every .map file under root
// through the move table. Maps that moved themselves are resolved
// against their pre-move location. Unparsable maps are skipped, not
// fatal; their paths are returned so the caller can log them.
func RewriteMaps(root string, moves map[string]string) (rewritten int, skipped []string, err error) {
	// Reverse lookup: where did a map now at newRel live before?
	oldPathOf := make(map[string]string, len(moves))
	for oldRel, newRel := range moves {
		oldPathOf[newRel] = oldRel
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, werr error) error {
		if werr != nil {
			return werr
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".map") {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		newRel := filepath.ToSlash(rel)
		oldRel, moved := oldPathOf[newRel]
		if !moved {
			oldRel = newRel
		}

		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return fmt.Errorf("reading %s: %w", newRel, rerr)
		}
		obj, perr := jsondoc.Parse(data)
		if perr != nil {
			skipped = append(skipped, newRel)
			return nil
		}
		doc := sourcemap.Wrap(obj)

		before, merr := doc.MarshalIndent()
		if merr != nil {
			return fmt.Errorf("encoding %s: %w", newRel, merr)
		}
		doc.RewriteSources(oldRel, newRel, moves)
		out, merr := doc.MarshalIndent()
		if merr != nil {
			return fmt.Errorf("encoding %s: %w", newRel, merr)
		}
		if bytes.Equal(before, out) {
			// Nothing changed (wrong version, no sources, or already
			// pointing at the right place); leave the file bytes alone.
			return nil
		}
		if werr := os.WriteFile(path, out, info.Mode().Perm()); werr != nil {
			return fmt.Errorf("writing %s: %w", newRel, werr)
		}
		rewritten++
		return nil
	})
	return rewritten, skipped, err
}
