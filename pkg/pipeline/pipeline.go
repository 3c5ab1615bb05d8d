// Package pipeline runs the per-file comment-strip / map-adjust chain
// across a package tree.
//
// Phase 1 walks the tree and collects eligible script files
// (sequential, cheap). Phase 2 processes files in parallel; each
// file's scan -> strip -> write -> adjust chain stays strictly
// sequential because every stage consumes the one before it.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cleanpack/cleanpack/pkg/jslex"
	"github.com/cleanpack/cleanpack/pkg/jsondoc"
	"github.com/cleanpack/cleanpack/pkg/sourcemap"
	"github.com/cleanpack/cleanpack/pkg/strip"
)

// DefaultExtensions are the script file extensions processed when the
// caller does not narrow them.
var DefaultExtensions = []string{".js", ".mjs", ".cjs"}

// Options configures a Run.
type Options struct {
	// Root of the package tree.
	Root string

	// Types of comments to strip. Empty means no stripping at all.
	Types []jslex.CommentType

	// Extensions overrides DefaultExtensions when non-empty.
	Extensions []string

	// Workers caps phase-2 parallelism; 0 means NumCPU.
	Workers int

	// Logger receives per-file events; nil disables logging.
	Logger *log.Logger
}

// Result counts what a Run did.
type Result struct {
	Edited       int
	Unchanged    int
	MapsAdjusted int
	MapsSkipped  int
}

// Run strips the requested comment types from every script file under
// the root and keeps sibling .map files consistent with the edits.
func Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	if len(opts.Types) == 0 {
		return res, nil
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[e] = true
	}

	// Phase 1: collect eligible files.
	var files []string
	err := filepath.Walk(opts.Root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if info.IsDir() {
			if info.Name() == "node_modules" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if extSet[filepath.Ext(info.Name())] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	pathsCh := make(chan string, workers*2)

	g.Go(func() error {
		defer close(pathsCh)
		for _, f := range files {
			select {
			case pathsCh <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for f := range pathsCh {
				r, err := processFile(f, opts)
				if err != nil {
					return err
				}
				mu.Lock()
				res.Edited += r.Edited
				res.Unchanged += r.Unchanged
				res.MapsAdjusted += r.MapsAdjusted
				res.MapsSkipped += r.MapsSkipped
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

// processFile runs one file's strip-then-adjust chain.
func processFile(file string, opts Options) (Result, error) {
	var res Result

	content, err := os.ReadFile(file)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", file, err)
	}
	src := string(content)

	comments := jslex.Scan(src)
	edited, lineMap := strip.Comments(src, comments, opts.Types...)
	if lineMap == nil {
		res.Unchanged++
		return res, nil
	}

	info, err := os.Stat(file)
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", file, err)
	}
	if err := os.WriteFile(file, []byte(edited), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("writing %s: %w", file, err)
	}
	res.Edited++
	if opts.Logger != nil {
		opts.Logger.Debug("stripped comments", "file", file)
	}

	mapPath := file + ".map"
	if _, err := os.Stat(mapPath); err != nil {
		return res, nil
	}
	adjusted, err := adjustMap(mapPath, filepath.Base(file), lineMap)
	if err != nil {
		return res, err
	}
	if adjusted {
		res.MapsAdjusted++
		if opts.Logger != nil {
			opts.Logger.Debug("adjusted source map", "file", mapPath)
		}
	} else {
		res.MapsSkipped++
		if opts.Logger != nil {
			opts.Logger.Warn("skipped source map", "file", mapPath)
		}
	}
	return res, nil
}

// adjustMap rewrites the origin lines of the sibling map. A map that
// cannot be parsed, is not version 3, or does not reference the edited
// file is left alone.
func adjustMap(mapPath, baseName string, lineMap strip.LineMap) (bool, error) {
	data, err := os.ReadFile(mapPath)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", mapPath, err)
	}
	obj, err := jsondoc.Parse(data)
	if err != nil {
		return false, nil // unparsable map: skip, never abort the run
	}
	doc := sourcemap.Wrap(obj)

	idx := sourceIndexOf(doc.Sources(), baseName)
	if idx < 0 {
		return false, nil
	}
	before := doc.Mappings()
	doc.AdjustLines(idx, lineMap)
	if doc.Mappings() == before {
		// Nothing changed (wrong version, or no segments for us);
		// leave the file bytes alone.
		return false, nil
	}

	info, err := os.Stat(mapPath)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", mapPath, err)
	}
	out, err := doc.MarshalIndent()
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", mapPath, err)
	}
	if err := os.WriteFile(mapPath, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", mapPath, err)
	}
	return true, nil
}

// sourceIndexOf finds which sources entry refers to the edited file.
// The map sits next to the file, so an entry naming it exactly (modulo
// a "./" prefix) wins; base-name matching is the fallback for maps
// whose entries carry directory prefixes.
func sourceIndexOf(sources []string, baseName string) int {
	for i, s := range sources {
		if strings.TrimPrefix(strings.ReplaceAll(s, "\\", "/"), "./") == baseName {
			return i
		}
	}
	for i, s := range sources {
		if path.Base(strings.ReplaceAll(s, "\\", "/")) == baseName {
			return i
		}
	}
	return -1
}
