// Package cleanpack prepares an npm-style package directory for
// distribution.
//
// It prunes the manifest, filters lifecycle scripts, deletes junk
// files, enforces the files allow-list, optionally flattens a publish
// directory, strips requested comment classes from script files, and
// keeps sibling source maps consistent through both the edits and the
// moves.
//
// # Basic Usage
//
// Prepare a package in place:
//
//	report, err := cleanpack.Prepare(ctx, "./pkg-to-publish",
//	    cleanpack.WithCommentTypes(cleanpack.TypeRegular, cleanpack.TypeJSDoc))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("edited %d files\n", report.FilesEdited)
//
// The package directory is mutated directly; run it on a copy, not on
// your working tree.
package cleanpack

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"

	"github.com/cleanpack/cleanpack/pkg/jslex"
	"github.com/cleanpack/cleanpack/pkg/manifest"
	"github.com/cleanpack/cleanpack/pkg/pipeline"
	"github.com/cleanpack/cleanpack/pkg/prune"
	"github.com/cleanpack/cleanpack/pkg/relocate"
)

// Re-export the comment classifications so callers can import just
// "github.com/cleanpack/cleanpack" without subpackages.
type CommentType = jslex.CommentType

const (
	TypeLicense = jslex.TypeLicense
	TypeJSDoc   = jslex.TypeJSDoc
	TypeRegular = jslex.TypeRegular
)

// Report summarizes what Prepare changed.
type Report struct {
	FilesEdited   int
	FilesSkipped  int
	MapsAdjusted  int
	MapsRewritten int
	JunkRemoved   int
	Excluded      int
	Disallowed    int
	FilesMoved    int
}

type prepareConfig struct {
	commentTypes []jslex.CommentType
	fields       []string
	keepScripts  []string
	exclude      []string
	junk         []string
	flattenDir   string
	extensions   []string
	workers      int
	logger       *charmlog.Logger
}

// Option configures Prepare.
type Option func(*prepareConfig)

// WithCommentTypes selects which comment classes to strip from script
// files. Without it no comment stripping happens.
func WithCommentTypes(types ...CommentType) Option {
	return func(c *prepareConfig) { c.commentTypes = types }
}

// WithFields adds manifest fields to delete beyond the defaults.
func WithFields(fields ...string) Option {
	return func(c *prepareConfig) { c.fields = fields }
}

// WithKeepScripts replaces the default lifecycle-script keep list.
func WithKeepScripts(scripts ...string) Option {
	return func(c *prepareConfig) { c.keepScripts = scripts }
}

// WithExclude deletes files matching gitignore-style patterns.
func WithExclude(patterns ...string) Option {
	return func(c *prepareConfig) { c.exclude = patterns }
}

// WithJunkPatterns extends the built-in junk-file patterns.
func WithJunkPatterns(patterns ...string) Option {
	return func(c *prepareConfig) { c.junk = patterns }
}

// WithFlattenDir moves everything under dir to the package root and
// rewrites source maps and manifest entry points to match.
func WithFlattenDir(dir string) Option {
	return func(c *prepareConfig) { c.flattenDir = dir }
}

// WithExtensions overrides the script extensions to process.
func WithExtensions(exts ...string) Option {
	return func(c *prepareConfig) { c.extensions = exts }
}

// WithWorkers caps comment-strip parallelism. Default is NumCPU.
func WithWorkers(n int) Option {
	return func(c *prepareConfig) { c.workers = n }
}

// WithLogger routes per-file events to the given logger.
func WithLogger(logger *charmlog.Logger) Option {
	return func(c *prepareConfig) { c.logger = logger }
}

// Prepare runs the full preparation pipeline over the package at root.
//
// Order matters: junk and excluded files go first so no later stage
// wastes work on them, the flatten (with its map and entry-point
// rewrites) runs before comment stripping so sibling maps are found at
// their final locations, and the allow-list is enforced last using the
// cleaned manifest's files field.
func Prepare(ctx context.Context, root string, opts ...Option) (*Report, error) {
	var cfg prepareConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	mf, err := manifest.Load(root)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	junk, err := prune.Junk(root, cfg.junk)
	if err != nil {
		return nil, fmt.Errorf("deleting junk files: %w", err)
	}
	report.JunkRemoved = len(junk)

	excluded, err := prune.Excluded(root, cfg.exclude)
	if err != nil {
		return nil, fmt.Errorf("deleting excluded files: %w", err)
	}
	report.Excluded = len(excluded)

	if cfg.flattenDir != "" {
		moves, err := relocate.Flatten(root, cfg.flattenDir)
		if err != nil {
			return nil, fmt.Errorf("flattening %s: %w", cfg.flattenDir, err)
		}
		report.FilesMoved = len(moves)

		rewritten, skipped, err := relocate.RewriteMaps(root, moves)
		if err != nil {
			return nil, fmt.Errorf("rewriting source maps: %w", err)
		}
		report.MapsRewritten = rewritten
		if cfg.logger != nil {
			for _, s := range skipped {
				cfg.logger.Warn("unparsable source map left untouched", "file", s)
			}
		}

		if err := manifest.ApplyMoves(mf, moves); err != nil {
			return nil, fmt.Errorf("rewriting manifest entry points: %w", err)
		}
	}

	res, err := pipeline.Run(ctx, pipeline.Options{
		Root:       root,
		Types:      cfg.commentTypes,
		Extensions: cfg.extensions,
		Workers:    cfg.workers,
		Logger:     cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("stripping comments: %w", err)
	}
	report.FilesEdited = res.Edited
	report.FilesSkipped = res.Unchanged
	report.MapsAdjusted = res.MapsAdjusted

	if err := manifest.Clean(mf, manifest.Options{
		Fields:      cfg.fields,
		KeepScripts: cfg.keepScripts,
	}); err != nil {
		return nil, fmt.Errorf("cleaning manifest: %w", err)
	}
	if err := manifest.Save(root, mf); err != nil {
		return nil, err
	}

	var files []string
	_ = mf.Get("files", &files)
	disallowed, err := prune.EnforceFiles(root, files)
	if err != nil {
		return nil, fmt.Errorf("enforcing files allow-list: %w", err)
	}
	report.Disallowed = len(disallowed)

	return report, nil
}
