package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cleanpack/cleanpack"
	"github.com/cleanpack/cleanpack/pkg/config"
	"github.com/cleanpack/cleanpack/pkg/jslex"
)

var (
	prepareComments    []string
	prepareFields      []string
	prepareKeepScripts []string
	prepareExclude     []string
	prepareJunk        []string
	prepareFlattenDir  string
	prepareExtensions  []string
	prepareWorkers     int
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <dir>",
	Short: "Prepare a package directory for publishing",
	Long: "Run the full preparation pipeline over a package directory: " +
		"manifest pruning, junk deletion, optional flattening, comment " +
		"stripping, and source-map adjustment.",
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

func init() {
	prepareCmd.Flags().StringSliceVar(&prepareComments, "comments", nil, "Comment types to strip: license, jsdoc, regular")
	prepareCmd.Flags().StringSliceVar(&prepareFields, "fields", nil, "Extra manifest fields to delete")
	prepareCmd.Flags().StringSliceVar(&prepareKeepScripts, "keep-scripts", nil, "Lifecycle scripts to keep (replaces default keep list)")
	prepareCmd.Flags().StringSliceVar(&prepareExclude, "exclude", nil, "Gitignore-style patterns of files to delete")
	prepareCmd.Flags().StringSliceVar(&prepareJunk, "junk", nil, "Extra junk-file patterns")
	prepareCmd.Flags().StringVar(&prepareFlattenDir, "flatten", "", "Directory to flatten to the package root (e.g. dist)")
	prepareCmd.Flags().StringSliceVar(&prepareExtensions, "ext", nil, "Script extensions to process (default .js,.mjs,.cjs)")
	prepareCmd.Flags().IntVar(&prepareWorkers, "workers", 0, "Comment-strip parallelism (0 = NumCPU)")
}

func runPrepare(cmd *cobra.Command, args []string) error {
	root := args[0]

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("target is not a directory: %s", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	mergeFlags(cfg)

	types, err := parseCommentTypes(cfg.Comments)
	if err != nil {
		return err
	}

	opts := []cleanpack.Option{
		cleanpack.WithCommentTypes(types...),
		cleanpack.WithFields(cfg.Fields...),
		cleanpack.WithKeepScripts(cfg.KeepScripts...),
		cleanpack.WithExclude(cfg.Exclude...),
		cleanpack.WithJunkPatterns(cfg.Junk...),
		cleanpack.WithExtensions(cfg.Extensions...),
		cleanpack.WithWorkers(prepareWorkers),
		cleanpack.WithLogger(logger),
	}
	if cfg.FlattenDir != "" {
		opts = append(opts, cleanpack.WithFlattenDir(cfg.FlattenDir))
	}

	report, err := cleanpack.Prepare(cmd.Context(), root, opts...)
	if err != nil {
		return err
	}

	printSummary(cmd, report)
	return nil
}

// mergeFlags overlays explicitly-set flags onto the file config.
func mergeFlags(cfg *config.Config) {
	if len(prepareComments) > 0 {
		cfg.Comments = prepareComments
	}
	if len(prepareFields) > 0 {
		cfg.Fields = prepareFields
	}
	if len(prepareKeepScripts) > 0 {
		cfg.KeepScripts = prepareKeepScripts
	}
	if len(prepareExclude) > 0 {
		cfg.Exclude = prepareExclude
	}
	if len(prepareJunk) > 0 {
		cfg.Junk = prepareJunk
	}
	if prepareFlattenDir != "" {
		cfg.FlattenDir = prepareFlattenDir
	}
	if len(prepareExtensions) > 0 {
		cfg.Extensions = prepareExtensions
	}
}

func parseCommentTypes(names []string) ([]jslex.CommentType, error) {
	var types []jslex.CommentType
	for _, n := range names {
		switch jslex.CommentType(n) {
		case jslex.TypeLicense, jslex.TypeJSDoc, jslex.TypeRegular:
			types = append(types, jslex.CommentType(n))
		default:
			return nil, fmt.Errorf("unknown comment type %q (want license, jsdoc, or regular)", n)
		}
	}
	return types, nil
}

func printSummary(cmd *cobra.Command, r *cleanpack.Report) {
	if quiet {
		return
	}
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintf(out, "%s\n", bold("Package prepared"))
	fmt.Fprintf(out, "  scripts edited:    %s\n", green(r.FilesEdited))
	fmt.Fprintf(out, "  maps adjusted:     %s\n", green(r.MapsAdjusted))
	if r.FilesMoved > 0 {
		fmt.Fprintf(out, "  files flattened:   %s\n", green(r.FilesMoved))
		fmt.Fprintf(out, "  maps re-pointed:   %s\n", green(r.MapsRewritten))
	}
	fmt.Fprintf(out, "  junk removed:      %s\n", green(r.JunkRemoved))
	if r.Excluded > 0 {
		fmt.Fprintf(out, "  excluded removed:  %s\n", green(r.Excluded))
	}
	if r.Disallowed > 0 {
		fmt.Fprintf(out, "  outside allow-list: %s\n", green(r.Disallowed))
	}
}
