package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/codeexplain/internal/discover"
	"github.com/phobologic/codeexplain/internal/report"
)

type dirOptions struct {
	langs       string
	include     []string
	exclude     []string
	skipTests   bool
	maxFiles    int
	maxFileSize int64
	concurrency int
	comments    bool
	outDir      string
}

func (a *app) dirCommand() *cobra.Command {
	var opts dirOptions

	cmd := &cobra.Command{
		Use:   "dir [path]",
		Short: "Explain every source file under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return a.runDir(cmd.Context(), root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.langs, "langs", "l", "", "comma-separated languages to include")
	f.StringSliceVar(&opts.include, "include", nil, "only files matching these glob patterns (** supported)")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "skip files matching these glob patterns")
	f.BoolVar(&opts.skipTests, "skip-tests", false, "skip test files")
	f.IntVarP(&opts.maxFiles, "max-files", "n", 0, "maximum number of files to explain")
	f.Int64Var(&opts.maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	f.IntVar(&opts.concurrency, "concurrency", runtime.GOMAXPROCS(0), "files explained in parallel")
	f.BoolVarP(&opts.comments, "comments", "c", false, "add inline comments to each report")
	f.StringVarP(&opts.outDir, "out", "o", "", "write one Markdown report per file into this directory")
	return cmd
}

func (a *app) runDir(ctx context.Context, root string, opts dirOptions) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	langs, err := a.parseLanguages(opts.langs)
	if err != nil {
		return err
	}
	files, err := discover.Files(root, discover.Options{
		Languages: langs,
		Include:   opts.include,
		Exclude:   opts.exclude,
		SkipTests: opts.skipTests,
		MaxBytes:  opts.maxFileSize,
		MaxFiles:  opts.maxFiles,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found")
	}

	engine, err := a.engine()
	if err != nil {
		return userError(err)
	}
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return err
		}
	}

	renderer := report.New(a.catalog)
	reports := make([]string, len(files))
	summaries := make([]report.FileSummary, len(files))
	var stderrMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.concurrency, 1))
	for i, f := range files {
		g.Go(func() error {
			summaries[i] = report.FileSummary{Path: f.Path, Language: f.Language}

			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
			if err != nil {
				summaries[i].Err = err
				return nil
			}
			// Discovery already knows the language from the file name.
			res, err := engine.ExplainAs(gctx, string(data), f.Language, opts.comments)
			if err != nil {
				summaries[i].Err = err
				stderrMu.Lock()
				fmt.Fprintf(a.stderr, "Warning: %s: %v\n", f.Path, err)
				stderrMu.Unlock()
				return nil
			}
			summaries[i].Backend = res.Backend
			summaries[i].Blocks = len(res.BlockExplanations)

			md := renderer.Markdown(res)
			if opts.outDir == "" {
				reports[i] = md
				return nil
			}
			return writeReport(opts.outDir, f.Path, md)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.outDir == "" {
		for i, md := range reports {
			if md == "" {
				continue
			}
			fmt.Fprintf(a.stdout, "<!-- %s -->\n%s\n", files[i].Path, md)
		}
	}
	fmt.Fprintln(a.stderr, report.Summary(root, summaries))

	if failed := countFailed(summaries); failed == len(summaries) {
		return fmt.Errorf("all %d files failed", failed)
	}
	return nil
}

// writeReport stores the report for rel as a flat file name under dir.
func writeReport(dir, rel, md string) error {
	name := strings.ReplaceAll(rel, "/", "__") + ".md"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing report for %s: %w", rel, err)
	}
	return nil
}

func countFailed(s []report.FileSummary) int {
	n := 0
	for _, f := range s {
		if f.Err != nil {
			n++
		}
	}
	return n
}
