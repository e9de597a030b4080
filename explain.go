package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phobologic/codeexplain/internal/explain"
	"github.com/phobologic/codeexplain/internal/model"
	"github.com/phobologic/codeexplain/internal/report"
)

func (a *app) explainCommand() *cobra.Command {
	var (
		comments   bool
		showBlocks bool
		language   string
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "explain [file|-]",
		Short: "Explain a source file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.readSource(args)
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return userError(err)
			}

			var res model.ExplanationResult
			if language != "" {
				tag, perr := a.parseLanguage(language)
				if perr != nil {
					return perr
				}
				res, err = engine.ExplainAs(cmd.Context(), source, tag, comments)
			} else {
				res, err = engine.Explain(cmd.Context(), source, comments)
			}
			if err != nil {
				return userError(err)
			}

			// The terminal view hides per-block detail unless asked; exports
			// always carry it.
			if (format == "" || format == report.FormatText) && !showBlocks {
				res.BlockExplanations = nil
			}

			w := a.stdout
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				output = filepath.Join(output, report.FileName(time.Now(), format))
			}
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			r := report.New(a.catalog, report.WithColor(output == "" && colorEnabled(a.stdout)))
			if err := r.Render(w, format, res); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(a.stderr, "wrote %s\n", output)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&comments, "comments", "c", false, "add inline comments to the code")
	f.BoolVarP(&showBlocks, "blocks", "b", false, "show block-by-block explanations in text output")
	f.StringVarP(&language, "language", "l", "", "skip detection and explain as this language")
	f.StringVarP(&format, "format", "f", report.FormatText, "output format: text, markdown, json or toon")
	f.StringVarP(&output, "output", "o", "", "write the report to this file, or into this directory under a timestamped name")
	return cmd
}

func (a *app) detectCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "detect [file|-]",
		Short: "Print the detected language of a source file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.readSource(args)
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return userError(err)
			}

			if strings.TrimSpace(source) == "" {
				return userError(explain.ErrEmptyInput)
			}

			tag, method := engine.Detector().DetectWithMethod(cmd.Context(), source)
			if !verbose {
				fmt.Fprintln(a.stdout, tag)
				return nil
			}
			fmt.Fprintf(a.stdout, "%s (%s)\n", tag, method)
			for _, s := range engine.Detector().Scores(source) {
				if s.Score > 0 {
					fmt.Fprintf(a.stdout, "  %-12s %d\n", s.Tag, s.Score)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print the detection stage and heuristic scores")
	return cmd
}
