package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalbox/signalbox/analysis"
	"github.com/signalbox/signalbox/fetch"
	"github.com/signalbox/signalbox/report"
	"github.com/signalbox/signalbox/store"
)

func analyzeCmd(newApp func() (*app, error)) *cobra.Command {
	var (
		format      string
		output      string
		githubToken string
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <path-or-url>",
		Short: "Analyze a local source tree or GitHub repository",
		Long: `Analyze detects the agent framework in the given source, estimates the
cost of its LLM calls, and writes an optimization report.

The target is either a local directory or a GitHub repository URL
(https://github.com/owner/repo).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runAnalyze(cmd, a, args[0], format, output, githubToken, save)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "html", "Report format (html, markdown, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: report dir for html, stdout otherwise)")
	cmd.Flags().StringVar(&githubToken, "github-token", "", "GitHub API token (overrides config)")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the run to the local run store")

	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, target, format, output, githubToken string, save bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	source, files, err := loadSource(cmd, a, target, githubToken)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	analyzer := analysis.New(analysis.WithLogger(a.logger), analysis.WithDefaultModel(a.cfg.Analysis.DefaultModel))
	run, err := analyzer.Analyze(ctx, source, paths, files)
	if err != nil {
		if errors.Is(err, analysis.ErrNoFrameworkDetected) {
			return fmt.Errorf("no supported framework detected in %s (signalbox currently supports AutoGen and LangChain)", target)
		}
		return err
	}

	printRunSummary(out, run)

	gen := report.New(report.DefaultConfig())
	switch format {
	case "html":
		html, err := gen.HTML(run)
		if err != nil {
			return err
		}
		dir := a.cfg.Report.OutputDir
		filename := ""
		if output != "" {
			dir, filename = filepath.Split(output)
		}
		path, err := gen.Save(html, filename, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nReport saved to %s\n", path)
	case "markdown":
		md, err := gen.Markdown(run)
		if err != nil {
			return err
		}
		if err := writeOutput(out, output, md); err != nil {
			return err
		}
	case "json":
		doc, err := gen.JSON(run)
		if err != nil {
			return err
		}
		if err := writeOutput(out, output, doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report format %q (expected html, markdown, or json)", format)
	}

	if save {
		runs, err := store.Open(a.cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer runs.Close()

		if err := runs.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Fprintf(out, "Run %s saved\n", run.ID)
	}

	return nil
}

// loadSource resolves the analyze target into a file set, fetching
// from GitHub when the target looks like a repository URL.
func loadSource(cmd *cobra.Command, a *app, target, githubToken string) (string, map[string]string, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		token := githubToken
		if token == "" {
			token = a.cfg.GitHub.Token
		}

		opts := []fetch.ClientOption{fetch.WithLogger(a.logger)}
		if token != "" {
			opts = append(opts, fetch.WithToken(token))
		}
		if a.cfg.GitHub.APIBaseURL != "" {
			opts = append(opts, fetch.WithBaseURL(a.cfg.GitHub.APIBaseURL))
		}

		client := fetch.NewClient(opts...)
		repo, err := client.FetchRepository(cmd.Context(), target)
		if err != nil {
			return "", nil, fmt.Errorf("fetch repository: %w", err)
		}
		return target, repo.Files, nil
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", nil, err
	}
	files, err := fetch.LoadDirectory(abs)
	if err != nil {
		return "", nil, err
	}
	return abs, files, nil
}

func writeOutput(stdout io.Writer, path, content string) error {
	if path == "" || path == "-" {
		_, err := stdout.Write([]byte(content))
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func printRunSummary(out io.Writer, run *analysis.Run) {
	fmt.Fprintf(out, "Framework:      %s (%s confidence, score %.0f)\n",
		run.Detection.Framework, run.Detection.Confidence, run.Detection.ConfidenceScore)
	fmt.Fprintf(out, "Components:     %d\n", len(run.Workflow.Components))
	fmt.Fprintf(out, "Original cost:  $%.4f per execution\n", run.Workflow.TotalOriginalCost)
	fmt.Fprintf(out, "Optimized cost: $%.4f per execution\n", run.Workflow.TotalOptimizedCost)
	fmt.Fprintf(out, "Savings:        $%.4f (%.1f%%)\n", run.Workflow.TotalSavings, run.Workflow.SavingsPercent)
}
