package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signalbox/signalbox/report"
	"github.com/signalbox/signalbox/store"
)

func runsCmd(newApp func() (*app, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored analysis runs",
	}

	cmd.AddCommand(runsListCmd(newApp), runsShowCmd(newApp), runsDeleteCmd(newApp))
	return cmd
}

func openRunStore(a *app) (*store.Store, error) {
	runs, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	return runs, nil
}

func runsListCmd(newApp func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored runs, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			runs, err := openRunStore(a)
			if err != nil {
				return err
			}
			defer runs.Close()

			summaries, err := runs.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored runs.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tFRAMEWORK\tCONFIDENCE\tCOST\tSAVINGS\tCOMPLETED\tSOURCE")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t$%.4f\t%.1f%%\t%s\t%s\n",
					s.ID, s.Framework, s.Confidence, s.OriginalCost,
					s.SavingsPercent, s.CompletedAt.Format("2006-01-02 15:04"), s.Source)
			}
			return tw.Flush()
		},
	}
}

func runsShowCmd(newApp func() (*app, error)) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			runs, err := openRunStore(a)
			if err != nil {
				return err
			}
			defer runs.Close()

			run, err := runs.GetRun(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("run %s not found", args[0])
				}
				return err
			}

			gen := report.New(report.DefaultConfig())
			switch format {
			case "summary":
				printRunSummary(cmd.OutOrStdout(), run)
				return nil
			case "json":
				doc, err := gen.JSON(run)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), doc)
				return nil
			case "markdown":
				md, err := gen.Markdown(run)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), md)
				return nil
			default:
				return fmt.Errorf("unknown format %q (expected summary, json, or markdown)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "summary", "Output format (summary, json, markdown)")

	return cmd
}

func runsDeleteCmd(newApp func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			runs, err := openRunStore(a)
			if err != nil {
				return err
			}
			defer runs.Close()

			if err := runs.DeleteRun(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("run %s not found", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s deleted\n", args[0])
			return nil
		},
	}
}
