package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/signalbox/signalbox/analysis"
	"github.com/signalbox/signalbox/store"
	"github.com/signalbox/signalbox/watch"
)

func watchCmd(newApp func() (*app, error)) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a source tree and re-analyze on change",
		Long: `Watch monitors a local source tree and re-runs the cost analysis
whenever relevant files change. Changes are debounced so a burst of
edits produces one analysis.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			return runWatch(cmd, a, abs, save)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Persist each analysis to the local run store")

	return cmd
}

func runWatch(cmd *cobra.Command, a *app, root string, save bool) error {
	out := cmd.OutOrStdout()

	var runs *store.Store
	if save {
		var err error
		runs, err = store.Open(a.cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer runs.Close()
	}

	w, err := watch.New(watch.Config{
		Root:     root,
		Debounce: a.cfg.Watch.Debounce,
		Analyzer: analysis.New(analysis.WithLogger(a.logger), analysis.WithDefaultModel(a.cfg.Analysis.DefaultModel)),
		Logger:   a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := w.Start(signalCtx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	fmt.Fprintf(out, "Watching %s (debounce %s), press Ctrl-C to stop\n", root, a.cfg.Watch.Debounce)

	for {
		select {
		case <-signalCtx.Done():
			a.logger.Info("Watch stopped")
			return w.Stop()

		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if event.Err != nil {
				fmt.Fprintf(out, "analysis failed: %v\n", event.Err)
				continue
			}

			fmt.Fprintf(out, "\n%d file(s) changed\n", len(event.Changed))
			printRunSummary(out, event.Run)

			if runs != nil {
				if err := runs.SaveRun(signalCtx, event.Run); err != nil {
					a.logger.Error("failed to save run", slog.String("run_id", event.Run.ID), slog.String("error", err.Error()))
				}
			}
		}
	}
}
