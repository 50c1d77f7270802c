package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func checkCmd(g *globals) *cobra.Command {
	var (
		watchMode bool
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Expand every document under the input directory",
		Long: `Check scans input.dir for documents matching input.include, expands
each one, logs undefined references and writes output.formats into
output.dir. A document that cannot be loaded is logged and skipped.

With --watch, check keeps running and reprocesses documents as they change.
When storage.url is set, expanded elements are also stored in the NATS KV
bucket and published for graph ingestion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app := NewApp(g.cfg, g.logger)
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer app.Shutdown()

			return runCheck(ctx, app, cmd.OutOrStdout(), watchMode, strict)
		},
	}

	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Keep watching the input directory for changes")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any document is skipped or has warnings")
	return cmd
}

func runCheck(ctx context.Context, app *App, out io.Writer, watchMode, strict bool) error {
	report, err := app.CheckAll(ctx)
	if err != nil {
		return err
	}

	for _, fr := range report.Documents {
		printReport(out, fr)
	}
	for _, path := range report.Failed {
		fmt.Fprintf(out, "%s: skipped\n", path)
	}
	fmt.Fprintf(out, "%d documents, %d skipped, %d warnings\n",
		len(report.Documents), len(report.Failed), report.Warnings())

	if watchMode {
		app.logger.Info("Watching for changes", "dir", app.cfg.Input.Dir)
		return app.Watch(ctx, func(fr *FileReport) {
			printReport(out, fr)
		})
	}

	if strict && (len(report.Failed) > 0 || report.Warnings() > 0) {
		return fmt.Errorf("check failed: %d skipped, %d warnings", len(report.Failed), report.Warnings())
	}
	return nil
}

func printReport(w io.Writer, fr *FileReport) {
	fmt.Fprintf(w, "%s: %d elements, %d warnings\n", fr.Path, fr.Elements, len(fr.Diagnostics))
	for _, d := range fr.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d.Error())
	}
}
