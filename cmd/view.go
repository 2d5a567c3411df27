package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/alexalbu001/envreport/internal/logging"
	"github.com/alexalbu001/envreport/internal/ui"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

func newViewCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the report in an interactive terminal view",
		Long: `Collect a report and show it in a terminal view. Press / to search,
m on a cluster to show its CloudWatch utilization, r to collect again and q to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			b, err := newBackend(ctx, conf)
			if err != nil {
				return err
			}

			rep, err := b.collector.Collect(ctx, conf.Region)
			if err != nil {
				return err
			}

			// log lines would draw over the screen
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			logging.Redirect(logOut, appName, version, logLevel)

			app := tview.NewApplication()
			ui.DisplayReport(app, ctx, b.collector, b.metrics, rep)

			go func() {
				<-ctx.Done()
				app.Stop()
			}()

			if err := app.Run(); err != nil {
				return fmt.Errorf("error running application: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the view is open")
	return cmd
}
