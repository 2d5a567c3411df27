package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexalbu001/envreport/internal/render"
	"github.com/alexalbu001/envreport/internal/volume"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		format      string
		output      string
		withVolume  bool
		touchVolume bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Collect a report and print it",
		Long: `Collect the identity, cluster and bucket categories for the configured
region and print them. Categories that could not be fetched are reported with
the cause of the failure instead of their data.`,
		Example: `  envreport report --region eu-west-1
  envreport report --format json --output report.json
  envreport report --format html --volume > index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := render.Format(strings.ToLower(format))
			if f.IsUnknown() {
				return fmt.Errorf("unsupported format %q, expected one of %s", format, strings.Join(render.SupportedFormats(), ", "))
			}

			b, err := newBackend(cmd.Context(), conf)
			if err != nil {
				return err
			}

			rep, err := b.collector.Collect(cmd.Context(), conf.Region)
			if err != nil {
				return err
			}

			page := &render.Page{Name: conf.Name, Report: rep}
			if withVolume {
				if touchVolume {
					if err := volume.Touch(conf.VolumePath, time.Now()); err != nil {
						slog.Error("failed to touch volume marker", slog.String("error", err.Error()))
					}
				}
				page.Files = volume.List(conf.VolumePath)
			}

			w := render.NewWriter(f, cmd.OutOrStdout())
			if output != "" {
				w, err = render.NewFileWriterOrStdout(f, output)
				if err != nil {
					return err
				}
			}
			defer func() {
				if err := w.Close(); err != nil {
					slog.Warn("failed to close output", slog.String("error", err.Error()))
				}
			}()

			return w.Render(page)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatTable),
		"output format: "+strings.Join(render.SupportedFormats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&withVolume, "volume", false, "include the listing of the configured volume path")
	cmd.Flags().BoolVar(&touchVolume, "touch", false, "touch the volume marker file before listing")

	return cmd
}
