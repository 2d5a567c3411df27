package cmd

import (
	"time"

	"github.com/alexalbu001/envreport/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func newServeCmd() *cobra.Command {
	var (
		listen  string
		noTouch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report over HTTP",
		Long: `Serve the report as an HTML page on / and as JSON on /report. A region
other than the configured one can be requested with ?region=. Health and
Prometheus metrics are exposed on /health, /ready and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd.Context(), conf)
			if err != nil {
				return err
			}

			cfg := server.DefaultConfig()
			cfg.Name = conf.Name
			cfg.Region = conf.Region
			cfg.VolumePath = conf.VolumePath
			cfg.TouchVolume = !noTouch
			cfg.Address = conf.ListenAddress
			if listen != "" {
				cfg.Address = listen
			}
			cfg.RateLimit = rate.Limit(conf.RateLimit)
			cfg.RateLimitBurst = conf.RateBurst
			// a page waits for the slowest category
			if floor := conf.FetchTimeout + 10*time.Second; cfg.WriteTimeout < floor {
				cfg.WriteTimeout = floor
			}

			return server.NewServer(cfg, b.collector).Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config, else :8080)")
	cmd.Flags().BoolVar(&noTouch, "no-touch", false, "do not touch the volume marker file on page requests")
	return cmd
}
