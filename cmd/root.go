package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsclient "github.com/alexalbu001/envreport/internal/aws"
	"github.com/alexalbu001/envreport/internal/config"
	"github.com/alexalbu001/envreport/internal/logging"
	"github.com/alexalbu001/envreport/internal/report"
	"github.com/alexalbu001/envreport/internal/ui"
	"github.com/alexalbu001/envreport/pkg"
	"github.com/spf13/cobra"
)

const appName = "envreport"

// Exit codes for CLI commands.
const (
	ExitCodeSuccess       = 0
	ExitCodeError         = 1
	ExitCodeInvalidRegion = 2
)

var version = "dev"

var (
	cfgFile     string
	logLevel    string
	regionFlag  string
	profileFlag string

	// conf is resolved before any subcommand runs.
	conf config.Config
)

// Collector produces a report for a region.
type Collector interface {
	Collect(ctx context.Context, region string) (*pkg.EnvironmentReport, error)
}

// backend is what the subcommands talk to AWS through.
type backend struct {
	collector Collector
	metrics   ui.MetricsFunc
	caller    func(ctx context.Context) (*awsclient.CallerIdentity, error)
}

// newBackend wires the SDK clients for conf. Tests replace it.
var newBackend = func(ctx context.Context, conf config.Config) (*backend, error) {
	awsCfg, err := conf.AWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	factory := awsclient.NewSDKClientFactory(awsCfg)
	region := conf.Region

	return &backend{
		collector: report.NewAggregator(factory,
			report.WithFetchTimeout(conf.FetchTimeout),
			report.WithDescribeConcurrency(conf.DescribeConcurrency),
		),
		metrics: func(ctx context.Context, clusterName string) (*awsclient.ClusterMetrics, error) {
			client, release, err := factory.MetricsClient(region)
			if err != nil {
				return nil, err
			}
			defer release()
			return awsclient.GetClusterMetrics(ctx, client, clusterName, time.Now())
		},
		caller: func(ctx context.Context) (*awsclient.CallerIdentity, error) {
			client, release, err := factory.CallerClient(region)
			if err != nil {
				return nil, err
			}
			defer release()
			return awsclient.GetCallerIdentity(ctx, client)
		},
	}, nil
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Report on the AWS environment your credentials can see",
		Long: `envreport collects the calling IAM user, the ECS clusters and the S3
buckets of an AWS region and presents them as a report, a terminal view or a
web page. Each category is fetched independently: one failing category never
hides the others.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/envreport/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default from LOG_LEVEL, else info)")
	cmd.PersistentFlags().StringVarP(&regionFlag, "region", "r", "", "AWS region to report on")
	cmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "AWS shared config profile")

	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newVersionCmd())

	cmd.Version = version
	cmd.SetVersionTemplate(`{{printf "envreport version %s\n" .Version}}`)
	return cmd
}

// SetVersion sets the version reported by the CLI and attached to log lines.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command and exits with a code derived from the error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps an error onto a process exit code.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var invalid *pkg.InvalidRegionError
	if errors.As(err, &invalid) {
		return ExitCodeInvalidRegion
	}
	return ExitCodeError
}

// initConfig resolves conf from the config file, the environment and the flags.
func initConfig(cmd *cobra.Command, _ []string) error {
	logging.SetDefaultStructuredLoggerWithLevel(appName, version, logLevel)

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := loaded.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if cmd.Flags().Changed("region") {
		loaded.Region = regionFlag
	}
	if cmd.Flags().Changed("profile") {
		loaded.Profile = profileFlag
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	conf = loaded
	slog.Debug("configuration resolved", slog.Any("config", conf))
	return nil
}
