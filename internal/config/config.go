// Package config loads envreport settings from a YAML file, the environment
// and command line flags, in increasing order of precedence, and turns them
// into an AWS SDK configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexalbu001/envreport/pkg"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/envreport"
	configFileName = "config.yaml"
)

// Config holds every setting envreport understands.
type Config struct {
	// Name is shown in the report greeting.
	Name string `yaml:"name"`

	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`

	// Static credentials. When AccessKeyID is empty the default AWS
	// credential chain is used.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`

	FetchTimeout        time.Duration `yaml:"fetch_timeout"`
	MaxAttempts         int           `yaml:"max_attempts"`
	DescribeConcurrency int           `yaml:"describe_concurrency"`

	VolumePath    string  `yaml:"volume_path"`
	ListenAddress string  `yaml:"listen_address"`
	RateLimit     float64 `yaml:"rate_limit"`
	RateBurst     int     `yaml:"rate_burst"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Name:                "envreport",
		FetchTimeout:        15 * time.Second,
		MaxAttempts:         1,
		DescribeConcurrency: 4,
		VolumePath:          "/datafiles",
		ListenAddress:       ":8080",
		RateLimit:           2,
		RateBurst:           4,
	}
}

// DefaultPath returns $HOME/.config/envreport/config.yaml, or an empty string
// when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, configFileName)
}

// Load reads the YAML file at path over the defaults. A missing file at the
// default location is not an error; a missing file the caller named is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			slog.Debug("no config file found, using defaults", slog.String("path", path))
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	slog.Debug("loaded configuration", slog.String("path", path))
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(target *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*target = v
				return
			}
		}
	}

	str(&c.Name, "ENVREPORT_NAME")
	str(&c.Region, "ENVREPORT_REGION", "AWS_REGION", "AWS_DEFAULT_REGION")
	str(&c.Profile, "ENVREPORT_PROFILE", "AWS_PROFILE")
	str(&c.VolumePath, "ENVREPORT_VOLUME_PATH")
	str(&c.ListenAddress, "ENVREPORT_LISTEN_ADDRESS")

	if v, ok := lookup("ENVREPORT_FETCH_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ENVREPORT_FETCH_TIMEOUT %q: %w", v, err)
		}
		c.FetchTimeout = d
	}
	if v, ok := lookup("ENVREPORT_MAX_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ENVREPORT_MAX_ATTEMPTS %q: %w", v, err)
		}
		c.MaxAttempts = n
	}

	return nil
}

// Validate checks ranges. The region is checked separately by the collector
// so that a missing region is reported as an invalid region.
func (c *Config) Validate() error {
	var errs []error
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.DescribeConcurrency < 1 {
		errs = append(errs, fmt.Errorf("describe_concurrency must be at least 1, got %d", c.DescribeConcurrency))
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		errs = append(errs, errors.New("access_key_id and secret_access_key must be set together"))
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate_limit and rate_burst must be positive, got %v/%d", c.RateLimit, c.RateBurst))
	}
	return errors.Join(errs...)
}

// AWSConfig builds the base SDK configuration clients are derived from. The
// SDK retryer is capped at MaxAttempts, which defaults to a single attempt.
func (c *Config) AWSConfig(ctx context.Context) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMaxAttempts(c.MaxAttempts),
	}
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.Profile))
	}
	if c.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return cfg, nil
}

// CheckRegion reports whether the configured region is usable.
func (c *Config) CheckRegion() error {
	return pkg.ValidateRegion(c.Region)
}

// LogValue keeps credentials out of log output.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", c.Name),
		slog.String("region", c.Region),
		slog.String("profile", c.Profile),
		slog.Bool("staticCredentials", c.AccessKeyID != ""),
		slog.Duration("fetchTimeout", c.FetchTimeout),
		slog.Int("maxAttempts", c.MaxAttempts),
		slog.Int("describeConcurrency", c.DescribeConcurrency),
		slog.String("volumePath", c.VolumePath),
	)
}
