package server

import (
	"time"

	"golang.org/x/time/rate"
)

// Config holds server configuration
type Config struct {
	// Name is shown in the page greeting.
	Name string

	// Region is used when a request does not pass ?region=.
	Region string

	// VolumePath is listed on the page. Empty disables the listing.
	VolumePath string
	// TouchVolume touches the marker file before every listing.
	TouchVolume bool

	Address string

	// Rate limiting configuration
	RateLimit      rate.Limit // requests per second
	RateLimitBurst int        // burst size

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Name:            "envreport",
		VolumePath:      "/datafiles",
		TouchVolume:     true,
		Address:         ":8080",
		RateLimit:       2,
		RateLimitBurst:  4,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}
