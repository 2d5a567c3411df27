// Package report assembles an EnvironmentReport from the identity, cluster and
// bucket fetchers.
//
// # Failure isolation
//
// Collect runs the three category fetches concurrently. Each fetch acquires its
// own client from the ClientFactory, runs under its own timeout and releases
// the client when it returns. A fetch that fails, times out or is canceled
// produces a failed slot in the report; it never aborts the collection or
// affects the other slots.
//
// The only error Collect returns is *pkg.InvalidRegionError, which is raised
// before any client is created.
//
// # Usage
//
//	cfg, err := conf.AWSConfig(ctx)
//	if err != nil {
//	    return err
//	}
//	agg := report.NewAggregator(aws.NewSDKClientFactory(cfg),
//	    report.WithFetchTimeout(10*time.Second),
//	)
//	rep, err := agg.Collect(ctx, "eu-west-1")
//	if err != nil {
//	    return err // invalid region
//	}
//	for _, f := range rep.Failures() {
//	    slog.Warn("category failed", "category", f.Category, "cause", f.Cause)
//	}
//
// # Metrics
//
// Collection and per-category durations and outcomes are exported through the
// default Prometheus registry under the envreport_ prefix.
package report
