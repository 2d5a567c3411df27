package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	awsclient "github.com/alexalbu001/envreport/internal/aws"
	"github.com/alexalbu001/envreport/pkg"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds a single category fetch.
const DefaultFetchTimeout = 15 * time.Second

// Aggregator fans out to every category fetcher and assembles an
// EnvironmentReport from whatever each one returns.
type Aggregator struct {
	factory      awsclient.ClientFactory
	identity     awsclient.IdentityFetcher
	clusters     awsclient.ClusterFetcher
	buckets      awsclient.BucketFetcher
	fetchTimeout time.Duration
	now          func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithFetchTimeout sets the upper bound for each category fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.fetchTimeout = d
		}
	}
}

// WithDescribeConcurrency bounds the parallel describe calls of the cluster fetch.
func WithDescribeConcurrency(n int) Option {
	return func(a *Aggregator) {
		a.clusters.Concurrency = n
	}
}

// WithClock overrides the clock used to stamp reports.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator returns an Aggregator that obtains its clients from factory.
func NewAggregator(factory awsclient.ClientFactory, opts ...Option) *Aggregator {
	a := &Aggregator{
		factory:      factory,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collect fetches identity, clusters and buckets concurrently and returns the
// combined report. The only error it returns is *pkg.InvalidRegionError, raised
// before anything is fetched; every other failure ends up in the failed
// category's slot.
func (a *Aggregator) Collect(ctx context.Context, region string) (*pkg.EnvironmentReport, error) {
	if err := pkg.ValidateRegion(region); err != nil {
		collectTotal.WithLabelValues("invalid_region").Inc()
		return nil, err
	}

	start := time.Now()
	report := &pkg.EnvironmentReport{
		ID:          uuid.NewString(),
		Region:      region,
		CollectedAt: a.now().UTC(),
	}

	slog.Debug("collecting environment report", slog.String("id", report.ID), slog.String("region", region))

	// Each goroutine writes only its own slot and never returns an error, so
	// one category can not cancel another.
	var g errgroup.Group

	g.Go(func() error {
		report.Identity = fetchCategory(ctx, a, pkg.CategoryIdentity, region, a.factory.IdentityClient, a.identity.Fetch)
		return nil
	})

	g.Go(func() error {
		report.Clusters = fetchCategory(ctx, a, pkg.CategoryClusters, region, a.factory.ClusterClient, a.clusters.Fetch)
		return nil
	})

	g.Go(func() error {
		report.Buckets = fetchCategory(ctx, a, pkg.CategoryBuckets, region, a.factory.BucketClient, a.buckets.Fetch)
		return nil
	})

	_ = g.Wait()

	status := "complete"
	if !report.Complete() {
		status = "partial"
	}
	collectDuration.Observe(time.Since(start).Seconds())
	collectTotal.WithLabelValues(status).Inc()

	slog.Info("environment report collected",
		slog.String("id", report.ID),
		slog.String("region", region),
		slog.String("status", status),
		slog.Int("clusters", report.Clusters.Len()),
		slog.Int("buckets", report.Buckets.Len()),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

type fetchResult[T any] struct {
	items []T
	err   error
}

// fetchCategory acquires a client, runs fetch under the category timeout and
// releases the client. A fetch that outlives its deadline is reported as a
// timeout even if it ignores its context; its client is released once it
// returns.
func fetchCategory[C, T any](
	ctx context.Context,
	a *Aggregator,
	category pkg.Category,
	region string,
	acquire func(string) (C, awsclient.Release, error),
	fetch func(context.Context, C) ([]T, error),
) pkg.CategoryResult[T] {
	start := time.Now()
	defer func() {
		categoryDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
	}()

	cctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	done := make(chan fetchResult[T], 1)
	go func() {
		client, release, err := acquire(region)
		if err != nil {
			done <- fetchResult[T]{err: awsclient.Failure(category, fmt.Sprintf("unable to create %s client", category), err)}
			return
		}
		defer release()

		items, err := fetch(cctx, client)
		done <- fetchResult[T]{items: items, err: err}
	}()

	var res fetchResult[T]
	select {
	case res = <-done:
	case <-cctx.Done():
		res.err = cctx.Err()
	}

	if res.err == nil {
		categoryTotal.WithLabelValues(string(category), "ok").Inc()
		return pkg.Ok(res.items)
	}

	failure := awsclient.Failure(category, fmt.Sprintf("unable to fetch %s", category), res.err)
	if ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) && failure.Cause != pkg.CauseTimeout {
		failure = pkg.NewCategoryFailure(category, pkg.CauseTimeout,
			fmt.Sprintf("%s fetch exceeded %s", category, a.fetchTimeout), res.err)
	}

	categoryTotal.WithLabelValues(string(category), string(failure.Cause)).Inc()
	slog.Warn("category fetch failed",
		slog.String("category", string(category)),
		slog.String("cause", string(failure.Cause)),
		slog.String("error", failure.Error()))

	return pkg.Failed[T](failure)
}
