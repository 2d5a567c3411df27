package aws

import (
	"context"
	"log/slog"

	"github.com/alexalbu001/envreport/pkg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"golang.org/x/sync/errgroup"
)

const defaultDescribeConcurrency = 4

// ClusterFetcher lists the ECS clusters in a region and describes each one.
type ClusterFetcher struct {
	// Concurrency bounds the number of DescribeClusters calls in flight.
	// Zero means the default of 4.
	Concurrency int
}

// Fetch lists cluster ARNs, then describes every ARN in parallel. Summaries
// are returned in the order ListClusters returned the ARNs. Any failed or
// ambiguous describe fails the whole category.
func (f ClusterFetcher) Fetch(ctx context.Context, client ClusterAPI) ([]pkg.ClusterSummary, error) {
	output, err := client.ListClusters(ctx, &ecs.ListClustersInput{})
	if err != nil {
		return nil, Failure(pkg.CategoryClusters, "unable to list ECS clusters", err)
	}

	var clusterArns []string
	if output != nil {
		clusterArns = output.ClusterArns
	}
	slog.Debug("ECS clusters listed", slog.Int("count", len(clusterArns)))
	if len(clusterArns) == 0 {
		return []pkg.ClusterSummary{}, nil
	}

	summaries := make([]pkg.ClusterSummary, len(clusterArns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency())

	for i, clusterArn := range clusterArns {
		g.Go(func() error {
			summary, err := describeCluster(gctx, client, clusterArn)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Failure(pkg.CategoryClusters, "unable to describe ECS clusters", err)
	}

	return summaries, nil
}

func (f ClusterFetcher) concurrency() int {
	if f.Concurrency <= 0 {
		return defaultDescribeConcurrency
	}
	return f.Concurrency
}

// describeCluster describes a single cluster and insists on exactly one matching record.
func describeCluster(ctx context.Context, client ClusterAPI, clusterArn string) (pkg.ClusterSummary, error) {
	output, err := client.DescribeClusters(ctx, &ecs.DescribeClustersInput{
		Clusters: []string{clusterArn},
	})
	if err != nil {
		return pkg.ClusterSummary{}, Failure(pkg.CategoryClusters, "unable to describe ECS cluster "+clusterArn, err)
	}
	if output == nil || len(output.Clusters) != 1 {
		return pkg.ClusterSummary{}, Failure(pkg.CategoryClusters, "unexpected describe response for ECS cluster "+clusterArn,
			malformed("expected exactly one cluster, got %d%s", clusterCount(output), failureReason(output)))
	}

	cluster := output.Clusters[0]
	if !matchesCluster(cluster, clusterArn) {
		return pkg.ClusterSummary{}, Failure(pkg.CategoryClusters, "unexpected describe response for ECS cluster "+clusterArn,
			malformed("described cluster %q does not match", aws.ToString(cluster.ClusterArn)))
	}

	summary := pkg.ClusterSummary{
		Name:                     aws.ToString(cluster.ClusterName),
		ARN:                      aws.ToString(cluster.ClusterArn),
		Status:                   aws.ToString(cluster.Status),
		RegisteredContainerCount: int64(cluster.RegisteredContainerInstancesCount),
		ActiveServiceCount:       int64(cluster.ActiveServicesCount),
		RunningTaskCount:         int64(cluster.RunningTasksCount),
		PendingTaskCount:         int64(cluster.PendingTasksCount),
	}

	slog.Debug("ECS cluster described",
		slog.String("name", summary.Name),
		slog.String("arn", summary.ARN),
		slog.Int64("containers", summary.RegisteredContainerCount),
		slog.Int64("services", summary.ActiveServiceCount),
		slog.Int64("tasks", summary.RunningTaskCount))

	return summary, nil
}

// matchesCluster accepts a record whose ARN or name equals the requested identifier.
func matchesCluster(cluster types.Cluster, identifier string) bool {
	return aws.ToString(cluster.ClusterArn) == identifier || aws.ToString(cluster.ClusterName) == identifier
}

func clusterCount(output *ecs.DescribeClustersOutput) int {
	if output == nil {
		return 0
	}
	return len(output.Clusters)
}

func failureReason(output *ecs.DescribeClustersOutput) string {
	if output == nil || len(output.Failures) == 0 {
		return ""
	}
	return " (" + aws.ToString(output.Failures[0].Reason) + ")"
}
