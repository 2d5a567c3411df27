// File: internal/aws/metrics.go

package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsAPI is the subset of the CloudWatch API used for cluster utilization.
type MetricsAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

type ClusterMetrics struct {
	CPUUtilization    float64
	MemoryUtilization float64
}

const metricsWindow = 5 * time.Minute

// GetClusterMetrics returns the average CPU and memory utilization of a
// cluster over the five minutes before now.
func GetClusterMetrics(ctx context.Context, cwClient MetricsAPI, clusterName string, now time.Time) (*ClusterMetrics, error) {
	startTime := now.Add(-metricsWindow)

	cpuUtilization, err := getMetric(ctx, cwClient, "CPUUtilization", clusterName, startTime, now)
	if err != nil {
		return nil, fmt.Errorf("error fetching CPUUtilization: %w", err)
	}

	memoryUtilization, err := getMetric(ctx, cwClient, "MemoryUtilization", clusterName, startTime, now)
	if err != nil {
		return nil, fmt.Errorf("error fetching MemoryUtilization: %w", err)
	}

	return &ClusterMetrics{
		CPUUtilization:    cpuUtilization,
		MemoryUtilization: memoryUtilization,
	}, nil
}

func getMetric(ctx context.Context, cwClient MetricsAPI, metricName, clusterName string, startTime, endTime time.Time) (float64, error) {
	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/ECS"),
		MetricName: aws.String(metricName),
		StartTime:  aws.Time(startTime),
		EndTime:    aws.Time(endTime),
		Period:     aws.Int32(int32(metricsWindow.Seconds())),
		Statistics: []types.Statistic{types.StatisticAverage},
		Dimensions: []types.Dimension{
			{
				Name:  aws.String("ClusterName"),
				Value: aws.String(clusterName),
			},
		},
	}

	output, err := cwClient.GetMetricStatistics(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to get metric %s: %w", metricName, err)
	}

	if len(output.Datapoints) == 0 {
		return 0, nil
	}

	// most recent datapoint wins
	sort.Slice(output.Datapoints, func(i, j int) bool {
		return aws.ToTime(output.Datapoints[i].Timestamp).After(aws.ToTime(output.Datapoints[j].Timestamp))
	})

	return aws.ToFloat64(output.Datapoints[0].Average), nil
}
