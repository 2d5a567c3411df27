package aws

import (
	"context"
	"log/slog"

	"github.com/alexalbu001/envreport/pkg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BucketFetcher lists the S3 buckets owned by the account.
type BucketFetcher struct{}

// Fetch issues a single ListBuckets call. A missing bucket collection is
// treated as an account without buckets.
func (BucketFetcher) Fetch(ctx context.Context, client BucketAPI) ([]pkg.BucketSummary, error) {
	output, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, Failure(pkg.CategoryBuckets, "unable to list S3 buckets", err)
	}
	if output == nil || output.Buckets == nil {
		return []pkg.BucketSummary{}, nil
	}

	buckets := make([]pkg.BucketSummary, 0, len(output.Buckets))
	for _, b := range output.Buckets {
		buckets = append(buckets, pkg.BucketSummary{
			Name:      aws.ToString(b.Name),
			CreatedAt: aws.ToTime(b.CreationDate),
		})
	}

	slog.Debug("S3 buckets listed", slog.Int("count", len(buckets)))
	return buckets, nil
}
