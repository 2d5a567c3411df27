package aws

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexalbu001/envreport/pkg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// IdentityAPI is the subset of the IAM API used to resolve the calling user.
type IdentityAPI interface {
	GetUser(ctx context.Context, params *iam.GetUserInput, optFns ...func(*iam.Options)) (*iam.GetUserOutput, error)
}

// ClusterAPI is the subset of the ECS API used to enumerate clusters.
type ClusterAPI interface {
	ListClusters(ctx context.Context, params *ecs.ListClustersInput, optFns ...func(*ecs.Options)) (*ecs.ListClustersOutput, error)
	DescribeClusters(ctx context.Context, params *ecs.DescribeClustersInput, optFns ...func(*ecs.Options)) (*ecs.DescribeClustersOutput, error)
}

// BucketAPI is the subset of the S3 API used to list buckets.
type BucketAPI interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// Release frees whatever a client acquired. It is safe to call more than once.
type Release func()

// ClientFactory creates a fresh client per fetch. Callers must invoke the
// returned Release once the fetch is done, whether it succeeded or not.
type ClientFactory interface {
	// IdentityClient ignores region: IAM clients are always bound to pkg.GlobalRegion.
	IdentityClient(region string) (IdentityAPI, Release, error)
	ClusterClient(region string) (ClusterAPI, Release, error)
	BucketClient(region string) (BucketAPI, Release, error)
}

var errNoCredentials = errors.New("no credentials provider configured")

// SDKClientFactory builds AWS SDK clients from a base configuration. Every
// client gets its own HTTP transport so releasing it never affects another
// fetch.
type SDKClientFactory struct {
	cfg aws.Config
}

// NewSDKClientFactory returns a factory that derives clients from cfg.
func NewSDKClientFactory(cfg aws.Config) *SDKClientFactory {
	return &SDKClientFactory{cfg: cfg}
}

// IdentityClient returns an IAM client bound to the global region.
func (f *SDKClientFactory) IdentityClient(_ string) (IdentityAPI, Release, error) {
	cfg, release, err := f.scoped(pkg.CategoryIdentity, pkg.GlobalRegion)
	if err != nil {
		return nil, nil, err
	}
	return iam.NewFromConfig(cfg), release, nil
}

// ClusterClient returns an ECS client bound to region.
func (f *SDKClientFactory) ClusterClient(region string) (ClusterAPI, Release, error) {
	cfg, release, err := f.scoped(pkg.CategoryClusters, region)
	if err != nil {
		return nil, nil, err
	}
	return ecs.NewFromConfig(cfg), release, nil
}

// BucketClient returns an S3 client bound to region.
func (f *SDKClientFactory) BucketClient(region string) (BucketAPI, Release, error) {
	cfg, release, err := f.scoped(pkg.CategoryBuckets, region)
	if err != nil {
		return nil, nil, err
	}
	return s3.NewFromConfig(cfg), release, nil
}

// MetricsClient returns a CloudWatch client bound to region.
func (f *SDKClientFactory) MetricsClient(region string) (MetricsAPI, Release, error) {
	cfg, release, err := f.scoped(pkg.CategoryClusters, region)
	if err != nil {
		return nil, nil, err
	}
	return cloudwatch.NewFromConfig(cfg), release, nil
}

// CallerClient returns an STS client bound to region.
func (f *SDKClientFactory) CallerClient(region string) (CallerIdentityAPI, Release, error) {
	cfg, release, err := f.scoped(pkg.CategoryIdentity, region)
	if err != nil {
		return nil, nil, err
	}
	return sts.NewFromConfig(cfg), release, nil
}

func (f *SDKClientFactory) scoped(category pkg.Category, region string) (aws.Config, Release, error) {
	if region != pkg.GlobalRegion {
		if err := pkg.ValidateRegion(region); err != nil {
			return aws.Config{}, nil, &pkg.ClientInitError{Category: category, Region: region, Err: err}
		}
	}
	if f.cfg.Credentials == nil {
		return aws.Config{}, nil, &pkg.ClientInitError{Category: category, Region: region, Err: errNoCredentials}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	cfg := f.cfg.Copy()
	cfg.Region = region
	cfg.HTTPClient = &http.Client{Transport: transport}

	return cfg, transport.CloseIdleConnections, nil
}
