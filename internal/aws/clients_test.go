package aws

import (
	"testing"

	"github.com/alexalbu001/envreport/pkg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() aws.Config {
	return aws.Config{
		Region:      "eu-west-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
}

func TestSDKClientFactoryRegions(t *testing.T) {
	factory := NewSDKClientFactory(testConfig())

	cfg, release, err := factory.scoped(pkg.CategoryClusters, "us-east-1")
	require.NoError(t, err)
	defer release()
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.NotNil(t, cfg.HTTPClient)

	identity, releaseIdentity, err := factory.IdentityClient("us-east-1")
	require.NoError(t, err)
	assert.NotNil(t, identity)
	releaseIdentity()
	releaseIdentity()
}

func TestSDKClientFactoryFreshTransportPerClient(t *testing.T) {
	factory := NewSDKClientFactory(testConfig())

	first, releaseFirst, err := factory.scoped(pkg.CategoryBuckets, "us-east-1")
	require.NoError(t, err)
	defer releaseFirst()
	second, releaseSecond, err := factory.scoped(pkg.CategoryBuckets, "us-east-1")
	require.NoError(t, err)
	defer releaseSecond()

	assert.NotSame(t, first.HTTPClient, second.HTTPClient)
}

func TestSDKClientFactoryClientInitErrors(t *testing.T) {
	t.Run("malformed region", func(t *testing.T) {
		factory := NewSDKClientFactory(testConfig())

		client, release, err := factory.ClusterClient("not a region")

		assert.Nil(t, client)
		assert.Nil(t, release)
		var initErr *pkg.ClientInitError
		require.ErrorAs(t, err, &initErr)
		assert.Equal(t, pkg.CategoryClusters, initErr.Category)
	})

	t.Run("missing credentials", func(t *testing.T) {
		factory := NewSDKClientFactory(aws.Config{Region: "us-east-1"})

		client, _, err := factory.BucketClient("us-east-1")

		assert.Nil(t, client)
		var initErr *pkg.ClientInitError
		require.ErrorAs(t, err, &initErr)
		assert.ErrorIs(t, err, errNoCredentials)
	})
}
