package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CallerIdentityAPI is the subset of the STS API used by whoami.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CallerIdentity is the account and principal the credentials resolve to.
type CallerIdentity struct {
	Account string `json:"account" yaml:"account"`
	ARN     string `json:"arn" yaml:"arn"`
	UserID  string `json:"userId" yaml:"userId"`
}

// GetCallerIdentity resolves the principal behind the configured credentials.
func GetCallerIdentity(ctx context.Context, client CallerIdentityAPI) (*CallerIdentity, error) {
	output, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}

	return &CallerIdentity{
		Account: aws.ToString(output.Account),
		ARN:     aws.ToString(output.Arn),
		UserID:  aws.ToString(output.UserId),
	}, nil
}
