package aws

import (
	"context"
	"log/slog"

	"github.com/alexalbu001/envreport/pkg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
)

// IdentityFetcher retrieves the IAM user the SDK credentials belong to.
type IdentityFetcher struct{}

// Fetch issues a single GetUser call. The returned slice holds exactly one
// identity on success.
func (IdentityFetcher) Fetch(ctx context.Context, client IdentityAPI) ([]pkg.Identity, error) {
	output, err := client.GetUser(ctx, &iam.GetUserInput{})
	if err != nil {
		return nil, Failure(pkg.CategoryIdentity, "unable to retrieve IAM user", err)
	}
	if output == nil || output.User == nil {
		return nil, Failure(pkg.CategoryIdentity, "unable to retrieve IAM user", malformed("GetUser returned no user"))
	}

	user := output.User
	identity := pkg.Identity{
		Name:      aws.ToString(user.UserName),
		ARN:       aws.ToString(user.Arn),
		UserID:    aws.ToString(user.UserId),
		CreatedAt: aws.ToTime(user.CreateDate),
	}

	slog.Debug("IAM user retrieved", slog.String("name", identity.Name))
	return []pkg.Identity{identity}, nil
}
