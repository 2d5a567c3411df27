package aws

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexalbu001/envreport/pkg"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// ErrMalformedResponse marks an upstream response that does not have the
// shape the fetcher relies on.
var ErrMalformedResponse = errors.New("malformed response")

var authErrorCodes = map[string]bool{
	"AccessDenied":                true,
	"AccessDeniedException":       true,
	"AuthFailure":                 true,
	"ExpiredToken":                true,
	"ExpiredTokenException":       true,
	"InvalidAccessKeyId":          true,
	"InvalidClientTokenId":        true,
	"SignatureDoesNotMatch":       true,
	"UnauthorizedOperation":       true,
	"UnrecognizedClientException": true,
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// Classify maps an error raised during a fetch onto a failure cause.
func Classify(err error) pkg.FailureCause {
	var initErr *pkg.ClientInitError
	switch {
	case errors.As(err, &initErr):
		return pkg.CauseClientInit
	case errors.Is(err, context.DeadlineExceeded):
		return pkg.CauseTimeout
	case errors.Is(err, context.Canceled):
		return pkg.CauseCanceled
	case errors.Is(err, ErrMalformedResponse):
		return pkg.CauseMalformedResponse
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if authErrorCodes[apiErr.ErrorCode()] {
			return pkg.CauseUnauthorized
		}
		return pkg.CauseService
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return pkg.CauseUnauthorized
		}
		return pkg.CauseService
	}

	return pkg.CauseTransport
}

// Failure converts err into a *pkg.CategoryFailure for category. An error that
// already is a category failure is returned unchanged.
func Failure(category pkg.Category, message string, err error) *pkg.CategoryFailure {
	var f *pkg.CategoryFailure
	if errors.As(err, &f) {
		return f
	}
	return pkg.NewCategoryFailure(category, Classify(err), message, err)
}
