package pkg

import "fmt"

// FailureCause classifies why a category could not be fetched.
type FailureCause string

const (
	CauseTransport         FailureCause = "transport"
	CauseUnauthorized      FailureCause = "unauthorized"
	CauseService           FailureCause = "service"
	CauseMalformedResponse FailureCause = "malformed_response"
	CauseTimeout           FailureCause = "timeout"
	CauseCanceled          FailureCause = "canceled"
	CauseClientInit        FailureCause = "client_init"
)

// CategoryFailure describes a failed category. It is stored in the report
// rather than returned to the caller of a collection.
type CategoryFailure struct {
	Category Category     `json:"category" yaml:"category"`
	Cause    FailureCause `json:"cause" yaml:"cause"`
	Message  string       `json:"message" yaml:"message"`
	Detail   string       `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err      error        `json:"-" yaml:"-"`
}

// NewCategoryFailure creates a failure for category, keeping err as the cause.
func NewCategoryFailure(category Category, cause FailureCause, message string, err error) *CategoryFailure {
	f := &CategoryFailure{
		Category: category,
		Cause:    cause,
		Message:  message,
		Err:      err,
	}
	if err != nil {
		f.Detail = err.Error()
	}
	return f
}

// Error implements the error interface.
func (f *CategoryFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", f.Category, f.Cause, f.Message, f.Err)
	}
	return fmt.Sprintf("[%s/%s] %s", f.Category, f.Cause, f.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (f *CategoryFailure) Unwrap() error {
	return f.Err
}

// InvalidRegionError is returned when a collection is requested for a region
// that is empty or not a well formed AWS region name.
type InvalidRegionError struct {
	Region string
	Reason string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("invalid region %q: %s", e.Region, e.Reason)
}

// ClientInitError is returned when a service client cannot be constructed.
type ClientInitError struct {
	Category Category
	Region   string
	Err      error
}

func (e *ClientInitError) Error() string {
	return fmt.Sprintf("unable to create %s client for region %q: %v", e.Category, e.Region, e.Err)
}

func (e *ClientInitError) Unwrap() error {
	return e.Err
}
