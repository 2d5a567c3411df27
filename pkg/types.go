package pkg

import "time"

// Category identifies one of the independently fetched resource types in a report.
type Category string

const (
	CategoryIdentity Category = "identity"
	CategoryClusters Category = "clusters"
	CategoryBuckets  Category = "buckets"
)

// Categories returns every category in report order.
func Categories() []Category {
	return []Category{CategoryIdentity, CategoryClusters, CategoryBuckets}
}

// Identity holds details about the IAM principal the SDK is calling as
type Identity struct {
	Name      string    `json:"name" yaml:"name"`
	ARN       string    `json:"arn" yaml:"arn"`
	UserID    string    `json:"userId,omitempty" yaml:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// ClusterSummary contains the counters reported by ECS for a single cluster
type ClusterSummary struct {
	Name                     string `json:"name" yaml:"name"`
	ARN                      string `json:"arn" yaml:"arn"`
	Status                   string `json:"status,omitempty" yaml:"status,omitempty"`
	RegisteredContainerCount int64  `json:"registeredContainerCount" yaml:"registeredContainerCount"`
	ActiveServiceCount       int64  `json:"activeServiceCount" yaml:"activeServiceCount"`
	RunningTaskCount         int64  `json:"runningTaskCount" yaml:"runningTaskCount"`
	PendingTaskCount         int64  `json:"pendingTaskCount" yaml:"pendingTaskCount"`
}

// BucketSummary holds the name and creation date of an S3 bucket
type BucketSummary struct {
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// CategoryResult is the outcome of fetching one category: either the fetched
// items or the failure that prevented them, never both.
type CategoryResult[T any] struct {
	Items   []T              `json:"items" yaml:"items"`
	Failure *CategoryFailure `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Ok returns a successful result. A nil slice is normalized to an empty one.
func Ok[T any](items []T) CategoryResult[T] {
	if items == nil {
		items = []T{}
	}
	return CategoryResult[T]{Items: items}
}

// OkOne returns a successful single-item result.
func OkOne[T any](item T) CategoryResult[T] {
	return CategoryResult[T]{Items: []T{item}}
}

// Failed returns a failed result carrying f.
func Failed[T any](f *CategoryFailure) CategoryResult[T] {
	return CategoryResult[T]{Failure: f}
}

// OK reports whether the category was fetched successfully.
func (r CategoryResult[T]) OK() bool {
	return r.Failure == nil
}

// One returns the first item of a successful result.
func (r CategoryResult[T]) One() (T, bool) {
	var zero T
	if r.Failure != nil || len(r.Items) == 0 {
		return zero, false
	}
	return r.Items[0], true
}

// Len returns the number of items, zero for a failed result.
func (r CategoryResult[T]) Len() int {
	if r.Failure != nil {
		return 0
	}
	return len(r.Items)
}

// EnvironmentReport is the aggregate produced by one collection. Every slot is
// populated, either with data or with the failure for that category.
type EnvironmentReport struct {
	ID          string    `json:"id" yaml:"id"`
	Region      string    `json:"region" yaml:"region"`
	CollectedAt time.Time `json:"collectedAt" yaml:"collectedAt"`

	Identity CategoryResult[Identity]       `json:"identity" yaml:"identity"`
	Clusters CategoryResult[ClusterSummary] `json:"clusters" yaml:"clusters"`
	Buckets  CategoryResult[BucketSummary]  `json:"buckets" yaml:"buckets"`
}

// Failures returns the failures in the report in category order.
func (r *EnvironmentReport) Failures() []*CategoryFailure {
	var out []*CategoryFailure
	for _, f := range []*CategoryFailure{r.Identity.Failure, r.Clusters.Failure, r.Buckets.Failure} {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Complete reports whether every category was fetched successfully.
func (r *EnvironmentReport) Complete() bool {
	return len(r.Failures()) == 0
}
