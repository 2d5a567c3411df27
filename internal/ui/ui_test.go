package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	awsclient "github.com/alexalbu001/envreport/internal/aws"
	"github.com/alexalbu001/envreport/pkg"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCollector is a mock of the report aggregator
type MockCollector struct {
	mock.Mock
}

func (m *MockCollector) Collect(ctx context.Context, region string) (*pkg.EnvironmentReport, error) {
	args := m.Called(ctx, region)
	report, _ := args.Get(0).(*pkg.EnvironmentReport)
	return report, args.Error(1)
}

func testReport() *pkg.EnvironmentReport {
	return &pkg.EnvironmentReport{
		ID:          "r-1",
		Region:      "eu-west-1",
		CollectedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Identity: pkg.OkOne(pkg.Identity{
			Name:      "alice",
			CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		}),
		Clusters: pkg.Ok([]pkg.ClusterSummary{
			{Name: "prod", Status: "ACTIVE", RegisteredContainerCount: 2, ActiveServiceCount: 1, RunningTaskCount: 3},
			{Name: "staging", Status: "INACTIVE"},
		}),
		Buckets: pkg.Ok([]pkg.BucketSummary{
			{Name: "logs-bucket", CreatedAt: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)},
		}),
	}
}

func TestNewReportUI(t *testing.T) {
	app := tview.NewApplication()
	ctx := context.Background()
	collector := new(MockCollector)
	report := testReport()

	reportUI := NewReportUI(app, ctx, collector, nil, report)

	assert.NotNil(t, reportUI)
	assert.Equal(t, app, reportUI.app)
	assert.Equal(t, ctx, reportUI.ctx)
	assert.Equal(t, collector, reportUI.collector)
	assert.Equal(t, "eu-west-1", reportUI.region)
	assert.Len(t, reportUI.entries, 3)
	assert.Equal(t, reportUI.entries, reportUI.filtered)
	assert.Equal(t, 3, reportUI.list.GetItemCount())
}

func TestUpdateList(t *testing.T) {
	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), nil, testReport())

	item1, _ := reportUI.list.GetItemText(0)
	assert.Contains(t, item1, "prod")
	assert.Contains(t, item1, "(Containers: 2, Services: 1, Tasks: 3)")
	assert.Contains(t, item1, "[green]ACTIVE[-]")

	item2, _ := reportUI.list.GetItemText(1)
	assert.Contains(t, item2, "staging")
	assert.Contains(t, item2, "[red]INACTIVE[-]")

	item3, _ := reportUI.list.GetItemText(2)
	assert.Contains(t, item3, "logs-bucket")
	assert.Contains(t, item3, "2021-06-01")

	header := reportUI.header.GetText(true)
	assert.Contains(t, header, "Region: eu-west-1")
	assert.Contains(t, header, "IAM user: alice (created 2020-01-01)")
	assert.Contains(t, header, "Total Clusters: 2")
	assert.Contains(t, header, "Total Buckets: 1")
}

func TestUpdateListFailureMarkers(t *testing.T) {
	report := testReport()
	report.Identity = pkg.Failed[pkg.Identity](pkg.NewCategoryFailure(
		pkg.CategoryIdentity, pkg.CauseUnauthorized, "unable to fetch identity", errors.New("AccessDenied")))
	report.Clusters = pkg.Failed[pkg.ClusterSummary](pkg.NewCategoryFailure(
		pkg.CategoryClusters, pkg.CauseTimeout, "clusters fetch exceeded 15s", context.DeadlineExceeded))

	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), nil, report)

	require.Equal(t, 2, reportUI.list.GetItemCount())
	item1, _ := reportUI.list.GetItemText(0)
	assert.Equal(t, "[red]clusters unavailable (timeout): clusters fetch exceeded 15s[-]", item1)
	item2, _ := reportUI.list.GetItemText(1)
	assert.Contains(t, item2, "logs-bucket")

	header := reportUI.header.GetText(true)
	assert.Contains(t, header, "IAM user: unavailable (unauthorized)")
	assert.Contains(t, header, "Total Clusters: 0")
}

func TestFilterEntries(t *testing.T) {
	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), nil, testReport())

	reportUI.filterEntries("prod")
	assert.Equal(t, 1, len(reportUI.filtered))

	// case insensitive
	reportUI.filterEntries("LOGS")
	assert.Equal(t, 1, len(reportUI.filtered))
	assert.Equal(t, entryBucket, reportUI.filtered[0].kind)

	reportUI.filterEntries("nonexistent")
	assert.Equal(t, 0, len(reportUI.filtered))
	assert.Equal(t, 0, reportUI.list.GetItemCount())

	reportUI.filterEntries("")
	assert.Equal(t, 3, len(reportUI.filtered))
}

func TestSetReportKeepsSearch(t *testing.T) {
	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), nil, testReport())
	reportUI.searchInput.SetText("staging")

	next := testReport()
	next.Clusters = pkg.Ok([]pkg.ClusterSummary{{Name: "staging", Status: "ACTIVE"}, {Name: "staging-2", Status: "ACTIVE"}})
	reportUI.setReport(next)

	assert.Equal(t, 2, len(reportUI.filtered))
	assert.Equal(t, next, reportUI.report)
}

func TestSetupSearchInput(t *testing.T) {
	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), nil, testReport())
	reportUI.setupSearchInput()

	// Esc clears the query
	reportUI.searchInput.SetText("prod")
	reportUI.filterEntries("prod")
	assert.Equal(t, 1, len(reportUI.filtered))
	event := tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone)
	capturedEvent := reportUI.searchInput.GetInputCapture()(event)
	assert.Nil(t, capturedEvent)
	assert.Equal(t, "", reportUI.searchInput.GetText())
	assert.Equal(t, 3, len(reportUI.filtered))

	event = tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
	assert.Nil(t, reportUI.searchInput.GetInputCapture()(event))

	event = tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	assert.Nil(t, reportUI.searchInput.GetInputCapture()(event))

	// other keys pass through
	event = tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone)
	assert.Equal(t, event, reportUI.searchInput.GetInputCapture()(event))
}

func TestSetupListInputCapture(t *testing.T) {
	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), nil, testReport())
	reportUI.setupListInputCapture()
	capture := reportUI.list.GetInputCapture()

	event := tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModNone)
	assert.Nil(t, capture(event))

	// m on a bucket does nothing
	reportUI.list.SetCurrentItem(2)
	event = tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone)
	assert.Nil(t, capture(event))

	// Up at the top moves to search
	reportUI.list.SetCurrentItem(0)
	event = tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	assert.Nil(t, capture(event))

	reportUI.list.SetCurrentItem(1)
	event = tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	assert.Equal(t, event, capture(event))

	event = tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)
	assert.Equal(t, event, capture(event))
}

func TestSelected(t *testing.T) {
	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), nil, testReport())

	reportUI.list.SetCurrentItem(1)
	e, ok := reportUI.selected()
	require.True(t, ok)
	assert.Equal(t, entryCluster, e.kind)
	assert.Equal(t, "staging", e.cluster.Name)

	reportUI.filterEntries("nonexistent")
	_, ok = reportUI.selected()
	assert.False(t, ok)
}

func TestMetricsMessage(t *testing.T) {
	var requested string
	metrics := func(ctx context.Context, clusterName string) (*awsclient.ClusterMetrics, error) {
		requested = clusterName
		return &awsclient.ClusterMetrics{CPUUtilization: 42.5, MemoryUtilization: 12.25}, nil
	}
	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), metrics, testReport())

	msg := reportUI.metricsMessage(pkg.ClusterSummary{Name: "prod"})

	assert.Equal(t, "prod", requested)
	assert.Contains(t, msg, "CPU utilization: 42.50%")
	assert.Contains(t, msg, "Memory utilization: 12.25%")
}

func TestMetricsMessageError(t *testing.T) {
	metrics := func(ctx context.Context, clusterName string) (*awsclient.ClusterMetrics, error) {
		return nil, errors.New("throttled")
	}
	reportUI := NewReportUI(tview.NewApplication(), context.Background(), new(MockCollector), metrics, testReport())

	msg := reportUI.metricsMessage(pkg.ClusterSummary{Name: "prod"})
	assert.Equal(t, "Failed to fetch metrics for prod: throttled", msg)

	reportUI.metrics = nil
	assert.Equal(t, "Cluster metrics are not available.", reportUI.metricsMessage(pkg.ClusterSummary{Name: "prod"}))
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	collector := new(MockCollector)
	next := testReport()
	next.ID = "r-2"
	collector.On("Collect", ctx, "eu-west-1").Return(next, nil).Once()
	collector.On("Collect", ctx, "eu-west-1").Return(nil, &pkg.InvalidRegionError{Region: "eu-west-1", Reason: "rejected"}).Once()

	reportUI := NewReportUI(tview.NewApplication(), ctx, collector, nil, testReport())

	report, err := reportUI.collect()
	require.NoError(t, err)
	assert.Equal(t, "r-2", report.ID)

	_, err = reportUI.collect()
	var invalid *pkg.InvalidRegionError
	assert.ErrorAs(t, err, &invalid)
	collector.AssertExpectations(t)
}
