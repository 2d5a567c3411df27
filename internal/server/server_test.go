package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexalbu001/envreport/internal/volume"
	"github.com/alexalbu001/envreport/pkg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
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

func testReport(region string) *pkg.EnvironmentReport {
	return &pkg.EnvironmentReport{
		ID:          "r-1",
		Region:      region,
		CollectedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Identity:    pkg.OkOne(pkg.Identity{Name: "alice", CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}),
		Clusters:    pkg.Ok([]pkg.ClusterSummary{{Name: "prod", RegisteredContainerCount: 2, ActiveServiceCount: 1, RunningTaskCount: 3}}),
		Buckets: pkg.Failed[pkg.BucketSummary](pkg.NewCategoryFailure(
			pkg.CategoryBuckets, pkg.CauseUnauthorized, "unable to fetch buckets", errors.New("AccessDenied"))),
	}
}

func testConfig(t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.Name = "bob"
	cfg.Region = "us-east-1"
	cfg.VolumePath = t.TempDir()
	cfg.RateLimit = rate.Inf
	return cfg
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlePage(t *testing.T) {
	collector := new(MockCollector)
	collector.On("Collect", mock.Anything, "us-east-1").Return(testReport("us-east-1"), nil)
	cfg := testConfig(t)
	s := NewServer(cfg, collector)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "page that bob created")
	assert.Contains(t, body, "My IAM User: [<b>alice</b>]")
	assert.Contains(t, body, "My ECS clusters (1 in total)")
	assert.Contains(t, body, "SDK request for S3 buckets list failed!")
	assert.Contains(t, body, volume.MarkerFile)

	_, err := os.Stat(filepath.Join(cfg.VolumePath, volume.MarkerFile))
	assert.NoError(t, err)
	collector.AssertExpectations(t)
}

func TestHandlePageWithoutVolume(t *testing.T) {
	collector := new(MockCollector)
	collector.On("Collect", mock.Anything, "us-east-1").Return(testReport("us-east-1"), nil)
	cfg := testConfig(t)
	cfg.VolumePath = ""
	s := NewServer(cfg, collector)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Files in my volume (0 in total)")
}

func TestHandleReportRegionOverride(t *testing.T) {
	collector := new(MockCollector)
	collector.On("Collect", mock.Anything, "eu-west-1").Return(testReport("eu-west-1"), nil)
	s := NewServer(testConfig(t), collector)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/report?region=eu-west-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Report pkg.EnvironmentReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "eu-west-1", body.Report.Region)
	assert.Equal(t, "prod", body.Report.Clusters.Items[0].Name)
	require.NotNil(t, body.Report.Buckets.Failure)
	assert.Equal(t, pkg.CauseUnauthorized, body.Report.Buckets.Failure.Cause)
	collector.AssertExpectations(t)
}

func TestHandleReportYAML(t *testing.T) {
	collector := new(MockCollector)
	collector.On("Collect", mock.Anything, "us-east-1").Return(testReport("us-east-1"), nil)
	s := NewServer(testConfig(t), collector)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/report?format=yaml", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "region: us-east-1")
}

func TestHandleReportUnsupportedFormat(t *testing.T) {
	collector := new(MockCollector)
	s := NewServer(testConfig(t), collector)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/report?format=xml", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	collector.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything)
}

func TestHandleReportInvalidRegion(t *testing.T) {
	collector := new(MockCollector)
	collector.On("Collect", mock.Anything, "not a region").
		Return(nil, &pkg.InvalidRegionError{Region: "not a region", Reason: "contains whitespace"})
	s := NewServer(testConfig(t), collector)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/report?region=not+a+region", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, ErrCodeInvalidRegion, errResp.Code)
	assert.Equal(t, "not a region", errResp.Details["region"])
	assert.False(t, errResp.Retryable)
	assert.Equal(t, rec.Header().Get("X-Request-Id"), errResp.RequestID)
}

func TestHandleReportCollectorError(t *testing.T) {
	collector := new(MockCollector)
	collector.On("Collect", mock.Anything, "us-east-1").Return(nil, errors.New("boom"))
	s := NewServer(testConfig(t), collector)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/report", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimit(t *testing.T) {
	collector := new(MockCollector)
	collector.On("Collect", mock.Anything, "us-east-1").Return(testReport("us-east-1"), nil)
	cfg := testConfig(t)
	cfg.RateLimit = rate.Every(time.Hour)
	cfg.RateLimitBurst = 1
	s := NewServer(cfg, collector)

	first := serve(s, httptest.NewRequest(http.MethodGet, "/report", nil))
	second := serve(s, httptest.NewRequest(http.MethodGet, "/report", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	collector.AssertNumberOfCalls(t, "Collect", 1)

	// system endpoints are not limited
	assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestHealthAndReady(t *testing.T) {
	s := NewServer(testConfig(t), new(MockCollector))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(testConfig(t), new(MockCollector))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "envreport_rate_limit_rejects_total")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := NewServer(testConfig(t), new(MockCollector))

	assert.Equal(t, http.StatusNotFound, serve(s, httptest.NewRequest(http.MethodGet, "/nope", nil)).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(s, httptest.NewRequest(http.MethodPost, "/report", nil)).Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	s := NewServer(testConfig(t), new(MockCollector))

	var captured string
	handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		captured = requestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	_, err := uuid.Parse(captured)
	assert.NoError(t, err)
	assert.Equal(t, captured, rec.Header().Get("X-Request-Id"))

	provided := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	req.Header.Set("X-Request-Id", provided)
	handler(httptest.NewRecorder(), req)
	assert.Equal(t, provided, captured)

	req = httptest.NewRequest(http.MethodGet, "/report", nil)
	req.Header.Set("X-Request-Id", "not-a-uuid")
	handler(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not-a-uuid", captured)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	s := NewServer(testConfig(t), new(MockCollector))

	handler := s.panicRecoveryMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStartAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Address = "127.0.0.1:0"
	s := NewServer(cfg, new(MockCollector))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
