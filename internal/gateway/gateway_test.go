package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jgoulah/gridserve/internal/consumptionpb"
	"github.com/jgoulah/gridserve/internal/service"
	"github.com/jgoulah/gridserve/internal/timeseries"
	"github.com/gorilla/mux"
	"github.com/jgoulah/gridserve/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sampleService() consumptionpb.ConsumptionServiceServer {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := timeseries.New([]models.Reading{
		{Timestamp: day, EnergyUsage: 12.5},
		{Timestamp: day.Add(time.Hour), EnergyUsage: 11.2},
		{Timestamp: day.Add(2 * time.Hour), EnergyUsage: 10.8},
	})
	return service.New(store, quietLogger())
}

// slowService never answers before the caller gives up
type slowService struct {
	consumptionpb.UnimplementedConsumptionServiceServer
}

func (slowService) GetConsumptionData(ctx context.Context, _ *consumptionpb.ConsumptionRequest) (*consumptionpb.ConsumptionResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return &consumptionpb.ConsumptionResponse{}, nil
	}
}

// recordingService remembers the request ids it was called with
type recordingService struct {
	consumptionpb.UnimplementedConsumptionServiceServer

	mu  sync.Mutex
	ids []string
}

func (s *recordingService) GetConsumptionData(ctx context.Context, _ *consumptionpb.ConsumptionRequest) (*consumptionpb.ConsumptionResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	s.mu.Lock()
	s.ids = append(s.ids, md.Get(consumptionpb.RequestIDKey)...)
	s.mu.Unlock()
	return &consumptionpb.ConsumptionResponse{}, nil
}

// startBackend serves svc over an in-memory listener and dials it
func startBackend(t *testing.T, svc consumptionpb.ConsumptionServiceServer) *Backend {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	log := quietLogger()
	srv := service.NewServer(svc, log, service.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, lis)
	}()

	b, err := Dial(context.Background(), "bufnet", log,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		b.Close()
		cancel()
		require.NoError(t, <-done)
	})
	return b
}

// downBackend dials an address nothing listens on
func downBackend(t *testing.T) *Backend {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	b, err := Dial(context.Background(), addr, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func testOptions() Options {
	return Options{
		RequestTimeout: 2 * time.Second,
		HealthTimeout:  time.Second,
	}
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestConsumption(t *testing.T) {
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	tests := []struct {
		name   string
		target string
		want   []Record
	}{
		{
			name:   "half hour window",
			target: "/consumption?start_datetime=2024-01-01T00:30:00&end_datetime=2024-01-01T01:30:00",
			want:   []Record{{Datetime: "2024-01-01T01:00:00Z", EnergyUsage: 11.2}},
		},
		{
			name:   "unbounded on api path",
			target: "/api/consumption",
			want: []Record{
				{Datetime: "2024-01-01T00:00:00Z", EnergyUsage: 12.5},
				{Datetime: "2024-01-01T01:00:00Z", EnergyUsage: 11.2},
				{Datetime: "2024-01-01T02:00:00Z", EnergyUsage: 10.8},
			},
		},
		{
			name:   "empty params are unbounded",
			target: "/consumption?start_datetime=&end_datetime=",
			want: []Record{
				{Datetime: "2024-01-01T00:00:00Z", EnergyUsage: 12.5},
				{Datetime: "2024-01-01T01:00:00Z", EnergyUsage: 11.2},
				{Datetime: "2024-01-01T02:00:00Z", EnergyUsage: 10.8},
			},
		},
		{
			name:   "inverted range",
			target: "/consumption?start_datetime=2024-01-01T02:00:00&end_datetime=2024-01-01T00:00:00",
			want:   []Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.NotEmpty(t, rec.Header().Get(RequestIDHeader))

			body := decode[ConsumptionResponse](t, rec)
			require.Equal(t, tt.want, body.Records)
			require.Equal(t, len(tt.want), body.TotalCount)
		})
	}
}

func TestConsumptionConcurrent(t *testing.T) {
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		target, want := "/consumption?start_datetime=2024-01-01T00:30:00&end_datetime=2024-01-01T01:30:00", 1
		if i%2 == 1 {
			target, want = "/api/consumption", 3
		}
		g.Go(func() error {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Code != http.StatusOK {
				return fmt.Errorf("%s: status %d: %s", target, rec.Code, rec.Body.String())
			}
			var body ConsumptionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}
			if body.TotalCount != want || len(body.Records) != want {
				return fmt.Errorf("%s: got %d records, want %d", target, body.TotalCount, want)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestConsumptionEmptyIsArray(t *testing.T) {
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	rec := get(t, h, "/consumption?start_datetime=2030-01-01T00:00:00")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"records":[],"total_count":0}`, rec.Body.String())
}

func TestConsumptionInvalidArgument(t *testing.T) {
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	tests := []struct {
		target string
		field  string
	}{
		{"/consumption?start_datetime=not-a-date", "start_datetime"},
		{"/api/consumption?end_datetime=yesterday", "end_datetime"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode[errorResponse](t, rec)
			require.Equal(t, tt.field, body.Field)
			require.Contains(t, body.Error, tt.field)
		})
	}
}

func TestBackendDown(t *testing.T) {
	h := NewHandler(downBackend(t), quietLogger(), testOptions())

	rec := get(t, h, "/consumption")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotEmpty(t, decode[errorResponse](t, rec).Error)

	rec = get(t, h, "/health")
	require.NotEqual(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	require.Equal(t, "unhealthy", health.Status)
	require.NotEmpty(t, health.Error)
}

func TestBackendTimeout(t *testing.T) {
	opts := testOptions()
	opts.RequestTimeout = 100 * time.Millisecond
	h := NewHandler(startBackend(t, slowService{}), quietLogger(), opts)

	rec := get(t, h, "/consumption")
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHealthy(t *testing.T) {
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[HealthResponse](t, rec)
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "SERVING", body.Backend)
}

func TestRoot(t *testing.T) {
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message   string            `json:"message"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, apiName, body.Message)
	require.Equal(t, "/api/consumption", body.Endpoints["consumption"])
	require.NotContains(t, body.Endpoints, "frontend")
}

func TestRequestIDForwarded(t *testing.T) {
	svc := &recordingService{}
	h := NewHandler(startBackend(t, svc), quietLogger(), testOptions())

	rec := get(t, h, "/consumption", RequestIDHeader, "abc-123")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = get(t, h, "/consumption")
	require.Equal(t, http.StatusOK, rec.Code)
	minted := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, minted)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Equal(t, []string{"abc-123", minted}, svc.ids)
}

func TestCORS(t *testing.T) {
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	rec := get(t, h, "/consumption", "Origin", "http://example.test")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	require.Equal(t, http.StatusOK, get(t, h, "/consumption").Code)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `gridserve_gateway_http_requests_total{code="200",route="/consumption"} 1`)
}

func TestMetricsMiddlewareKeepsWriterBehavior(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry())
	r := mux.NewRouter()
	r.Use(m.middleware)

	var flushable bool
	r.HandleFunc("/stream", func(w http.ResponseWriter, _ *http.Request) {
		_, flushable = w.(http.Flusher)
		_, _ = w.Write([]byte("chunk"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, flushable)
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/stream", "200")))
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>usage</h1>"), 0644))

	opts := testOptions()
	opts.StaticDir = dir
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), opts)

	rec := get(t, h, "/static/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<h1>usage</h1>")

	// the file server canonicalizes index.html to its directory
	rec = get(t, h, "/static/index.html")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "./", rec.Header().Get("Location"))

	var body struct {
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(get(t, h, "/").Body.Bytes(), &body))
	require.Equal(t, "/static/", body.Endpoints["frontend"])
}

func TestAccessLog(t *testing.T) {
	var buf strings.Builder
	opts := testOptions()
	opts.AccessLog = &buf
	h := NewHandler(startBackend(t, sampleService()), quietLogger(), opts)

	get(t, h, "/health")
	require.Contains(t, buf.String(), "GET /health")
}

func TestWaitReady(t *testing.T) {
	b := startBackend(t, sampleService())
	require.NoError(t, b.WaitReady(context.Background(), 5*time.Second, time.Second))

	down := downBackend(t)
	err := down.WaitReady(context.Background(), 300*time.Millisecond, 100*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), down.Target())
}

func TestHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not grpc", errors.New("boom"), http.StatusBadGateway},
		{"unavailable", status.Error(codes.Unavailable, "connection refused"), http.StatusServiceUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "too slow"), http.StatusGatewayTimeout},
		{"invalid", status.Error(codes.InvalidArgument, "bad"), http.StatusBadRequest},
		{"not found", status.Error(codes.NotFound, "gone"), http.StatusNotFound},
		{"internal", status.Error(codes.Internal, "oops"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := httpError(tt.err)
			require.Equal(t, tt.code, code)
			require.NotEmpty(t, body.Error)
		})
	}
}

func TestServeShutsDown(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := NewHandler(startBackend(t, sampleService()), quietLogger(), testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, lis, h, 5*time.Second, quietLogger())
	}()

	resp, err := http.Get("http://" + lis.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}
