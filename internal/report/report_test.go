package report

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/detailing-desk/internal/models"
	"github.com/xuri/excelize/v2"
)

func sampleDashboard() models.Dashboard {
	return models.Dashboard{
		Totals: models.Totals{TotalCustomers: 3, TotalSales: 450, CompletedCount: 1, TotalWorkerPayments: 180},
		Sales: models.SalesAnalytics{
			MonthlySales:      map[string]float64{"October": 250, "January": 200},
			DayOfWeekSales:    map[string]float64{"Monday": 200, "Sunday": 250},
			ServicePopularity: map[string]int{"basic": 1, "premium": 2},
			WorkerEarnings:    map[string]float64{"w1": 180},
		},
		InactiveCustomers: []models.InactiveCustomer{
			{Name: "Bob", Phone: "555", LastVisit: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), TotalVisits: 2, DaysSinceVisit: 44},
		},
		TopWeek:    []models.Performer{{WorkerID: "w1", Name: "Al", Amount: 100}},
		TopMonth:   []models.Performer{{WorkerID: "w1", Name: "Al", Amount: 180}},
		Roster:     []models.WorkerStats{{Worker: models.Worker{ID: "w1", Name: "Al", CurrentStatus: models.WorkerWorking}, AssignedJobCount: 1, TotalEarnings: 180}},
		ComputedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
	}
}

func readBack(t *testing.T, d models.Dashboard) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, d))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriteWorkbook_Sheets(t *testing.T) {
	f := readBack(t, sampleDashboard())
	assert.Equal(t, []string{SheetSummary, SheetMonthly, SheetWeekday, SheetServices, SheetInactive, SheetTop, SheetWorkers}, f.GetSheetList())
}

func TestWriteWorkbook_Contents(t *testing.T) {
	f := readBack(t, sampleDashboard())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Metric", "Value"}, summary[0])
	assert.Equal(t, []string{"Total sales", "450"}, summary[2])
	assert.Equal(t, []string{"Generated at", "2026-10-15T09:30:00Z"}, summary[5])

	months, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, "January", months[1][0])
	assert.Equal(t, "October", months[2][0])

	days, err := f.GetRows(SheetWeekday)
	require.NoError(t, err)
	assert.Equal(t, "Sunday", days[1][0])
	assert.Equal(t, "Monday", days[2][0])

	services, err := f.GetRows(SheetServices)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ServiceLabels[models.ServicePremium], "2"}, services[1])

	inactive, err := f.GetRows(SheetInactive)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "555", "2026-09-01", "2", "44"}, inactive[1])

	top, err := f.GetRows(SheetTop)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"Week", "Al", "100"}, top[1])
	assert.Equal(t, []string{"Month", "Al", "180"}, top[2])

	workers, err := f.GetRows(SheetWorkers)
	require.NoError(t, err)
	assert.Equal(t, []string{"Al", "working", "1", "180"}, workers[1])
}

func TestWriteWorkbook_EmptyDashboard(t *testing.T) {
	f := readBack(t, models.Dashboard{})
	rows, err := f.GetRows(SheetInactive)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2026, 3, 7, 18, 4, 5, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "reports/2026/03/dashboard-20260307T230405Z.xlsx", ArchiveKey(at))
}

func TestNewArchiver_RequiresBucket(t *testing.T) {
	_, err := NewArchiver(context.Background(), ArchiveConfig{})
	assert.Error(t, err)
}

func TestArchiver_Archive(t *testing.T) {
	var (
		mu          sync.Mutex
		method      string
		path        string
		contentType string
		size        int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, contentType, size = r.Method, r.URL.Path, r.Header.Get("Content-Type"), len(body)
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	archiver, err := NewArchiver(context.Background(), ArchiveConfig{
		Bucket:          "reports-bucket",
		Endpoint:        server.URL,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	require.NoError(t, err)
	archiver.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }

	key, err := archiver.Archive(context.Background(), sampleDashboard())
	require.NoError(t, err)
	assert.Equal(t, "reports/2026/10/dashboard-20261015T093000Z.xlsx", key)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasPrefix(path, "/reports-bucket/reports/2026/10/"), path)
	assert.Equal(t, ContentType, contentType)
	assert.Greater(t, size, 0)
}

func TestArchiver_UploadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer server.Close()

	archiver, err := NewArchiver(context.Background(), ArchiveConfig{
		Bucket: "reports-bucket", Endpoint: server.URL, PathStyle: true,
		AccessKeyID: "AKIA", SecretAccessKey: "SECRET",
	}, func(o *s3.Options) { o.RetryMaxAttempts = 1 })
	require.NoError(t, err)

	_, err = archiver.Archive(context.Background(), sampleDashboard())
	assert.Error(t, err)
}
