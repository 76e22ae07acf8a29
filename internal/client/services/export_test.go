package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	name, contentType string
	data              []byte
	err               error
}

func (m *memSink) Write(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	m.name, m.data, m.contentType = name, data, contentType
	return "mem://" + name, m.err
}

func TestExportService_Export(t *testing.T) {
	fc := &fakeClient{blob: &client.Blob{Data: []byte("%PDF"), ContentType: "application/pdf"}}
	sink := &memSink{}
	s := NewExportService(fc, sink)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC) }

	loc, err := s.Export(context.Background(), KindReport, models.Query{
		Page: 3, Limit: 10, Search: "ann", Filters: map[string]string{"status": "pending"},
	})
	require.NoError(t, err)
	require.Equal(t, "mem://bookings-report-20240501-130405.pdf", loc)
	require.Equal(t, []byte("%PDF"), sink.data)

	call := fc.calls[0]
	require.Equal(t, "/bookings/report", call.path)
	require.Equal(t, map[string]any{"search": "ann", "status": "pending"}, call.req.Body.Payload)
}

func TestExportService_UsesServerFilename(t *testing.T) {
	fc := &fakeClient{blob: &client.Blob{Data: []byte("a,b"), ContentType: "text/csv", Filename: "bookings.csv"}}
	sink := &memSink{}
	loc, err := NewExportService(fc, sink).Export(context.Background(), KindExport, models.Query{})
	require.NoError(t, err)
	require.Equal(t, "mem://bookings.csv", loc)
}

func TestExportService_Errors(t *testing.T) {
	_, err := NewExportService(&fakeClient{}, &memSink{}).Export(context.Background(), "dump", models.Query{})
	require.ErrorContains(t, err, "unknown export kind")

	apiErr := &client.StatusError{StatusCode: 500, Message: "Export failed"}
	_, err = NewExportService(&fakeClient{err: apiErr}, &memSink{}).Export(context.Background(), KindExport, models.Query{})
	require.ErrorIs(t, err, apiErr)

	fc := &fakeClient{blob: &client.Blob{Data: []byte("x")}}
	_, err = NewExportService(fc, &memSink{err: errors.New("disk full")}).Export(context.Background(), KindExport, models.Query{})
	require.ErrorContains(t, err, "disk full")
}

func TestExtensionFor(t *testing.T) {
	require.Equal(t, ".csv", extensionFor("text/csv; charset=utf-8"))
	require.Equal(t, ".pdf", extensionFor("application/pdf"))
	require.Equal(t, ".xlsx", extensionFor("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	require.Equal(t, ".bin", extensionFor(""))
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	p, err := FileSink{Dir: dir}.Write(context.Background(), "../bookings.csv", []byte("a,b"), "text/csv")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(p, dir))
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "a,b", string(got))
}

func TestS3Sink(t *testing.T) {
	var (
		mu      sync.Mutex
		method  string
		path    string
		payload []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path = r.Method, r.URL.Path
		payload, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewS3Sink(context.Background(), S3Config{
		Bucket:    "exports",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "minio",
		SecretKey: "minio123",
		Prefix:    "/clinicdesk/",
	}, srv.Client())
	require.NoError(t, err)

	link, err := sink.Write(context.Background(), "bookings.csv", []byte("a,b"), "text/csv")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/exports/clinicdesk/bookings.csv", path)
	require.Equal(t, []byte("a,b"), payload)
	require.True(t, strings.HasPrefix(link, srv.URL+"/exports/clinicdesk/bookings.csv?"), link)
	require.Contains(t, link, "X-Amz-Expires=86400")
}

func TestNewS3Sink_RequiresBucket(t *testing.T) {
	_, err := NewS3Sink(context.Background(), S3Config{}, nil)
	require.ErrorIs(t, err, ErrS3NotConfigured)
}
