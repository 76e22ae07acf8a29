package services

import (
	"context"
	"fmt"
	"mime"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/filex"
)

// Booking download kinds.
const (
	KindExport = "export"
	KindReport = "report"
)

// ExportSink stores a downloaded file and returns where it ended up.
type ExportSink interface {
	Write(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// FileSink writes into a local directory.
type FileSink struct {
	Dir string
}

func (s FileSink) Write(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	return filex.WriteFile(s.Dir, name, data)
}

type ExportService struct {
	client client.Client
	sink   ExportSink
	now    func() time.Time
}

func NewExportService(c client.Client, sink ExportSink) *ExportService {
	return &ExportService{client: c, sink: sink, now: time.Now}
}

// Export downloads the booking export or report for the search and filters
// of q and hands it to the sink.
func (s *ExportService) Export(ctx context.Context, kind string, q models.Query) (string, error) {
	if kind != KindExport && kind != KindReport {
		return "", fmt.Errorf("unknown export kind %q", kind)
	}

	params := q.Params()
	delete(params, "page")
	delete(params, "limit")

	blob, err := s.client.Download(ctx, "/bookings/"+kind, client.Request{Body: client.JSONBody(params)})
	if err != nil {
		return "", err
	}

	name := blob.Filename
	if name == "" {
		name = fmt.Sprintf("bookings-%s-%s%s", kind, s.now().Format("20060102-150405"), extensionFor(blob.ContentType))
	}

	location, err := s.sink.Write(ctx, name, blob.Data, blob.ContentType)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", kind, err)
	}
	return location, nil
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	switch mediaType {
	case "text/csv":
		return ".csv"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
