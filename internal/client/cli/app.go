package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/config"
	"github.com/dmitrijs2005/clinicdesk/internal/client/metrics"
	"github.com/dmitrijs2005/clinicdesk/internal/client/notify"
	"github.com/dmitrijs2005/clinicdesk/internal/client/services"
	"github.com/dmitrijs2005/clinicdesk/internal/client/session"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/timex"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	errUsage    = errors.New("usage")
	errNoScreen = errors.New("no resource open")
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	store    *session.Store
	api      client.Client
	notifier notify.Notifier
	exports  *services.ExportService
	registry *prometheus.Registry
	reader   *bufio.Reader
	out      io.Writer
	confirm  *promptConfirmer
	screen   *screen

	// after replaces the debounce timers of list screens; nil means real timers.
	after timex.AfterFunc
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, os.Stderr)

	db, err := client.InitDatabase(ctx, c.StoragePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	out := os.Stdout
	notifier := notify.NewConsole(out, logger)
	store := session.New(session.NewSQLiteSlots(db), logger)
	registry := prometheus.NewRegistry()

	opts := []client.Option{
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger),
		client.WithMetrics(metrics.NewAPIMetrics(registry)),
		client.WithUnauthorizedHandler(func(ctx context.Context) {
			store.Expire(ctx)
			notifier.Info(ctx, "Your session has expired. Please log in again.")
		}),
	}
	if c.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(c.RateLimit, int(math.Max(1, math.Ceil(c.RateLimit)))))
	}
	api := client.NewHTTPClient(c.ServerBaseURL, store, opts...)
	store.Bind(api)

	sink, err := exportSink(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reader := bufio.NewReader(os.Stdin)
	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		store:    store,
		api:      api,
		notifier: notifier,
		exports:  services.NewExportService(api, sink),
		registry: registry,
		reader:   reader,
		out:      out,
		confirm:  &promptConfirmer{reader: reader, w: out},
	}, nil
}

// exportSink picks S3 when a bucket is configured, the export directory
// otherwise.
func exportSink(ctx context.Context, c *config.Config) (services.ExportSink, error) {
	if !c.S3Enabled() {
		return services.FileSink{Dir: c.ExportDir}, nil
	}
	sink, err := services.NewS3Sink(ctx, services.S3Config{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Prefix:    "exports",
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("s3 export sink: %w", err)
	}
	return sink, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close unmounts the open screen and releases the session database.
func (a *App) Close() {
	a.closeScreen()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

// fail reports err to the user and returns it.
func (a *App) fail(ctx context.Context, err error) error {
	a.notifier.Error(ctx, client.Message(err))
	return err
}

func (a *App) usage(text string) error {
	fmt.Fprintln(a.out, "Usage:", text)
	return errUsage
}
