package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/notify"
	"github.com/dmitrijs2005/clinicdesk/internal/client/services"
	"github.com/dmitrijs2005/clinicdesk/internal/client/session"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/timex"
	"github.com/stretchr/testify/require"
)

type apiCall struct {
	op      string
	path    string
	id      string
	query   models.Query
	body    client.Body
	payload map[string]any
}

// fakeAPI is a client.Client serving rows from memory. List runs on
// controller goroutines, so everything is guarded.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []apiCall
	rows     map[string][]models.Record
	stats    models.Stats
	loginErr error
	err      error
	record   models.Record
	blob     *client.Blob
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{rows: map[string][]models.Record{}}
}

func (f *fakeAPI) track(c apiCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeAPI) callsOf(op string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	f.track(apiCall{op: "login", id: email})
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResult{
		Token: "tok-1",
		Admin: &models.Identity{ID: "a1", Name: "Ada", Email: email, Role: "admin", IsActive: true},
	}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.track(apiCall{op: "logout"})
	return nil
}

func (f *fakeAPI) List(ctx context.Context, path string, q models.Query) (*models.Page, error) {
	f.track(apiCall{op: "list", path: path, query: q.Clone()})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	all := f.rows[path]
	if q.Search != "" {
		var hits []models.Record
		for _, r := range all {
			if strings.Contains(strings.ToLower(r.String("name")), strings.ToLower(q.Search)) {
				hits = append(hits, r)
			}
		}
		all = hits
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	pages := (len(all) + limit - 1) / limit
	start := min((q.Page-1)*limit, len(all))
	end := min(start+limit, len(all))
	return &models.Page{
		Docs:       append([]models.Record{}, all[start:end]...),
		TotalDocs:  len(all),
		TotalPages: pages,
		Limit:      limit,
		Page:       q.Page,
	}, nil
}

func (f *fakeAPI) Stats(ctx context.Context, path string) (models.Stats, error) {
	f.track(apiCall{op: "stats", path: path})
	return f.stats, nil
}

func (f *fakeAPI) Create(ctx context.Context, path string, body client.Body) (models.Record, error) {
	f.track(apiCall{op: "create", path: path, body: body})
	return f.record, f.err
}

func (f *fakeAPI) Update(ctx context.Context, path, id string, body client.Body) (models.Record, error) {
	f.track(apiCall{op: "update", path: path, id: id, body: body})
	return f.record, f.err
}

func (f *fakeAPI) Delete(ctx context.Context, path, id string) error {
	f.track(apiCall{op: "delete", path: path, id: id})
	return f.err
}

func (f *fakeAPI) Action(ctx context.Context, path, action string, payload map[string]any) (models.Record, error) {
	f.track(apiCall{op: action, path: path, payload: payload})
	return f.record, f.err
}

func (f *fakeAPI) Dashboard(ctx context.Context) (models.Stats, error) {
	f.track(apiCall{op: "dashboard"})
	return f.stats, f.err
}

func (f *fakeAPI) Download(ctx context.Context, endpoint string, req client.Request) (*client.Blob, error) {
	f.track(apiCall{op: "download", path: endpoint, body: req.Body})
	return f.blob, f.err
}

// memSlots keeps the session in memory.
type memSlots struct {
	mu              sync.Mutex
	token, identity []byte
}

func (m *memSlots) Load(ctx context.Context) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.identity, nil
}

func (m *memSlots) Save(ctx context.Context, token, identity []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.identity = token, identity
	return nil
}

func (m *memSlots) SaveIdentity(ctx context.Context, identity []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = identity
	return nil
}

func (m *memSlots) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.identity = nil, nil
	return nil
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }

// instantAfter fires debounces right away on their own goroutine.
func instantAfter(_ time.Duration, f func()) timex.Timer {
	go f()
	return noopTimer{}
}

type testApp struct {
	*App
	api      *fakeAPI
	notes    *notify.Recorder
	out      *bytes.Buffer
	input    *bytes.Buffer
	exportTo string
}

// newTestApp builds an App over fakes. Input lines are queued with
// feed before a command that prompts.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	api := newFakeAPI()
	notes := &notify.Recorder{}
	out := &bytes.Buffer{}
	input := &bytes.Buffer{}
	reader := bufio.NewReader(input)
	store := session.New(&memSlots{}, logging.Nop())
	store.Bind(api)
	dir := t.TempDir()

	a := &App{
		logger:   logging.Nop(),
		store:    store,
		api:      api,
		notifier: notes,
		exports:  services.NewExportService(api, services.FileSink{Dir: dir}),
		reader:   reader,
		out:      out,
		confirm:  &promptConfirmer{reader: reader, w: io.Discard},
		after:    instantAfter,
	}
	t.Cleanup(a.closeScreen)
	return &testApp{App: a, api: api, notes: notes, out: out, input: input, exportTo: dir}
}

func (ta *testApp) feed(lines ...string) {
	for _, l := range lines {
		ta.input.WriteString(l + "\n")
	}
}

// signIn logs in without prompting.
func (ta *testApp) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, ta.store.Login(context.Background(), "ada@clinic.io", "pw"))
}

func patientRows(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{
			"_id":      "p" + string(rune('a'+i)),
			"name":     "Patient " + string(rune('A'+i)),
			"email":    "p" + string(rune('a'+i)) + "@mail.io",
			"isActive": i%2 == 0,
		}
	}
	return out
}
