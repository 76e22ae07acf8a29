package services

import (
	"context"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
)

type apiCall struct {
	op      string
	path    string
	id      string
	action  string
	query   models.Query
	body    client.Body
	payload map[string]any
	req     client.Request
}

type fakeClient struct {
	calls []apiCall
	page  *models.Page
	stats models.Stats
	blob  *client.Blob
	err   error
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	return nil, f.err
}

func (f *fakeClient) Logout(ctx context.Context) error { return f.err }

func (f *fakeClient) List(ctx context.Context, path string, q models.Query) (*models.Page, error) {
	f.calls = append(f.calls, apiCall{op: "list", path: path, query: q})
	return f.page, f.err
}

func (f *fakeClient) Stats(ctx context.Context, path string) (models.Stats, error) {
	f.calls = append(f.calls, apiCall{op: "stats", path: path})
	return f.stats, f.err
}

func (f *fakeClient) Create(ctx context.Context, path string, body client.Body) (models.Record, error) {
	f.calls = append(f.calls, apiCall{op: "create", path: path, body: body})
	return models.Record{}, f.err
}

func (f *fakeClient) Update(ctx context.Context, path, id string, body client.Body) (models.Record, error) {
	f.calls = append(f.calls, apiCall{op: "update", path: path, id: id, body: body})
	return models.Record{}, f.err
}

func (f *fakeClient) Delete(ctx context.Context, path, id string) error {
	f.calls = append(f.calls, apiCall{op: "delete", path: path, id: id})
	return f.err
}

func (f *fakeClient) Action(ctx context.Context, path, action string, payload map[string]any) (models.Record, error) {
	f.calls = append(f.calls, apiCall{op: "action", path: path, action: action, payload: payload})
	return models.Record{}, f.err
}

func (f *fakeClient) Dashboard(ctx context.Context) (models.Stats, error) {
	f.calls = append(f.calls, apiCall{op: "dashboard"})
	return f.stats, f.err
}

func (f *fakeClient) Download(ctx context.Context, endpoint string, req client.Request) (*client.Blob, error) {
	f.calls = append(f.calls, apiCall{op: "download", path: endpoint, req: req})
	return f.blob, f.err
}

var _ client.Client = (*fakeClient)(nil)
