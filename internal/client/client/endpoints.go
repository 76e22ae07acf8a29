package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
)

var ErrMalformedResponse = errors.New("unexpected response from server")

// Paths served by the admin API outside the per-resource ones.
const (
	PathLogin     = "/login"
	PathLogout    = "/logout"
	PathDashboard = "/dashboard"
)

// Client is the typed surface of the admin API used by the session store
// and the services.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Logout(ctx context.Context) error
	List(ctx context.Context, path string, q models.Query) (*models.Page, error)
	Stats(ctx context.Context, path string) (models.Stats, error)
	Create(ctx context.Context, path string, body Body) (models.Record, error)
	Update(ctx context.Context, path, id string, body Body) (models.Record, error)
	Delete(ctx context.Context, path, id string) error
	Action(ctx context.Context, path, action string, payload map[string]any) (models.Record, error)
	Dashboard(ctx context.Context) (models.Stats, error)
	Download(ctx context.Context, endpoint string, req Request) (*Blob, error)
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	env, err := c.Send(ctx, PathLogin, Request{Body: JSONBody(map[string]any{
		"email":    email,
		"password": password,
	})})
	if err != nil {
		return nil, err
	}

	res, err := decodeData[models.LoginResult](env)
	if err != nil {
		return nil, err
	}
	if res.Token == "" || res.Admin == nil {
		return nil, fmt.Errorf("%w: login response lacks token or admin", ErrMalformedResponse)
	}
	return &res, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.Send(ctx, PathLogout, Request{})
	return err
}

func (c *HTTPClient) List(ctx context.Context, path string, q models.Query) (*models.Page, error) {
	env, err := c.Send(ctx, path, Request{Body: JSONBody(q.Params())})
	if err != nil {
		return nil, err
	}
	page, err := decodeData[models.Page](env)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) Stats(ctx context.Context, path string) (models.Stats, error) {
	env, err := c.Send(ctx, path+"/stats", Request{Body: JSONBody(nil)})
	if err != nil {
		return nil, err
	}
	return decodeData[models.Stats](env)
}

func (c *HTTPClient) Create(ctx context.Context, path string, body Body) (models.Record, error) {
	env, err := c.Send(ctx, path+"/create", Request{Body: body})
	if err != nil {
		return nil, err
	}
	return optionalRecord(env)
}

func (c *HTTPClient) Update(ctx context.Context, path, id string, body Body) (models.Record, error) {
	env, err := c.Send(ctx, path+"/update", Request{Body: body.With("id", id)})
	if err != nil {
		return nil, err
	}
	return optionalRecord(env)
}

func (c *HTTPClient) Delete(ctx context.Context, path, id string) error {
	_, err := c.Send(ctx, path+"/delete", Request{Body: JSONBody(map[string]any{"id": id})})
	return err
}

func (c *HTTPClient) Action(ctx context.Context, path, action string, payload map[string]any) (models.Record, error) {
	env, err := c.Send(ctx, path+"/"+action, Request{Body: JSONBody(payload)})
	if err != nil {
		return nil, err
	}
	return optionalRecord(env)
}

func (c *HTTPClient) Dashboard(ctx context.Context) (models.Stats, error) {
	env, err := c.Send(ctx, PathDashboard, Request{Body: JSONBody(nil)})
	if err != nil {
		return nil, err
	}
	return decodeData[models.Stats](env)
}

func hasData(env *Envelope) bool {
	d := bytes.TrimSpace(env.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

func decodeData[T any](env *Envelope) (T, error) {
	var out T
	if !hasData(env) {
		return out, fmt.Errorf("%w: empty data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

// optionalRecord decodes data when the endpoint returned an entity. Some
// writes answer with a bare message, which is fine.
func optionalRecord(env *Envelope) (models.Record, error) {
	if !hasData(env) {
		return models.Record{}, nil
	}
	var rec models.Record
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		// e.g. data: true
		return models.Record{}, nil
	}
	return rec, nil
}
