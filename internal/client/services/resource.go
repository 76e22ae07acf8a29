// Package services contains the application services of the console. Each
// one binds the API client to a use case: a resource screen, the dashboard
// or booking exports.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/resources"
)

var (
	ErrUnsupportedAction = errors.New("action not supported by this resource")
	ErrImageNotSupported = errors.New("resource has no profile image")
)

// ResourceService performs the API calls of one resource.
type ResourceService struct {
	client   client.Client
	resource resources.Resource
	readFile func(string) ([]byte, error)
}

func NewResourceService(c client.Client, r resources.Resource) *ResourceService {
	return &ResourceService{client: c, resource: r, readFile: os.ReadFile}
}

func (s *ResourceService) Resource() resources.Resource {
	return s.resource
}

// List fetches one page; it has the shape of a listquery.Fetcher.
func (s *ResourceService) List(ctx context.Context, q models.Query) (*models.Page, error) {
	return s.client.List(ctx, s.resource.Path, q)
}

func (s *ResourceService) Stats(ctx context.Context) (models.Stats, error) {
	return s.client.Stats(ctx, s.resource.Path)
}

func (s *ResourceService) Create(ctx context.Context, body client.Body) (models.Record, error) {
	return s.client.Create(ctx, s.resource.Path, body)
}

func (s *ResourceService) Update(ctx context.Context, id string, body client.Body) (models.Record, error) {
	return s.client.Update(ctx, s.resource.Path, id, body)
}

func (s *ResourceService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, s.resource.Path, id)
}

func (s *ResourceService) Action(ctx context.Context, id, action string, payload map[string]any) (models.Record, error) {
	if !s.resource.HasAction(action) {
		return nil, fmt.Errorf("%s %s: %w", s.resource.Name, action, ErrUnsupportedAction)
	}
	body := map[string]any{"id": id}
	for k, v := range payload {
		body[k] = v
	}
	return s.client.Action(ctx, s.resource.Path, action, body)
}

// BuildBody turns typed fields into a request body. With an image path the
// body becomes multipart and carries the file; otherwise it is JSON.
func (s *ResourceService) BuildBody(fields models.Record, imagePath string) (client.Body, error) {
	if imagePath == "" {
		return client.JSONBody(fields), nil
	}
	if s.resource.ImageField == "" {
		return client.Body{}, fmt.Errorf("%s: %w", s.resource.Name, ErrImageNotSupported)
	}

	content, err := s.readFile(imagePath)
	if err != nil {
		return client.Body{}, fmt.Errorf("read image: %w", err)
	}
	return client.MultipartBody(fields, client.File{
		Field:   s.resource.ImageField,
		Name:    filepath.Base(imagePath),
		Content: content,
	}), nil
}
