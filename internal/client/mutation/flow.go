// Package mutation runs the create, update, delete and status flows of a
// resource: confirm when destructive, call the API, tell the user, and
// refetch the owning list and its statistics.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/notify"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
)

var (
	ErrDeclined       = errors.New("action declined")
	ErrReasonRequired = errors.New("a reason is required")
)

// Mutator performs the writes of one resource.
type Mutator interface {
	Create(ctx context.Context, body client.Body) (models.Record, error)
	Update(ctx context.Context, id string, body client.Body) (models.Record, error)
	Delete(ctx context.Context, id string) error
	Action(ctx context.Context, id, action string, payload map[string]any) (models.Record, error)
}

type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Editor is an open create/update form.
type Editor interface {
	Close()
}

// Refresher is a query that can be invalidated: a list or its stats.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Target identifies the entity a flow acts on. Label is what the user
// sees in prompts, e.g. the patient's name.
type Target struct {
	ID    string
	Label string
}

type Option func(*Flow)

// WithNoun sets the singular display name used in messages ("Patient").
func WithNoun(noun string) Option {
	return func(f *Flow) { f.noun = noun }
}

func WithLogger(l logging.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

type Flow struct {
	mutator   Mutator
	notifier  notify.Notifier
	confirmer Confirmer
	list      Refresher
	stats     Refresher
	noun      string
	logger    logging.Logger
}

// New builds a flow. list and stats may be nil when a screen has no such
// query.
func New(mutator Mutator, notifier notify.Notifier, confirmer Confirmer, list, stats Refresher, opts ...Option) *Flow {
	f := &Flow{
		mutator:   mutator,
		notifier:  notifier,
		confirmer: confirmer,
		list:      list,
		stats:     stats,
		noun:      "Record",
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create submits a new entity. On failure the editor stays open.
func (f *Flow) Create(ctx context.Context, body client.Body, editor Editor) (models.Record, error) {
	rec, err := f.mutator.Create(ctx, body)
	if err != nil {
		return nil, f.fail(ctx, "create", err)
	}
	f.succeed(ctx, f.noun+" created successfully", editor)
	return rec, nil
}

// Update saves changes to an entity. On failure the editor stays open.
func (f *Flow) Update(ctx context.Context, id string, body client.Body, editor Editor) (models.Record, error) {
	rec, err := f.mutator.Update(ctx, id, body)
	if err != nil {
		return nil, f.fail(ctx, "update", err)
	}
	f.succeed(ctx, f.noun+" updated successfully", editor)
	return rec, nil
}

func (f *Flow) Delete(ctx context.Context, target Target) error {
	if err := f.confirm(ctx, fmt.Sprintf("Delete %s %q? This cannot be undone.", strings.ToLower(f.noun), target.Label)); err != nil {
		return err
	}
	if err := f.mutator.Delete(ctx, target.ID); err != nil {
		return f.fail(ctx, "delete", err)
	}
	f.succeed(ctx, f.noun+" deleted successfully", nil)
	return nil
}

// Cancel cancels a booking. reason must not be blank.
func (f *Flow) Cancel(ctx context.Context, target Target, reason string) error {
	return f.withReason(ctx, target, "cancel", "Cancel", "cancelled", reason)
}

// Reject rejects a doctor application. reason must not be blank.
func (f *Flow) Reject(ctx context.Context, target Target, reason string) error {
	return f.withReason(ctx, target, "reject", "Reject", "rejected", reason)
}

func (f *Flow) Approve(ctx context.Context, target Target) error {
	if _, err := f.mutator.Action(ctx, target.ID, "approve", nil); err != nil {
		return f.fail(ctx, "approve", err)
	}
	f.succeed(ctx, fmt.Sprintf("%s %s approved", f.noun, target.Label), nil)
	return nil
}

// ToggleStatus flips one boolean field through a regular update.
func (f *Flow) ToggleStatus(ctx context.Context, target Target, field string, active bool) error {
	body := client.JSONBody(map[string]any{field: active})
	if _, err := f.mutator.Update(ctx, target.ID, body); err != nil {
		return f.fail(ctx, "toggle", err)
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	f.succeed(ctx, fmt.Sprintf("%s %s %s", f.noun, target.Label, state), nil)
	return nil
}

func (f *Flow) withReason(ctx context.Context, target Target, action, verb, past, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	prompt := fmt.Sprintf("%s %s %q? Reason: %s", verb, strings.ToLower(f.noun), target.Label, reason)
	if err := f.confirm(ctx, prompt); err != nil {
		return err
	}
	if _, err := f.mutator.Action(ctx, target.ID, action, map[string]any{"reason": reason}); err != nil {
		return f.fail(ctx, action, err)
	}
	f.succeed(ctx, fmt.Sprintf("%s %s", f.noun, past), nil)
	return nil
}

func (f *Flow) confirm(ctx context.Context, prompt string) error {
	ok, err := f.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirmation: %w", err)
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

func (f *Flow) fail(ctx context.Context, op string, err error) error {
	f.logger.Debug(ctx, "mutation failed", "op", op, "noun", f.noun, "error", err)
	f.notifier.Error(ctx, client.Message(err))
	return err
}

func (f *Flow) succeed(ctx context.Context, msg string, editor Editor) {
	f.notifier.Success(ctx, msg)
	if editor != nil {
		editor.Close()
	}
	if f.list != nil {
		f.list.Refresh(ctx)
	}
	if f.stats != nil {
		f.stats.Refresh(ctx)
	}
}
