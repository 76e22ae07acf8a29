package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/mutation"
	"github.com/dmitrijs2005/clinicdesk/internal/client/resources"
	"github.com/dmitrijs2005/clinicdesk/internal/client/services"
)

// formEditor is an open create/update form. The flow closes it on success;
// while it stays open the user may correct the input and resubmit.
type formEditor struct {
	open bool
}

func (f *formEditor) Close() { f.open = false }

// readForm collects the fields of a record and, for resources with a
// profile image, an optional image path.
func (a *App) readForm(s *screen, prompt string) (client.Body, error) {
	lines, err := getFields(a.reader, prompt, a.out)
	if err != nil {
		return client.Body{}, err
	}
	fields, err := models.ParseFields(lines)
	if err != nil {
		return client.Body{}, err
	}

	var imagePath string
	if s.resource.ImageField != "" {
		imagePath, err = getSimpleText(a.reader, "Profile image path (optional)", a.out)
		if err != nil && !errors.Is(err, io.EOF) {
			return client.Body{}, err
		}
	}
	return s.service.BuildBody(fields, imagePath)
}

// submit runs one form until the flow closes it or the user gives up.
func (a *App) submit(ctx context.Context, s *screen, prompt string, send func(client.Body, mutation.Editor) (models.Record, error)) error {
	form := &formEditor{open: true}
	for form.open {
		body, err := a.readForm(s, prompt)
		if err != nil {
			return a.fail(ctx, err)
		}
		rec, err := send(body, form)
		if err == nil {
			if id := rec.ID(); id != "" {
				fmt.Fprintf(a.out, "%s id: %s\n", s.resource.Singular, id)
			}
			break
		}
		again, cerr := a.confirm.Confirm(ctx, "Edit and resubmit?")
		if cerr != nil || !again {
			return err
		}
	}
	return a.afterMutation(ctx, s)
}

// afterMutation lets the flow's refetches land, then reprints the page.
func (a *App) afterMutation(ctx context.Context, s *screen) error {
	if s.stats != nil {
		s.stats.Wait()
	}
	return a.settle(ctx, s)
}

func (a *App) Create(ctx context.Context, _ []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	prompt := "Enter fields for the new " + strings.ToLower(s.resource.Singular)
	return a.submit(ctx, s, prompt, func(body client.Body, form mutation.Editor) (models.Record, error) {
		return s.flow.Create(ctx, body, form)
	})
}

func (a *App) Update(ctx context.Context, args []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return a.usage("update <id>")
	}
	target, _ := s.target(args[0])
	prompt := fmt.Sprintf("Enter changed fields for %s %q", strings.ToLower(s.resource.Singular), target.Label)
	return a.submit(ctx, s, prompt, func(body client.Body, form mutation.Editor) (models.Record, error) {
		return s.flow.Update(ctx, target.ID, body, form)
	})
}

func (a *App) Delete(ctx context.Context, args []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return a.usage("delete <id>")
	}
	target, _ := s.target(args[0])
	return a.mutated(ctx, s, s.flow.Delete(ctx, target))
}

// Toggle flips the active flag of a record shown on the current page.
func (a *App) Toggle(ctx context.Context, args []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return a.usage("toggle <id>")
	}
	if !s.resource.HasStatus {
		return a.fail(ctx, fmt.Errorf("%s have no active status", s.resource.Name))
	}
	target, row := s.target(args[0])
	if row == nil {
		return a.fail(ctx, fmt.Errorf("%s %s is not on the current page", strings.ToLower(s.resource.Singular), args[0]))
	}
	active, _ := row[resources.StatusField].(bool)
	return a.mutated(ctx, s, s.flow.ToggleStatus(ctx, target, resources.StatusField, !active))
}

// Cancel cancels a booking. The reason is the rest of the line or, when
// absent, prompted for.
func (a *App) Cancel(ctx context.Context, args []string) error {
	return a.withReason(ctx, args, "cancel", "Reason for cancellation", func(s *screen, t mutation.Target, reason string) error {
		return s.flow.Cancel(ctx, t, reason)
	})
}

func (a *App) Reject(ctx context.Context, args []string) error {
	return a.withReason(ctx, args, "reject", "Reason for rejection", func(s *screen, t mutation.Target, reason string) error {
		return s.flow.Reject(ctx, t, reason)
	})
}

func (a *App) Approve(ctx context.Context, args []string) error {
	s, err := a.actionScreen(ctx, "approve")
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return a.usage("approve <id>")
	}
	target, _ := s.target(args[0])
	return a.mutated(ctx, s, s.flow.Approve(ctx, target))
}

func (a *App) withReason(ctx context.Context, args []string, action, prompt string, run func(*screen, mutation.Target, string) error) error {
	s, err := a.actionScreen(ctx, action)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return a.usage(action + " <id> [reason]")
	}
	target, _ := s.target(args[0])

	reason := strings.Join(args[1:], " ")
	if strings.TrimSpace(reason) == "" {
		reason, err = getSimpleText(a.reader, prompt, a.out)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	return a.mutated(ctx, s, run(s, target, reason))
}

// actionScreen returns the open screen if its resource supports action.
func (a *App) actionScreen(ctx context.Context, action string) (*screen, error) {
	s, err := a.requireScreen()
	if err != nil {
		return nil, err
	}
	if !s.resource.HasAction(action) {
		return nil, a.fail(ctx, fmt.Errorf("%s %s: %w", s.resource.Name, action, services.ErrUnsupportedAction))
	}
	return s, nil
}

// mutated finishes a flow call. API failures were already shown by the
// flow; declines and missing reasons are reported here.
func (a *App) mutated(ctx context.Context, s *screen, err error) error {
	switch {
	case err == nil:
		return a.afterMutation(ctx, s)
	case errors.Is(err, mutation.ErrDeclined):
		fmt.Fprintln(a.out, "Nothing changed.")
	case errors.Is(err, mutation.ErrReasonRequired):
		a.notifier.Error(ctx, "Please provide a reason.")
	}
	return err
}

// target finds id on the current page so prompts can show its label.
func (s *screen) target(id string) (mutation.Target, models.Record) {
	for _, row := range s.list.View().Rows {
		if row.ID() == id {
			return mutation.Target{ID: id, Label: s.resource.Label(row)}, row
		}
	}
	return mutation.Target{ID: id, Label: id}, nil
}
