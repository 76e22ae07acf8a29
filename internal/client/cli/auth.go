package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/session"
	"github.com/dmitrijs2005/clinicdesk/internal/common"
)

// getSimpleText, getPassword and getFields are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getFields     = GetFields
)

// Login prompts for email and password and signs in through the session
// store. Credential failures are shown with one canonical message.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.store.Login(ctx, email, string(password)); err != nil {
		a.logger.Warn(ctx, "login unsuccessful", "error", err)
		return a.fail(ctx, err)
	}

	id, _ := a.store.Identity()
	name := id.Name
	if name == "" {
		name = id.Email
	}
	a.notifier.Success(ctx, fmt.Sprintf("Welcome, %s", name))
	return nil
}

// Logout always ends the local session, even when the server call fails.
func (a *App) Logout(ctx context.Context, _ []string) error {
	a.closeScreen()
	if err := a.store.Logout(ctx); err != nil {
		return a.fail(ctx, err)
	}
	a.notifier.Info(ctx, "Signed out")
	return nil
}

// WhoAmI prints the cached identity and what the token says about itself.
func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	id, ok := a.store.Identity()
	if !ok {
		return a.fail(ctx, session.ErrNotAuthenticated)
	}

	fmt.Fprintf(a.out, "Name:   %s\n", id.Name)
	fmt.Fprintf(a.out, "Email:  %s\n", id.Email)
	fmt.Fprintf(a.out, "Role:   %s\n", id.Role)
	fmt.Fprintf(a.out, "Active: %t\n", id.IsActive)

	info, err := session.InspectToken(a.store.Token())
	if err != nil {
		a.logger.Debug(ctx, "token is not a readable JWT", "error", err)
		return nil
	}
	if !info.ExpiresAt.IsZero() {
		state := "valid"
		if info.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(a.out, "Token:  %s until %s\n", state, info.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// Profile edits the signed-in admin and merges the server's answer into
// the cached identity.
func (a *App) Profile(ctx context.Context, _ []string) error {
	id, ok := a.store.Identity()
	if !ok {
		return a.fail(ctx, session.ErrNotAuthenticated)
	}

	lines, err := getFields(a.reader, "Enter profile changes (name, email)", a.out)
	if err != nil {
		return err
	}
	fields, err := models.ParseFields(lines)
	if err != nil {
		return a.fail(ctx, err)
	}
	if len(fields) == 0 {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	rec, err := a.api.Update(ctx, "/admins", id.ID, client.JSONBody(fields))
	if err != nil {
		return a.fail(ctx, err)
	}

	patch := map[string]any(fields)
	if len(rec) > 0 {
		patch = map[string]any(rec)
	}
	if err := a.store.UpdateUser(ctx, patch); err != nil {
		return a.fail(ctx, err)
	}
	a.notifier.Success(ctx, "Profile updated successfully")
	return nil
}
