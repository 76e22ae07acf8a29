package cli

import (
	"context"
	"fmt"
	"strings"
)

// getStatus renders the prompt suffix: the signed-in email and the open
// resource, e.g. " (admin@clinic.io patients p2)".
func (a *App) getStatus() string {
	var parts []string
	if id, ok := a.store.Identity(); ok && a.isLoggedIn() {
		parts = append(parts, id.Email)
	}
	if a.screen != nil {
		parts = append(parts, fmt.Sprintf("%s p%d", a.screen.resource.Name, a.screen.list.View().Query.Page))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " ") + ")"
}

// Root restores the stored session, starts the metrics endpoint when
// configured and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to the clinicdesk console (type 'help' for commands)")

	if a.config != nil && a.config.MetricsAddr != "" {
		go func() {
			if err := serveMetrics(ctx, a.config.MetricsAddr, a.registry, a.logger); err != nil {
				a.logger.Error(ctx, "metrics endpoint stopped", "error", err)
			}
		}()
	}

	a.store.Restore(ctx)
	if a.isLoggedIn() {
		id, _ := a.store.Identity()
		a.notifier.Info(ctx, fmt.Sprintf("Signed in as %s", id.Email))
	} else {
		_ = a.Login(ctx, nil)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
