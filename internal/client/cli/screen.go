package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clinicdesk/internal/client/listquery"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/mutation"
	"github.com/dmitrijs2005/clinicdesk/internal/client/resources"
	"github.com/dmitrijs2005/clinicdesk/internal/client/services"
)

// screen is an open resource list: its query controller, the statistics
// next to it and the mutation flow that refreshes both.
type screen struct {
	resource resources.Resource
	service  *services.ResourceService
	list     *listquery.Controller[models.Record]
	stats    *listquery.Summary
	flow     *mutation.Flow
}

func (a *App) newScreen(r resources.Resource) *screen {
	svc := services.NewResourceService(a.api, r)

	opts := []listquery.Option{
		listquery.WithLogger(a.logger),
	}
	if a.config != nil {
		opts = append(opts,
			listquery.WithLimit(a.config.PageSize),
			listquery.WithSearchDebounce(a.config.SearchDebounce),
		)
	}
	if a.after != nil {
		opts = append(opts, listquery.WithAfterFunc(a.after))
	}

	list := listquery.New[models.Record](svc.List, a.notifier, opts...)
	list.OnChange(func(v listquery.View[models.Record]) {
		a.logger.Debug(context.Background(), "list changed",
			"resource", r.Name, "page", v.Query.Page, "rows", len(v.Rows), "loading", v.Loading.String())
	})

	s := &screen{resource: r, service: svc, list: list}

	var stats mutation.Refresher
	if r.HasStats {
		s.stats = listquery.NewSummary(svc.Stats, a.notifier)
		stats = s.stats
	}
	s.flow = mutation.New(svc, a.notifier, a.confirm, list, stats,
		mutation.WithNoun(r.Singular), mutation.WithLogger(a.logger))
	return s
}

// closeScreen unmounts the open list so late responses are dropped.
func (a *App) closeScreen() {
	if a.screen == nil {
		return
	}
	a.screen.list.Unmount()
	a.screen = nil
}

func (a *App) requireScreen() (*screen, error) {
	if a.screen == nil {
		fmt.Fprintln(a.out, "Open a resource first: open <"+strings.Join(resources.Names(), "|")+">")
		return nil, errNoScreen
	}
	return a.screen, nil
}

// settle waits for pending debounces and fetches, then prints the page.
func (a *App) settle(ctx context.Context, s *screen) error {
	s.list.Wait()
	return a.render(ctx, s)
}

// Open mounts the list of a resource and prints its first page.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("open <" + strings.Join(resources.Names(), "|") + ">")
	}
	r, ok := resources.Lookup(args[0])
	if !ok {
		fmt.Fprintf(a.out, "Unknown resource %q. Choose one of: %s\n", args[0], strings.Join(resources.Names(), ", "))
		return errUsage
	}

	a.closeScreen()
	s := a.newScreen(r)
	a.screen = s
	s.list.Mount(ctx)
	if s.stats != nil {
		s.stats.Refresh(ctx)
	}
	return a.settle(ctx, s)
}
