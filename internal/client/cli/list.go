package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/clinicdesk/internal/client/listquery"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
)

// Show prints the current page without fetching.
func (a *App) Show(ctx context.Context, _ []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	return a.render(ctx, s)
}

func (a *App) Page(ctx context.Context, args []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return a.usage("page <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return a.usage("page <n>")
	}
	s.list.SetPage(n)
	return a.settle(ctx, s)
}

func (a *App) Next(ctx context.Context, _ []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	s.list.NextPage()
	return a.settle(ctx, s)
}

func (a *App) Prev(ctx context.Context, _ []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	s.list.PrevPage()
	return a.settle(ctx, s)
}

func (a *App) Limit(ctx context.Context, args []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return a.usage("limit <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return a.usage("limit <n>")
	}
	if err := s.list.SetLimit(n); err != nil {
		return a.fail(ctx, err)
	}
	return a.settle(ctx, s)
}

// Search sets the raw search text; the fetch waits for the debounce.
func (a *App) Search(ctx context.Context, args []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	s.list.SetSearch(strings.Join(args, " "))
	return a.settle(ctx, s)
}

func (a *App) Filter(ctx context.Context, args []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return a.usage("filter <name> <value>")
	}
	f, ok := s.resource.Filter(args[0])
	if !ok {
		names := make([]string, 0, len(s.resource.Filters))
		for _, f := range s.resource.Filters {
			names = append(names, f.Name)
		}
		return a.fail(ctx, fmt.Errorf("%s has no filter %q (available: %s)", s.resource.Name, args[0], strings.Join(names, ", ")))
	}
	if !f.Accepts(args[1]) {
		return a.fail(ctx, fmt.Errorf("filter %s accepts %s or %s", f.Name, strings.Join(f.Values, ", "), models.FilterAll))
	}
	s.list.SetFilter(f.Name, args[1])
	return a.settle(ctx, s)
}

func (a *App) Refresh(ctx context.Context, _ []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	s.list.Refresh(ctx)
	if s.stats != nil {
		s.stats.Refresh(ctx)
	}
	return a.settle(ctx, s)
}

// Stats refreshes and prints the statistics of the open resource.
func (a *App) Stats(ctx context.Context, _ []string) error {
	s, err := a.requireScreen()
	if err != nil {
		return err
	}
	if s.stats == nil {
		fmt.Fprintf(a.out, "No statistics for %s.\n", s.resource.Name)
		return nil
	}
	s.stats.Refresh(ctx)
	s.stats.Wait()

	stats, err := s.stats.Stats()
	if err != nil && stats == nil {
		return err
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "%-20s %v\n", k+":", stats[k])
	}
	return nil
}

// render prints the current view of s as a table with a paging footer.
func (a *App) render(ctx context.Context, s *screen) error {
	v := s.list.View()
	if v.Err != nil && len(v.Rows) == 0 {
		if errors.Is(v.Err, listquery.ErrEmptyResponse) {
			fmt.Fprintf(a.out, "No %s found.\n", s.resource.Name)
		}
		return v.Err
	}
	if len(v.Rows) == 0 {
		fmt.Fprintf(a.out, "No %s found.\n", s.resource.Name)
		return nil
	}

	columns := append([]string{"_id"}, s.resource.Columns...)
	if err := renderTable(a.out, columns, v.Rows); err != nil {
		a.logger.Error(ctx, "failed to render table", "error", err)
		return err
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d total)%s\n", v.Query.Page, max(v.TotalPages, 1), v.TotalDocs, describeQuery(v.Query))
	return nil
}

func describeQuery(q models.Query) string {
	var parts []string
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", q.Search))
	}
	names := make([]string, 0, len(q.Filters))
	for k, v := range q.Filters {
		if v != "" && v != models.FilterAll {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	for _, k := range names {
		parts = append(parts, k+"="+q.Filters[k])
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, " ") + "]"
}
