package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
	"github.com/dmitrijs2005/clinicdesk/internal/client/services"
)

func (a *App) Dashboard(ctx context.Context, _ []string) error {
	stats, err := services.NewDashboardService(a.api).Load(ctx)
	if err != nil {
		return a.fail(ctx, err)
	}
	return services.Render(a.out, stats)
}

func (a *App) Export(ctx context.Context, _ []string) error {
	return a.download(ctx, services.KindExport)
}

func (a *App) Report(ctx context.Context, _ []string) error {
	return a.download(ctx, services.KindReport)
}

// download saves a bookings export. With the bookings list open its search
// and filters apply.
func (a *App) download(ctx context.Context, kind string) error {
	q := models.Query{}
	if a.screen != nil && a.screen.resource.Name == "bookings" {
		q = a.screen.list.View().Query
	}

	location, err := a.exports.Export(ctx, kind, q)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.notifier.Success(ctx, fmt.Sprintf("Bookings %s saved to %s", kind, location))
	return nil
}
