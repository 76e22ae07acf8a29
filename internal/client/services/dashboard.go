package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/dmitrijs2005/clinicdesk/internal/client/client"
	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
)

const barWidth = 30

type DashboardService struct {
	client client.Client
}

func NewDashboardService(c client.Client) *DashboardService {
	return &DashboardService{client: c}
}

func (s *DashboardService) Load(ctx context.Context) (models.Stats, error) {
	return s.client.Dashboard(ctx)
}

// Render prints the numeric totals of stats, one bar per key, scaled to
// the largest value. Non-numeric entries are skipped.
func Render(w io.Writer, stats models.Stats) error {
	keys := make([]string, 0, len(stats))
	width, peak := 0, 0.0
	for k, v := range stats {
		if _, ok := v.(float64); !ok {
			continue
		}
		keys = append(keys, k)
		width = max(width, len(k))
		peak = math.Max(peak, stats.Number(k))
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "no statistics available")
		return err
	}

	for _, k := range keys {
		n := stats.Number(k)
		bar := 0
		if peak > 0 && n > 0 {
			bar = max(1, int(math.Round(n/peak*barWidth)))
		}
		if _, err := fmt.Fprintf(w, "%-*s %8s %s\n", width, k, formatNumber(n), strings.Repeat("#", bar)); err != nil {
			return err
		}
	}
	return nil
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) {
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprintf("%.2f", n)
}
