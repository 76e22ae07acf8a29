package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFields_OK(t *testing.T) {
	rec, err := ParseFields([]string{"name = Ann", "isActive=false", "fee=150", "note=a=b"})
	require.NoError(t, err)
	require.Equal(t, Record{"name": "Ann", "isActive": false, "fee": 150, "note": "a=b"}, rec)
}

func TestParseFields_ErrorOnMalformed(t *testing.T) {
	_, err := ParseFields([]string{"justname"})
	require.ErrorIs(t, err, ErrIncorrectField)

	_, err = ParseFields([]string{"=value"})
	require.ErrorIs(t, err, ErrIncorrectField)
}

func TestQueryParams_OmitsAllAndEmpty(t *testing.T) {
	q := Query{
		Page:    2,
		Limit:   10,
		Search:  "  ann ",
		Filters: map[string]string{"status": "all", "gender": "", "isActive": "true"},
	}
	require.Equal(t, map[string]any{
		"page":     2,
		"limit":    10,
		"search":   "ann",
		"isActive": "true",
	}, q.Params())

	require.Equal(t, map[string]any{"page": 1, "limit": 5}, Query{Page: 1, Limit: 5}.Params())
}

func TestQueryClone_DoesNotShareFilters(t *testing.T) {
	q := Query{Filters: map[string]string{"status": "pending"}}
	c := q.Clone()
	c.Filters["status"] = "all"
	require.Equal(t, "pending", q.Filters["status"])
}

func TestRecord_IDAndString(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id": "b1",
		"fee": 120,
		"isActive": true,
		"patient": {"_id": "p1", "name": "Ann"}
	}`), &rec))

	require.Equal(t, "b1", rec.ID())
	require.Equal(t, "120", rec.String("fee"))
	require.Equal(t, "true", rec.String("isActive"))
	require.Equal(t, "Ann", rec.String("patient"))
	require.Equal(t, "", rec.String("missing"))
	require.Equal(t, "7", Record{"id": 7}.ID())
}

func TestIdentityMerge(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	id := Identity{ID: "a1", Name: "Ann", Email: "ann@x.com", IsActive: true, CreatedAt: created}

	got, err := id.Merge(map[string]any{"name": "Anna", "unknown": 1})
	require.NoError(t, err)
	require.Equal(t, "Anna", got.Name)
	require.Equal(t, "ann@x.com", got.Email)
	require.True(t, got.IsActive)
	require.True(t, created.Equal(got.CreatedAt))

	same, err := id.Merge(nil)
	require.NoError(t, err)
	require.Equal(t, id, same)

	_, err = id.Merge(map[string]any{"isActive": "yes"})
	require.Error(t, err)
}

func TestStatsNumber(t *testing.T) {
	s := Stats{"total": 42.0, "active": 3, "label": "x"}
	require.Equal(t, 42.0, s.Number("total"))
	require.Equal(t, 3.0, s.Number("active"))
	require.Equal(t, 0.0, s.Number("label"))
	require.Equal(t, 0.0, s.Number("missing"))
}
