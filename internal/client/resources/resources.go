// Package resources describes the entities the console manages: their API
// paths, display fields, filters and extra actions.
package resources

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/clinicdesk/internal/client/models"
)

const StatusField = "isActive"

// Filter is a selectable list filter. Values never include models.FilterAll,
// which is always accepted.
type Filter struct {
	Name   string
	Values []string
}

func (f Filter) Accepts(value string) bool {
	return value == models.FilterAll || slices.Contains(f.Values, value)
}

type Resource struct {
	Name       string
	Path       string
	Singular   string
	LabelField string
	Columns    []string
	Filters    []Filter
	Actions    []string
	// ImageField is the multipart field used for a profile picture.
	ImageField string
	HasStatus  bool
	HasStats   bool
}

var activeFilter = Filter{Name: StatusField, Values: []string{"true", "false"}}

var registry = []Resource{
	{
		Name: "admins", Path: "/admins", Singular: "Admin", LabelField: "email",
		Columns:   []string{"name", "email", "role", "isActive"},
		Filters:   []Filter{activeFilter},
		HasStatus: true,
	},
	{
		Name: "patients", Path: "/patients", Singular: "Patient", LabelField: "name",
		Columns:    []string{"name", "email", "phone", "gender", "isActive"},
		Filters:    []Filter{{Name: "gender", Values: []string{"male", "female"}}, activeFilter},
		ImageField: "image",
		HasStatus:  true, HasStats: true,
	},
	{
		Name: "doctors", Path: "/doctors", Singular: "Doctor", LabelField: "name",
		Columns: []string{"name", "email", "specialization", "status", "isActive"},
		Filters: []Filter{
			{Name: "status", Values: []string{"pending", "approved", "rejected"}},
			activeFilter,
		},
		Actions:    []string{"approve", "reject"},
		ImageField: "image",
		HasStatus:  true, HasStats: true,
	},
	{
		Name: "categories", Path: "/categories", Singular: "Category", LabelField: "name",
		Columns:   []string{"name", "description", "isActive"},
		Filters:   []Filter{activeFilter},
		HasStatus: true,
	},
	{
		Name: "services", Path: "/services", Singular: "Service", LabelField: "title",
		Columns:   []string{"title", "category", "price", "duration", "isActive"},
		Filters:   []Filter{activeFilter},
		HasStatus: true, HasStats: true,
	},
	{
		Name: "slots", Path: "/slots", Singular: "Slot", LabelField: "startTime",
		Columns:  []string{"doctor", "date", "startTime", "endTime", "isBooked"},
		Filters:  []Filter{{Name: "isBooked", Values: []string{"true", "false"}}},
		HasStats: true,
	},
	{
		Name: "bookings", Path: "/bookings", Singular: "Booking", LabelField: "bookingNumber",
		Columns:  []string{"bookingNumber", "patient", "doctor", "service", "date", "status"},
		Filters:  []Filter{{Name: "status", Values: []string{"pending", "confirmed", "completed", "cancelled"}}},
		Actions:  []string{"cancel"},
		HasStats: true,
	},
}

// All returns every resource in menu order.
func All() []Resource {
	return slices.Clone(registry)
}

func Names() []string {
	out := make([]string, len(registry))
	for i, r := range registry {
		out[i] = r.Name
	}
	return out
}

// Lookup finds a resource by plural or singular name, case-insensitively.
func Lookup(name string) (Resource, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range registry {
		if r.Name == name || strings.ToLower(r.Singular) == name {
			return r, true
		}
	}
	return Resource{}, false
}

func (r Resource) Filter(name string) (Filter, bool) {
	for _, f := range r.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return Filter{}, false
}

func (r Resource) HasAction(action string) bool {
	return slices.Contains(r.Actions, action)
}

// Label is the human-readable description of rec used in prompts. It falls
// back to the record id.
func (r Resource) Label(rec models.Record) string {
	if s := rec.String(r.LabelField); s != "" {
		return s
	}
	return rec.ID()
}
