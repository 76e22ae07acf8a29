// Package cli provides the interactive clinicdesk admin console.
//
// It wires configuration, the local session database, the admin API client
// and an interactive REPL. Typical flow: restore the stored session (or
// prompt for credentials), open a resource list, then page, search, filter
// and mutate its records.
//
// Key features:
//   - Login / Logout / whoami / profile
//   - Resource lists with paging, debounced search and filters
//   - Create, update, delete and status toggles with confirmation
//   - Booking cancel, doctor approve / reject
//   - Dashboard totals and booking exports (local directory or S3)
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, runREPL and (*App).commands for details.
package cli
