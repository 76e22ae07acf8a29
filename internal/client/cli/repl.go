package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// command is one REPL verb. Public commands run without a session.
type command struct {
	name   string
	usage  string
	help   string
	public bool
	run    func(ctx context.Context, args []string) error
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	commands() []command
}

// runREPL starts a simple read–eval–print loop for the clinicdesk console.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to the matching entry of a.commands(). Unknown commands are
// reported back to the user; commands that need a session are refused while
// signed out. The loop exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "clinicdesk%s> ", statusFn())
		line, readErr := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				fmt.Fprintln(w)
				return
			}
			continue
		}
		name, args := strings.ToLower(parts[0]), parts[1:]

		switch name {
		case "help":
			printHelp(w, a.commands(), a.isLoggedIn())
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		cmd, ok := lookupCommand(a.commands(), name)
		switch {
		case !ok:
			fmt.Fprintln(w, "Unknown command:", name)
		case !cmd.public && !a.isLoggedIn():
			fmt.Fprintln(w, "Please log in first (type 'login').")
		default:
			_ = cmd.run(ctx, args)
		}

		if readErr != nil {
			return
		}
	}
}

func lookupCommand(cmds []command, name string) (command, bool) {
	for _, c := range cmds {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printHelp(w io.Writer, cmds []command, loggedIn bool) {
	visible := make([]command, 0, len(cmds))
	for _, c := range cmds {
		if c.public || loggedIn {
			visible = append(visible, c)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].name < visible[j].name })

	fmt.Fprintln(w, "Available commands:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range visible {
		fmt.Fprintf(tw, "  %s\t%s\n", c.usage, c.help)
	}
	fmt.Fprintf(tw, "  %s\t%s\n", "help", "show this list")
	fmt.Fprintf(tw, "  %s\t%s\n", "exit | quit", "leave the console")
	_ = tw.Flush()
}

// commands lists every verb the console understands.
func (a *App) commands() []command {
	return []command{
		{name: "login", usage: "login", help: "sign in", public: true, run: a.Login},
		{name: "logout", usage: "logout", help: "sign out", run: a.Logout},
		{name: "whoami", usage: "whoami", help: "show the signed-in admin", run: a.WhoAmI},
		{name: "profile", usage: "profile", help: "update your admin profile", run: a.Profile},
		{name: "dashboard", usage: "dashboard", help: "show clinic totals", run: a.Dashboard},
		{name: "open", usage: "open <resource>", help: "open a resource list", run: a.Open},
		{name: "show", usage: "show", help: "print the current page", run: a.Show},
		{name: "page", usage: "page <n>", help: "go to page n", run: a.Page},
		{name: "next", usage: "next", help: "next page", run: a.Next},
		{name: "prev", usage: "prev", help: "previous page", run: a.Prev},
		{name: "limit", usage: "limit <n>", help: "rows per page", run: a.Limit},
		{name: "search", usage: "search [text]", help: "search the list (no text clears)", run: a.Search},
		{name: "filter", usage: "filter <name> <value>", help: "filter the list (value 'all' clears)", run: a.Filter},
		{name: "refresh", usage: "refresh", help: "reload the list", run: a.Refresh},
		{name: "stats", usage: "stats", help: "show resource statistics", run: a.Stats},
		{name: "create", usage: "create", help: "create a record", run: a.Create},
		{name: "update", usage: "update <id>", help: "update a record", run: a.Update},
		{name: "delete", usage: "delete <id>", help: "delete a record", run: a.Delete},
		{name: "toggle", usage: "toggle <id>", help: "activate or deactivate a record", run: a.Toggle},
		{name: "cancel", usage: "cancel <id>", help: "cancel a booking", run: a.Cancel},
		{name: "approve", usage: "approve <id>", help: "approve a doctor", run: a.Approve},
		{name: "reject", usage: "reject <id>", help: "reject a doctor", run: a.Reject},
		{name: "export", usage: "export", help: "download bookings export", run: a.Export},
		{name: "report", usage: "report", help: "download bookings report", run: a.Report},
	}
}
