package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dmitrijs2005/geoposts/internal/client/client"
	"github.com/dmitrijs2005/geoposts/internal/client/services"
)

// command is a single REPL verb.
type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

var errUsage = errors.New("usage")

// runREPL reads commands line by line and dispatches them. Command errors are
// reported and the loop goes on. It returns on EOF, on "exit" or "quit", or
// when ctx is done.
func runREPL(ctx context.Context, cmds map[string]command, statusFn func() string, reader *bufio.Reader, out io.Writer, prompt bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		if prompt {
			fmt.Fprintf(out, "geoposts (%s)> ", statusFn())
		}
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printHelp(cmds, out)
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		}

		cmd, ok := cmds[name]
		if !ok {
			fmt.Fprintln(out, "Unknown command:", name)
			continue
		}
		if err := cmd.run(ctx, args); err != nil {
			if errors.Is(err, errUsage) {
				fmt.Fprintln(out, "Usage:", cmd.usage)
				continue
			}
			fmt.Fprintln(out, "Error:", errorMessage(err))
		}
	}
}

func printHelp(cmds map[string]command, out io.Writer) {
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintln(out, "Available commands:")
	for _, name := range names {
		fmt.Fprintln(out, " ", cmds[name].usage)
	}
	fmt.Fprintln(out, "  exit")
}

// errorMessage turns gateway and flow errors into a line for the user.
func errorMessage(err error) string {
	var se *client.ServerError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "not authorized, run 'login' first"
	case errors.As(err, &se):
		return fmt.Sprintf("server responded with status %d", se.StatusCode)
	case errors.Is(err, client.ErrNoResponse):
		return "server did not respond"
	case errors.Is(err, client.ErrDecoding):
		return "server sent an unexpected response"
	case errors.Is(err, services.ErrOAuthCancelled):
		return "login cancelled"
	default:
		return err.Error()
	}
}
