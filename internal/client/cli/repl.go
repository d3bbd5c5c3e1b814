package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App implements
// it; tests use a stub.
type execIface interface {
	Send(ctx context.Context, args []string) error
	Fetch(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Hosts(ctx context.Context) error
	Secret(ctx context.Context) error
}

const helpText = "Available commands: send <path> [destination ...], fetch <id> [output], history [n], show <id>, hosts, secret, exit"

// errQuit is returned by dispatch for exit and quit.
var errQuit = errors.New("quit")

func dispatch(ctx context.Context, a execIface, parts []string) error {
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "help":
		printlnFn(helpText)
		return nil
	case "send":
		return a.Send(ctx, args)
	case "fetch":
		return a.Fetch(ctx, args)
	case "history", "h":
		return a.History(ctx, args)
	case "show":
		return a.Show(ctx, args)
	case "hosts":
		return a.Hosts(ctx)
	case "secret":
		return a.Secret(ctx)
	case "exit", "quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// runREPL reads commands line by line and dispatches them until EOF, exit
// or quit. Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("vector> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		err := dispatch(ctx, a, parts)
		switch {
		case errors.Is(err, errQuit):
			printlnFn("Bye!")
			return
		case err != nil:
			printlnFn("Error:", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
