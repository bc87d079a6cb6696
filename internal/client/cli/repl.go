package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
// The real App satisfies it; tests provide a lightweight stub.
type execIface interface {
	Login(ctx context.Context) error
	List(ctx context.Context, kind string) error
	Add(ctx context.Context, kind string) error
	Edit(ctx context.Context, kind, id string) error
	Pay(ctx context.Context, id, method string) error
	Remove(ctx context.Context, kind, id string) error
	Summary(ctx context.Context, date string) error
	CashClose(ctx context.Context, date string) error
	Opening(ctx context.Context, date string) error
	Sync(ctx context.Context) error
	Backup(ctx context.Context, kind string) error
}

const helpText = `Available commands:
  list [kind]          add <kind>           edit <kind> <id>
  pay <id> [method]    rm <kind> <id>       summary [date]
  close [date]         opening [date]       sync
  backup <kind>        login                exit
Kinds: errands (e), expenses (x), openings (o)`

func arg(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// Errors returned by handlers are ignored here; handlers report their own.
// Prompts inside handlers read from the same reader, so piped input stays
// in order.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mandaditos %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "login":
			_ = a.Login(ctx)

		case "l", "list", "ls":
			_ = a.List(ctx, arg(parts, 1))

		case "add", "new":
			if len(parts) < 2 {
				printlnFn("Usage: add <kind>")
				continue
			}
			_ = a.Add(ctx, parts[1])

		case "edit":
			if len(parts) < 3 {
				printlnFn("Usage: edit <kind> <id>")
				continue
			}
			_ = a.Edit(ctx, parts[1], parts[2])

		case "pay":
			if len(parts) < 2 {
				printlnFn("Usage: pay <id> [cash|transfer]")
				continue
			}
			_ = a.Pay(ctx, parts[1], arg(parts, 2))

		case "rm", "delete":
			if len(parts) < 3 {
				printlnFn("Usage: rm <kind> <id>")
				continue
			}
			_ = a.Remove(ctx, parts[1], parts[2])

		case "summary":
			_ = a.Summary(ctx, arg(parts, 1))

		case "close":
			_ = a.CashClose(ctx, arg(parts, 1))

		case "opening":
			_ = a.Opening(ctx, arg(parts, 1))

		case "sync":
			_ = a.Sync(ctx)

		case "backup":
			if len(parts) < 2 {
				printlnFn("Usage: backup <kind>")
				continue
			}
			_ = a.Backup(ctx, parts[1])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
