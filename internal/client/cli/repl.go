package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. The
// real App type satisfies it; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Export(ctx context.Context) error
	Accounts(ctx context.Context) error
	Register(ctx context.Context) error
	SetStatus(ctx context.Context, status string) error
	DeleteAccount(ctx context.Context) error
	Search(ctx context.Context) error
}

// runREPL reads a command per line and dispatches to 'a'. The loop
// exits on scanner EOF or when the user types "exit" or "quit".
// Command handlers report their own errors, so failures here are
// ignored and the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("daybook> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, edit, delete, export, whoami, logout, exit")
				printlnFn("Master only: accounts, register, block, unblock, rmaccount, search")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			_ = a.Edit(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "export":
			_ = a.Export(ctx)

		case "accounts":
			_ = a.Accounts(ctx)

		case "register":
			_ = a.Register(ctx)

		case "block":
			_ = a.SetStatus(ctx, "blocked")

		case "unblock":
			_ = a.SetStatus(ctx, "active")

		case "rmaccount":
			_ = a.DeleteAccount(ctx)

		case "search":
			_ = a.Search(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
