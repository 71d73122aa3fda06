package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a seam for user-facing output of the loop itself.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	Delete(ctx context.Context, id string) error
	Share(ctx context.Context, id string) error
	Open(ctx context.Context, link string) error
}

const (
	helpSignedOut = "Available commands: register, login, open <link|id>, exit"
	helpSignedIn  = "Available commands: (l)ist, upload <path>, delete <id>, share <id>, open <link|id>, whoami, logout, exit"
)

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fv (%s)> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "l", "list":
			err = a.List(ctx)
		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <path>")
				continue
			}
			err = a.Upload(ctx, strings.Join(args, " "))
		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			err = a.Delete(ctx, args[0])
		case "share":
			if len(args) != 1 {
				printlnFn("Usage: share <id>")
				continue
			}
			err = a.Share(ctx, args[0])
		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <link|id>")
				continue
			}
			err = a.Open(ctx, args[0])
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
