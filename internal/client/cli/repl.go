package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAwaitingOtp() bool

	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Abandon(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error

	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	EditUser(ctx context.Context, id string) error
	ToggleUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error

	Customers(ctx context.Context, args []string) error
	AddCustomer(ctx context.Context) error
	EditCustomer(ctx context.Context, id string) error
	DeleteCustomer(ctx context.Context, id string) error
	Stats(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, status, logout, exit"
	helpOtp       = "Available commands: verify, resend, abandon, login, status, logout, exit"
	helpSignedIn  = "Available commands: status, customers [text] [status=S] [platform=P] [date=D], addcustomer, " +
		"editcustomer <id>, delcustomer <id>, stats, users, adduser, edituser <id>, toggleuser <id>, deluser <id>, logout, exit"
)

// idCommands take exactly one argument, the record id.
var idCommands = map[string]func(execIface, context.Context, string) error{
	"edituser":     execIface.EditUser,
	"toggleuser":   execIface.ToggleUser,
	"deluser":      execIface.DeleteUser,
	"editcustomer": execIface.EditCustomer,
	"delcustomer":  execIface.DeleteCustomer,
}

// runREPL starts a simple read–eval–print loop for the console.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands that need a session are refused
// while signed out. The loop exits on EOF, when ctx is cancelled, or when the
// user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("crm %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			switch {
			case a.isLoggedIn():
				printlnFn(helpSignedIn)
			case a.isAwaitingOtp():
				printlnFn(helpOtp)
			default:
				printlnFn(helpAnonymous)
			}
			continue

		case "register":
			_ = a.Register(ctx)
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "status", "whoami":
			_ = a.Status(ctx)
			continue
		case "logout":
			_ = a.Logout(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "verify", "resend", "abandon":
			if !a.isAwaitingOtp() {
				printlnFn("No registration is awaiting verification.")
				continue
			}
			switch cmd {
			case "verify":
				_ = a.Verify(ctx)
			case "resend":
				_ = a.Resend(ctx)
			case "abandon":
				_ = a.Abandon(ctx)
			}
			continue
		}

		if fn, ok := idCommands[cmd]; ok {
			if !a.isLoggedIn() {
				printlnFn("Please log in first.")
				continue
			}
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			_ = fn(a, ctx, args[0])
			continue
		}

		switch cmd {
		case "users", "adduser", "customers", "addcustomer", "stats":
			if !a.isLoggedIn() {
				printlnFn("Please log in first.")
				continue
			}
		}

		switch cmd {
		case "users":
			_ = a.Users(ctx)
		case "adduser":
			_ = a.AddUser(ctx)
		case "customers":
			_ = a.Customers(ctx, args)
		case "addcustomer":
			_ = a.AddCustomer(ctx)
		case "stats":
			_ = a.Stats(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
