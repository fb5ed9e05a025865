package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Partners(ctx context.Context) error
	History(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	SendImage(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Listen(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the pairchat CLI.
//
// Not logged in:
//
//	help, signup, login, exit | quit
//
// Logged in:
//
//	help, (p)artners, history <peer>, send <peer> <text>,
//	sendimg <peer> <path> [caption], save <image-url>, listen, logout,
//	exit | quit
//
// A peer may be given by ID, e-mail or full name. Errors returned by
// command handlers are ignored here; handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pairchat (%s) > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn("Available commands: signup, login, exit")
			case "signup":
				_ = a.Signup(ctx)
			case "login":
				_ = a.Login(ctx)
			default:
				printlnFn("Unknown command or not logged in:", cmd)
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: (p)artners, history <peer>, send <peer> <text>, sendimg <peer> <path> [caption], save <image-url>, listen, logout, exit")
		case "p", "partners":
			_ = a.Partners(ctx)
		case "history":
			_ = a.History(ctx, args)
		case "send":
			_ = a.Send(ctx, args)
		case "sendimg":
			_ = a.SendImage(ctx, args)
		case "save":
			_ = a.Save(ctx, args)
		case "listen":
			_ = a.Listen(ctx)
		case "logout":
			_ = a.Logout(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
