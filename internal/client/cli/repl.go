package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Info(ctx context.Context) error
	Pull(ctx context.Context, args []string) error
	Push(ctx context.Context, args []string) error
}

// runREPL reads one command per line and dispatches it to a.
//
//	Not logged in: help, login, info, exit | quit
//	Logged in:     help, whoami, pull <kind> <file>, push <kind> <file>,
//	               logout, info, exit | quit
//
// kind is "favourites" or "history". Command errors are printed and the
// loop continues. The loop ends on EOF, exit/quit, or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ms %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, pull <favourites|history> <file>, push <favourites|history> <file>, logout, info, exit")
			} else {
				printlnFn("Available commands: login, info, exit")
			}
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "info":
			cmdErr = a.Info(ctx)
		case "pull":
			cmdErr = a.Pull(ctx, args)
		case "push":
			cmdErr = a.Push(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
