package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/breathepure/internal/readings"
	"github.com/google/uuid"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Users(ctx context.Context) error
	Active(ctx context.Context) error
	Feed(ctx context.Context) error
	Logs(ctx context.Context) error
	Readings(ctx context.Context) error
	FanUp(ctx context.Context) error
	FanDown(ctx context.Context) error
	Power(ctx context.Context) error
	Auto(ctx context.Context) error
	Trends(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Guest:
//	  - help, signup, login, readings, trends, exit | quit
//
//	Logged in:
//	  - whoami, logs, readings, trends, fan+, fan-, power, auto, logout
//
//	Admin:
//	  - users, active, feed
//
// A failed command prints a single error line and the loop continues. The
// error is also passed to onErr together with the command's op_id.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, onErr func(cmd, opID string, err error)) {
	for {
		printlnFn(fmt.Sprintf("breathe %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error
		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				printlnFn("Available commands: users, active, feed, logs, whoami, readings, trends, fan+, fan-, power, auto, logout, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: whoami, logs, readings, trends, fan+, fan-, power, auto, logout, exit")
			default:
				printlnFn("Available commands: signup, login, readings, trends, exit")
			}

		case "signup", "register":
			cmdErr = a.SignUp(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "users":
			cmdErr = a.Users(ctx)

		case "active":
			cmdErr = a.Active(ctx)

		case "feed":
			cmdErr = a.Feed(ctx)

		case "logs":
			cmdErr = a.Logs(ctx)

		case "readings", "r":
			cmdErr = a.Readings(ctx)

		case "fan+":
			cmdErr = a.FanUp(ctx)

		case "fan-":
			cmdErr = a.FanDown(ctx)

		case "power":
			cmdErr = a.Power(ctx)

		case "auto":
			cmdErr = a.Auto(ctx)

		case "trends":
			cmdErr = a.Trends(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
			if onErr != nil {
				onErr(cmd, uuid.NewString(), cmdErr)
			}
		}
	}
}

// RunREPL runs the interactive loop on the App's input until exit or EOF.
func (a *App) RunREPL(ctx context.Context) {
	printlnFn("Welcome to Breathe Pure (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartFilterWear(ctx, readings.FilterWearInterval)

	runREPL(ctx, a, a.getStatus, a.reader, func(cmd, opID string, err error) {
		a.log.With("op_id", opID).Warn(ctx, "command failed", "command", cmd, "error", err)
	})
}
