package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/cybersib/cybersib/internal/common"
	"github.com/cybersib/cybersib/internal/logging"
)

// printFn and printlnFn are test seams for REPL output.
var (
	printFn   = fmt.Print
	printlnFn = fmt.Println
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	Help(ctx context.Context)
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Start(ctx context.Context, args []string) error
	Complete(ctx context.Context, args []string) error
	Progress(ctx context.Context) error
	Achievements(ctx context.Context) error
	Stats(ctx context.Context) error
	Challenges(ctx context.Context) error
	Submit(ctx context.Context, args []string) error
	Leaderboard(ctx context.Context, args []string) error
	Profile(ctx context.Context) error
	Passwd(ctx context.Context) error
	SetActive(ctx context.Context, args []string, active bool) error
	Terminal(ctx context.Context, line string)
}

// runREPL reads one line at a time, dispatches account and progress
// commands to a and forwards everything else to the shell. It returns on
// EOF, on "exit"/"quit" or when ctx is cancelled.
//
// Handler errors are printed as a short message and never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(fmt.Sprintf("cybersib (%s)> ", statusFn()))

		line, err := readLine(reader)
		if err != nil {
			printlnFn()
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		args := parts[1:]
		ctx := logging.ContextWith(ctx, "command", cmd)

		switch cmd {
		case "help":
			a.Help(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		var herr error
		switch cmd {
		case "register":
			herr = a.Register(ctx)
		case "login":
			herr = a.Login(ctx)
		case "logout":
			herr = a.Logout(ctx)
		case "start":
			herr = a.Start(ctx, args)
		case "complete":
			herr = a.Complete(ctx, args)
		case "progress":
			herr = a.Progress(ctx)
		case "achievements":
			herr = a.Achievements(ctx)
		case "stats":
			herr = a.Stats(ctx)
		case "challenges":
			herr = a.Challenges(ctx)
		case "submit":
			herr = a.Submit(ctx, args)
		case "leaderboard", "top":
			herr = a.Leaderboard(ctx, args)
		case "profile":
			herr = a.Profile(ctx)
		case "passwd":
			herr = a.Passwd(ctx)
		case "disable", "enable":
			herr = a.SetActive(ctx, args, cmd == "enable")
		default:
			a.Terminal(ctx, line)
		}
		if herr != nil {
			printlnFn("error:", common.Message(herr))
		}
	}
}
