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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Categories(ctx context.Context) error
	SelectCategory(ctx context.Context, arg string) error
	ClearCategory(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Filter(ctx context.Context) error
	Refresh(ctx context.Context) error
	Upload(ctx context.Context) error
	Open(ctx context.Context, arg string) error
	Download(ctx context.Context, arg, dest string) error
}

// runREPL starts a simple read–eval–print loop for the StudyShare CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Not logged in:
//	  - help              show available commands
//	  - register          create an account
//	  - login             authenticate
//	  - categories        list subject categories
//	  - exit | quit       leave the program
//
//	Logged in, additionally:
//	  - (l)ist | refresh  list files of the selected category
//	  - category <id>     select a category and list it
//	  - clear             drop the category selection
//	  - search <name>     find files by name
//	  - filter            filter by class code and name
//	  - upload            upload a file
//	  - open <n>          print the link of file n
//	  - download <n> [to] save file n locally
//	  - whoami            show the signed-in user and school
//	  - logout            log out
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("studyshare %s> ", statusFn()))

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
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, refresh, category <id>, clear, search <name>, filter, upload, open <n>, download <n> [dest], categories, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, categories, exit")
			}
			continue

		case "register":
			_ = a.Register(ctx)
			continue

		case "login":
			_ = a.Login(ctx)
			continue

		case "categories":
			_ = a.Categories(ctx)
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !isKnown(cmd) {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}

		switch cmd {
		case "l", "list", "refresh":
			_ = a.Refresh(ctx)

		case "category":
			if len(args) == 0 {
				printlnFn("Usage: category <id>")
				continue
			}
			_ = a.SelectCategory(ctx, strings.Join(args, " "))

		case "clear":
			_ = a.ClearCategory(ctx)

		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "filter":
			_ = a.Filter(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <n>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "download":
			if len(args) == 0 {
				printlnFn("Usage: download <n> [dest]")
				continue
			}
			_ = a.Download(ctx, args[0], strings.Join(args[1:], " "))

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "logout":
			_ = a.Logout(ctx)
		}
	}
}

var protectedCommands = map[string]bool{
	"l": true, "list": true, "refresh": true, "category": true, "clear": true,
	"search": true, "filter": true, "upload": true, "open": true, "download": true,
	"whoami": true, "logout": true,
}

func isKnown(cmd string) bool {
	return protectedCommands[cmd]
}
