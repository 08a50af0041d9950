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
	isAdmin() bool
	flushMessage()

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	FirstAccess(ctx context.Context) error
	ResetPassword(ctx context.Context) error

	Sheets(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Next(ctx context.Context) error
	Download(ctx context.Context, args []string) error

	Admin(ctx context.Context) error
	CreateUser(ctx context.Context) error
	EditAccess(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	DeleteSheet(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Comandos: login, firstaccess, reset, help, exit"
	helpUser      = "Comandos: sheets, open <id> [-c coluna] [busca], search [-c coluna] [busca], next, download [id] [csv|excel], whoami, logout, help, exit"
	helpAdmin     = "Administração: admin, createuser, editaccess <usuário>, deleteuser <usuário>, upload [arquivo], deletesheet <id>"

	msgNeedLogin = "Faça login primeiro."
	msgNeedAdmin = "Comando disponível apenas para administradores."
)

// runREPL starts a read–eval–print loop for the Portal CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to a. Commands that need a session or admin rights are refused
// up front. After every command the message slot is printed. The loop exits
// on EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are not printed here: services report
// user-facing outcomes through the message slot and handlers print their
// own input errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("portal %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Até logo!")
			return
		}
		if !dispatch(ctx, a, cmd, args) {
			printlnFn("Comando desconhecido:", cmd)
		}
		a.flushMessage()
	}
}

// dispatch runs cmd and reports whether it was recognised.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) bool {
	switch cmd {
	case "help":
		printlnFn(helpAnonymous)
		if a.isLoggedIn() {
			printlnFn(helpUser)
		}
		if a.isAdmin() {
			printlnFn(helpAdmin)
		}
		return true
	case "login":
		_ = a.Login(ctx)
		return true
	case "firstaccess":
		_ = a.FirstAccess(ctx)
		return true
	case "reset":
		_ = a.ResetPassword(ctx)
		return true
	}

	userCmds := map[string]func() error{
		"logout":   func() error { return a.Logout(ctx) },
		"whoami":   func() error { return a.WhoAmI(ctx) },
		"sheets":   func() error { return a.Sheets(ctx) },
		"open":     func() error { return a.Open(ctx, args) },
		"search":   func() error { return a.Search(ctx, args) },
		"next":     func() error { return a.Next(ctx) },
		"download": func() error { return a.Download(ctx, args) },
	}
	adminCmds := map[string]func() error{
		"admin":       func() error { return a.Admin(ctx) },
		"createuser":  func() error { return a.CreateUser(ctx) },
		"editaccess":  func() error { return a.EditAccess(ctx, args) },
		"deleteuser":  func() error { return a.DeleteUser(ctx, args) },
		"upload":      func() error { return a.Upload(ctx, args) },
		"deletesheet": func() error { return a.DeleteSheet(ctx, args) },
	}

	if fn, ok := userCmds[cmd]; ok {
		if !a.isLoggedIn() {
			printlnFn(msgNeedLogin)
			return true
		}
		_ = fn()
		return true
	}
	if fn, ok := adminCmds[cmd]; ok {
		if !a.isAdmin() {
			printlnFn(msgNeedAdmin)
			return true
		}
		_ = fn()
		return true
	}
	return false
}
