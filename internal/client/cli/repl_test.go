package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	admin    bool

	calls   []string
	args    [][]string
	flushes int
}

func (f *fakeExec) call(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) isAdmin() bool    { return f.admin }
func (f *fakeExec) flushMessage()    { f.flushes++ }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.call("login", nil)
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn, f.admin = false, false
	return f.call("logout", nil)
}
func (f *fakeExec) WhoAmI(context.Context) error        { return f.call("whoami", nil) }
func (f *fakeExec) FirstAccess(context.Context) error   { return f.call("firstaccess", nil) }
func (f *fakeExec) ResetPassword(context.Context) error { return f.call("reset", nil) }
func (f *fakeExec) Sheets(context.Context) error        { return f.call("sheets", nil) }
func (f *fakeExec) Open(_ context.Context, args []string) error {
	return f.call("open", args)
}
func (f *fakeExec) Search(_ context.Context, args []string) error {
	return f.call("search", args)
}
func (f *fakeExec) Next(context.Context) error { return f.call("next", nil) }
func (f *fakeExec) Download(_ context.Context, args []string) error {
	return f.call("download", args)
}
func (f *fakeExec) Admin(context.Context) error      { return f.call("admin", nil) }
func (f *fakeExec) CreateUser(context.Context) error { return f.call("createuser", nil) }
func (f *fakeExec) EditAccess(_ context.Context, args []string) error {
	return f.call("editaccess", args)
}
func (f *fakeExec) DeleteUser(_ context.Context, args []string) error {
	return f.call("deleteuser", args)
}
func (f *fakeExec) Upload(_ context.Context, args []string) error {
	return f.call("upload", args)
}
func (f *fakeExec) DeleteSheet(_ context.Context, args []string) error {
	return f.call("deletesheet", args)
}

// capturePrintln collects everything runREPL prints.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"sheets",
		"login",
		"sheets",
		"open 7 -c Nome acme",
		"next",
		"download 7 excel",
		"exit",
		"sheets",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	want := []string{"login", "sheets", "open", "next", "download"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := strings.Join(exec.args[2], " "); got != "7 -c Nome acme" {
		t.Fatalf("open args = %q", got)
	}
	// One flush per command read before exit.
	if exec.flushes != 7 {
		t.Fatalf("flushes = %d, want 7", exec.flushes)
	}
}

func TestRunREPL_Gating(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("sheets\nadmin\n"))
	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if !contains(*lines, msgNeedLogin) {
		t.Fatalf("missing %q in %v", msgNeedLogin, *lines)
	}
	if !contains(*lines, msgNeedAdmin) {
		t.Fatalf("missing %q in %v", msgNeedAdmin, *lines)
	}

	exec = &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("deleteuser 3\nwhoami\n"))
	if strings.Join(exec.calls, ",") != "whoami" {
		t.Fatalf("calls = %v", exec.calls)
	}

	exec = &fakeExec{loggedIn: true, admin: true}
	runREPL(context.Background(), exec, func() string { return "" },
		rdr("admin\ncreateuser\neditaccess 3\ndeleteuser 3\nupload a b.xlsx\ndeletesheet 9\n"))
	want := "admin,createuser,editaccess,deleteuser,upload,deletesheet"
	if strings.Join(exec.calls, ",") != want {
		t.Fatalf("calls = %v", exec.calls)
	}
	if got := strings.Join(exec.args[4], " "); got != "a b.xlsx" {
		t.Fatalf("upload args = %q", got)
	}
}

func TestRunREPL_HelpDependsOnRole(t *testing.T) {
	lines := capturePrintln(t)
	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, rdr("help\n"))
	if contains(*lines, helpUser) || contains(*lines, helpAdmin) {
		t.Fatalf("anonymous help shows restricted commands: %v", *lines)
	}

	lines = capturePrintln(t)
	runREPL(context.Background(), &fakeExec{loggedIn: true, admin: true}, func() string { return "" }, rdr("help\n"))
	if !contains(*lines, helpUser) || !contains(*lines, helpAdmin) {
		t.Fatalf("admin help incomplete: %v", *lines)
	}
}

func TestRunREPL_UnknownAndQuit(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("\nfoobar\nquit\nlogin\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if !contains(*lines, "Comando desconhecido: foobar") {
		t.Fatalf("unknown command not reported: %v", *lines)
	}
	if !contains(*lines, "Até logo!") {
		t.Fatalf("no goodbye: %v", *lines)
	}
	if !contains(*lines, "portal s> ") {
		t.Fatalf("no prompt: %v", *lines)
	}
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("firstaccess"))
	if strings.Join(exec.calls, ",") != "firstaccess" {
		t.Fatalf("calls = %v", exec.calls)
	}
}
