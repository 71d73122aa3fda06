package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	failOn   string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errors.New("failed " + call)
	}
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(context.Context) error { return f.record("whoami") }
func (f *fakeExec) List(context.Context) error   { return f.record("list") }
func (f *fakeExec) Upload(_ context.Context, path string) error {
	return f.record("upload " + path)
}
func (f *fakeExec) Delete(_ context.Context, id string) error {
	return f.record("delete " + id)
}
func (f *fakeExec) Share(_ context.Context, id string) error {
	return f.record("share " + id)
}
func (f *fakeExec) Open(_ context.Context, link string) error {
	return f.record("open " + link)
}

func captureOutput(t *testing.T) *[]string {
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

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"l",
		"upload /tmp/my notes.txt",
		"delete abc",
		"share abc",
		"open https://s/share/abc",
		"whoami",
		"logout",
		"foobar",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login", "list", "upload /tmp/my notes.txt", "delete abc", "share abc",
		"open https://s/share/abc", "whoami", "logout",
	}, exec.calls)
	assert.Contains(t, *out, helpSignedOut)
	assert.Contains(t, *out, helpSignedIn)
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
	assert.Contains(t, *out, "fv (status)> ")
}

func TestRunREPL_UsageAndErrors(t *testing.T) {
	out := captureOutput(t)

	input := "upload\ndelete\ndelete a b\nshare\nopen\nlist\n"
	exec := &fakeExec{failOn: "list"}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{"list"}, exec.calls)
	assert.Contains(t, *out, "Usage: upload <path>")
	assert.Contains(t, *out, "Usage: delete <id>")
	assert.Contains(t, *out, "Usage: share <id>")
	assert.Contains(t, *out, "Usage: open <link|id>")
	assert.Contains(t, *out, "Error: failed list")
}
