package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	pullErr  error

	calls []string
	args  [][]string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Whoami(ctx context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}
func (f *fakeExec) Info(ctx context.Context) error { f.calls = append(f.calls, "info"); return nil }
func (f *fakeExec) Pull(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "pull")
	f.args = append(f.args, args)
	return f.pullErr
}
func (f *fakeExec) Push(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "push")
	f.args = append(f.args, args)
	return nil
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = strings.TrimSpace(strings.ReplaceAll(toString(v), "\n", " "))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	default:
		return ""
	}
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrints(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"whoami",
		"pull favourites fav.json",
		"push history hist.json",
		"info",
		"foobar",
		"logout",
		"exit",
		"whoami",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(me)" }, bufio.NewReader(input))

	assert.Equal(t, []string{"login", "whoami", "pull", "push", "info", "logout"}, exec.calls)
	assert.Equal(t, [][]string{{"favourites", "fav.json"}, {"history", "hist.json"}}, exec.args)

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Available commands: login, info, exit")
	assert.Contains(t, joined, "pull <favourites|history> <file>")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "ms (me)>")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	out := capturePrints(t)

	exec := &fakeExec{loggedIn: true, pullErr: errors.New("server down")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("pull history h.json\n")))

	assert.Contains(t, strings.Join(*out, "\n"), "Error: server down")
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("info")))
	assert.Equal(t, []string{"info"}, exec.calls, "last line without newline is still executed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("info\n")))
	assert.Empty(t, exec.calls)
}
