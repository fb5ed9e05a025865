package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(name string, args []string) error {
	if len(args) > 0 {
		name += " " + strings.Join(args, " ")
	}
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Signup(context.Context) error { return f.record("signup", nil) }
func (f *fakeExec) Partners(context.Context) error { return f.record("partners", nil) }
func (f *fakeExec) Listen(context.Context) error { return f.record("listen", nil) }
func (f *fakeExec) History(_ context.Context, a []string) error {
	return f.record("history", a)
}
func (f *fakeExec) Send(_ context.Context, a []string) error { return f.record("send", a) }
func (f *fakeExec) SendImage(_ context.Context, a []string) error {
	return f.record("sendimg", a)
}
func (f *fakeExec) Save(_ context.Context, a []string) error { return f.record("save", a) }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}

func silence(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &printed
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	printed := silence(t)

	input := strings.Join([]string{
		"help",
		"partners",
		"login",
		"",
		"help",
		"p",
		"history bob",
		"send bob hello there",
		"sendimg bob ./cat.png look",
		"save http://x/y.png",
		"listen",
		"foobar",
		"logout",
		"send bob after logout",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login",
		"partners",
		"history bob",
		"send bob hello there",
		"sendimg bob ./cat.png look",
		"save http://x/y.png",
		"listen",
		"logout",
	}, exec.calls)

	out := strings.Join(*printed, "\n")
	assert.Contains(t, out, "Available commands: signup, login, exit")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Unknown command or not logged in: partners")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	silence(t)
	exec := &fakeExec{}

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("signup")))
	assert.Equal(t, []string{"signup"}, exec.calls)
}
