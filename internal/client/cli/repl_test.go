package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	calls []string
	fail  error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.fail
}

func (f *fakeExec) Send(_ context.Context, args []string) error    { return f.record("send", args) }
func (f *fakeExec) Fetch(_ context.Context, args []string) error   { return f.record("fetch", args) }
func (f *fakeExec) History(_ context.Context, args []string) error { return f.record("history", args) }
func (f *fakeExec) Show(_ context.Context, args []string) error    { return f.record("show", args) }
func (f *fakeExec) Hosts(context.Context) error                    { return f.record("hosts", nil) }
func (f *fakeExec) Secret(context.Context) error                   { return f.record("secret", nil) }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"send photo.png https://a.example",
		"",
		"h 5",
		"show abc",
		"fetch abc out.png",
		"hosts",
		"secret",
		"exit",
		"send never.png",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, bufio.NewScanner(input))

	want := []string{
		"send photo.png https://a.example",
		"history 5",
		"show abc",
		"fetch abc out.png",
		"hosts",
		"secret",
	}
	if strings.Join(exec.calls, "|") != strings.Join(want, "|") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
}

func TestRunREPL_ErrorsDoNotStopTheLoop(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{fail: errors.New("all 2 destinations failed")}
	runREPL(context.Background(), exec, bufio.NewScanner(strings.NewReader("send a.png\nfoobar\nhosts\n")))

	if len(exec.calls) != 2 {
		t.Fatalf("calls = %v", exec.calls)
	}
	joined := strings.Join(*out, "")
	if !strings.Contains(joined, "Error: all 2 destinations failed") {
		t.Fatalf("command error not printed: %q", joined)
	}
	if !strings.Contains(joined, "unknown command: foobar") {
		t.Fatalf("unknown command not reported: %q", joined)
	}
}

func TestRunREPL_StopsWhenContextEnds(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, bufio.NewScanner(strings.NewReader("hosts\nhosts\n")))

	if len(exec.calls) != 1 {
		t.Fatalf("calls = %v, want one", exec.calls)
	}
}

func TestDispatch_Quit(t *testing.T) {
	if err := dispatch(context.Background(), &fakeExec{}, []string{"quit"}); !errors.Is(err, errQuit) {
		t.Fatalf("expected errQuit, got %v", err)
	}
}
