package cmdutil

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.out, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMustRunReturnsOutputOnSuccess(t *testing.T) {
	runner := &fakeRunner{out: "some output\n"}
	inv := &Invoker{
		Runner: runner,
		Log:    discardLogger(),
		Exit:   func(code int) { t.Fatalf("unexpected exit %d", code) },
	}

	out := inv.MustRun("tool", "--flag", "value")
	assert.Equal(t, "some output\n", out)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"tool", "--flag", "value"}, runner.calls[0])
}

func TestMustRunExitsOnFailure(t *testing.T) {
	runner := &fakeRunner{out: "boom\nexplanation\n", err: errors.New("exit status 2")}

	exitCode := -1
	inv := &Invoker{
		Runner: runner,
		Log:    discardLogger(),
		Exit:   func(code int) { exitCode = code },
	}

	inv.MustRun("tool")
	assert.Equal(t, 1, exitCode)
}

func TestTryRunSurfacesExitStatus(t *testing.T) {
	runner := &fakeRunner{out: "not initialized\n", err: errors.New("exit status 1")}
	inv := &Invoker{
		Runner: runner,
		Log:    discardLogger(),
		Exit:   func(code int) { t.Fatalf("TryRun must never exit, got %d", code) },
	}

	out, err := inv.TryRun("tool", "probe")
	assert.Equal(t, "not initialized\n", out)
	assert.Error(t, err)
}
