package cmdutil

import (
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runner executes a single external command and returns its combined
// stdout/stderr. A non-nil error means the command exited non-zero (or could
// not be started); output is returned in either case.
type Runner interface {
	Run(name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec. Invocations are synchronous and
// carry no timeout; the underlying tools impose their own.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

// Invoker wraps a Runner with the fail-fast policy for administrative
// commands. The zero value is not usable; construct with NewInvoker.
type Invoker struct {
	Runner Runner
	Log    *slog.Logger

	// Exit terminates the process after a fatal command failure. Defaults
	// to os.Exit; tests inject a recording function instead.
	Exit func(code int)
}

// NewInvoker returns an Invoker running real commands and exiting the
// process on fatal failures.
func NewInvoker(log *slog.Logger) *Invoker {
	return &Invoker{Runner: ExecRunner{}, Log: log, Exit: os.Exit}
}

// TryRun runs the command and hands both output and exit status to the
// caller. Used for probes whose failure is an expected outcome.
func (i *Invoker) TryRun(name string, args ...string) (string, error) {
	i.Log.Debug("running command", "cmd", name, "args", strings.Join(args, " "))
	return i.Runner.Run(name, args...)
}

// MustRun runs the command and returns its combined output. On non-zero
// exit it logs every captured output line prefixed with the command name
// and terminates the process with status 1.
func (i *Invoker) MustRun(name string, args ...string) string {
	i.Log.Debug("running command", "cmd", name, "args", strings.Join(args, " "))
	out, err := i.Runner.Run(name, args...)
	if err == nil {
		return out
	}

	i.Log.Error("command failed", "cmd", name, "args", strings.Join(args, " "), "err", err)
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		i.Log.Error(name + ": " + line)
	}
	i.Exit(1)
	return out
}
