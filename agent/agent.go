// Package agent invokes the cloud key-provisioning agent and reports
// whether the check-in succeeded. The agent is a black box: exit 0 means
// the device checked in and any pending keys or certificates have been
// pushed into the secure element. What it actually pushed is discovered
// afterwards by probing the secure element, never by parsing agent output.
package agent

import (
	"log/slog"
	"strings"

	"github.com/olheureu/se05x-provision/cmdutil"
)

// Runner performs one-shot check-ins against the provisioning cloud.
type Runner struct {
	// Binary is the agent executable, e.g. "nxp-iot-agent".
	Binary string

	Invoker *cmdutil.Invoker
	Log     *slog.Logger
}

// CheckIn runs the agent once. A failed check-in is the normal "cloud not
// ready yet" condition: the agent's output is logged for operator
// visibility and false is returned, never a fatal error.
func (r *Runner) CheckIn() bool {
	out, err := r.Invoker.TryRun(r.Binary)
	if err == nil {
		return true
	}

	r.Log.Warn("provisioning agent check-in failed", "agent", r.Binary, "err", err)
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		r.Log.Warn(r.Binary + ": " + line)
	}
	return false
}
