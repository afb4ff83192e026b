// Package cmdutil runs the external administrative tools this daemon
// orchestrates and applies a uniform failure policy to them.
//
// Every mutation of the secure element and of the PKCS#11 token happens
// through a vendor command-line tool, so all the daemon ever sees is an
// argument vector going in and combined output plus an exit status coming
// out. Two outcomes exist:
//
//   - TryRun surfaces the exit status to the caller. Probes whose failure is
//     an expected, modeled state (token not initialized yet, object not yet
//     pushed by the cloud, agent check-in refused) use this path.
//   - MustRun treats a non-zero exit as fatal: the captured output is logged
//     line by line and the process terminates with a non-zero status. These
//     are one-shot administrative commands; a partial failure halfway
//     through a PKCS#11 state change is not safe to paper over.
//
// The Runner interface is the seam for tests: a fake Runner scripts outputs
// and records invocations without touching hardware-bound tools.
package cmdutil
