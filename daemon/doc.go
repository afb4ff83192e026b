// Package daemon runs the provisioning control loop.
//
// One pass looks like this: make sure the PKCS#11 token is initialized,
// then poll the cloud provisioning agent. A successful agent check-in is
// the cloud's signal that every object it intended to push now sits in the
// secure element, so only then are the configured credential handlers run,
// in configured order, each one gated on its own objects actually being
// present (the cloud may not have provisioned every identity for this
// device yet). After one successful pass the process exits 0 and leaves
// restart-on-demand to the service manager. A failed check-in sleeps a
// fixed interval and retries forever; there is no backoff and no attempt
// cap, since the cloud-side order is expected to be fulfilled eventually.
//
// The loop is single-threaded. Its only suspension point is the
// inter-attempt sleep, injectable for tests.
package daemon
