// Command se05x-provision provisions cryptographic identities into an SE05x
// secure element on first boot and hands them to the device's update and
// fleet agents.
//
// The daemon performs one provisioning pass and exits:
//
//  1. Ensure the PKCS#11 token is initialized (token label, SO-PIN, user
//     PIN). This transition happens at most once per device lifetime.
//  2. Run the cloud key-provisioning agent. A failed check-in means the
//     cloud has not fulfilled this device's order yet; the daemon sleeps
//     the configured interval and retries without bound.
//  3. After a successful check-in, run each configured credential handler
//     in order. A handler only runs once both of its objects (private key
//     and certificate) exist in the secure element, so identities the cloud
//     has not provisioned yet are skipped and picked up on a later boot.
//  4. Each handler generates any missing key pair into its fixed slot,
//     imports its certificate into the token, and materializes its
//     consumer's configuration (for the update client: sota.toml plus a
//     service start).
//
// Every step is idempotent: the process may be restarted at any point,
// including mid-import after power loss, and will only perform whatever
// work is still missing. On success the process exits 0; the service
// manager restarts it on demand rather than keeping it resident.
//
// All configuration is supplied through flags, each with an environment
// variable binding; see --help. The only required setting is --factory,
// the repository identifier embedded in the provisioning server URLs.
//
// External-tool failures outside the modeled "not yet provisioned" states
// terminate the process with status 1 and the tool's captured output on the
// error stream. No partial rollback is attempted: an orphaned key pair
// after a failed certificate import requires operator intervention.
package main
