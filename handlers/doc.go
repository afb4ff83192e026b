// Package handlers implements per-identity provisioning. Each device
// identity is a fixed pair of secure-element object ids (private key and
// certificate) plus whatever consumer-side state that identity needs on
// disk once its key material is in place.
//
// All handlers share one flow. The PKCS#11 labels for the identity are
// derived from its object ids; if both already exist on the token the
// PKCS#11 side is done and only the handler's own completion condition
// decides whether anything is left to do. Otherwise the handler generates
// a key pair into its private key slot and imports the certificate into
// its certificate slot. Slot ids are fixed per handler and never shared
// between handlers.
//
// The handler set is closed: a new identity is a new type in this package
// and a new case in ForNames, not runtime registration. Which handlers a
// given device activates, and in which order, is configuration.
//
//   - update: the OTA update client. Beyond key material it writes the
//     client's sota.toml (endpoints built from the configured factory,
//     PKCS#11 parameters, the provisioning tag from os-release) and starts
//     the client's service. It counts as fully provisioned only once the
//     client's own database exists, so a device that lost its storage but
//     kept its token gets a fresh configuration without touching key
//     material.
//   - fleet: the fleet messaging identity. Its consumer reads the PKCS#11
//     objects directly, so there is nothing to materialize beyond the key
//     pair and certificate.
package handlers
