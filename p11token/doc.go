// Package p11token manages the single PKCS#11 token backing the secure
// element, through the standard pkcs11-tool command-line interface.
//
// The token has exactly two states. Fresh out of the factory it is
// uninitialized: no label, no PINs, every login attempt fails. Initialize
// sets the token label and security-officer PIN and then the user PIN,
// after which the token is initialized for the rest of the device's life;
// this process never reverses the transition. EnsureInitialized performs
// the transition only when needed and is therefore safe to run on every
// boot.
//
// Object presence is checked in one batch: HasLabels lists the token once
// and matches every wanted label against the listing, avoiding a tool
// round-trip per label.
package p11token
