package handlers

import (
	"fmt"
	"log/slog"

	"github.com/olheureu/se05x-provision/cmdutil"
	"github.com/olheureu/se05x-provision/p11token"
	"github.com/olheureu/se05x-provision/se05x"
)

// Handler provisions one device identity. Provision is idempotent: it may
// be called on every provisioning pass and performs only the work that is
// still missing.
type Handler interface {
	Name() string

	// KeyID and CertID are the secure-element object ids this identity
	// expects the cloud to provision. The daemon skips a handler until
	// both are present in the secure element.
	KeyID() string
	CertID() string

	// Provision ensures the identity's key material exists on the token
	// and its consumer state exists on disk. Tool failures terminate the
	// process via the invoker; a returned error is a configuration fault.
	Provision(tok p11token.Token) error
}

// Config is the handler-facing slice of the daemon configuration.
type Config struct {
	// Factory is the repository identifier substituted into the
	// provisioning server URLs.
	Factory string

	// StorageDir is where consumer configuration and state live.
	StorageDir string

	// PacmanType is the update client's package manager type.
	PacmanType string

	// OSRelease is the release metadata file carrying the provisioning tag.
	OSRelease string

	// Module and PIN mirror the PKCS#11 parameters consumers need to reach
	// their keys.
	Module string
	PIN    string
}

// Deps bundles the collaborators every handler works against.
type Deps struct {
	Token   *p11token.Manager
	SE      *se05x.Adapter
	Invoker *cmdutil.Invoker
	Config  *Config
	Log     *slog.Logger
}

// ForNames resolves configured handler names, preserving order. Unknown
// names are a startup error.
func ForNames(names []string, deps *Deps) ([]Handler, error) {
	hs := make([]Handler, 0, len(names))
	for _, name := range names {
		switch name {
		case "update":
			hs = append(hs, &updateHandler{deps: deps})
		case "fleet":
			hs = append(hs, &fleetHandler{deps: deps})
		default:
			return nil, fmt.Errorf("unknown device handler %q", name)
		}
	}
	return hs, nil
}

// hasIdentity reports whether both PKCS#11 objects of an identity already
// exist on the token, with a single listing.
func hasIdentity(deps *Deps, keyLabel, crtLabel string) bool {
	return deps.Token.HasLabels([]string{keyLabel, crtLabel})
}
