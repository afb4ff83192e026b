package handlers

import (
	"github.com/olheureu/se05x-provision/p11token"
	"github.com/olheureu/se05x-provision/se05x"
)

// Fixed object ids and PKCS#11 slot assignments for the fleet messaging
// identity. Slots must not collide with any other handler's.
const (
	fleetKeyID    = "0x83000044"
	fleetCertID   = "0x83000045"
	fleetKeySlot  = "05"
	fleetCertSlot = "07"
)

// fleetHandler provisions the fleet messaging identity. Its consumer loads
// the key and certificate straight from the token, so label presence is
// the whole completion condition.
type fleetHandler struct {
	deps *Deps
}

func (h *fleetHandler) Name() string   { return "fleet" }
func (h *fleetHandler) KeyID() string  { return fleetKeyID }
func (h *fleetHandler) CertID() string { return fleetCertID }

func (h *fleetHandler) Provision(tok p11token.Token) error {
	keyLabel := se05x.Label(fleetKeyID)
	crtLabel := se05x.Label(fleetCertID)

	if hasIdentity(h.deps, keyLabel, crtLabel) {
		h.deps.Log.Info("fleet identity already provisioned", "token", tok.Label)
		return nil
	}

	h.deps.Token.GenerateKeyPair(fleetKeySlot, keyLabel)
	h.deps.SE.ImportCert(fleetCertSlot, crtLabel)
	return nil
}
