package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olheureu/se05x-provision/osrelease"
	"github.com/olheureu/se05x-provision/p11token"
	"github.com/olheureu/se05x-provision/se05x"
)

// Fixed object ids and PKCS#11 slot assignments for the update client
// identity. Slots must not collide with any other handler's.
const (
	updateKeyID    = "0x83000042"
	updateCertID   = "0x83000043"
	updateKeySlot  = "01"
	updateCertSlot = "03"

	updateUnit      = "aktualizr-lite.service"
	updateStoreFile = "sql.db"
	updateConfFile  = "sota.toml"

	factoryTagKey = "LMP_FACTORY_TAG"
)

const sotaTemplate = `[tls]
server = "https://%[1]s.ota-lite.foundries.io:8443"
ca_source = "file"
pkey_source = "pkcs11"
cert_source = "pkcs11"

[provision]
server = "https://%[1]s.ota-lite.foundries.io:8443"

[uptane]
repo_server = "https://%[1]s.ota-lite.foundries.io:8443/repo"

[storage]
type = "sqlite"
path = "%[2]s"

[pacman]
type = "%[3]s"
tags = "%[4]s"

[p11]
module = "%[5]s"
pass = "%[6]s"
tls_pkey_id = "%[7]s"
tls_clientcert_id = "%[8]s"
`

// updateHandler provisions the OTA update client: key material on the
// token, sota.toml on disk, and the client service started.
type updateHandler struct {
	deps *Deps
}

func (h *updateHandler) Name() string   { return "update" }
func (h *updateHandler) KeyID() string  { return updateKeyID }
func (h *updateHandler) CertID() string { return updateCertID }

func (h *updateHandler) Provision(tok p11token.Token) error {
	keyLabel := se05x.Label(updateKeyID)
	crtLabel := se05x.Label(updateCertID)

	if hasIdentity(h.deps, keyLabel, crtLabel) {
		if h.storePresent() {
			h.deps.Log.Info("update client already provisioned", "token", tok.Label)
			return nil
		}
		// Key material survived but the client's storage did not (factory
		// reset of the data partition). Rebuild the configuration only.
		h.deps.Log.Info("update client storage missing, rewriting configuration")
		return h.materialize()
	}

	h.deps.Token.GenerateKeyPair(updateKeySlot, keyLabel)
	h.deps.SE.ImportCert(updateCertSlot, crtLabel)
	return h.materialize()
}

func (h *updateHandler) storePresent() bool {
	_, err := os.Stat(filepath.Join(h.deps.Config.StorageDir, updateStoreFile))
	return err == nil
}

// materialize writes sota.toml and starts the update client. The
// provisioning tag is required release metadata; its absence is a
// configuration fault, not a tool failure.
func (h *updateHandler) materialize() error {
	cfg := h.deps.Config

	tag, err := osrelease.ReadKey(cfg.OSRelease, factoryTagKey)
	if err != nil {
		return fmt.Errorf("update handler: %w", err)
	}

	doc := fmt.Sprintf(sotaTemplate,
		cfg.Factory,
		strings.TrimRight(cfg.StorageDir, "/")+"/",
		cfg.PacmanType,
		tag,
		cfg.Module,
		cfg.PIN,
		updateKeySlot,
		updateCertSlot)

	if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
		return fmt.Errorf("update handler: creating %s: %w", cfg.StorageDir, err)
	}
	confPath := filepath.Join(cfg.StorageDir, updateConfFile)
	if err := os.WriteFile(confPath, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("update handler: writing %s: %w", confPath, err)
	}
	h.deps.Log.Info("wrote update client configuration", "path", confPath, "factory", cfg.Factory)

	h.deps.Invoker.MustRun("systemctl", "start", updateUnit)
	return nil
}
