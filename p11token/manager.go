package p11token

import (
	"log/slog"
	"strings"

	"github.com/olheureu/se05x-provision/cmdutil"
)

// Config carries everything needed to address the token through pkcs11-tool.
type Config struct {
	// Tool is the binary name, e.g. "pkcs11-tool".
	Tool string

	// Module is the PKCS#11 module path, fixed per device.
	Module string

	// TokenLabel names the one token this daemon manages.
	TokenLabel string

	// PIN is the user PIN, SOPIN the security-officer PIN.
	PIN   string
	SOPIN string
}

// Token is the borrowed handle handed to credential handlers. Holding one
// means EnsureInitialized has run.
type Token struct {
	Label string
}

// Manager owns the token state transition and all key material operations
// on the PKCS#11 side.
type Manager struct {
	cfg     *Config
	invoker *cmdutil.Invoker
	log     *slog.Logger
}

// NewManager returns a Manager for the configured token.
func NewManager(cfg *Config, invoker *cmdutil.Invoker, log *slog.Logger) *Manager {
	return &Manager{cfg: cfg, invoker: invoker, log: log}
}

// IsInitialized probes the token with an authenticated object listing. A
// non-zero exit means the token has no PINs set yet; this is the one place
// where a failing pkcs11-tool invocation is an expected outcome.
func (m *Manager) IsInitialized() bool {
	_, err := m.invoker.TryRun(m.cfg.Tool,
		"--module", m.cfg.Module,
		"--login", "--pin", m.cfg.PIN,
		"--list-objects")
	return err == nil
}

// Initialize sets the token label and SO-PIN, then the user PIN. Only
// called on an uninitialized token; both steps are fatal on failure.
func (m *Manager) Initialize() {
	m.invoker.MustRun(m.cfg.Tool,
		"--module", m.cfg.Module,
		"--init-token",
		"--label", m.cfg.TokenLabel,
		"--so-pin", m.cfg.SOPIN)
	m.invoker.MustRun(m.cfg.Tool,
		"--module", m.cfg.Module,
		"--init-pin",
		"--so-pin", m.cfg.SOPIN,
		"--pin", m.cfg.PIN)
}

// EnsureInitialized initializes the token if and only if it is not yet
// initialized, and hands out the token handle.
func (m *Manager) EnsureInitialized() Token {
	if !m.IsInitialized() {
		m.log.Info("initializing PKCS#11 token", "label", m.cfg.TokenLabel)
		m.Initialize()
	}
	return Token{Label: m.cfg.TokenLabel}
}

// GenerateKeyPair generates a NIST P-256 key pair at the given slot id with
// the given label. Fatal on failure.
func (m *Manager) GenerateKeyPair(slot, label string) {
	m.log.Info("generating key pair", "slot", slot, "label", label)
	m.invoker.MustRun(m.cfg.Tool,
		"--module", m.cfg.Module,
		"--login", "--pin", m.cfg.PIN,
		"--keypairgen",
		"--key-type", "EC:prime256v1",
		"--id", slot,
		"--label", label)
}

// HasLabels lists the token's objects once and reports whether every
// requested label appears in some line of the listing. The token is
// initialized by the time this runs, so a listing failure is a real fault.
func (m *Manager) HasLabels(labels []string) bool {
	out := m.invoker.MustRun(m.cfg.Tool,
		"--module", m.cfg.Module,
		"--login", "--pin", m.cfg.PIN,
		"--list-objects")

	lines := strings.Split(out, "\n")
	for _, label := range labels {
		if !anyLineContains(lines, label) {
			return false
		}
	}
	return true
}

func anyLineContains(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
