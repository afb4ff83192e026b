package handlers

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olheureu/se05x-provision/cmdutil"
	"github.com/olheureu/se05x-provision/p11token"
	"github.com/olheureu/se05x-provision/se05x"
)

// fakeRunner answers PKCS#11 object listings with a scripted listing and
// records every invocation.
type fakeRunner struct {
	listing string
	calls   [][]string
}

func (f *fakeRunner) Run(name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if slices.Contains(args, "--list-objects") {
		return f.listing, nil
	}
	return "", nil
}

func (f *fakeRunner) commands() []string {
	var cmds []string
	for _, call := range f.calls {
		cmds = append(cmds, strings.Join(call, " "))
	}
	return cmds
}

func (f *fakeRunner) countContaining(substr string) int {
	n := 0
	for _, cmd := range f.commands() {
		if strings.Contains(cmd, substr) {
			n++
		}
	}
	return n
}

const testOSRelease = `NAME="Linux microPlatform"
LMP_FACTORY_TAG="main"
`

func newTestDeps(t *testing.T, runner *fakeRunner) *Deps {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	invoker := &cmdutil.Invoker{
		Runner: runner,
		Log:    log,
		Exit:   func(code int) { t.Fatalf("unexpected exit %d", code) },
	}

	storageDir := filepath.Join(t.TempDir(), "sota")
	osReleasePath := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(osReleasePath, []byte(testOSRelease), 0o644))

	cfg := &Config{
		Factory:    "acme-factory",
		StorageDir: storageDir,
		PacmanType: "ostree+compose_apps",
		OSRelease:  osReleasePath,
		Module:     "/usr/lib/libckteec.so.0",
		PIN:        "87654321",
	}

	tokenCfg := &p11token.Config{
		Tool:       "pkcs11-tool",
		Module:     cfg.Module,
		TokenLabel: "aktualizr",
		PIN:        cfg.PIN,
		SOPIN:      "12345678",
	}

	return &Deps{
		Token:   p11token.NewManager(tokenCfg, invoker, log),
		SE:      &se05x.Adapter{Tool: "se05x-cli", TokenLabel: "aktualizr", Invoker: invoker, Log: log},
		Invoker: invoker,
		Config:  cfg,
		Log:     log,
	}
}

func TestForNamesPreservesOrder(t *testing.T) {
	deps := newTestDeps(t, &fakeRunner{})

	hs, err := ForNames([]string{"fleet", "update"}, deps)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "fleet", hs[0].Name())
	assert.Equal(t, "update", hs[1].Name())
}

func TestForNamesRejectsUnknownHandler(t *testing.T) {
	_, err := ForNames([]string{"update", "bogus"}, newTestDeps(t, &fakeRunner{}))
	assert.ErrorContains(t, err, "bogus")
}

// Every handler must claim distinct object ids and therefore distinct
// labels; a collision would make two handlers fight over one slot.
func TestHandlerObjectIDsAreDisjoint(t *testing.T) {
	deps := newTestDeps(t, &fakeRunner{})
	hs, err := ForNames([]string{"update", "fleet"}, deps)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, h := range hs {
		for _, id := range []string{h.KeyID(), h.CertID()} {
			assert.False(t, seen[id], "object id %s claimed twice", id)
			seen[id] = true
		}
	}
	assert.NotEqual(t, updateKeySlot, fleetKeySlot)
	assert.NotEqual(t, updateCertSlot, fleetCertSlot)
}

func TestUpdateHandlerFreshDevice(t *testing.T) {
	runner := &fakeRunner{listing: "no objects\n"}
	deps := newTestDeps(t, runner)
	h := &updateHandler{deps: deps}

	require.NoError(t, h.Provision(p11token.Token{Label: "aktualizr"}))

	assert.Equal(t, 1, runner.countContaining("--keypairgen"))
	assert.Equal(t, 1, runner.countContaining("import-cert"))
	assert.Equal(t, 1, runner.countContaining("systemctl start aktualizr-lite.service"))

	conf, err := os.ReadFile(filepath.Join(deps.Config.StorageDir, "sota.toml"))
	require.NoError(t, err)
	doc := string(conf)

	// all three endpoint fields carry the factory
	assert.Equal(t, 3, strings.Count(doc, "https://acme-factory.ota-lite.foundries.io:8443"))
	assert.Contains(t, doc, `tags = "main"`)
	assert.Contains(t, doc, `type = "ostree+compose_apps"`)
	assert.Contains(t, doc, `module = "/usr/lib/libckteec.so.0"`)
	assert.Contains(t, doc, `tls_pkey_id = "01"`)
	assert.Contains(t, doc, `tls_clientcert_id = "03"`)
}

func TestUpdateHandlerFullyProvisionedIsNoOp(t *testing.T) {
	runner := &fakeRunner{listing: "label: SE_83000042\nlabel: SE_83000043\n"}
	deps := newTestDeps(t, runner)

	require.NoError(t, os.MkdirAll(deps.Config.StorageDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(deps.Config.StorageDir, "sql.db"), []byte("db"), 0o600))

	h := &updateHandler{deps: deps}
	require.NoError(t, h.Provision(p11token.Token{Label: "aktualizr"}))

	// a single object listing and nothing else
	require.Len(t, runner.calls, 1)
	assert.Equal(t, 1, runner.countContaining("--list-objects"))
	assert.NoFileExists(t, filepath.Join(deps.Config.StorageDir, "sota.toml"))
}

func TestUpdateHandlerRewritesConfigWhenStoreMissing(t *testing.T) {
	runner := &fakeRunner{listing: "label: SE_83000042\nlabel: SE_83000043\n"}
	deps := newTestDeps(t, runner)
	h := &updateHandler{deps: deps}

	require.NoError(t, h.Provision(p11token.Token{Label: "aktualizr"}))

	assert.Equal(t, 0, runner.countContaining("--keypairgen"))
	assert.Equal(t, 0, runner.countContaining("import-cert"))
	assert.Equal(t, 1, runner.countContaining("systemctl start"))
	assert.FileExists(t, filepath.Join(deps.Config.StorageDir, "sota.toml"))
}

func TestUpdateHandlerMissingFactoryTagIsFatal(t *testing.T) {
	runner := &fakeRunner{listing: "no objects\n"}
	deps := newTestDeps(t, runner)
	require.NoError(t, os.WriteFile(deps.Config.OSRelease, []byte("NAME=\"lmp\"\n"), 0o644))

	h := &updateHandler{deps: deps}
	err := h.Provision(p11token.Token{Label: "aktualizr"})
	assert.ErrorContains(t, err, "LMP_FACTORY_TAG")
	assert.Equal(t, 0, runner.countContaining("systemctl"))
}

func TestFleetHandlerProvisionsKeyMaterialOnly(t *testing.T) {
	runner := &fakeRunner{listing: "no objects\n"}
	deps := newTestDeps(t, runner)
	h := &fleetHandler{deps: deps}

	require.NoError(t, h.Provision(p11token.Token{Label: "aktualizr"}))

	assert.Equal(t, 1, runner.countContaining("--keypairgen"))
	assert.Equal(t, 1, runner.countContaining("import-cert"))
	assert.Equal(t, 0, runner.countContaining("systemctl"))

	// labels derived from the fleet object ids
	assert.Equal(t, 1, runner.countContaining("SE_83000044"))
	assert.Equal(t, 1, runner.countContaining("SE_83000045"))
}

func TestFleetHandlerAlreadyProvisionedIsNoOp(t *testing.T) {
	runner := &fakeRunner{listing: "label: SE_83000044\nlabel: SE_83000045\n"}
	deps := newTestDeps(t, runner)
	h := &fleetHandler{deps: deps}

	require.NoError(t, h.Provision(p11token.Token{Label: "aktualizr"}))
	require.Len(t, runner.calls, 1)
}
