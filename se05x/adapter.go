package se05x

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/olheureu/se05x-provision/cmdutil"
)

const (
	idPrefix    = "0x"
	labelPrefix = "SE_"
)

// Label derives the PKCS#11 label for a secure-element object identifier.
func Label(id string) string {
	return labelPrefix + strings.TrimPrefix(id, idPrefix)
}

// ObjectID is the inverse of Label.
func ObjectID(label string) string {
	return idPrefix + strings.TrimPrefix(label, labelPrefix)
}

// The tool reports object ids on its diagnostic stream in this form.
var keyIDRe = regexp.MustCompile(`Key-Id:\s+(0x[0-9a-fA-F]+)`)

// Adapter drives the secure-element command-line tool.
type Adapter struct {
	// Tool is the binary name, e.g. "se05x-cli".
	Tool string

	// TokenLabel is the PKCS#11 token certificates are imported into.
	TokenLabel string

	Invoker *cmdutil.Invoker
	Log     *slog.Logger
}

// HasObject reports whether the secure element holds an object with the
// given identifier. The listing is restricted to id, but the reported id is
// still compared against the query: a Key-Id line alone is not enough.
// Failure of the listing itself means "not provisioned yet", never a fault.
func (a *Adapter) HasObject(id string) bool {
	out, err := a.Invoker.TryRun(a.Tool, "list-objects", id)
	if err != nil {
		a.Log.Debug("secure element listing failed", "id", id, "err", err)
		return false
	}
	for _, m := range keyIDRe.FindAllStringSubmatch(out, -1) {
		if m[1] == id {
			return true
		}
	}
	return false
}

// ImportCert copies the certificate named by label out of the secure element
// into the token at the given destination slot. The source object id is
// derived from the label; failure is fatal via the invoker.
func (a *Adapter) ImportCert(slot, label string) {
	a.Log.Info("importing certificate", "id", ObjectID(label), "slot", slot, "label", label)
	a.Invoker.MustRun(a.Tool, "import-cert",
		"--token-label", a.TokenLabel,
		"--cert-id", ObjectID(label),
		"--id", slot,
		"--label", label)
}
