package daemon

import (
	"log/slog"
	"time"

	"github.com/olheureu/se05x-provision/agent"
	"github.com/olheureu/se05x-provision/handlers"
	"github.com/olheureu/se05x-provision/p11token"
	"github.com/olheureu/se05x-provision/se05x"
)

// Config holds the loop parameters.
type Config struct {
	// Interval is the sleep between failed agent check-ins.
	Interval time.Duration

	Log *slog.Logger
}

// Daemon ties the token manager, the secure-element adapter, the agent
// runner and the credential handlers into the polling loop.
type Daemon struct {
	cfg      *Config
	token    *p11token.Manager
	se       *se05x.Adapter
	agent    *agent.Runner
	handlers []handlers.Handler

	// Sleep suspends between attempts. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// New assembles a Daemon.
func New(cfg *Config, token *p11token.Manager, se *se05x.Adapter, ag *agent.Runner, hs []handlers.Handler) *Daemon {
	return &Daemon{
		cfg:      cfg,
		token:    token,
		se:       se,
		agent:    ag,
		handlers: hs,
		Sleep:    time.Sleep,
	}
}

// Run executes provisioning passes until one succeeds. It returns nil on
// success and an error only for configuration faults; external-tool
// failures have already terminated the process through the invoker.
func (d *Daemon) Run() error {
	tok := d.token.EnsureInitialized()

	for {
		done, err := d.attempt(tok)
		if err != nil {
			return err
		}
		if done {
			d.cfg.Log.Info("provisioning pass complete")
			return nil
		}
		d.cfg.Log.Info("cloud not ready, sleeping", "interval", d.cfg.Interval)
		d.Sleep(d.cfg.Interval)
	}
}

// attempt is one loop iteration: check in with the cloud, and on success
// process every configured handler whose secure-element objects exist.
func (d *Daemon) attempt(tok p11token.Token) (done bool, err error) {
	if !d.agent.CheckIn() {
		return false, nil
	}

	for _, h := range d.handlers {
		if !d.se.HasObject(h.KeyID()) || !d.se.HasObject(h.CertID()) {
			d.cfg.Log.Info("identity objects not yet in secure element", "handler", h.Name())
			continue
		}
		if err := h.Provision(tok); err != nil {
			return false, err
		}
	}
	return true, nil
}
