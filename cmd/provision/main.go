package main

import (
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/olheureu/se05x-provision/agent"
	"github.com/olheureu/se05x-provision/cmd/flags"
	"github.com/olheureu/se05x-provision/cmdutil"
	"github.com/olheureu/se05x-provision/daemon"
	"github.com/olheureu/se05x-provision/handlers"
	"github.com/olheureu/se05x-provision/p11token"
	"github.com/olheureu/se05x-provision/se05x"
)

var provisionFlags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:     "factory",
		Required: true,
		Usage:    "repository identifier substituted into the provisioning server URLs",
		EnvVars:  []string{"FACTORY"},
	},
	&cli.IntFlag{
		Name:    "interval",
		Value:   300,
		Usage:   "seconds to sleep between failed agent check-ins",
		EnvVars: []string{"PROVISION_INTERVAL"},
	},
	&cli.StringFlag{
		Name:    "storage-dir",
		Value:   "/var/sota",
		Usage:   "directory for consumer configuration and state",
		EnvVars: []string{"STORAGE_DIR"},
	},
	&cli.StringFlag{
		Name:    "handlers",
		Value:   "update",
		Usage:   "comma-separated device handlers to activate, in order",
		EnvVars: []string{"DEVICE_HANDLERS"},
	},
	&cli.StringFlag{
		Name:    "pacman-type",
		Value:   "ostree+compose_apps",
		Usage:   "package manager type written into the update client configuration",
		EnvVars: []string{"PACMAN_TYPE"},
	},
	&cli.StringFlag{
		Name:    "os-release",
		Value:   "/etc/os-release",
		Usage:   "release metadata file carrying the provisioning tag",
		EnvVars: []string{"OS_RELEASE"},
	},
}

var pkcs11Flags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:    "pin",
		Value:   "87654321",
		Usage:   "PKCS#11 user PIN",
		EnvVars: []string{"PKCS11_PIN"},
	},
	&cli.StringFlag{
		Name:    "so-pin",
		Value:   "12345678",
		Usage:   "PKCS#11 security-officer PIN",
		EnvVars: []string{"PKCS11_SO_PIN"},
	},
	&cli.StringFlag{
		Name:    "token-label",
		Value:   "aktualizr",
		Usage:   "label of the managed PKCS#11 token",
		EnvVars: []string{"PKCS11_TOKEN_LABEL"},
	},
	&cli.StringFlag{
		Name:    "module",
		Value:   "/usr/lib/libckteec.so.0",
		Usage:   "PKCS#11 module path",
		EnvVars: []string{"PKCS11_MODULE"},
	},
}

var toolFlags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:    "se05x-cli",
		Value:   "se05x-cli",
		Usage:   "secure element command-line tool",
		EnvVars: []string{"SE05X_CLI"},
	},
	&cli.StringFlag{
		Name:    "pkcs11-tool",
		Value:   "pkcs11-tool",
		Usage:   "PKCS#11 command-line tool",
		EnvVars: []string{"PKCS11_TOOL"},
	},
	&cli.StringFlag{
		Name:    "agent",
		Value:   "nxp-iot-agent",
		Usage:   "cloud key-provisioning agent binary",
		EnvVars: []string{"PROVISIONING_AGENT"},
	},
}

const usage string = `SE05x first-boot provisioning daemon
Initializes the PKCS#11 token, polls the cloud provisioning agent until the
device's keys and certificates land in the secure element, imports them into
the token, materializes consumer configuration, and exits once provisioned.`

func main() {
	app := &cli.App{
		Name:  "se05x-provision",
		Usage: usage,
		Flags: slices.Concat(provisionFlags, pkcs11Flags, toolFlags, flags.LoggingFlags),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			invoker := cmdutil.NewInvoker(logger)

			tokenLabel := cCtx.String("token-label")
			tokenMgr := p11token.NewManager(&p11token.Config{
				Tool:       cCtx.String("pkcs11-tool"),
				Module:     cCtx.String("module"),
				TokenLabel: tokenLabel,
				PIN:        cCtx.String("pin"),
				SOPIN:      cCtx.String("so-pin"),
			}, invoker, logger)

			seAdapter := &se05x.Adapter{
				Tool:       cCtx.String("se05x-cli"),
				TokenLabel: tokenLabel,
				Invoker:    invoker,
				Log:        logger,
			}

			agentRunner := &agent.Runner{
				Binary:  cCtx.String("agent"),
				Invoker: invoker,
				Log:     logger,
			}

			handlerNames := strings.Split(cCtx.String("handlers"), ",")
			for i := range handlerNames {
				handlerNames[i] = strings.TrimSpace(handlerNames[i])
			}

			hs, err := handlers.ForNames(handlerNames, &handlers.Deps{
				Token:   tokenMgr,
				SE:      seAdapter,
				Invoker: invoker,
				Config: &handlers.Config{
					Factory:    cCtx.String("factory"),
					StorageDir: cCtx.String("storage-dir"),
					PacmanType: cCtx.String("pacman-type"),
					OSRelease:  cCtx.String("os-release"),
					Module:     cCtx.String("module"),
					PIN:        cCtx.String("pin"),
				},
				Log: logger,
			})
			if err != nil {
				return err
			}

			d := daemon.New(&daemon.Config{
				Interval: time.Duration(cCtx.Int("interval")) * time.Second,
				Log:      logger,
			}, tokenMgr, seAdapter, agentRunner, hs)

			return d.Run()
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
