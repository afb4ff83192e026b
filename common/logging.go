package common

import (
	"log/slog"
	"os"
)

// LoggingOpts controls how the process-wide logger is constructed.
type LoggingOpts struct {
	// Debug lowers the log level to debug.
	Debug bool

	// JSON enables the JSON log format (the default is logfmt-style text).
	JSON bool

	// Service is added as a 'service' attribute to every record when set.
	Service string

	// Version is added as a 'version' attribute to every record when set.
	Version string
}

// SetupLogger builds the process logger according to opts. All output goes
// to stderr; stdout stays free for the external tools this process drives.
func SetupLogger(opts *LoggingOpts) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Debug {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	log := slog.New(handler)
	if opts.Service != "" {
		log = log.With("service", opts.Service)
	}
	if opts.Version != "" {
		log = log.With("version", opts.Version)
	}
	return log
}
