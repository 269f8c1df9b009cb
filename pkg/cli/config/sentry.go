package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error reporting
type Sentry struct {
	DSN         string `masq:"secret"`
	environment string
}

// Flags returns CLI flags for Sentry configuration
func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Category:    "Sentry",
			Usage:       "Sentry DSN. Errors are reported only when set",
			Sources:     cli.EnvVars("SORTIE_SENTRY_DSN"),
			Destination: &x.DSN,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Category:    "Sentry",
			Usage:       "Sentry environment name",
			Sources:     cli.EnvVars("SORTIE_SENTRY_ENV"),
			Destination: &x.environment,
		},
	}
}

// IsConfigured returns true when a DSN is set
func (x *Sentry) IsConfigured() bool {
	return x.DSN != ""
}

// Configure initializes the global Sentry client. Without a DSN it does nothing. The returned
// function flushes buffered events and must be called before exit.
func (x *Sentry) Configure(release string) (func(), error) {
	if !x.IsConfigured() {
		logging.Default().Debug("Sentry DSN not configured, error reporting disabled")
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              x.DSN,
		Environment:      x.environment,
		Release:          release,
		AttachStacktrace: true,
	}); err != nil {
		return func() {}, goerr.Wrap(err, "failed to initialize sentry", goerr.V("environment", x.environment))
	}

	logging.Default().Info("Sentry error reporting enabled", slog.Any("sentry", x))
	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
