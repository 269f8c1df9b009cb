package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/cli/config"
	httpctrl "github.com/secmon-lab/sortie/pkg/controller/http"
	"github.com/secmon-lab/sortie/pkg/service/worker"
	"github.com/secmon-lab/sortie/pkg/usecase"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var fleetInterval time.Duration
	var fleetHorizon time.Duration
	var appCfg config.App
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SORTIE_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "fleet-check-interval",
			Category:    "Fleet check",
			Usage:       "Interval of the cross-mission conflict scan (0 disables it)",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("SORTIE_FLEET_CHECK_INTERVAL"),
			Destination: &fleetInterval,
		},
		&cli.DurationFlag{
			Name:        "fleet-check-horizon",
			Category:    "Fleet check",
			Usage:       "How far ahead of now the conflict scan looks",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("SORTIE_FLEET_CHECK_HORIZON"),
			Destination: &fleetHorizon,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := appCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load policy configuration")
			}

			repo, closeRepo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepo()

			uc := usecase.New(repo, usecase.WithPolicy(policy))

			var httpOpts []httpctrl.Options
			var fleetWorker *worker.FleetCheckWorker
			if fleetInterval > 0 {
				fleetWorker = worker.NewFleetCheckWorker(uc.FlightPlan, fleetInterval, worker.WithHorizon(fleetHorizon))
				if err := fleetWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start fleet check worker")
				}
				httpOpts = append(httpOpts, httpctrl.WithFleetReporter(fleetWorker))
			} else {
				logging.Default().Info("Fleet check worker disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if fleetWorker != nil {
					fleetWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the worker before the server so no scan runs against a closing repository
				if fleetWorker != nil {
					fleetWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
