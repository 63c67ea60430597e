package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hy-sato/picket/pkg/cli/config"
	controller "github.com/hy-sato/picket/pkg/controller/http"
	"github.com/hy-sato/picket/pkg/domain/interfaces"
	"github.com/hy-sato/picket/pkg/infra/cache"
	"github.com/hy-sato/picket/pkg/infra/notify"
	"github.com/hy-sato/picket/pkg/infra/photosite"
	"github.com/hy-sato/picket/pkg/infra/qr"
	"github.com/hy-sato/picket/pkg/infra/ticket"
	"github.com/hy-sato/picket/pkg/usecase"
	"github.com/hy-sato/picket/pkg/utils/scheduler"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		uploadCfg config.Upload
		cacheCfg  config.Cache
		ticketCfg config.Ticket
		siteCfg   config.PhotoSite
		notifyCfg config.Notify
	)

	flags := serverCfg.Flags()
	flags = append(flags, uploadCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, ticketCfg.Flags()...)
	flags = append(flags, siteCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting picket server",
				slog.String("addr", serverCfg.Addr),
				slog.String("site", siteCfg.BaseURL),
			)

			// Infrastructure
			siteOpts := []photosite.Option{photosite.WithTimeout(siteCfg.FetchTimeout)}
			if siteCfg.EnumCount > 0 {
				siteOpts = append(siteOpts, photosite.WithFixedEnumeration(int(siteCfg.EnumCount)))
			}
			site, err := photosite.New(siteCfg.BaseURL, siteOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create photo site client")
			}

			pattern, err := photosite.URLPattern(siteCfg.BaseURL)
			if err != nil {
				return goerr.Wrap(err, "failed to build QR URL pattern")
			}

			resolver := cache.New(site, int(cacheCfg.Capacity), cacheCfg.TTL)
			tickets := ticket.New(ticketCfg.TTL, ticket.WithDir(ticketCfg.Dir))

			var notifier interfaces.Notifier = notify.Discard{}
			if notifyCfg.WebhookURL != "" {
				notifier = notify.NewSlack(notifyCfg.WebhookURL)
				logger.Info("Notifications enabled", slog.String("webhook_url", notifyCfg.WebhookURL))
			}

			// Use case
			ucOpts := []usecase.BundleOption{
				usecase.WithMaxItems(int(uploadCfg.MaxItems)),
				usecase.WithMaxItemBytes(uploadCfg.MaxItemBytes),
				usecase.WithAllowedTypes(uploadCfg.AllowedTypes),
				usecase.WithNotifier(notifier),
			}
			if uploadCfg.Probe {
				ucOpts = append(ucOpts, usecase.WithProber(site))
			}
			bundleUC := usecase.NewBundle(qr.New(pattern), resolver, tickets, ucOpts...)

			// HTTP server
			server, err := controller.NewServer(
				ctx,
				bundleUC,
				tickets,
				controller.WithAddr(serverCfg.Addr),
				controller.WithMaxItems(int(uploadCfg.MaxItems)),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Background sweep of expired tickets, started once for the
			// process lifetime
			sweeper := scheduler.New(ticketCfg.SweepInterval, func(ctx context.Context) {
				if removed := tickets.Sweep(ctx); removed > 0 {
					notifier.Notify(ctx, fmt.Sprintf("sweep: removed %d expired archives, %d stored",
						removed, tickets.Len()))
				}
			})
			sweeper.Start(ctx)
			defer sweeper.Stop()

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
