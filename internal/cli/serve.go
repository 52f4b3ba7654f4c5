package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/secassess/internal/server"
	"github.com/matzehuels/secassess/pkg/buildinfo"
	"github.com/matzehuels/secassess/pkg/config"
)

// serveCommand creates the serve command for the HTTP export API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the export API over HTTP",
		Long: `Serve the export API over HTTP.

Records are read from the configured store. Exports are cached in the
configured cache, and uploads and NATS events are enabled when configured.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	runner, err := c.newRunner(ctx, true, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	closeEvents, err := c.registerEvents(cfg)
	if err != nil {
		return fmt.Errorf("connect events: %w", err)
	}
	defer closeEvents()

	opts, err := serverOptions(ctx, cfg)
	if err != nil {
		return err
	}

	c.Logger.Info("starting export API",
		"version", buildinfo.String(),
		"store", cfg.Store.Driver,
		"cache", cacheDriver(cfg.Cache, noCache),
		"uploads", opts.Uploader != nil,
		"events", cfg.EventsEnabled(),
	)
	return server.New(runner, c.Logger, opts).Run(ctx)
}

// serverOptions maps the configuration onto server options.
func serverOptions(ctx context.Context, cfg config.Config) (server.Options, error) {
	opts := server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}
	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		return opts, fmt.Errorf("configure uploads: %w", err)
	}
	// A nil *upload.Uploader must not become a non-nil interface.
	if uploader != nil {
		opts.Uploader = uploader
	}
	return opts, nil
}

func cacheDriver(cfg config.CacheConfig, noCache bool) string {
	if noCache {
		return config.CacheNone
	}
	return cfg.Driver
}
