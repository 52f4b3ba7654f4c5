// Package cli implements the secassess command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/secassess/pkg/buildinfo"
	"github.com/matzehuels/secassess/pkg/cache"
	"github.com/matzehuels/secassess/pkg/config"
	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/observability"
	"github.com/matzehuels/secassess/pkg/pipeline"
	"github.com/matzehuels/secassess/pkg/store"
	"github.com/matzehuels/secassess/pkg/store/file"
	"github.com/matzehuels/secassess/pkg/store/mongo"
	"github.com/matzehuels/secassess/pkg/store/postgres"
	"github.com/matzehuels/secassess/pkg/upload"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "secassess"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "secassess exports DevSecOps assessments as reports",
		Long:         `secassess turns stored DevSecOps maturity assessments into PDF reports, spreadsheets, standalone HTML pages and data dumps, from the command line or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. With withStore false
// the runner has no store and every export must carry its record.
func (c *CLI) newRunner(ctx context.Context, withStore, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	var st store.Store
	if withStore {
		if st, err = openStore(ctx, cfg.Store); err != nil {
			return nil, err
		}
	}

	ch, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	runner := pipeline.NewRunner(st, ch, cache.NewScopedKeyer(nil, cfg.Cache.Prefix), c.Logger)
	runner.ArtifactTTL = cfg.Cache.TTL.Duration
	return runner, nil
}

// openStore opens the configured record store, reporting loads to the
// observability store hooks.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Driver {
	case config.StoreFile:
		st, err = file.New(cfg.Dir)
	case config.StorePostgres:
		st, err = postgres.Open(ctx, cfg.URL, postgres.Options{Migrate: cfg.Migrate})
	case config.StoreMongo:
		st, err = mongo.Open(ctx, cfg.URL, cfg.Database, cfg.Collection)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store.Observed(st, cfg.Driver), nil
}

// newCache opens the configured artifact cache. noCache wins over the
// configuration.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Driver {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.URL)
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newUploader returns the S3 uploader, or nil when no bucket is configured.
func newUploader(ctx context.Context, cfg config.Config) (*upload.Uploader, error) {
	if !cfg.UploadEnabled() {
		return nil, nil
	}
	return upload.New(ctx, upload.Options{
		Bucket:    cfg.Upload.Bucket,
		Region:    cfg.Upload.Region,
		Endpoint:  cfg.Upload.Endpoint,
		PathStyle: cfg.Upload.PathStyle,
		Prefix:    cfg.Upload.Prefix,
	})
}

// registerEvents publishes export events to NATS when configured. The
// returned function closes the connection; it is a no-op otherwise.
func (c *CLI) registerEvents(cfg config.Config) (func(), error) {
	if !cfg.EventsEnabled() {
		return func() {}, nil
	}
	pub, err := observability.NewNATSPublisher(cfg.Events.NATSURL)
	if err != nil {
		return nil, err
	}
	observability.SetExportHooks(observability.NewEventHooks(pub))
	c.Logger.Debug("publishing export events", "nats", cfg.Events.NATSURL)
	return func() {
		observability.Reset()
		_ = pub.Close()
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, defaulting to the XDG
// standard (~/.cache/secassess/).
func cacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
