// Package config loads secassess settings from a TOML file, a .env file
// and SECASSESS_* environment variables, in increasing precedence.
//
//	[server]
//	addr = ":4000"
//
//	[store]
//	driver = "postgres"
//	url = "postgres://secassess@localhost/secassess?sslmode=disable"
//
//	[cache]
//	driver = "redis"
//	url = "redis://localhost:6379/0"
//	ttl = "24h"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/secassess/pkg/errors"
)

const appName = "secassess"

// Store drivers.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Cache drivers.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Duration is a time.Duration written as a string such as "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Upload UploadConfig `toml:"upload"`
	Events EventsConfig `toml:"events"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	// MaxBodyBytes bounds export request bodies, which carry base64 images.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver     string `toml:"driver"`
	Dir        string `toml:"dir"`
	URL        string `toml:"url"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	Migrate    bool   `toml:"migrate"`
}

// CacheConfig selects the artifact cache. An empty Dir means the XDG
// cache directory.
type CacheConfig struct {
	Driver string   `toml:"driver"`
	Dir    string   `toml:"dir"`
	URL    string   `toml:"url"`
	Prefix string   `toml:"prefix"`
	TTL    Duration `toml:"ttl"`
}

// UploadConfig configures S3 uploads. Uploads are disabled without a
// bucket.
type UploadConfig struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	Prefix    string `toml:"prefix"`
	PathStyle bool   `toml:"path_style"`
}

// EventsConfig configures export event publishing. Events are disabled
// without a NATS URL.
type EventsConfig struct {
	NATSURL string `toml:"nats_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":4000",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{2 * time.Minute},
			MaxBodyBytes: 50 << 20,
		},
		Store: StoreConfig{
			Driver:     StoreFile,
			Dir:        "records",
			Collection: "assessments",
		},
		Cache: CacheConfig{
			Driver: CacheFile,
			Prefix: appName + ":",
			TTL:    Duration{24 * time.Hour},
		},
		Upload: UploadConfig{
			Region: "us-east-1",
			Prefix: "exports/",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/secassess/config.toml, falling back
// to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", appName, "config.toml")
	}
	return filepath.Join(".", "."+appName+".toml")
}

// Load reads the configuration. With an empty path the default file is
// used when present; an explicit path must exist. A .env file in the
// working directory is loaded into the environment first, without
// overriding variables that are already set.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "load .env")
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidInput, "%s: unknown key %s", path, undecoded[0])
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides settings from SECASSESS_* variables. PORT is honored
// for platforms that assign the listen port.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	str("SECASSESS_ADDR", &c.Server.Addr)
	str("SECASSESS_STORE_DRIVER", &c.Store.Driver)
	str("SECASSESS_STORE_DIR", &c.Store.Dir)
	str("SECASSESS_DATABASE_URL", &c.Store.URL)
	str("SECASSESS_MONGO_DATABASE", &c.Store.Database)
	str("SECASSESS_CACHE_DRIVER", &c.Cache.Driver)
	str("SECASSESS_CACHE_DIR", &c.Cache.Dir)
	str("SECASSESS_REDIS_URL", &c.Cache.URL)
	str("SECASSESS_CACHE_PREFIX", &c.Cache.Prefix)
	str("SECASSESS_S3_BUCKET", &c.Upload.Bucket)
	str("SECASSESS_S3_REGION", &c.Upload.Region)
	str("SECASSESS_S3_ENDPOINT", &c.Upload.Endpoint)
	str("SECASSESS_S3_PREFIX", &c.Upload.Prefix)
	str("SECASSESS_NATS_URL", &c.Events.NATSURL)

	if v := getenv("SECASSESS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "SECASSESS_CACHE_TTL")
		}
		c.Cache.TTL = Duration{d}
	}
	if v := getenv("SECASSESS_STORE_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "SECASSESS_STORE_MIGRATE")
		}
		c.Store.Migrate = b
	}
	return nil
}

// Validate checks that the selected drivers have what they need.
func (c Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case StoreFile:
		if c.Store.Dir == "" {
			problems = append(problems, "store.dir is required for the file store")
		}
	case StorePostgres:
		if c.Store.URL == "" {
			problems = append(problems, "store.url is required for postgres")
		}
	case StoreMongo:
		if c.Store.URL == "" || c.Store.Database == "" {
			problems = append(problems, "store.url and store.database are required for mongo")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store driver %q", c.Store.Driver))
	}

	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Driver) {
		problems = append(problems, fmt.Sprintf("unknown cache driver %q", c.Cache.Driver))
	}
	if c.Cache.Driver == CacheRedis && c.Cache.URL == "" {
		problems = append(problems, "cache.url is required for redis")
	}
	if c.Cache.TTL.Duration < 0 {
		problems = append(problems, "cache.ttl must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		problems = append(problems, "server.max_body_bytes must be positive")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// UploadEnabled reports whether a bucket is configured.
func (c Config) UploadEnabled() bool { return c.Upload.Bucket != "" }

// EventsEnabled reports whether a NATS URL is configured.
func (c Config) EventsEnabled() bool { return c.Events.NATSURL != "" }
