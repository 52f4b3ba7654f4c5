package cli

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/secassess/pkg/config"
)

func TestServerOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = config.Duration{Duration: 5 * time.Second}

	opts, err := serverOptions(context.Background(), cfg)
	if err != nil {
		t.Fatalf("serverOptions() error = %v", err)
	}
	if opts.Addr != ":8080" || opts.ReadTimeout != 5*time.Second || opts.MaxBodyBytes != cfg.Server.MaxBodyBytes {
		t.Errorf("serverOptions() = %+v", opts)
	}
	if opts.Uploader != nil {
		t.Errorf("Uploader = %v, want nil without a bucket", opts.Uploader)
	}
}

func TestCacheDriver(t *testing.T) {
	cfg := config.CacheConfig{Driver: config.CacheRedis}
	if got := cacheDriver(cfg, false); got != config.CacheRedis {
		t.Errorf("cacheDriver() = %q, want redis", got)
	}
	if got := cacheDriver(cfg, true); got != config.CacheNone {
		t.Errorf("cacheDriver(noCache) = %q, want none", got)
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	if _, err := openStore(context.Background(), config.StoreConfig{Driver: "sqlite"}); err == nil {
		t.Error("openStore() accepted an unknown driver")
	}
}
