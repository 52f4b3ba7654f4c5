package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/secassess/pkg/cache"
	"github.com/matzehuels/secassess/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		dir, err := cacheDir(config.CacheConfig{Dir: "/tmp/exports"})
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if dir != "/tmp/exports" {
			t.Errorf("cacheDir() = %q, want /tmp/exports", dir)
		}
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/var/cache")
		dir, err := cacheDir(config.CacheConfig{})
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if want := filepath.Join("/var/cache", "secassess"); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		dir, err := cacheDir(config.CacheConfig{})
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".cache", "secassess"); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.CacheConfig
		noCache bool
		want    string
	}{
		{
			name: "file",
			cfg:  config.CacheConfig{Driver: config.CacheFile, Dir: dir},
			want: "*cache.FileCache",
		},
		{
			name: "none",
			cfg:  config.CacheConfig{Driver: config.CacheNone},
			want: "cache.NullCache",
		},
		{
			name:    "no-cache flag wins",
			cfg:     config.CacheConfig{Driver: config.CacheFile, Dir: dir},
			noCache: true,
			want:    "cache.NullCache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(ctx, tt.cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer c.Close()
			if got := fmt.Sprintf("%T", c); got != tt.want {
				t.Errorf("newCache() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b"} {
		if err := fc.Set(ctx, key, []byte(key), cache.TTLArtifact); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Cache.Dir = dir
	c := New(os.Stderr, LogInfo)
	c.cfg = &cfg

	cmd := c.cacheClearCommand()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, "a"); hit {
		t.Error("entry survived cache clear")
	}
}
