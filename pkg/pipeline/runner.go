package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/secassess/pkg/cache"
	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/observability"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/report"
	"github.com/matzehuels/secassess/pkg/store"
)

// Cache key types reported to the observability cache hooks.
const (
	keyTypeRecord   = "record"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the store, cache and logger - it
// doesn't keep pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// ArtifactTTL overrides cache.TTLArtifact when positive.
	ArtifactTTL time.Duration
}

// NewRunner creates a runner reading records from s.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// s may be nil when every export passes its record in [Options.Record].
func NewRunner(s store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  s,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
// Every run is reported to the registered observability export hooks.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	id := opts.RecordID
	if opts.Record != nil {
		id = opts.Record.ID
	}
	start := time.Now()
	observability.Export().OnExportStart(ctx, id, opts.Format)
	defer func() {
		size := 0
		if result != nil {
			size = len(result.Artifact)
		}
		observability.Export().OnExportComplete(ctx, id, opts.Format, size, time.Since(start), err)
	}()

	result = &Result{
		Format:      opts.Format,
		ContentType: Info(opts.Format).ContentType,
	}

	// Stage 1: Load
	loadStart := time.Now()
	rec := opts.Record
	if rec == nil {
		var loadHit bool
		rec, loadHit, err = r.LoadWithCacheInfo(ctx, opts.RecordID, opts.Refresh)
		if err != nil {
			return nil, err
		}
		result.CacheInfo.LoadHit = loadHit
	}
	result.Record = rec
	result.FileName = FileName(rec.OrgName, opts.Format)
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded record",
		"id", rec.ID,
		"org", rec.OrgName,
		"cached", result.CacheInfo.LoadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	m := report.Build(rec)
	result.Model = m
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Sections = len(m.Visible(opts.Sections))
	result.Stats.Images = len(opts.Images)

	r.Logger.Debug("built report model",
		"sections", result.Stats.Sections,
		"responses", len(m.Responses),
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifact, hash, renderHit, err := r.renderWithCacheInfo(ctx, rec, m, opts)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.RecordHash = hash
	result.Stats.Size = len(artifact)
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered export",
		"format", opts.Format,
		"bytes", result.Stats.Size,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads a record with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, id string, refresh bool) (*record.Assessment, bool, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, false, err
	}
	if r.Store == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "no record store configured")
	}

	cacheKey := r.Keyer.RecordKey(id)

	// Try cache first (unless refresh requested)
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var rec record.Assessment
			if err := json.Unmarshal(data, &rec); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeRecord)
				return &rec, true, nil // Cache hit
			}
			// If deserialization fails, fall through to reload
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeRecord)
	}

	rec, err := r.Store.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(rec); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRecord); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeRecord, len(data))
		}
	}

	return rec, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, id string) (*record.Assessment, error) {
	rec, _, err := r.LoadWithCacheInfo(ctx, id, false)
	return rec, err
}

// RenderWithCacheInfo renders rec with caching and returns cache hit info.
// m must be the model built from rec.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rec *record.Assessment, m *report.Model, opts Options) ([]byte, bool, error) {
	data, _, hit, err := r.renderWithCacheInfo(ctx, rec, m, opts)
	return data, hit, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, rec *record.Assessment, m *report.Model, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, rec, m, opts)
	return data, err
}

func (r *Runner) renderWithCacheInfo(ctx context.Context, rec *record.Assessment, m *report.Model, opts Options) ([]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}

	// Compute cache key from the record content
	recordData, err := json.Marshal(rec)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize record for cache key: %w", err)
	}
	recordHash := cache.Hash(recordData)
	cacheable := Info(opts.Format).Cacheable
	cacheKey := r.Keyer.ArtifactKey(recordHash, opts.ArtifactKeyOpts())

	// Try cache first
	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			return data, recordHash, true, nil // Cache hit
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
	}

	data, err := Render(ctx, rec, m, opts)
	if err != nil {
		return nil, "", false, err
	}

	// Cache the result
	if cacheable {
		if err := r.Cache.Set(ctx, cacheKey, data, r.artifactTTL()); err != nil {
			opts.Logger.Warn("cache write failed", "format", opts.Format, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return data, recordHash, false, nil // Cache miss
}

// Close releases resources held by the runner: the cache and the store.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) artifactTTL() time.Duration {
	if r.ArtifactTTL > 0 {
		return r.ArtifactTTL
	}
	return cache.TTLArtifact
}
