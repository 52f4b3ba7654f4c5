// Package pipeline provides the export pipeline for assessment records.
//
// This package implements the complete load → build → render pipeline that
// is shared by the CLI and the HTTP server. By centralizing this logic,
// every entry point caches, logs and reports exports the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the record from the configured store (cached briefly)
//  2. Build: Normalize the record into a [report.Model]
//  3. Render: Produce the artifact in the requested format (cached)
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(st, c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    RecordID: "a1",
//	    Format:   pipeline.FormatPDF,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.FileName, result.Artifact, 0o644)
//
// A record that is already in memory skips the load stage:
//
//	result, err := runner.Execute(ctx, pipeline.Options{Record: rec, Format: "zip"})
package pipeline

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/secassess/pkg/cache"
	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/report"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for export formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatSQL  = "sql"
	FormatXML  = "xml"
	FormatZip  = "zip"
)

// DefaultFormat is the format used when none is given.
const DefaultFormat = FormatPDF

// Formats lists every export format.
var Formats = []string{FormatPDF, FormatXLSX, FormatHTML, FormatJSON, FormatSQL, FormatXML, FormatZip}

// formatAliases maps alternate names accepted from users to formats.
var formatAliases = map[string]string{
	"excel": FormatXLSX,
	"xls":   FormatXLSX,
	"htm":   FormatHTML,
	"pdf":   FormatPDF,
	"json":  FormatJSON,
	"sql":   FormatSQL,
	"xml":   FormatXML,
	"zip":   FormatZip,
	"xlsx":  FormatXLSX,
	"html":  FormatHTML,
}

// FormatInfo describes how an export format is delivered.
type FormatInfo struct {
	// Ext is the file extension without the dot.
	Ext string
	// ContentType is the HTTP media type.
	ContentType string
	// Cacheable is false for formats whose output differs between runs,
	// such as the SQL dump with its fresh row id.
	Cacheable bool
}

var formatInfo = map[string]FormatInfo{
	FormatPDF:  {Ext: "pdf", ContentType: "application/pdf", Cacheable: true},
	FormatXLSX: {Ext: "xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Cacheable: true},
	FormatHTML: {Ext: "html", ContentType: "text/html; charset=utf-8", Cacheable: true},
	FormatJSON: {Ext: "json", ContentType: "application/json", Cacheable: true},
	FormatSQL:  {Ext: "sql", ContentType: "application/sql", Cacheable: false},
	FormatXML:  {Ext: "xml", ContentType: "application/xml", Cacheable: true},
	FormatZip:  {Ext: "zip", ContentType: "application/zip", Cacheable: false},
}

// Info returns the delivery details of format. Unknown formats yield a
// zero FormatInfo.
func Info(format string) FormatInfo {
	return formatInfo[format]
}

// ParseFormat resolves a user-supplied format name, accepting aliases such
// as "excel" and ignoring case.
func ParseFormat(s string) (string, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", ValidateFormat(s)
}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats)
}

// FileName returns the download name of an export of a record belonging
// to org. The HTML report carries a "-report" suffix, as it does inside
// bundles.
func FileName(org, format string) string {
	base := report.FileName(org)
	if format == FormatHTML {
		return base + "-report.html"
	}
	return base + "." + Info(format).Ext
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one export.
type Options struct {
	// RecordID names the record to load. Ignored when Record is set.
	RecordID string `json:"record_id,omitempty"`
	// Format is one of [Formats].
	Format string `json:"format"`
	// Sections selects the report sections. Nil selects all.
	Sections report.Selector `json:"-"`
	// Images are the captured diagrams.
	Images []report.Image `json:"images,omitempty"`
	// Refresh bypasses the cache for reads; results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Record *record.Assessment `json:"-"`
	Now    time.Time          `json:"-"`
	Logger *log.Logger        `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Record is the exported record.
	Record *record.Assessment

	// RecordHash is the content hash of the record.
	RecordHash string

	// Model is the report built from the record.
	Model *report.Model

	// Artifact is the rendered export.
	Artifact []byte

	// Format, FileName and ContentType describe the artifact for delivery.
	Format      string
	FileName    string
	ContentType string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Sections   int
	Images     int
	Size       int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the record came from cache
	RenderHit bool // Whether the artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a record can be obtained.
func (o *Options) ValidateForLoad() error {
	if o.Record != nil {
		return nil
	}
	return errors.ValidateRecordID(o.RecordID)
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:   o.Format,
		Sections: o.Sections.String(),
	}
	if len(o.Images) > 0 {
		opts.ImagesHash = imagesHash(o.Images)
	}
	return opts
}

func imagesHash(imgs []report.Image) string {
	var b strings.Builder
	for _, img := range imgs {
		b.WriteString(img.Name)
		b.WriteByte(0)
		b.WriteString(string(img.Section))
		b.WriteByte(0)
		b.WriteString(strconv.Itoa(img.Width) + "x" + strconv.Itoa(img.Height))
		b.WriteByte(0)
		b.WriteString(cache.Hash(img.Data))
		b.WriteByte(0)
	}
	return cache.Hash([]byte(b.String()))
}
