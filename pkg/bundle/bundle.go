// Package bundle packages every export format of an assessment into one
// zip archive.
//
// The archive holds, for an organization sanitized to <name>:
//
//	<name>.pdf           paginated report
//	<name>.xlsx          workbook
//	<name>.json          record dump
//	<name>.sql           INSERT statement under a fresh id
//	<name>.xml           markup dump
//	<name>-report.html   single-page report
//	images/<image>.png   one entry per captured diagram
//
// The document and workbook are rendered concurrently. Every entry is
// generated in memory before the archive is written, so a failing
// renderer aborts the bundle instead of leaving a partial archive.
package bundle

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/render/document"
	"github.com/matzehuels/secassess/pkg/render/dump"
	"github.com/matzehuels/secassess/pkg/render/html"
	"github.com/matzehuels/secassess/pkg/render/sheet"
	"github.com/matzehuels/secassess/pkg/report"
)

// ImageDir is the archive directory holding diagram images.
const ImageDir = "images/"

// Option configures packaging.
type Option func(*packager)

type packager struct {
	now   time.Time
	model *report.Model
	newID func() string
}

// WithTime sets the generation time printed in the reports and stamped on
// archive entries. It defaults to the current time.
func WithTime(t time.Time) Option {
	return func(p *packager) { p.now = t }
}

// WithModel reuses a model already built from the record.
func WithModel(m *report.Model) Option {
	return func(p *packager) { p.model = m }
}

// WithIDFunc sets the id generator of the SQL dump.
func WithIDFunc(fn func() string) Option {
	return func(p *packager) { p.newID = fn }
}

// Entry is one archive member.
type Entry struct {
	Name string
	Data []byte
}

// Package renders rec in every format and returns the zip archive.
func Package(ctx context.Context, rec *record.Assessment, imgs []report.Image, sel report.Selector, opts ...Option) ([]byte, error) {
	p := newPackager(opts)
	entries, err := p.entries(ctx, rec, imgs, sel)
	if err != nil {
		return nil, err
	}
	return Write(entries, p.now)
}

// Entries renders rec in every format and returns the archive members in
// archive order without writing the archive.
func Entries(ctx context.Context, rec *record.Assessment, imgs []report.Image, sel report.Selector, opts ...Option) ([]Entry, error) {
	return newPackager(opts).entries(ctx, rec, imgs, sel)
}

func newPackager(opts []Option) *packager {
	p := &packager{}
	for _, opt := range opts {
		opt(p)
	}
	if p.now.IsZero() {
		p.now = time.Now()
	}
	return p
}

func (p *packager) entries(ctx context.Context, rec *record.Assessment, imgs []report.Image, sel report.Selector) ([]Entry, error) {
	m := p.model
	if m == nil {
		m = report.Build(rec)
	}
	name := report.FileName(rec.OrgName)

	var pdf, xlsx []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := document.Render(m, imgs, sel, document.WithTime(p.now))
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "render pdf")
		}
		pdf = data
		return gctx.Err()
	})
	g.Go(func() error {
		data, err := sheet.Render(m, imgs, sel, sheet.WithTime(p.now))
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "render xlsx")
		}
		xlsx = data
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	js, err := dump.JSON(rec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render json")
	}
	var dumpOpts []dump.Option
	if p.newID != nil {
		dumpOpts = append(dumpOpts, dump.WithIDFunc(p.newID))
	}
	page, err := html.Render(m, imgs, sel, html.WithTime(p.now))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render html")
	}

	entries := []Entry{
		{Name: name + ".pdf", Data: pdf},
		{Name: name + ".xlsx", Data: xlsx},
		{Name: name + ".json", Data: js},
		{Name: name + ".sql", Data: dump.SQL(rec, dumpOpts...)},
		{Name: name + ".xml", Data: dump.XML(rec)},
		{Name: name + "-report.html", Data: page},
	}
	return append(entries, imageEntries(imgs)...), nil
}

// imageEntries converts captured images to PNG archive members. Data that
// does not decode is stored as received. Images without data are skipped
// and repeated names get a numeric suffix.
func imageEntries(imgs []report.Image) []Entry {
	var out []Entry
	seen := make(map[string]int)
	for _, img := range imgs {
		if len(img.Data) == 0 {
			continue
		}
		data, err := report.NormalizePNG(img.Data)
		if err != nil {
			data = img.Data
		}
		base := report.ImageFileName(img.Name)
		seen[base]++
		if n := seen[base]; n > 1 {
			base += "-" + strconv.Itoa(n)
		}
		out = append(out, Entry{Name: ImageDir + base + ".png", Data: data})
	}
	return out
}

// Write encodes entries as a zip archive at maximum compression, stamping
// each member with modified.
func Write(entries []Entry, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "add %s", e.Name)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "write %s", e.Name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "close archive")
	}
	return buf.Bytes(), nil
}
