package pipeline

import (
	"context"

	"github.com/matzehuels/secassess/pkg/bundle"
	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/render/document"
	"github.com/matzehuels/secassess/pkg/render/dump"
	"github.com/matzehuels/secassess/pkg/render/html"
	"github.com/matzehuels/secassess/pkg/render/sheet"
	"github.com/matzehuels/secassess/pkg/report"
)

// Render produces the artifact for opts.Format without caching. m must be
// the model built from rec. The data dumps ignore the section selector
// and the images.
func Render(ctx context.Context, rec *record.Assessment, m *report.Model, opts Options) ([]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch opts.Format {
	case FormatPDF:
		data, err = document.Render(m, opts.Images, opts.Sections, document.WithTime(opts.Now))
	case FormatXLSX:
		data, err = sheet.Render(m, opts.Images, opts.Sections, sheet.WithTime(opts.Now))
	case FormatHTML:
		data, err = html.Render(m, opts.Images, opts.Sections, html.WithTime(opts.Now))
	case FormatJSON:
		data, err = dump.JSON(rec)
	case FormatSQL:
		data = dump.SQL(rec)
	case FormatXML:
		data = dump.XML(rec)
	case FormatZip:
		// The bundle wraps its own render errors.
		return bundle.Package(ctx, rec, opts.Images, opts.Sections,
			bundle.WithModel(m), bundle.WithTime(opts.Now))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "format %q has no renderer", opts.Format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render %s", opts.Format)
	}
	return data, nil
}
