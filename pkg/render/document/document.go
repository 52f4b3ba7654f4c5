package document

import (
	"bytes"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/report"
)

// =============================================================================
// Page geometry (points)
// =============================================================================

const (
	PageWidth    = 595.0
	PageHeight   = 842.0
	Margin       = 52.0
	UsableWidth  = PageWidth - 2*Margin
	UsableHeight = PageHeight - 2*Margin
	Bottom       = Margin + UsableHeight
)

// Font sizes.
const (
	SizeTitle   = 44.0
	SizeHeading = 28.0
	SizeSubhead = 16.0
	SizeBody    = 13.0
	SizeTable   = 11.0
	SizeCaption = 11.0
	SizeSmall   = 9.0
)

// Table and image limits.
const (
	MaxTableRows     = 300
	HeaderRowHeight  = 26.0
	SubHeaderHeight  = 24.0
	RowHeight        = 20.0
	CaptionHeight    = 24.0
	ImageGap         = 14.0
	ImageHeightShare = 0.58
	lineSpacing      = 1.2
	fontFamily       = "Helvetica"
)

// =============================================================================
// Options
// =============================================================================

// Option configures document rendering.
type Option func(*renderer)

// WithTime sets the generation time printed on the cover and closing page
// and stored as the creation date. It defaults to the current time.
func WithTime(t time.Time) Option {
	return func(r *renderer) { r.now = t }
}

// =============================================================================
// Rendering
// =============================================================================

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	cur Cursor
	now time.Time

	imageCount int
}

// Render produces the PDF report for the sections sel makes visible. Images
// are embedded in the diagram sections they are routed to. On failure no
// bytes are returned.
func Render(m *report.Model, imgs []report.Image, sel report.Selector, opts ...Option) ([]byte, error) {
	pdf, err := build(m, imgs, sel, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "write document")
	}
	return buf.Bytes(), nil
}

func build(m *report.Model, imgs []report.Image, sel report.Selector, opts ...Option) (*fpdf.Fpdf, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), now: time.Now()}
	for _, opt := range opts {
		opt(r)
	}

	pdf.SetTitle("SecAssess Report "+report.Dash+" "+m.Meta.Org, true)
	pdf.SetAuthor(m.Meta.Assessor, true)
	pdf.SetCreator(report.ProductLabel(), true)
	pdf.SetCreationDate(r.now)

	visible := m.Visible(sel)
	r.cover(m)
	r.contents(visible)
	for _, s := range visible {
		r.section(s, imgs)
	}
	r.closing(m)

	if pdf.Err() {
		return nil, errors.Wrap(errors.ErrCodeRender, pdf.Error(), "render document")
	}
	return pdf, nil
}

// =============================================================================
// Cursor and drawing primitives
// =============================================================================

func (r *renderer) addPage() {
	r.pdf.AddPage()
	r.cur = Cursor{Page: r.pdf.PageNo(), Y: Margin}
}

// place reserves h points and returns the y at which to draw, adding the
// page the cursor broke to.
func (r *renderer) place(h float64) float64 {
	next := r.cur.Place(h)
	if next.Page != r.cur.Page {
		r.pdf.AddPage()
	}
	r.cur = next
	return next.Y
}

func (r *renderer) moveTo(y float64) { r.cur = r.cur.At(y) }
func (r *renderer) moveDown(dy float64) { r.cur = r.cur.Down(dy) }

// lines moves down n lines of the given font size.
func (r *renderer) lines(n, size float64) { r.moveDown(n * lineHeight(size)) }

func lineHeight(size float64) float64 { return size * lineSpacing }

func (r *renderer) fill(hex string) {
	red, green, blue := report.RGB(hex)
	r.pdf.SetFillColor(red, green, blue)
}

func (r *renderer) stroke(hex string) {
	red, green, blue := report.RGB(hex)
	r.pdf.SetDrawColor(red, green, blue)
}

func (r *renderer) rect(x, y, w, h float64, hex string) {
	r.fill(hex)
	r.pdf.Rect(x, y, w, h, "F")
}

func (r *renderer) font(size float64, hex string) {
	r.pdf.SetFont(fontFamily, "", size)
	red, green, blue := report.RGB(hex)
	r.pdf.SetTextColor(red, green, blue)
}

// text draws a single line with its top at y. align is "L", "C" or "R".
func (r *renderer) text(x, y, w, size float64, hex, s, align string) {
	r.font(size, hex)
	r.pdf.SetXY(x, y)
	r.pdf.CellFormat(w, lineHeight(size), r.tr(s), "", 0, align+"T", false, 0, "")
}

// width measures s in the current font.
func (r *renderer) width(s string) float64 {
	return r.pdf.GetStringWidth(r.tr(s))
}

// wrap splits s into lines no wider than w at the given size. Words wider
// than w are broken between characters.
func (r *renderer) wrap(s string, size, w float64) []string {
	r.pdf.SetFont(fontFamily, "", size)
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for _, piece := range r.split(word, w) {
				next := piece
				if line != "" {
					next = line + " " + piece
				}
				if line != "" && r.width(next) > w {
					out = append(out, line)
					next = piece
				}
				line = next
			}
		}
		out = append(out, line)
	}
	return out
}

// split breaks a word into pieces no wider than w.
func (r *renderer) split(word string, w float64) []string {
	if r.width(word) <= w {
		return []string{word}
	}
	var out []string
	piece := ""
	for _, c := range word {
		if piece != "" && r.width(piece+string(c)) > w {
			out = append(out, piece)
			piece = ""
		}
		piece += string(c)
	}
	return append(out, piece)
}

// tint mixes hex with white; alpha is the share of the original color.
func tint(hex string, alpha float64) string {
	red, green, blue := report.RGB(hex)
	mix := func(c int) int { return int(float64(c)*alpha + 255*(1-alpha) + 0.5) }
	const digits = "0123456789abcdef"
	out := []byte{'#'}
	for _, c := range []int{mix(red), mix(green), mix(blue)} {
		out = append(out, digits[c>>4], digits[c&0xf])
	}
	return string(out)
}

func (r *renderer) longDate() string { return r.now.Format("2 January 2006") }
func (r *renderer) shortDate() string { return r.now.Format("1/2/2006") }
