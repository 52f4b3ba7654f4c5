package sheet

import (
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/secassess/pkg/report"
)

// Row heights in points.
const (
	headerHeight    = 22.0
	subHeaderHeight = 20.0
	bannerHeight    = 24.0
	captionHeight   = 18.0
	titleHeight     = 28.0
)

// writer wraps a workbook and keeps the first error, so drawing code can
// run straight through and the caller checks once.
type writer struct {
	f      *excelize.File
	styles map[styleSpec]int
	sheets int
	now    time.Time
	err    error
}

// styleSpec is a cell style; equal specs share one registered style.
type styleSpec struct {
	fill   string
	color  string
	size   float64
	bold   bool
	border bool
}

var (
	headerStyle  = styleSpec{fill: report.Palette.HeaderBg, color: report.Palette.Accent, size: 11, bold: true, border: true}
	subHeadStyle = styleSpec{fill: report.Palette.HeaderBg, color: report.Palette.Accent, size: 11, bold: true}
	altStyle     = styleSpec{fill: report.Palette.SheetAlt}
	bannerStyle  = styleSpec{fill: report.Palette.Banner, color: report.Palette.Accent, size: 13, bold: true}
	captionStyle = styleSpec{color: report.Palette.Accent, size: 11, bold: true}
	titleStyle   = styleSpec{fill: report.Palette.Dark, color: report.Palette.Accent, size: 16, bold: true}
)

// column is a table column: header and width in character units.
type column struct {
	title string
	width float64
}

func (w *writer) check(err error) {
	if err != nil && w.err == nil {
		w.err = err
	}
}

func (w *writer) addSheet(name string) {
	if w.sheets == 0 {
		w.check(w.f.SetSheetName(defaultSheet, name))
	} else {
		_, err := w.f.NewSheet(name)
		w.check(err)
	}
	w.sheets++
}

func (w *writer) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	w.check(err)
	return name
}

func (w *writer) colName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	w.check(err)
	return name
}

func (w *writer) set(sheet string, col, row int, v any) {
	w.check(w.f.SetCellValue(sheet, w.cell(col, row), v))
}

func (w *writer) style(spec styleSpec) int {
	if id, ok := w.styles[spec]; ok {
		return id
	}
	s := &excelize.Style{Alignment: &excelize.Alignment{Vertical: "center"}}
	if spec.fill != "" {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{spec.fill}}
	}
	if spec.color != "" || spec.bold || spec.size > 0 {
		s.Font = &excelize.Font{Bold: spec.bold, Size: spec.size, Color: spec.color}
	}
	if spec.border {
		s.Border = []excelize.Border{{Type: "bottom", Color: spec.color, Style: 1}}
	}
	id, err := w.f.NewStyle(s)
	w.check(err)
	w.styles[spec] = id
	return id
}

// paint applies spec to the cells from (col1, row) through (col2, row).
func (w *writer) paint(sheet string, row, col1, col2 int, spec styleSpec) {
	w.check(w.f.SetCellStyle(sheet, w.cell(col1, row), w.cell(col2, row), w.style(spec)))
}

func (w *writer) height(sheet string, row int, pt float64) {
	w.check(w.f.SetRowHeight(sheet, row, pt))
}

func (w *writer) width(sheet string, col int, units float64) {
	name := w.colName(col)
	w.check(w.f.SetColWidth(sheet, name, name, units))
}

func (w *writer) merge(sheet string, row, col1, col2 int) {
	w.check(w.f.MergeCell(sheet, w.cell(col1, row), w.cell(col2, row)))
}

// table writes column widths and the styled header row on row 1.
func (w *writer) table(sheet string, cols []column) {
	for i, c := range cols {
		w.width(sheet, i+1, c.width)
		w.set(sheet, i+1, 1, c.title)
	}
	w.paint(sheet, 1, 1, len(cols), headerStyle)
	w.height(sheet, 1, headerHeight)
}

// headerRow writes an inline header row inside a sheet body.
func (w *writer) headerRow(sheet string, row int, titles ...string) {
	for i, t := range titles {
		w.set(sheet, i+1, row, t)
	}
	w.paint(sheet, row, 1, len(titles), subHeadStyle)
	w.height(sheet, row, subHeaderHeight)
}

// band shades even data rows; idx counts data rows from zero.
func (w *writer) band(sheet string, row, cols, idx int) {
	if idx%2 == 0 {
		w.paint(sheet, row, 1, cols, altStyle)
	}
}

// banner writes a merged section banner and returns the next row.
func (w *writer) banner(sheet, title string, row int) int {
	w.set(sheet, 1, row, title)
	w.paint(sheet, row, 1, ImageColumns, bannerStyle)
	w.merge(sheet, row, 1, ImageColumns)
	w.height(sheet, row, bannerHeight)
	return row + 1
}

func (w *writer) imageColumns(sheet string) {
	for c := 1; c <= ImageColumns; c++ {
		w.width(sheet, c, ColumnWidthUnits)
	}
}

// images anchors each image below a merged caption row and returns the
// next free row.
func (w *writer) images(sheet string, imgs []report.Image, row int) int {
	for _, img := range imgs {
		caption := img.Name
		if caption == "" {
			caption = "Diagram"
		}
		w.set(sheet, 1, row, caption)
		w.paint(sheet, row, 1, ImageColumns, captionStyle)
		w.merge(sheet, row, 1, ImageColumns)
		w.height(sheet, row, captionHeight)
		row++

		data, err := report.NormalizePNG(img.Data)
		if err != nil {
			w.set(sheet, 1, row, img.Placeholder())
			row += 2
			continue
		}
		cfg, err := report.DecodeConfig(data)
		if err != nil || cfg.Width == 0 || cfg.Height == 0 {
			w.set(sheet, 1, row, img.Placeholder())
			row += 2
			continue
		}

		iw, ih := img.Size()
		p := Anchor(iw, ih, row)
		for r := row; r < row+p.Rows; r++ {
			w.height(sheet, r, p.RowHeight)
		}
		w.check(w.f.AddPictureFromBytes(sheet, w.cell(p.Col()+1, row), &excelize.Picture{
			Extension: ".png",
			File:      data,
			Format: &excelize.GraphicOptions{
				AltText:     img.Caption(),
				OffsetX:     p.OffsetX(),
				ScaleX:      p.Width / float64(cfg.Width),
				ScaleY:      p.Height / float64(cfg.Height),
				Positioning: "oneCell",
			},
		}))
		row = p.Next
	}
	return row
}
