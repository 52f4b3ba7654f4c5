package sheet

import "math"

// Sheet geometry. Column widths are in Excel character units and row
// heights in points; images are measured in pixels.
const (
	ColumnWidthUnits   = 12.0
	PixelsPerWidthUnit = 7.5
	ColumnPixels       = ColumnWidthUnits * PixelsPerWidthUnit
	RowPoints          = 15.0
	PointsToPixels     = 4.0 / 3.0
	PixelsToPoints     = 1 / PointsToPixels
	RowPixels          = RowPoints * PointsToPixels
	ImageColumns       = 10
	SheetPixelWidth    = ImageColumns * ColumnPixels
	MaxImageWidth      = SheetPixelWidth
	MaxImageHeight     = 360.0
)

// Placement is where an image lands on a sheet.
type Placement struct {
	// Width and Height are the displayed size in pixels.
	Width, Height float64
	// Rows is the number of rows the image spans and RowHeight the height
	// in points given to each of them.
	Rows      int
	RowHeight float64
	// ColOffset is the horizontal start in fractional columns, centering
	// the image across the image columns.
	ColOffset float64
	// Next is the first free row after the image.
	Next int
}

// Col returns the zero-based column the image starts in.
func (p Placement) Col() int { return int(p.ColOffset) }

// OffsetX returns the pixel offset of the image inside [Placement.Col].
func (p Placement) OffsetX() int {
	return int(math.Round((p.ColOffset - float64(p.Col())) * ColumnPixels))
}

// Anchor computes the placement of a w x h pixel image whose top is at the
// one-based startRow. Images are scaled down to fit, never up.
func Anchor(w, h float64, startRow int) Placement {
	scale := math.Min(math.Min(MaxImageWidth/w, MaxImageHeight/h), 1)
	dw, dh := math.Round(w*scale), math.Round(h*scale)
	rows := max(1, int(math.Ceil(dh/RowPixels)))
	return Placement{
		Width:     dw,
		Height:    dh,
		Rows:      rows,
		RowHeight: dh / float64(rows) * PixelsToPoints,
		ColOffset: math.Max(0, (SheetPixelWidth-dw)/2) / ColumnPixels,
		Next:      startRow + rows + 2,
	}
}
