package document

import (
	"bytes"
	"math"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/secassess/pkg/report"
)

// images embeds a section's diagrams under a "Workflow Diagrams" heading.
// Each caption and image is placed as one block so an image never starts
// at the bottom of a page without its caption.
func (r *renderer) images(imgs []report.Image) {
	if len(imgs) == 0 {
		return
	}
	r.subhead("Workflow Diagrams", 0.6)

	maxH := math.Round(UsableHeight * ImageHeightShare)
	for _, img := range imgs {
		data, err := report.NormalizePNG(img.Data)
		if err != nil {
			y := r.place(lineHeight(SizeSmall))
			r.text(Margin, y, UsableWidth, SizeSmall, report.Palette.Muted, img.Placeholder(), "L")
			r.moveDown(lineHeight(SizeSmall) * 1.5)
			continue
		}

		w, h := img.Size()
		dw, dh := report.Fit(w, h, UsableWidth, maxH)
		y := r.place(CaptionHeight + dh + ImageGap)
		r.text(Margin, y, UsableWidth, SizeCaption, report.Palette.Muted, img.Caption(), "L")

		name := "img" + strconv.Itoa(r.imageCount)
		r.imageCount++
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		x := Margin + math.Round((UsableWidth-dw)/2)
		r.pdf.ImageOptions(name, x, y+CaptionHeight, dw, dh, false, opts, 0, "")
		r.moveTo(y + CaptionHeight + dh + ImageGap)
	}
}
