package document

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/secassess/pkg/report"
)

const (
	coverBandHeight = 180.0
	badgeWidth      = 220.0
	badgeHeight     = 100.0
	badgeTop        = 290.0
	tileTop         = 420.0
	tileHeight      = 64.0
	white           = "#ffffff"
	footerGray      = "#5a5775"
)

func (r *renderer) cover(m *report.Model) {
	r.addPage()
	r.rect(0, 0, PageWidth, coverBandHeight, report.Palette.Dark)
	r.text(Margin, 60, UsableWidth, SizeTitle, white, report.ProductName, "C")
	r.text(Margin, 120, UsableWidth, SizeSubhead, report.Palette.Light, "Security Assessment Report", "C")
	r.text(Margin, 210, UsableWidth, SizeBody, report.Palette.Text, report.Clean(m.Meta.Org), "C")
	r.text(Margin, 232, UsableWidth, SizeBody, report.Palette.Muted, "Assessor: "+report.Clean(m.Meta.Assessor), "C")
	r.text(Margin, 252, UsableWidth, SizeTable, report.Palette.Muted, r.longDate(), "C")

	bx := Margin + math.Round((UsableWidth-badgeWidth)/2)
	r.fill(report.Palette.RowAlt)
	r.stroke(report.Palette.Accent)
	r.pdf.SetLineWidth(1)
	r.pdf.RoundedRect(bx, badgeTop, badgeWidth, badgeHeight, 12, "1234", "FD")
	r.text(bx, badgeTop+8, badgeWidth, 54, report.Palette.Accent, strconv.Itoa(m.Meta.Score)+"%", "C")
	r.text(bx, badgeTop+68, badgeWidth, SizeTable, report.Palette.Muted, "Overall Security Score", "C")

	tiles := []struct {
		label string
		count int
		color string
	}{
		{"Pass", m.Stats.Pass, report.Palette.Pass},
		{"Partial", m.Stats.Partial, report.Palette.Partial},
		{"Fail", m.Stats.Fail, report.Palette.Fail},
	}
	tw := math.Round(UsableWidth / 3)
	for i, t := range tiles {
		sx := Margin + float64(i)*tw
		r.fill(tint(t.color, 0x18/255.0))
		r.pdf.RoundedRect(sx+4, tileTop, tw-8, tileHeight, 8, "1234", "F")
		r.text(sx+4, tileTop+6, tw-8, SizeHeading, t.color, strconv.Itoa(t.count), "C")
		r.text(sx+4, tileTop+40, tw-8, SizeSmall, report.Palette.Muted, t.label, "C")
	}
	r.text(Margin, Bottom-20, UsableWidth, SizeSmall, report.Palette.Muted, "Generated by "+report.ProductLabel(), "C")
}

func (r *renderer) contents(visible []report.Section) {
	r.addPage()
	r.rect(Margin, Margin, 6, 36, report.Palette.Accent)
	r.text(Margin+16, Margin+8, UsableWidth-16, SizeHeading, report.Palette.Accent, "Contents", "L")
	r.moveTo(Margin + 56)
	for i, s := range visible {
		y := r.place(22)
		r.text(Margin+10, y, UsableWidth-10, SizeBody, report.Palette.Text, fmt.Sprintf("%d.  %s", i+1, report.Clean(s.Title)), "L")
		r.lines(1.5, SizeBody)
	}
}

func (r *renderer) startSection(title string) {
	r.addPage()
	r.rect(Margin, Margin, 6, 60, report.Palette.Accent)
	r.text(Margin+16, Margin+8, UsableWidth-16, SizeHeading, report.Palette.Accent, report.Clean(title), "L")
	r.stroke(report.Palette.Rule)
	r.pdf.SetLineWidth(0.6)
	r.pdf.Line(Margin, Margin+68, Margin+UsableWidth, Margin+68)
	r.moveTo(Margin + 80)
}

func (r *renderer) closing(m *report.Model) {
	r.addPage()
	r.rect(0, 0, PageWidth, PageHeight, report.Palette.Dark)
	r.text(Margin, 340, UsableWidth, SizeHeading, white, "End of Report", "C")
	r.text(Margin, 382, UsableWidth, SizeBody, report.Palette.Light, report.Clean(m.Meta.Org), "C")
	r.text(Margin, 412, UsableWidth, SizeSmall, footerGray, report.ProductLabel()+"  ·  "+r.shortDate(), "C")
}
