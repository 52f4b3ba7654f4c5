// Package render groups the export renderers.
//
// # Overview
//
// Every renderer turns a [report.Model] built from one assessment record
// into a single artifact:
//
//   - [document]: a paginated A4 PDF with cover, contents and closing page
//   - [sheet]: an XLSX workbook with one sheet per section
//   - [html]: a self-contained HTML page with images inlined
//   - [dump]: JSON, SQL and XML dumps of the stored record
//
// The report renderers share one signature and honor the same section
// [report.Selector]:
//
//	pdf, err := document.Render(m, imgs, sel)
//	xlsx, err := sheet.Render(m, imgs, sel)
//	page, err := html.Render(m, imgs, sel)
//
// Each accepts a WithTime option fixing the generation date, so output is
// reproducible in tests.
//
// The dumps work on the record rather than the model and ignore sections
// and images. Archives of every format are assembled by the bundle
// package.
//
// [report.Model]: github.com/matzehuels/secassess/pkg/report.Model
// [report.Selector]: github.com/matzehuels/secassess/pkg/report.Selector
// [document]: github.com/matzehuels/secassess/pkg/render/document
// [sheet]: github.com/matzehuels/secassess/pkg/render/sheet
// [html]: github.com/matzehuels/secassess/pkg/render/html
// [dump]: github.com/matzehuels/secassess/pkg/render/dump
package render
