// Package sheet renders a report model as an XLSX workbook.
//
// Each visible section becomes a sheet with a styled header row and banded
// data rows. Diagram sections also receive their captured images, and an
// All_Diagrams sheet gathers every selected image grouped by section.
//
// Image placement is computed by [Anchor] from a small set of named unit
// constants: column widths in character units, row heights in points and
// image sizes in pixels, with the conversions between them spelled out.
package sheet
