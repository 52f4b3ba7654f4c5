// Package document renders a report model as a paginated A4 PDF.
//
// The document opens with a cover page (score badge and pass, partial and
// fail tiles), a table of contents of the visible sections, one page run
// per section and a closing page. Layout is driven by a [Cursor], an
// immutable vertical position: every row, paragraph and image first asks
// the cursor to place its height, which breaks to a new page when the
// block would cross the bottom margin.
//
// Rendering uses the core Helvetica font with a cp1252 translator, so the
// typographic dash and ellipsis used by the report model print correctly.
package document
