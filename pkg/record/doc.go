// Package record defines the persisted assessment record that reports are
// built from.
//
// Records arrive from a store as a row: plain columns (organization,
// assessor, date, score, ...) plus structured JSON columns (responses,
// pricing, diagrams, plans). Structured columns were authored by a forms UI
// and are decoded leniently with [List], [Number] and [Text], so a record
// with a damaged diagram still renders everything else.
package record
