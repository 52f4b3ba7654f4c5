// Package dump writes assessment records in interchange formats: indented
// JSON, a SQL INSERT statement and an XML document.
//
// Dumps work on the stored record rather than the report model. Structured
// columns are written as stored, so a dump can be loaded back into the
// assessments table without loss.
package dump
