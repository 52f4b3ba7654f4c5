// Package html renders a report model as a single self-contained HTML
// page in the dark SecAssess theme. Images are inlined as data URLs so the
// file can be opened from an archive without its images directory.
package html
