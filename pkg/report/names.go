package report

import (
	"regexp"
	"strings"
	"unicode"
)

// Export file naming.
const (
	MaxFileNameLength = 50
	DefaultFileName   = "assessment"
	DefaultImageName  = "diagram"
)

// FileName derives the base name of exported files from an organization
// name: control characters are removed, characters that are unsafe in
// paths or header values become "_", and the result is capped at 50 runes.
func FileName(org string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(org) {
		switch {
		case unicode.IsControl(r):
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(Truncate(b.String(), MaxFileNameLength))
	if name == "" {
		return DefaultFileName
	}
	return name
}

var unsafeImageRe = regexp.MustCompile(`[^a-zA-Z0-9_\- ]`)

// ImageFileName derives the archive entry name of a diagram image.
func ImageFileName(name string) string {
	if name == "" {
		name = DefaultImageName
	}
	safe := strings.TrimSpace(unsafeImageRe.ReplaceAllString(name, "_"))
	if safe == "" {
		return DefaultImageName
	}
	return safe
}

// Product identification printed in report footers and dumps.
const (
	ProductName   = "SecAssess"
	FormatVersion = "21"
)

// ProductLabel is the product name with its format version, "SecAssess v21".
func ProductLabel() string { return ProductName + " v" + FormatVersion }
