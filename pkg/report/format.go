package report

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Dash stands in for missing values.
const Dash = "—"

// Palette is the report color scheme shared by every renderer, as
// "#rrggbb".
var Palette = struct {
	Accent, Light, Muted, Text, Dark, Rule string
	Pass, Fail, Partial, NA                string
	RowAlt, HeaderBg, SheetAlt, Banner     string
}{
	Accent:   "#4a3fbf",
	Light:    "#a29bfe",
	Muted:    "#6b6890",
	Text:     "#1e1a3a",
	Dark:     "#0d0b1e",
	Rule:     "#c8c4ee",
	Pass:     "#00b894",
	Fail:     "#e63757",
	Partial:  "#f59e0b",
	NA:       "#9ca3af",
	RowAlt:   "#f4f2ff",
	HeaderBg: "#ece9ff",
	SheetAlt: "#f9f8ff",
	Banner:   "#ede9ff",
}

// StatusColor returns the palette color for a response status.
func StatusColor(status string) string {
	switch strings.ToLower(status) {
	case StatusPass:
		return Palette.Pass
	case StatusFail:
		return Palette.Fail
	case StatusPartial:
		return Palette.Partial
	case StatusNA:
		return Palette.NA
	}
	return Palette.Muted
}

// ImpactColor returns the palette color for a risk impact.
func ImpactColor(impact string) string {
	switch strings.ToLower(impact) {
	case "high":
		return Palette.Fail
	case "medium":
		return Palette.Partial
	case "low":
		return Palette.Pass
	}
	return Palette.Muted
}

// RGB splits "#rrggbb" into components. Malformed input yields black.
func RGB(hex string) (r, g, b int) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatNumber groups thousands the en-US way with at most three
// fraction digits: 110400 -> "110,400".
func FormatNumber(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatMoney prefixes a formatted amount with its currency code:
// ("USD", 110400) -> "USD 110,400".
func FormatMoney(currency string, v float64) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return currency + " " + FormatNumber(v)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}

var emojiRe = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{FE00}-\x{FEFF}]`)

// Clean strips emoji and surrounding space. An empty input becomes
// [Dash].
func Clean(s string) string {
	if s == "" {
		s = Dash
	}
	return strings.TrimSpace(emojiRe.ReplaceAllString(s, ""))
}

func orDash(s string) string {
	if s == "" {
		return Dash
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
