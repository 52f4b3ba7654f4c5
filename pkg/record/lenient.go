package record

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// List is a JSON array that decodes leniently: a value that is not an
// array becomes an empty list and elements that fail to decode are dropped.
type List[T any] []T

// UnmarshalJSON implements [json.Unmarshaler].
func (l *List[T]) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(List[T], 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err == nil {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}

// Number is a JSON number that also accepts numeric strings. Anything
// else, including NaN and infinities, decodes as zero.
type Number float64

// UnmarshalJSON implements [json.Unmarshaler].
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	if v, err := strconv.ParseFloat(string(b), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		*n = Number(v)
	}
	return nil
}

// Int truncates n toward zero.
func (n Number) Int() int { return int(n) }

// Float returns n as a float64.
func (n Number) Float() float64 { return float64(n) }

// String formats n without trailing zeros.
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }

// Text is a JSON string that also accepts numbers and booleans, keeping
// their literal spelling. Objects, arrays and null decode as empty.
type Text string

// UnmarshalJSON implements [json.Unmarshaler].
func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = Text(s)
		}
	case '{', '[', 'n':
	default:
		*t = Text(b)
	}
	return nil
}
