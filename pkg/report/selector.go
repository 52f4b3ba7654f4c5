package report

import (
	"strings"

	"github.com/matzehuels/secassess/pkg/errors"
)

// Selector is the set of sections an export includes. A nil Selector
// includes every section; a non-nil empty Selector includes none.
type Selector map[SectionID]struct{}

// All returns the selector that includes every section.
func All() Selector { return nil }

// Select builds a selector holding exactly ids. Unknown ids are rejected
// with [errors.ErrCodeInvalidSection].
func Select(ids ...string) (Selector, error) {
	if err := errors.ValidateSections(ids, SectionNames()); err != nil {
		return nil, err
	}
	sel := make(Selector, len(ids))
	for _, id := range ids {
		sel[SectionID(id)] = struct{}{}
	}
	return sel, nil
}

// ParseSelector parses a comma-separated section list such as
// "config,gantt". An empty string selects every section.
func ParseSelector(s string) (Selector, error) {
	if strings.TrimSpace(s) == "" {
		return All(), nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return Select(ids...)
}

// Includes reports whether the section is selected.
func (s Selector) Includes(id SectionID) bool {
	if s == nil {
		return true
	}
	_, ok := s[id]
	return ok
}

// IDs returns the selected ids in report order, or nil for [All].
func (s Selector) IDs() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, id := range SectionIDs {
		if s.Includes(id) {
			out = append(out, string(id))
		}
	}
	return out
}

// String formats the selector the way [ParseSelector] reads it.
func (s Selector) String() string {
	if s == nil {
		return "all"
	}
	return strings.Join(s.IDs(), ",")
}

// SectionNames returns every section id as a string, in report order.
func SectionNames() []string {
	out := make([]string, len(SectionIDs))
	for i, id := range SectionIDs {
		out[i] = string(id)
	}
	return out
}
