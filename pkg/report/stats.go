package report

import "strings"

// Response statuses.
const (
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusPartial = "partial"
	StatusNA      = "na"
)

// Stats counts responses by status. Unassessed counts responses with an
// empty or unrecognized status.
type Stats struct {
	Total      int
	Pass       int
	Fail       int
	Partial    int
	NA         int
	Unassessed int
}

// ComputeStats tallies responses by status.
func ComputeStats(rs []Response) Stats {
	s := Stats{Total: len(rs)}
	for _, r := range rs {
		switch strings.ToLower(r.Status) {
		case StatusPass:
			s.Pass++
		case StatusFail:
			s.Fail++
		case StatusPartial:
			s.Partial++
		case StatusNA:
			s.NA++
		default:
			s.Unassessed++
		}
	}
	return s
}
