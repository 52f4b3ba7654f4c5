package dump

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/report"
)

// Option configures a dump.
type Option func(*dumper)

type dumper struct {
	newID func() string
}

// WithIDFunc sets the generator for the id of a SQL dump. The default is a
// random UUID, so importing a dump never collides with the source row.
func WithIDFunc(fn func() string) Option {
	return func(d *dumper) {
		if fn != nil {
			d.newID = fn
		}
	}
}

func newDumper(opts []Option) *dumper {
	d := &dumper{newID: uuid.NewString}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// =============================================================================
// JSON
// =============================================================================

// JSON encodes rec in row form, indented by two spaces.
func JSON(rec *record.Assessment) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// SQL
// =============================================================================

// sqlColumns is the column order of a SQL dump, excluding id.
var sqlColumns = func() []string {
	cols := []string{"org_name", "assessor_name", "assessment_date", "environment", "scope", "template"}
	cols = append(cols, record.JSONBFields...)
	return append(cols, "score", "status", "created_at", "updated_at")
}()

// SQL renders rec as a single INSERT into the assessments table under a
// fresh id. Zero timestamps become NULL.
func SQL(rec *record.Assessment, opts ...Option) []byte {
	d := newDumper(opts)

	vals := make([]string, len(sqlColumns))
	for i, c := range sqlColumns {
		vals[i] = sqlValue(rec, c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- %s\n", report.ProductLabel())
	fmt.Fprintf(&b, "INSERT INTO assessments (id, %s)\n", strings.Join(sqlColumns, ", "))
	fmt.Fprintf(&b, "VALUES (%s, %s);\n", quote(d.newID()), strings.Join(vals, ", "))
	return []byte(b.String())
}

func sqlValue(rec *record.Assessment, col string) string {
	switch col {
	case "created_at":
		return sqlTime(rec.CreatedAt)
	case "updated_at":
		return sqlTime(rec.UpdatedAt)
	case "score":
		return quote(strconv.Itoa(rec.Score))
	}
	if slices.Contains(record.JSONBFields, col) {
		return quote(string(compact(rec.Column(col))))
	}
	return quote(rec.Scalar(col))
}

func sqlTime(t time.Time) string {
	if t.IsZero() {
		return "NULL"
	}
	return quote(t.UTC().Format(time.RFC3339Nano))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// =============================================================================
// XML
// =============================================================================

// XML renders rec as an <assessment> document. Scalars are escaped text;
// structured columns are compact JSON inside CDATA sections.
func XML(rec *record.Assessment) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<assessment version=%q>\n", report.FormatVersion)

	elem := func(name, text string) {
		fmt.Fprintf(&b, "  <%s>", name)
		_ = xml.EscapeText(&b, []byte(text))
		fmt.Fprintf(&b, "</%s>\n", name)
	}
	elem("org_name", rec.OrgName)
	elem("assessor", rec.AssessorName)
	elem("date", rec.AssessmentDate)
	elem("environment", rec.Environment)
	elem("score", strconv.Itoa(rec.Score))
	elem("status", rec.Status)

	for _, f := range record.JSONBFields {
		fmt.Fprintf(&b, "  <%s>%s</%s>\n", f, cdata(compact(rec.Column(f))), f)
	}
	b.WriteString("</assessment>\n")
	return b.Bytes()
}

// cdata wraps s in a CDATA section, splitting any "]]>" it contains.
func cdata(s []byte) string {
	return "<![CDATA[" + strings.ReplaceAll(string(s), "]]>", "]]]]><![CDATA[>") + "]]>"
}

func compact(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
