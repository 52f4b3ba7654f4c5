package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// JSONBFields lists the structured columns of an assessment in storage
// order. Dumps emit them in this order.
var JSONBFields = []string{
	"responses",
	"pricing",
	"gantt",
	"workplan",
	"custom_templates",
	"cicd_diagrams",
	"gitflow_diagrams",
	"artifact_repos",
	"deployment_strategies",
	"versioning_diagrams",
	"promotion_workflows",
}

// ScalarFields lists the plain columns of an assessment, excluding id and
// the timestamps.
var ScalarFields = []string{
	"org_name",
	"assessor_name",
	"assessment_date",
	"environment",
	"scope",
	"template",
	"score",
	"status",
}

// Assessment is one persisted assessment record.
//
// Structured columns are decoded leniently: a column holding malformed
// JSON, or JSON of the wrong shape, yields its zero value, and malformed
// list elements are dropped at every nesting level. The original bytes of
// every structured column are kept in Raw so dumps reproduce them as
// stored.
type Assessment struct {
	ID             string
	OrgName        string
	AssessorName   string
	AssessmentDate string
	Environment    string
	Scope          string
	Template       string
	Score          int
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Responses  map[string]Response
	Pricing    Pricing
	Gantt      Gantt
	Workplan   Workplan
	CICD       CICD
	GitFlow    Flows
	Artifacts  Artifacts
	Deploy     Strategies
	Versioning Flows
	Promotion  Promotions

	// Raw holds the stored JSON of each structured column, keyed by column
	// name. Missing columns are absent.
	Raw map[string]json.RawMessage
}

// ControlIDs returns the response keys in ascending order.
func (a *Assessment) ControlIDs() []string {
	return slices.Sorted(maps.Keys(a.Responses))
}

// Column returns the stored JSON of a structured column, or the empty
// default for that column ("[]" for custom_templates, "{}" otherwise).
func (a *Assessment) Column(name string) json.RawMessage {
	if raw, ok := a.Raw[name]; ok && len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return raw
	}
	if name == "custom_templates" {
		return json.RawMessage("[]")
	}
	return json.RawMessage("{}")
}

// Scalar returns the string form of a plain column.
func (a *Assessment) Scalar(name string) string {
	switch name {
	case "org_name":
		return a.OrgName
	case "assessor_name":
		return a.AssessorName
	case "assessment_date":
		return a.AssessmentDate
	case "environment":
		return a.Environment
	case "scope":
		return a.Scope
	case "template":
		return a.Template
	case "score":
		return strconv.Itoa(a.Score)
	case "status":
		return a.Status
	}
	return ""
}

// SetColumn stores raw JSON for a structured column and decodes it into
// the typed field. Unknown column names are rejected.
func (a *Assessment) SetColumn(name string, raw []byte) error {
	if !slices.Contains(JSONBFields, name) {
		return fmt.Errorf("unknown column %q", name)
	}
	if a.Raw == nil {
		a.Raw = make(map[string]json.RawMessage, len(JSONBFields))
	}
	a.Raw[name] = json.RawMessage(slices.Clone(raw))

	switch name {
	case "responses":
		a.Responses = decodeResponses(raw)
	case "pricing":
		a.Pricing = decode[Pricing](raw)
	case "gantt":
		a.Gantt = decode[Gantt](raw)
	case "workplan":
		a.Workplan = decode[Workplan](raw)
	case "cicd_diagrams":
		a.CICD = decode[CICD](raw)
	case "gitflow_diagrams":
		a.GitFlow = decode[Flows](raw)
	case "artifact_repos":
		a.Artifacts = decode[Artifacts](raw)
	case "deployment_strategies":
		a.Deploy = decode[Strategies](raw)
	case "versioning_diagrams":
		a.Versioning = decode[Flows](raw)
	case "promotion_workflows":
		a.Promotion = decode[Promotions](raw)
	}
	return nil
}

func decode[T any](raw []byte) T {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero
	}
	return v
}

func decodeResponses(raw []byte) map[string]Response {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return map[string]Response{}
	}
	out := make(map[string]Response, len(entries))
	for id, e := range entries {
		var r Response
		if err := json.Unmarshal(e, &r); err != nil {
			r = Response{}
		}
		out[id] = r
	}
	return out
}

// UnmarshalJSON decodes a record from its row form: scalar columns plus
// structured columns, each either inline JSON or a JSON-encoded string.
func (a *Assessment) UnmarshalJSON(b []byte) error {
	var row map[string]json.RawMessage
	if err := json.Unmarshal(b, &row); err != nil {
		return fmt.Errorf("decode assessment: %w", err)
	}

	*a = Assessment{Responses: map[string]Response{}}
	a.ID = textOf(row["id"])
	a.OrgName = textOf(row["org_name"])
	a.AssessorName = textOf(row["assessor_name"])
	a.AssessmentDate = textOf(row["assessment_date"])
	a.Environment = textOf(row["environment"])
	a.Scope = textOf(row["scope"])
	a.Template = textOf(row["template"])
	a.Status = textOf(row["status"])
	a.Score = ParseScore(textOf(row["score"]))
	a.CreatedAt = timeOf(row["created_at"])
	a.UpdatedAt = timeOf(row["updated_at"])

	for _, name := range JSONBFields {
		raw, ok := row[name]
		if !ok {
			continue
		}
		_ = a.SetColumn(name, unquoteColumn(raw))
	}
	return nil
}

// MarshalJSON encodes the record in row form with structured columns
// inlined as stored.
func (a Assessment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, v json.RawMessage) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	str := func(s string) json.RawMessage {
		b, _ := json.Marshal(s)
		return b
	}

	write("id", str(a.ID))
	for _, name := range ScalarFields {
		if name == "score" {
			write(name, json.RawMessage(strconv.Itoa(a.Score)))
			continue
		}
		write(name, str(a.Scalar(name)))
	}
	for _, name := range JSONBFields {
		col := a.Column(name)
		if !json.Valid(col) {
			col = str(string(col))
		}
		write(name, col)
	}
	if !a.CreatedAt.IsZero() {
		write("created_at", str(a.CreatedAt.UTC().Format(time.RFC3339)))
	}
	if !a.UpdatedAt.IsZero() {
		write("updated_at", str(a.UpdatedAt.UTC().Format(time.RFC3339)))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseScore reads a leading integer the way form input is normalized:
// surrounding space is ignored, a fractional part is dropped and anything
// unparsable is zero.
func ParseScore(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '-' && end == 0 || s[end] >= '0' && s[end] <= '9') {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// unquoteColumn accepts a column that was stored as a JSON string holding
// JSON, as text-typed drivers return it.
func unquoteColumn(raw json.RawMessage) []byte {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || t[0] != '"' {
		return raw
	}
	var s string
	if err := json.Unmarshal(t, &s); err != nil {
		return raw
	}
	return []byte(s)
}

func textOf(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var t Text
	_ = t.UnmarshalJSON(raw)
	return string(t)
}

func timeOf(raw json.RawMessage) time.Time {
	var t time.Time
	if raw == nil {
		return t
	}
	_ = json.Unmarshal(raw, &t)
	return t
}
