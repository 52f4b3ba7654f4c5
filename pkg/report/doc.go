// Package report builds the renderer-agnostic model of an assessment
// report.
//
// [Build] normalizes a stored [record.Assessment] into a [Model]: an
// ordered list of titled sections, the sorted control responses, the
// compliance [Stats] and the derived [Pricing] figures. Renderers never
// recompute anything; a total printed in the document, the spreadsheet
// and the HTML report comes from the same field.
//
// # Sections
//
// Every section has a stable [SectionID]. A [Selector] chooses which
// sections an export contains, and [Model.Visible] applies it together
// with the content rules: table and flow sections without rows are
// dropped, configuration, Gantt and work plan sections are always shown.
//
// # Shared formatting
//
// [FormatMoney], [StatusColor], [ImpactColor], [Truncate] and [Clean] are
// used by every renderer so the formats agree on spelling and color.
//
// [record.Assessment]: github.com/matzehuels/secassess/pkg/record.Assessment
package report
