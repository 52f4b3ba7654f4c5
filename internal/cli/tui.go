package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/secassess/pkg/report"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SectionPickerModel - Interactive section selection
// =============================================================================

// SectionPickerModel is the bubbletea model for choosing which report
// sections an export includes. Every section starts checked.
type SectionPickerModel struct {
	Sections  []report.Section
	Cursor    int
	Checked   map[report.SectionID]bool
	Confirmed bool
}

// NewSectionPickerModel creates a picker over the sections of m.
func NewSectionPickerModel(m *report.Model) SectionPickerModel {
	checked := make(map[report.SectionID]bool, len(m.Sections))
	for _, s := range m.Sections {
		checked[s.ID] = true
	}
	return SectionPickerModel{Sections: m.Sections, Checked: checked}
}

func (m SectionPickerModel) Init() tea.Cmd {
	return nil
}

func (m SectionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Sections)-1 {
			m.Cursor++
		}
	case " ", "x":
		if len(m.Sections) > 0 {
			id := m.Sections[m.Cursor].ID
			m.Checked[id] = !m.Checked[id]
		}
	case "a":
		all := !m.allChecked()
		for _, s := range m.Sections {
			m.Checked[s.ID] = all
		}
	case "enter":
		m.Confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SectionPickerModel) allChecked() bool {
	for _, s := range m.Sections {
		if !m.Checked[s.ID] {
			return false
		}
	}
	return true
}

// Selector returns the checked sections. Checking everything yields
// [report.All].
func (m SectionPickerModel) Selector() report.Selector {
	if m.allChecked() {
		return report.All()
	}
	sel := report.Selector{}
	for _, s := range m.Sections {
		if m.Checked[s.ID] {
			sel[s.ID] = struct{}{}
		}
	}
	return sel
}

func (m SectionPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Report Sections"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ export  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Sections))
	count := 0
	for i, s := range m.Sections {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[s.ID] {
			box = "[" + iconSuccess + "]"
			count++
		}
		rows = append(rows, []string{cursor, box, s.Title, string(s.ID)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Section", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return StyleHeader
			}
			if row < 0 || row >= len(m.Sections) {
				return lipgloss.NewStyle()
			}
			switch {
			case row == m.Cursor:
				return listSelectedStyle
			case !m.Checked[m.Sections[row].ID]:
				return listDimStyle
			case col == 3:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d selected]", count, len(m.Sections))))

	return b.String()
}

// pickSections runs the picker on the terminal. It returns false when the
// user quits without confirming.
func pickSections(m *report.Model) (report.Selector, bool, error) {
	final, err := tea.NewProgram(NewSectionPickerModel(m)).Run()
	if err != nil {
		return nil, false, err
	}
	picked := final.(SectionPickerModel)
	if !picked.Confirmed {
		return nil, false, nil
	}
	return picked.Selector(), true, nil
}
