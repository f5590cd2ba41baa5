package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"

	"github.com/mithrel/topviews/internal/linkstate"
)

const viewFields = 3

// viewModal edits the query part of the view state.
type viewModal struct {
	project  textinput.Model
	platform textinput.Model
	date     textinput.Model
	width    int
	height   int
	box      lipglossv2.Style
	focus    int
	errMsg   string
}

func newViewModal(s linkstate.ViewState, termW, termH int) *viewModal {
	m := &viewModal{}
	m.project = newModalInput("project: ", "en.wikipedia.org", s.Project)
	m.platform = newModalInput("platform: ", "all-access | desktop | mobile-web | mobile-app", string(s.Platform))
	m.date = newModalInput("date: ", "last-month | yesterday | 2016-01 | 2016-01-15 | 3 days ago", s.Date.String())
	m.setFocus(0)
	m.resizeForTerm(termW, termH)
	return m
}

func newModalInput(prompt, placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.SetValue(value)
	return ti
}

func (m *viewModal) resizeForTerm(termW, termH int) {
	m.width, m.height = modalSize(termW, termH, 46, 90, 11, 14)
	innerW := max(20, m.width-6)
	for _, in := range m.inputs() {
		in.Width = max(10, innerW-lipgloss.Width(in.Prompt))
	}
	m.box = lipglossv2.NewStyle().
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63")).
		Padding(1, 2).
		Width(m.width).
		Height(m.height)
}

func (m *viewModal) inputs() []*textinput.Model {
	return []*textinput.Model{&m.project, &m.platform, &m.date}
}

func (m *viewModal) setFocus(idx int) {
	m.focus = idx
	for i, in := range m.inputs() {
		if i == idx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// values returns the trimmed project, platform and date inputs
func (m *viewModal) values() (string, string, string) {
	return strings.TrimSpace(m.project.Value()), strings.TrimSpace(m.platform.Value()), strings.TrimSpace(m.date.Value())
}

func (m *viewModal) update(msg tea.Msg) tea.Cmd {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.resizeForTerm(x.Width, x.Height)
		return nil
	case tea.KeyMsg:
		switch x.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % viewFields)
			return nil
		case "shift+tab", "up":
			m.setFocus((m.focus + viewFields - 1) % viewFields)
			return nil
		}
	}
	var cmd tea.Cmd
	in := m.inputs()[m.focus]
	*in, cmd = in.Update(msg)
	return cmd
}

func (m *viewModal) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("View")
	help := lipgloss.NewStyle().Faint(true).Render("enter=apply • esc=cancel • tab=next")
	lines := []string{header, "", m.project.View(), m.platform.View(), m.date.View(), ""}
	if m.errMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.errMsg))
	}
	lines = append(lines, help)
	return m.box.Render(strings.Join(lines, "\n"))
}
