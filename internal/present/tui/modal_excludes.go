package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"

	"github.com/mithrel/topviews/internal/util"
)

// excludePicker lists the current excludes and restores one on enter.
// The filter box accepts input only until the picker has settled.
type excludePicker struct {
	items  []string
	filter textinput.Model
	cursor int
	locked bool
	width  int
	height int
	box    lipglossv2.Style
}

func newExcludePicker(items []string, termW, termH int) *excludePicker {
	p := &excludePicker{items: items}
	p.filter = newModalInput("filter: ", "", "")
	p.filter.Focus()
	p.resizeForTerm(termW, termH)
	return p
}

func (p *excludePicker) resizeForTerm(termW, termH int) {
	p.width, p.height = modalSize(termW, termH, 40, 80, 8, 24)
	p.filter.Width = max(10, p.width-6-lipgloss.Width(p.filter.Prompt))
	p.box = lipglossv2.NewStyle().
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63")).
		Padding(1, 2).
		Width(p.width).
		Height(p.height)
}

// settle locks the filter box
func (p *excludePicker) settle() {
	p.locked = true
	p.filter.Blur()
}

func (p *excludePicker) shown() []string {
	q := strings.TrimSpace(p.filter.Value())
	if q == "" {
		return p.items
	}
	out := make([]string, 0, len(p.items))
	for _, it := range p.items {
		if util.FuzzyMatch(q, it) {
			out = append(out, it)
		}
	}
	return out
}

// selected returns the highlighted exclude, if any
func (p *excludePicker) selected() (string, bool) {
	shown := p.shown()
	if p.cursor < 0 || p.cursor >= len(shown) {
		return "", false
	}
	return shown[p.cursor], true
}

// remove drops title after it was restored
func (p *excludePicker) remove(title string) {
	for i, it := range p.items {
		if it == title {
			p.items = append(p.items[:i:i], p.items[i+1:]...)
			break
		}
	}
	p.cursor = min(p.cursor, max(len(p.shown())-1, 0))
}

func (p *excludePicker) update(msg tea.Msg) tea.Cmd {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		p.resizeForTerm(x.Width, x.Height)
		return nil
	case tea.KeyMsg:
		switch x.String() {
		case "up", "ctrl+p":
			p.cursor = max(p.cursor-1, 0)
			return nil
		case "down", "ctrl+n":
			p.cursor = min(p.cursor+1, max(len(p.shown())-1, 0))
			return nil
		}
		if p.locked {
			switch x.String() {
			case "k":
				p.cursor = max(p.cursor-1, 0)
			case "j":
				p.cursor = min(p.cursor+1, max(len(p.shown())-1, 0))
			}
			return nil
		}
	}
	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	p.cursor = min(p.cursor, max(len(p.shown())-1, 0))
	return cmd
}

func (p *excludePicker) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Excluded pages")
	help := lipgloss.NewStyle().Faint(true).Render("enter=restore • esc=close")
	lines := []string{header, ""}
	if !p.locked {
		lines = append(lines, p.filter.View(), "")
	}
	shown := p.shown()
	if len(shown) == 0 {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("(none)"))
	}
	rows := max(p.height-6, 1)
	start := 0
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	sel := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	for i := start; i < len(shown) && i < start+rows; i++ {
		if i == p.cursor {
			lines = append(lines, sel.Render("› "+shown[i]))
			continue
		}
		lines = append(lines, "  "+shown[i])
	}
	lines = append(lines, "", help)
	return p.box.Render(strings.Join(lines, "\n"))
}
