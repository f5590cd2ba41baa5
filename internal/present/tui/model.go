// Package tui hosts the view controller in an interactive terminal session.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/topviews/internal/controller"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/listview"
	"github.com/mithrel/topviews/internal/logger"
	"github.com/mithrel/topviews/internal/present/format"
	"github.com/mithrel/topviews/internal/ranking"
	"github.com/mithrel/topviews/internal/sites"
)

// DefaultSettle is how long the exclude picker accepts typed input
const DefaultSettle = 150 * time.Millisecond

// Options configures Browse
type Options struct {
	Headers bool
	Settle  time.Duration
	Log     *logger.Logger
}

// Browse runs the interactive view until the user quits. It returns the link
// of the last state shown.
func Browse(ctx context.Context, c *controller.Controller, src ranking.Source, req *controller.FetchRequest, opts Options) (string, error) {
	m := newModel(ctx, c, src, req, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return c.Link(), err
	}
	return c.Link(), nil
}

type model struct {
	ctx     context.Context
	ctl     *controller.Controller
	src     ranking.Source
	initial *controller.FetchRequest
	log     *logger.Logger

	table     table.Model
	search    textinput.Model
	searching bool
	help      help.Model
	picker    *excludePicker
	view      *viewModal
	rows      []listview.VisibleEntry
	headers   bool
	settle    time.Duration
	width     int
	height    int
	barWidth  int
	status    string
	lastDur   time.Duration
}

func newModel(ctx context.Context, c *controller.Controller, src ranking.Source, req *controller.FetchRequest, opts Options) model {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	m := model{
		ctx:      ctx,
		ctl:      c,
		src:      src,
		initial:  req,
		log:      opts.Log,
		headers:  opts.Headers,
		settle:   opts.Settle,
		help:     help.New(),
		barWidth: 20,
	}
	m.table = table.New(table.WithColumns(m.columnsFor(40)), table.WithFocused(true))
	m.search = textinput.New()
	m.search.Prompt = "/"
	m.search.Placeholder = "search"
	m.search.SetValue(c.Query())
	m.applyStyles()
	m.refreshRows()
	return m
}

func (m model) Init() tea.Cmd {
	return fetchCmd(m.ctx, m.src, m.initial)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.applyLayout()
		if m.picker != nil {
			m.picker.resizeForTerm(msg.Width, msg.Height)
		}
		if m.view != nil {
			m.view.resizeForTerm(msg.Width, msg.Height)
		}
		return m, nil

	case rankingsMsg:
		m.log.Debug().Uint64("gen", msg.gen).Dur("took", msg.dur).Err(msg.err).Int("entries", len(msg.entries)).Msg("rankings")
		if msg.gen == m.ctl.Generation() {
			m.lastDur = msg.dur
		}
		lk := m.ctl.RankingsLoaded(msg.gen, msg.entries, msg.err)
		m.refreshRows()
		return m, lookupCmd(m.ctx, m.src, lk)

	case lookupMsg:
		if msg.gen == m.ctl.Generation() {
			m.lastDur += msg.dur
		}
		m.ctl.NamespaceLoaded(msg.gen, msg.titles, msg.err)
		m.refreshRows()
		return m, nil

	case settleMsg:
		if m.picker != nil {
			m.picker.settle()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch {
	case m.view != nil:
		return m.updateViewModal(msg)
	case m.picker != nil:
		return m.updatePicker(msg)
	case m.searching:
		return m.updateSearch(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.applyLayout()
		return m, nil
	case key.Matches(msg, keys.Search):
		if !m.ctl.ControlsVisible() {
			return m, nil
		}
		m.searching = true
		m.applyLayout()
		return m, m.search.Focus()
	case key.Matches(msg, keys.Exclude):
		if row, ok := m.selectedRow(); ok && m.ctl.ExcludeAt(row.SourceIndex) {
			m.status = "excluded " + row.Title
			m.refreshRows()
		}
		return m, nil
	case key.Matches(msg, keys.More):
		if m.ctl.Expand() {
			m.refreshRows()
		}
		return m, nil
	case key.Matches(msg, keys.Excludes):
		m.picker = newExcludePicker(m.ctl.Excludes(), m.width, m.height)
		return m, settleCmd(m.settle)
	case key.Matches(msg, keys.View):
		m.view = newViewModal(m.ctl.State(), m.width, m.height)
		return m, nil
	case key.Matches(msg, keys.Refresh):
		return m, m.submit(m.ctl.Refresh())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.ctl.Search("")
		m.refreshRows()
		m.applyLayout()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		m.applyLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctl.Search(m.search.Value())
	m.refreshRows()
	return m, cmd
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.picker = nil
		return m, nil
	case "q":
		if m.picker.locked {
			m.picker = nil
			return m, nil
		}
	case "enter":
		if t, ok := m.picker.selected(); ok && m.ctl.Restore(t) {
			m.picker.remove(t)
			m.status = "restored " + t
			m.refreshRows()
		}
		return m, nil
	}
	return m, m.picker.update(msg)
}

func (m model) updateViewModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = nil
		return m, nil
	case "enter":
		req, err := m.applyView()
		if err != nil {
			m.view.errMsg = err.Error()
			return m, nil
		}
		m.view = nil
		return m, m.submit(req)
	}
	return m, m.view.update(msg)
}

// applyView submits the modal's query fields. A changed query drops the
// excludes; a changed project also forces the fetch.
func (m *model) applyView() (*controller.FetchRequest, error) {
	project, platform, date := m.view.values()
	cur := m.ctl.State()
	next := cur.Clone()
	if project != "" {
		next.Project = sites.Normalize(project)
	}
	if platform != "" {
		p := linkstate.Platform(strings.ToLower(platform))
		if !p.Valid() {
			return nil, perr.WithField(perr.InvalidArgf("unknown platform %q", platform), linkstate.KeyPlatform)
		}
		next.Platform = p
	}
	if date != "" {
		d, err := linkstate.ParseDateExpr(date, m.ctl.Now())
		if err != nil {
			return nil, perr.WithField(perr.InvalidArgf("%v", err), linkstate.KeyDate)
		}
		next.Date = d
	}
	if !next.SameQuery(cur) {
		next.Excludes = nil
	}
	return m.ctl.Submit(next, next.Project != cur.Project), nil
}

func (m *model) submit(req *controller.FetchRequest) tea.Cmd {
	m.status = ""
	m.refreshRows()
	return fetchCmd(m.ctx, m.src, req)
}

func (m *model) selectedRow() (listview.VisibleEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return listview.VisibleEntry{}, false
	}
	return m.rows[i], true
}

func (m *model) refreshRows() {
	m.rows = m.ctl.Visible()
	base, ok := m.ctl.Baseline()
	rows := make([]table.Row, 0, len(m.rows))
	for _, e := range m.rows {
		rows = append(rows, table.Row{
			strconv.Itoa(e.Rank),
			e.Title,
			format.Views(e.Views),
			bar(e.Views, base, ok, m.barWidth),
		})
	}
	m.table.SetRows(rows)
	if cur := m.table.Cursor(); cur >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

// bar draws views as a share of the baseline
func bar(views, baseline int64, ok bool, width int) string {
	if !ok || baseline <= 0 || width <= 0 {
		return ""
	}
	n := int(float64(views) / float64(baseline) * float64(width))
	n = min(max(n, 0), width)
	return barStyle.Render(strings.Repeat("█", n))
}

func (m model) View() string {
	base := m.renderMain()
	switch {
	case m.view != nil:
		return m.renderOverlay(base, m.view.View(), m.view.width, m.view.height)
	case m.picker != nil:
		return m.renderOverlay(base, m.picker.View(), m.picker.width, m.picker.height)
	}
	return base
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m model) renderMain() string {
	s := m.ctl.State()
	lines := []string{headerStyle.Render(fmt.Sprintf("%s · %s · %s", s.Project, s.Platform, s.Date))}

	switch {
	case m.ctl.Phase() == controller.Loading:
		lines = append(lines, faintStyle.Render("Loading…"))
	case m.ctl.Err() != nil:
		lines = append(lines, errStyle.Render(m.ctl.Err().Error()))
	case m.ctl.Phase() == controller.Rendered && len(m.rows) == 0:
		lines = append(lines, faintStyle.Render("No pages"))
	case m.ctl.Phase() == controller.Rendered:
		lines = append(lines, m.table.View())
	}

	if m.searching || m.ctl.Query() != "" {
		lines = append(lines, m.search.View())
	}
	lines = append(lines, m.renderFooter(), m.help.View(keys))
	return strings.Join(lines, "\n")
}

func (m model) renderFooter() string {
	left := m.status
	if left == "" {
		left = fmt.Sprintf("%d shown", len(m.rows))
		if n := len(m.ctl.Excludes()); n > 0 {
			left += fmt.Sprintf(" · %d excluded", n)
		}
		if m.ctl.HasMore() && m.ctl.Query() == "" {
			left += " · m for more"
		}
	}
	right := ""
	if m.lastDur > 0 {
		right = m.lastDur.Round(time.Millisecond).String()
	}
	space := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return faintStyle.Render(left + strings.Repeat(" ", space) + right)
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	helpLines := 1
	if m.help.ShowAll {
		helpLines = 4
	}
	searchLines := 0
	if m.searching || m.ctl.Query() != "" {
		searchLines = 1
	}
	m.table.SetHeight(max(3, m.height-2-helpLines-searchLines))
	m.table.SetWidth(m.width)
	m.help.Width = m.width
	m.search.Width = max(10, m.width-2)

	avail := m.width - 8
	m.barWidth = 20
	if avail < 70 {
		m.barWidth = 0
	}
	titleW := max(avail-5-12-m.barWidth, 12)
	m.table.SetColumns(m.columnsFor(titleW))
	m.refreshRows()
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

func (m *model) columnsFor(titleW int) []table.Column {
	titles := []string{"#", "Page", "Views", ""}
	if !m.headers {
		titles = []string{"", "", "", ""}
	}
	return []table.Column{
		{Title: titles[0], Width: 5},
		{Title: titles[1], Width: titleW},
		{Title: titles[2], Width: 12},
		{Title: titles[3], Width: m.barWidth},
	}
}
