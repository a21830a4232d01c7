// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keytutor/internal/lessons"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/stats"
)

const (
	tabOverview = iota
	tabResults
	tabLessons
)

const (
	plotHeight   = 8
	defaultWidth = 80
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

type keyMap struct {
	Quit    key.Binding
	Left    key.Binding
	Right   key.Binding
	Filter  key.Binding
	Wider   key.Binding
	Narrow  key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Left:    key.NewBinding(key.WithKeys("left", "h")),
	Right:   key.NewBinding(key.WithKeys("right", "l", "tab")),
	Filter:  key.NewBinding(key.WithKeys("/")),
	Wider:   key.NewBinding(key.WithKeys("=", "+")),
	Narrow:  key.NewBinding(key.WithKeys("-")),
	Top:     key.NewBinding(key.WithKeys("g", "home")),
	Bottom:  key.NewBinding(key.WithKeys("G", "end")),
	Refresh: key.NewBinding(key.WithKeys("r")),
}

// Options configures the initial view.
type Options struct {
	Filter model.ResultFilter
	// Window is the moving-average window of the overview curves.
	Window int
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	src     stats.Source
	catalog *lessons.Catalog
	filter  model.ResultFilter
	window  int

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	results   table.Model
	lessons   table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(src stats.Source, catalog *lessons.Catalog, opts Options) *Model {
	if opts.Window < 1 {
		opts.Window = 1
	}
	m := &Model{
		src:      src,
		catalog:  catalog,
		filter:   opts.Filter,
		window:   opts.Window,
		tabs:     []string{"Overview", "Results", "Lessons"},
		overview: viewport.New(0, 0),
		results:  newTable(resultColumns()),
		lessons:  newTable(lessonColumns()),
	}
	m.filterInputs = []textinput.Model{
		newFilterInput("Type (lesson/test/custom): "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Left):
			m.moveTab(-1)
			return m, nil
		case key.Matches(msg, keys.Right):
			m.moveTab(1)
			return m, nil
		case key.Matches(msg, keys.Wider):
			m.window++
			m.renderContents()
			return m, nil
		case key.Matches(msg, keys.Narrow):
			if m.window > 1 {
				m.window--
				m.renderContents()
			}
			return m, nil
		case key.Matches(msg, keys.Refresh):
			m.refreshReport()
			return m, nil
		case key.Matches(msg, keys.Filter):
			return m.startFilter()
		case key.Matches(msg, keys.Top):
			m.scrollTo(true)
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.scrollTo(false)
			return m, nil
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case tabResults:
			m.results, cmd = m.results.Update(msg)
		case tabLessons:
			m.lessons, cmd = m.lessons.Update(msg)
		default:
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs()+"\n"+headerStyle.Render(truncateLine(m.filterSummary(), m.width)), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range []*table.Model{&m.results, &m.lessons} {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	m.results.Blur()
	m.lessons.Blur()
	switch m.activeTab {
	case tabResults:
		m.results.Focus()
	case tabLessons:
		m.lessons.Focus()
	}
}

func (m *Model) scrollTo(top bool) {
	switch m.activeTab {
	case tabResults:
		if top {
			m.results.GotoTop()
		} else {
			m.results.GotoBottom()
		}
	case tabLessons:
		if top {
			m.lessons.GotoTop()
		} else {
			m.lessons.GotoBottom()
		}
	default:
		if top {
			m.overview.GotoTop()
		} else {
			m.overview.GotoBottom()
		}
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.filter)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.renderContents()
}

func (m *Model) renderContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	m.overview.SetContent(renderOverview(m.report, m.window, width))

	rows := make([]table.Row, 0, len(m.report.Results))
	for i := len(m.report.Results) - 1; i >= 0; i-- {
		rows = append(rows, table.Row(stats.ResultRow(m.report.Results[i])))
	}
	m.results.SetRows(rows)

	lessonRows := stats.LessonRows(m.catalog, m.report.Completed, m.report.Lessons)
	converted := make([]table.Row, len(lessonRows))
	for i, r := range lessonRows {
		converted[i] = table.Row(r)
	}
	m.lessons.SetRows(converted)
}

func renderOverview(r stats.Report, window, width int) string {
	if r.Summary.Count == 0 {
		return "No results yet. Finish a lesson or a test first."
	}
	s := r.Summary
	cards := []string{
		metricCard("Tests", strconv.Itoa(s.Count)),
		metricCard("Avg WPM", strconv.Itoa(s.AvgWPM)),
		metricCard("Best WPM", strconv.Itoa(s.BestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%d%%", s.AvgAccuracy)),
		metricCard("Time", stats.FormatClock(s.TotalTime)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	parts := []string{summary}
	if weak := stats.WeakLessons(r.Lessons, 3); len(weak) > 0 {
		names := make([]string, len(weak))
		for i, w := range weak {
			names[i] = fmt.Sprintf("%s (%d%%)", w.LessonID, w.AvgAccuracy)
		}
		parts = append(parts, headerStyle.Render("Needs practice: "+strings.Join(names, ", ")))
	}

	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, r.Results, stats.CurveOptions{
		Window:     window,
		TotalWidth: width,
		Height:     plotHeight,
		ForceColor: true,
	}); err != nil {
		parts = append(parts, fmt.Sprintf("Failed to render curves: %v", err))
	} else {
		parts = append(parts, strings.TrimRight(buf.String(), "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func resultColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Type", Width: 6},
		{Title: "Lesson", Width: 6},
		{Title: "WPM", Width: 4},
		{Title: "Acc", Width: 5},
		{Title: "Mistakes", Width: 8},
		{Title: "Time", Width: 5},
	}
}

func lessonColumns() []table.Column {
	return []table.Column{
		{Title: "", Width: 1},
		{Title: "ID", Width: 4},
		{Title: "Title", Width: 24},
		{Title: "Type", Width: 10},
		{Title: "Attempts", Width: 8},
		{Title: "Best WPM", Width: 8},
		{Title: "Avg Acc", Width: 7},
	}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A"))
	t.SetStyles(styles)
	return t
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) filterSummary() string {
	kind := m.filter.Kind
	if kind == "" {
		kind = "any"
	}
	since := "any"
	if m.filter.Since != nil {
		since = m.filter.Since.Format("2006-01-02")
	}
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	return fmt.Sprintf("Filter: type=%s  since=%s  last=%s  window=%d", kind, since, last, m.window)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filter (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	switch m.activeTab {
	case tabResults:
		if len(m.report.Results) == 0 {
			return "No results found."
		}
		return m.results.View()
	case tabLessons:
		done, total, percent := stats.CourseProgress(m.catalog, m.report.Completed)
		return headerStyle.Render(fmt.Sprintf("Course progress: %d/%d (%d%%)", done, total, percent)) + "\n" + m.lessons.View()
	default:
		return m.overview.View()
	}
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Window: -/=  Filter: /  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.filterInputs[0].SetValue(m.filter.Kind)
	m.filterInputs[1].SetValue("")
	if m.filter.Since != nil {
		m.filterInputs[1].SetValue(m.filter.Since.Format("2006-01-02"))
	}
	m.filterInputs[2].SetValue("")
	if m.filter.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.filter.Last))
	}
	m.filterInputs[3].SetValue(strconv.Itoa(m.window))
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	filter, window, err := parseFilter(
		m.filterInputs[0].Value(),
		m.filterInputs[1].Value(),
		m.filterInputs[2].Value(),
		m.filterInputs[3].Value(),
	)
	if err != nil {
		return err
	}
	m.filter = filter
	if window > 0 {
		m.window = window
	}
	return nil
}

func parseFilter(kindInput, sinceInput, lastInput, windowInput string) (model.ResultFilter, int, error) {
	var filter model.ResultFilter
	kind := strings.ToLower(strings.TrimSpace(kindInput))
	switch kind {
	case "", model.KindLesson, model.KindTest, model.KindCustom:
		filter.Kind = kind
	default:
		return filter, 0, fmt.Errorf("invalid type (use lesson, test or custom)")
	}

	if s := strings.TrimSpace(sinceInput); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return filter, 0, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		filter.Since = &parsed
	}

	if s := strings.TrimSpace(lastInput); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 0 {
			return filter, 0, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		filter.Last = parsed
	}

	window := 0
	if s := strings.TrimSpace(windowInput); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			return filter, 0, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}
	return filter, window, nil
}

func padLine(line string, width int) string {
	if lineWidth := lipgloss.Width(line); lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
