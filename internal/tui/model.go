// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/session"
	"github.com/verte-zerg/keytutor/internal/stats"
)

const (
	saveTimeout     = 5 * time.Second
	maxMistakeLines = 8
	chartHeight     = 6
)

type phase int

const (
	phaseReady phase = iota
	phaseTyping
	phaseResult
)

// Recorder persists finished sessions.
type Recorder interface {
	InsertResult(ctx context.Context, r model.Result) (string, error)
	MarkLessonCompleted(ctx context.Context, lessonID string) error
}

// Uploader sends a finished result to the sync backend.
type Uploader interface {
	SaveResult(ctx context.Context, r model.Result) error
}

// Options configures one typing view.
type Options struct {
	Title    string
	Kind     string
	LessonID string
	Lesson   session.Lesson
	Display  model.DisplayConfig
	// History holds earlier results for the footer averages.
	History  []model.Result
	Recorder Recorder
	Uploader Uploader
	Logger   *zap.Logger
	// Interval overrides the one-second tick, for tests.
	Interval time.Duration
	Now      func() time.Time
}

type uploadedMsg struct {
	err error
}

// Model implements the Bubble Tea typing UI around one session engine.
type Model struct {
	opts   Options
	log    *zap.Logger
	engine *session.Engine
	ticker *ticker
	bar    progress.Model

	phase   phase
	width   int
	height  int
	result  *model.Result
	history []model.Result
	status  string
	cmds    []tea.Cmd
}

// NewModel validates the lesson and constructs a typing TUI model.
func NewModel(opts Options) (*Model, error) {
	if err := opts.Lesson.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Model{
		opts:    opts,
		log:     opts.Logger.With(zap.String("kind", opts.Kind), zap.String("lesson", opts.LessonID)),
		ticker:  newTicker(opts.Interval),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		history: append([]model.Result(nil), opts.History...),
	}
	m.engine = session.New(opts.Lesson,
		session.WithTimer(m.ticker),
		session.WithHooks(session.Hooks{
			OnTypingStart: m.onTypingStart,
			OnComplete:    m.onComplete,
		}),
	)
	return m, nil
}

// Result returns the last finished session, if any.
func (m *Model) Result() (model.Result, bool) {
	if m.result == nil {
		return model.Result{}, false
	}
	return *m.result, true
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
		m.bar.Width = max(10, min(60, msg.Width-20))
		return m, nil
	case tickMsg:
		return m, m.flush(m.ticker.Update(msg))
	case uploadedMsg:
		if msg.err != nil {
			m.log.Warn("failed to upload result", zap.Error(msg.err))
			m.status = "Sync failed; result kept locally."
		} else {
			m.status = "Result synced."
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}
	switch m.phase {
	case phaseResult:
		switch msg.String() {
		case "enter", "r", "tab":
			m.restart()
		case "q", "esc":
			return m, m.quit()
		}
		return m, nil
	case phaseTyping:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyTab:
			m.restart()
			return m, nil
		case tea.KeyCtrlE:
			m.engine.Complete()
			return m, m.flush(nil)
		}
	case phaseReady:
		if msg.Type == tea.KeyEsc {
			return m, m.quit()
		}
	}

	for _, ev := range keyEvents(msg) {
		if m.engine.State() != session.StateActive {
			if m.phase != phaseReady || ev.Ignored() || ev.Kind == session.KeyBackspace {
				continue
			}
			if err := m.engine.Start(); err != nil {
				m.log.Error("failed to start session", zap.Error(err))
				m.status = err.Error()
				return m, nil
			}
		}
		m.engine.Keystroke(ev)
	}
	return m, m.flush(nil)
}

// flush collects the tick registration and hook commands produced while
// handling one message.
func (m *Model) flush(cmd tea.Cmd) tea.Cmd {
	cmds := append(m.cmds, cmd, m.ticker.Flush())
	m.cmds = nil
	return tea.Batch(cmds...)
}

func (m *Model) restart() {
	m.engine.Stop()
	m.phase = phaseReady
	m.status = ""
}

func (m *Model) quit() tea.Cmd {
	m.engine.Close()
	return tea.Quit
}

func (m *Model) onTypingStart() {
	m.phase = phaseTyping
}

func (m *Model) onComplete(res session.Result) {
	m.phase = phaseResult
	r := model.Result{
		Kind:       m.opts.Kind,
		LessonID:   m.opts.LessonID,
		WPM:        res.WPM,
		Accuracy:   res.Accuracy,
		Mistakes:   res.Mistakes,
		Duration:   m.opts.Lesson.Duration,
		Elapsed:    res.Elapsed,
		TextLength: textLength(m.opts.Lesson.Words),
		CreatedAt:  m.opts.Now(),
		Samples:    m.engine.Samples(),
	}
	m.save(&r)
	m.result = &r
	m.history = append(m.history, r)
	m.log.Info("session completed",
		zap.String("result", r.ID),
		zap.Int("wpm", r.WPM),
		zap.Int("accuracy", r.Accuracy),
		zap.Int("mistakes", r.Mistakes),
		zap.Int("elapsed", r.Elapsed),
	)
	if m.opts.Uploader != nil {
		uploader := m.opts.Uploader
		m.cmds = append(m.cmds, func() tea.Msg {
			return uploadedMsg{err: uploader.SaveResult(context.Background(), r)}
		})
	}
}

// save stores the result and marks the lesson completed. Failures are
// logged; the view keeps going.
func (m *Model) save(r *model.Result) {
	if m.opts.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	id, err := m.opts.Recorder.InsertResult(ctx, *r)
	if err != nil {
		m.log.Error("failed to save result", zap.Error(err))
		m.status = "Could not save result."
	} else {
		r.ID = id
	}
	if r.Kind == model.KindLesson && r.LessonID != "" {
		if err := m.opts.Recorder.MarkLessonCompleted(ctx, r.LessonID); err != nil {
			m.log.Error("failed to mark lesson completed", zap.Error(err))
		}
	}
}

func textLength(words []string) int {
	return len([]rune(strings.Join(words, " ")))
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.phase {
	case phaseResult:
		content = m.renderResult()
	default:
		content = m.renderSession()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderSession() string {
	parts := []string{titleStyle.Render(m.opts.Title)}
	if m.phase == phaseReady {
		parts = append(parts, hintStyle.Render("Start typing to begin. Esc quits."))
	} else {
		parts = append(parts, m.renderLiveStats(), m.renderTimer())
	}

	width := m.contentWidth()
	words := m.engine.Words()
	if m.opts.Lesson.Mode == session.ModeFreeText {
		styled := buildParagraph(paragraphView{
			words:        words,
			index:        m.engine.Index(),
			input:        m.engine.Input(),
			showMistakes: m.opts.Display.ShowMistakes,
		})
		text := wrapStyledRunes(styled, width)
		if width > 0 {
			text = lipgloss.NewStyle().Width(width).Render(text)
		}
		parts = append(parts, text)
	} else {
		parts = append(parts, renderWordBoxes(words, m.engine.Index(), m.engine.Input(), m.opts.Display.ShowMistakes, width))
	}

	next, info, ok := m.engine.Guidance()
	if m.opts.Display.FingerHints {
		if hint := fingerHint(next, info, ok); hint != "" {
			parts = append(parts, hint)
		}
	}
	if m.opts.Display.Keyboard {
		parts = append(parts, renderKeyboard(next, info, ok))
	}
	if m.status != "" {
		parts = append(parts, hintStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) renderLiveStats() string {
	samples := m.engine.Samples()
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = float64(s.Accuracy)
	}
	line := fmt.Sprintf("%s WPM  %s accuracy  %s mistakes",
		statStyle.Render(fmt.Sprint(m.engine.WPM())),
		statStyle.Render(fmt.Sprintf("%d%%", m.engine.Accuracy())),
		statStyle.Render(fmt.Sprint(m.engine.MistakeCount())),
	)
	if spark := stats.Sparkline(lastN(values, 30)); spark != "" {
		line += "  " + footerStyle.Render(spark)
	}
	return line
}

func (m *Model) renderTimer() string {
	duration := m.opts.Lesson.Duration
	ratio := 0.0
	if duration > 0 {
		ratio = float64(m.engine.Elapsed()) / float64(duration)
	}
	return m.bar.ViewAs(min(ratio, 1)) + " " + footerStyle.Render(stats.FormatClock(m.engine.Remaining()))
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return ""
	}
	r := m.result
	card := resultCardStyle.Render(strings.Join([]string{
		titleStyle.Render(m.opts.Title + " complete"),
		fmt.Sprintf("Speed     %s WPM", statStyle.Render(fmt.Sprint(r.WPM))),
		fmt.Sprintf("Accuracy  %s", statStyle.Render(fmt.Sprintf("%d%%", r.Accuracy))),
		fmt.Sprintf("Mistakes  %s", statStyle.Render(fmt.Sprint(r.Mistakes))),
		fmt.Sprintf("Time      %s", statStyle.Render(stats.FormatClock(r.Elapsed))),
	}, "\n"))
	parts := []string{card}

	var chart bytes.Buffer
	if err := stats.RenderAccuracyChart(&chart, r.Samples, m.contentWidth(), chartHeight); err != nil {
		m.log.Warn("failed to render accuracy chart", zap.Error(err))
	} else if chart.Len() > 0 {
		parts = append(parts, strings.TrimRight(chart.String(), "\n"))
	}

	if m.opts.Display.ShowMistakes {
		if lines := mistakeLines(m.engine.Mistakes(), maxMistakeLines); len(lines) > 0 {
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	if m.status != "" {
		parts = append(parts, hintStyle.Render(m.status))
	}
	parts = append(parts, hintStyle.Render("Enter: try again  q: quit"))
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func mistakeLines(mistakes []session.Mistake, limit int) []string {
	if len(mistakes) == 0 {
		return nil
	}
	lines := []string{footerStyle.Render("Mistakes")}
	for i, mk := range mistakes {
		if i == limit {
			lines = append(lines, footerStyle.Render(fmt.Sprintf("... and %d more", len(mistakes)-limit)))
			break
		}
		typed := mk.Actual
		if typed == "" {
			typed = "(empty)"
		}
		lines = append(lines, fmt.Sprintf("%s → %s", correctStyle.Render(mk.Expected), incorrectStyle.Render(typed)))
	}
	return lines
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Progress %d%%", m.progressPercent())}
	if n := len(m.history); n > 0 {
		last := m.history[n-1]
		all := stats.Summarize(m.history)
		segments = append(segments,
			fmt.Sprintf("Last %d WPM · %d%%", last.WPM, last.Accuracy),
			fmt.Sprintf("All-time %d WPM · %d%%", all.AvgWPM, all.AvgAccuracy),
		)
	}
	if m.phase == phaseTyping {
		segments = append(segments, "Esc: restart  Ctrl+E: finish")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) progressPercent() int {
	if m.phase == phaseResult {
		return 100
	}
	duration := m.opts.Lesson.Duration
	if duration <= 0 {
		return 0
	}
	return min(100, m.engine.Elapsed()*100/duration)
}

func lastN(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
