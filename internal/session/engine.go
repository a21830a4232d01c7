// Package session implements the per-keystroke typing session engine.
//
// An Engine is driven by two host event sources, key events and a 1 Hz
// timer, both delivered on the same goroutine. It performs no I/O and
// holds no locks.
package session

import (
	"errors"

	"github.com/verte-zerg/keytutor/internal/keyboard"
	"github.com/verte-zerg/keytutor/internal/metrics"
	"github.com/verte-zerg/keytutor/internal/model"
)

// Configuration errors returned by Start.
var (
	ErrNoContent       = errors.New("lesson has no words")
	ErrInvalidDuration = errors.New("lesson duration must be positive")
	ErrClosed          = errors.New("session is closed")
)

// State is the engine lifecycle state.
type State int

// Engine states.
const (
	StateIdle State = iota
	StateActive
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Mode selects how input is constrained per word.
type Mode int

// Entry modes.
const (
	// ModeConstrained caps input at the target word length (word boxes).
	ModeConstrained Mode = iota
	// ModeFreeText accepts input of any length (paragraph style).
	ModeFreeText
)

func (m Mode) String() string {
	if m == ModeFreeText {
		return "free-text"
	}
	return "constrained"
}

// Lesson is the content an engine runs.
type Lesson struct {
	Words []string
	// Duration is the session length in seconds.
	Duration int
	Mode     Mode
	// Loop wraps back to the first word after the last one. Without it
	// the session completes when the last word is finished.
	Loop bool
}

// Validate reports whether the lesson can be started.
func (l Lesson) Validate() error {
	if len(l.Words) == 0 {
		return ErrNoContent
	}
	if l.Duration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// WordState is the display state of one lesson word.
type WordState struct {
	Word      string
	Typed     string
	Completed bool
	Correct   bool
}

// Mistake records a completed word that did not match its target.
type Mistake struct {
	Index    int
	Expected string
	Actual   string
}

// ProgressSample is the accuracy recorded at each elapsed second.
type ProgressSample = model.ProgressSample

// Result is emitted once when a session completes.
type Result struct {
	Accuracy int
	WPM      int
	Mistakes int
	Elapsed  int
}

// Engine tracks progress through a lesson and scores it live.
type Engine struct {
	lesson  Lesson
	targets [][]rune

	words    []WordState
	index    int
	input    []rune
	mistakes []Mistake
	samples  []ProgressSample

	state    State
	elapsed  int
	accuracy int
	wpm      int
	started  bool

	// Running totals over completed words; they survive wraps.
	doneTotal   int
	doneCorrect int

	timer  Timer
	cancel func()
	hooks  Hooks
	closed bool
}

// New returns an idle engine loaded with lesson.
func New(lesson Lesson, opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.load(lesson)
	return e
}

// Load replaces the lesson content and returns the engine to Idle.
func (e *Engine) Load(lesson Lesson) {
	if e.closed {
		return
	}
	e.stopTimer()
	e.load(lesson)
}

func (e *Engine) load(lesson Lesson) {
	lesson.Words = append([]string(nil), lesson.Words...)
	e.lesson = lesson
	e.targets = make([][]rune, len(lesson.Words))
	for i, w := range lesson.Words {
		e.targets[i] = []rune(w)
	}
	e.state = StateIdle
	e.reset()
}

func (e *Engine) reset() {
	e.words = make([]WordState, len(e.lesson.Words))
	for i, w := range e.lesson.Words {
		e.words[i] = WordState{Word: w}
	}
	e.index = 0
	e.input = nil
	e.mistakes = nil
	e.samples = nil
	e.elapsed = 0
	e.accuracy = 100
	e.wpm = 0
	e.started = false
	e.doneTotal = 0
	e.doneCorrect = 0
}

// Start resets all per-session data and enters Active. It refuses empty
// lessons and non-positive durations, leaving the state untouched.
func (e *Engine) Start() error {
	if e.closed {
		return ErrClosed
	}
	if err := e.lesson.Validate(); err != nil {
		return err
	}
	e.stopTimer()
	e.reset()
	e.state = StateActive
	if e.timer != nil {
		e.cancel = e.timer.Schedule(e.Tick)
	}
	return nil
}

// Keystroke applies one key event. Events outside Active are dropped.
func (e *Engine) Keystroke(ev KeyEvent) {
	if e.state != StateActive || ev.Ignored() {
		return
	}
	if !e.started {
		e.started = true
		if e.hooks.OnTypingStart != nil {
			e.hooks.OnTypingStart()
		}
		if e.state != StateActive {
			return
		}
	}
	if e.index >= len(e.words) {
		e.index = 0
		e.input = e.input[:0]
		e.recompute()
		return
	}

	switch ev.Kind {
	case KeySpace:
		e.completeWord()
	case KeyBackspace:
		if len(e.input) > 0 {
			e.input = e.input[:len(e.input)-1]
		}
	case KeyRune:
		if e.lesson.Mode == ModeConstrained && len(e.input) >= len(e.targets[e.index]) {
			return
		}
		e.input = append(e.input, ev.Rune)
	}
	if e.state == StateActive {
		e.recompute()
	}
}

func (e *Engine) completeWord() {
	target := e.targets[e.index]
	typed := string(e.input)
	ws := &e.words[e.index]
	ws.Typed = typed
	ws.Completed = true
	ws.Correct = typed == ws.Word

	e.doneTotal += e.countedLength(target)
	if ws.Correct {
		e.doneCorrect += len(target)
	} else {
		e.mistakes = append(e.mistakes, Mistake{Index: e.index, Expected: ws.Word, Actual: typed})
	}
	e.input = e.input[:0]
	e.index++
	if e.index < len(e.words) {
		return
	}
	if e.lesson.Loop {
		e.index = 0
		for i := range e.words {
			e.words[i] = WordState{Word: e.words[i].Word}
		}
		return
	}
	e.recompute()
	e.finish()
}

// countedLength is the number of characters a completed word adds to the
// total. Free-text overflow past the target counts as typed characters.
func (e *Engine) countedLength(target []rune) int {
	if e.lesson.Mode == ModeFreeText && len(e.input) > len(target) {
		return len(e.input)
	}
	return len(target)
}

func (e *Engine) recompute() {
	total := e.doneTotal + len(e.input)
	correct := e.doneCorrect
	if e.index < len(e.targets) {
		target := e.targets[e.index]
		for i, r := range e.input {
			if i < len(target) && target[i] == r {
				correct++
			}
		}
	}
	e.accuracy = metrics.Accuracy(correct, total)
	if e.elapsed >= 1 {
		e.wpm = metrics.WPM(correct, e.elapsed)
	} else {
		e.wpm = 0
	}
}

// Tick advances elapsed time by one second. It records a progress sample
// and completes the session once the lesson duration is reached.
func (e *Engine) Tick() {
	if e.state != StateActive {
		return
	}
	e.elapsed++
	e.recompute()
	sample := ProgressSample{Time: e.elapsed, Accuracy: e.accuracy}
	e.samples = append(e.samples, sample)
	if e.hooks.OnProgress != nil {
		e.hooks.OnProgress(sample)
	}
	if e.state == StateActive && e.elapsed >= e.lesson.Duration {
		e.finish()
	}
}

// Complete ends an active session early and emits its result.
func (e *Engine) Complete() {
	if e.state != StateActive {
		return
	}
	e.finish()
}

func (e *Engine) finish() {
	e.stopTimer()
	e.state = StateCompleted
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(e.Result())
	}
}

// Stop aborts the session without emitting a result.
func (e *Engine) Stop() {
	if e.closed {
		return
	}
	e.stopTimer()
	e.state = StateIdle
}

// Close releases the timer registration and hooks. Every later call on
// the engine is a no-op.
func (e *Engine) Close() {
	e.stopTimer()
	e.hooks = Hooks{}
	e.timer = nil
	e.state = StateIdle
	e.closed = true
}

func (e *Engine) stopTimer() {
	if e.cancel == nil {
		return
	}
	cancel := e.cancel
	e.cancel = nil
	cancel()
}

// Result returns the current metrics summary.
func (e *Engine) Result() Result {
	return Result{
		Accuracy: e.accuracy,
		WPM:      e.wpm,
		Mistakes: len(e.mistakes),
		Elapsed:  e.elapsed,
	}
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Lesson returns the loaded lesson.
func (e *Engine) Lesson() Lesson { return e.lesson }

// Index returns the current word index.
func (e *Engine) Index() int { return e.index }

// Input returns the in-progress input for the current word.
func (e *Engine) Input() string { return string(e.input) }

// Words returns a copy of the per-word display state.
func (e *Engine) Words() []WordState {
	out := make([]WordState, len(e.words))
	copy(out, e.words)
	return out
}

// Mistakes returns a copy of the mistake log.
func (e *Engine) Mistakes() []Mistake {
	out := make([]Mistake, len(e.mistakes))
	copy(out, e.mistakes)
	return out
}

// MistakeCount returns the number of logged mistakes.
func (e *Engine) MistakeCount() int { return len(e.mistakes) }

// Samples returns a copy of the per-second progress samples.
func (e *Engine) Samples() []ProgressSample {
	out := make([]ProgressSample, len(e.samples))
	copy(out, e.samples)
	return out
}

// Elapsed returns elapsed seconds.
func (e *Engine) Elapsed() int { return e.elapsed }

// Remaining returns the seconds left before the lesson duration is reached.
func (e *Engine) Remaining() int {
	if left := e.lesson.Duration - e.elapsed; left > 0 {
		return left
	}
	return 0
}

// Accuracy returns the live accuracy percentage.
func (e *Engine) Accuracy() int { return e.accuracy }

// WPM returns the live words per minute.
func (e *Engine) WPM() int { return e.wpm }

// NextRune returns the next expected character, or space at a word end.
func (e *Engine) NextRune() rune {
	if e.index < len(e.targets) {
		target := e.targets[e.index]
		if len(e.input) < len(target) {
			return target[len(e.input)]
		}
	}
	return ' '
}

// Guidance returns the next expected character and the finger that
// types it. ok is false when the character has no mapped key.
func (e *Engine) Guidance() (next rune, info keyboard.KeyInfo, ok bool) {
	next = e.NextRune()
	info, ok = keyboard.Lookup(next)
	return next, info, ok
}
