package session

import (
	"errors"
	"reflect"
	"testing"

	"github.com/verte-zerg/keytutor/internal/keyboard"
)

type fakeTimer struct {
	fn        func()
	current   int
	scheduled int
	cancelled int
	active    int
}

func (f *fakeTimer) Schedule(fn func()) func() {
	f.scheduled++
	f.active++
	id := f.scheduled
	f.current = id
	f.fn = fn
	done := false
	return func() {
		if done {
			return
		}
		done = true
		f.cancelled++
		f.active--
		if f.current == id {
			f.fn = nil
		}
	}
}

func (f *fakeTimer) fire() {
	if f.fn != nil {
		f.fn()
	}
}

func typeString(e *Engine, s string) {
	for _, r := range s {
		e.Keystroke(RuneKey(r))
	}
}

func startEngine(t *testing.T, lesson Lesson, opts ...Option) *Engine {
	t.Helper()
	e := New(lesson, opts...)
	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return e
}

func TestCorrectWordCompletes(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"as", "df"}, Duration: 60, Loop: true})
	typeString(e, "as ")

	words := e.Words()
	if !words[0].Completed || !words[0].Correct || words[0].Typed != "as" {
		t.Fatalf("unexpected word state: %+v", words[0])
	}
	if e.Index() != 1 {
		t.Fatalf("expected cursor at 1, got %d", e.Index())
	}
	if e.Input() != "" {
		t.Fatalf("expected empty input, got %q", e.Input())
	}
	if e.MistakeCount() != 0 {
		t.Fatalf("expected no mistakes, got %d", e.MistakeCount())
	}
}

func TestWrongWordLogsMistake(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"as", "df", "jk"}, Duration: 60, Loop: true})
	typeString(e, "as dx ")

	mistakes := e.Mistakes()
	if len(mistakes) != 1 {
		t.Fatalf("expected 1 mistake, got %d", len(mistakes))
	}
	want := Mistake{Index: 1, Expected: "df", Actual: "dx"}
	if mistakes[0] != want {
		t.Fatalf("unexpected mistake %+v", mistakes[0])
	}
	if e.Index() != 2 {
		t.Fatalf("expected cursor at 2, got %d", e.Index())
	}
	words := e.Words()
	if !words[1].Completed || words[1].Correct {
		t.Fatalf("expected completed incorrect word, got %+v", words[1])
	}
}

func TestLoopingLessonExample(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"as", "as"}, Duration: 60, Mode: ModeConstrained, Loop: true})

	typeString(e, "as ")
	words := e.Words()
	if !words[0].Completed || !words[0].Correct {
		t.Fatalf("expected word 0 completed and correct, got %+v", words[0])
	}
	if e.Index() != 1 || e.Input() != "" || e.MistakeCount() != 0 {
		t.Fatalf("unexpected state: index=%d input=%q mistakes=%d", e.Index(), e.Input(), e.MistakeCount())
	}

	typeString(e, "ax ")
	mistakes := e.Mistakes()
	if len(mistakes) != 1 {
		t.Fatalf("expected 1 mistake, got %d", len(mistakes))
	}
	if mistakes[0] != (Mistake{Index: 1, Expected: "as", Actual: "ax"}) {
		t.Fatalf("unexpected mistake %+v", mistakes[0])
	}
	if e.Index() != 0 {
		t.Fatalf("expected wrap to 0, got %d", e.Index())
	}
	for i, w := range e.Words() {
		if w.Completed || w.Correct || w.Typed != "" {
			t.Fatalf("expected word %d reset, got %+v", i, w)
		}
	}
	if e.State() != StateActive {
		t.Fatalf("expected looping session to stay active, got %v", e.State())
	}
}

func TestSinglePassCompletesOnLastWord(t *testing.T) {
	var results []Result
	e := startEngine(t, Lesson{Words: []string{"as", "df"}, Duration: 300, Mode: ModeFreeText},
		WithHooks(Hooks{OnComplete: func(r Result) { results = append(results, r) }}))

	typeString(e, "as df ")
	if e.State() != StateCompleted {
		t.Fatalf("expected completed, got %v", e.State())
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(results))
	}
	if results[0].Accuracy != 100 || results[0].Mistakes != 0 {
		t.Fatalf("unexpected result %+v", results[0])
	}
	typeString(e, "x ")
	e.Tick()
	if len(results) != 1 {
		t.Fatalf("expected no further completions, got %d", len(results))
	}
}

func TestConstrainedModeCapsInput(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Mode: ModeConstrained, Loop: true})
	typeString(e, "asdf")
	if e.Input() != "as" {
		t.Fatalf("expected input capped to %q, got %q", "as", e.Input())
	}
}

func TestFreeTextModeAllowsOverflow(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"as", "df"}, Duration: 60, Mode: ModeFreeText, Loop: true})
	typeString(e, "asdf")
	if e.Input() != "asdf" {
		t.Fatalf("expected uncapped input, got %q", e.Input())
	}
	if e.Accuracy() != 50 {
		t.Fatalf("expected overflow to count against accuracy, got %d", e.Accuracy())
	}
	e.Keystroke(SpaceKey())
	if e.MistakeCount() != 1 {
		t.Fatalf("expected overflowed word to be a mistake")
	}
	// A wrong word scores nothing; its 4 typed characters all count.
	typeString(e, "df")
	if e.Accuracy() != 33 {
		t.Fatalf("expected completed overflow counted, got %d", e.Accuracy())
	}
}

func TestBackspace(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Loop: true})
	e.Keystroke(BackspaceKey())
	if e.Input() != "" {
		t.Fatalf("expected empty input, got %q", e.Input())
	}
	typeString(e, "ax")
	e.Keystroke(BackspaceKey())
	if e.Input() != "a" {
		t.Fatalf("expected %q, got %q", "a", e.Input())
	}
	typeString(e, "s")
	if e.Accuracy() != 100 {
		t.Fatalf("expected corrected input to be accurate, got %d", e.Accuracy())
	}
}

func TestIgnoredEvents(t *testing.T) {
	started := 0
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Loop: true},
		WithHooks(Hooks{OnTypingStart: func() { started++ }}))

	e.Keystroke(KeyEvent{Kind: KeyRune, Rune: 'a', Ctrl: true})
	e.Keystroke(KeyEvent{Kind: KeyRune, Rune: 'a', Alt: true})
	e.Keystroke(KeyEvent{Kind: KeyOther})
	e.Keystroke(ParseKey("Shift"))
	e.Keystroke(RuneKey('\x1b'))
	if e.Input() != "" {
		t.Fatalf("expected ignored events to leave input empty, got %q", e.Input())
	}
	if started != 0 {
		t.Fatalf("ignored events must not signal typing start")
	}
}

func TestTypingStartFiresOncePerActivePeriod(t *testing.T) {
	started := 0
	var inputAtStart string
	var e *Engine
	e = startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Loop: true},
		WithHooks(Hooks{OnTypingStart: func() {
			started++
			inputAtStart = e.Input()
		}}))

	typeString(e, "as as")
	if started != 1 {
		t.Fatalf("expected 1 typing start, got %d", started)
	}
	if inputAtStart != "" {
		t.Fatalf("expected hook before mutation, saw input %q", inputAtStart)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	typeString(e, "a")
	if started != 2 {
		t.Fatalf("expected typing start after restart, got %d", started)
	}
}

func TestTickCompletesAtDuration(t *testing.T) {
	completions := 0
	var samples []ProgressSample
	timer := &fakeTimer{}
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 3, Loop: true},
		WithTimer(timer),
		WithHooks(Hooks{
			OnComplete: func(Result) { completions++ },
			OnProgress: func(s ProgressSample) { samples = append(samples, s) },
		}))

	for i := 0; i < 3; i++ {
		timer.fire()
	}
	if e.State() != StateCompleted {
		t.Fatalf("expected completed, got %v", e.State())
	}
	if completions != 1 {
		t.Fatalf("expected 1 completion, got %d", completions)
	}
	if len(samples) != 3 || samples[2].Time != 3 {
		t.Fatalf("unexpected samples %+v", samples)
	}
	if timer.active != 0 {
		t.Fatalf("expected timer released on completion, active=%d", timer.active)
	}
	timer.fire()
	e.Tick()
	if completions != 1 || e.Elapsed() != 3 {
		t.Fatalf("expected frozen session, completions=%d elapsed=%d", completions, e.Elapsed())
	}
}

func TestTickWithoutTimer(t *testing.T) {
	completions := 0
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Loop: true},
		WithHooks(Hooks{OnComplete: func(Result) { completions++ }}))
	for i := 0; i < 60; i++ {
		e.Tick()
	}
	if completions != 1 || e.State() != StateCompleted {
		t.Fatalf("expected completion after 60 ticks, got %d (%v)", completions, e.State())
	}
	if e.Remaining() != 0 {
		t.Fatalf("expected no time remaining, got %d", e.Remaining())
	}
}

func TestStartRegistersSingleTimer(t *testing.T) {
	timer := &fakeTimer{}
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Loop: true}, WithTimer(timer))
	if err := e.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if timer.active != 1 {
		t.Fatalf("expected exactly one live timer, got %d", timer.active)
	}
	timer.fire()
	if e.Elapsed() != 1 {
		t.Fatalf("expected single tick to advance once, got %d", e.Elapsed())
	}
	e.Stop()
	if timer.active != 0 || e.State() != StateIdle {
		t.Fatalf("expected stop to release timer, active=%d state=%v", timer.active, e.State())
	}
}

func TestStartIsIdempotent(t *testing.T) {
	lesson := Lesson{Words: []string{"as", "df"}, Duration: 60, Loop: true}
	once := startEngine(t, lesson)

	twice := startEngine(t, lesson)
	typeString(twice, "ax df a")
	twice.Tick()
	if err := twice.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := twice.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}

	if !reflect.DeepEqual(snapshot(once), snapshot(twice)) {
		t.Fatalf("expected identical state\nonce:  %+v\ntwice: %+v", snapshot(once), snapshot(twice))
	}
}

type engineSnapshot struct {
	State    State
	Index    int
	Input    string
	Words    []WordState
	Mistakes []Mistake
	Samples  []ProgressSample
	Elapsed  int
	Accuracy int
	WPM      int
}

func snapshot(e *Engine) engineSnapshot {
	return engineSnapshot{
		State:    e.State(),
		Index:    e.Index(),
		Input:    e.Input(),
		Words:    e.Words(),
		Mistakes: e.Mistakes(),
		Samples:  e.Samples(),
		Elapsed:  e.Elapsed(),
		Accuracy: e.Accuracy(),
		WPM:      e.WPM(),
	}
}

func TestStartRejectsBadConfig(t *testing.T) {
	e := New(Lesson{Duration: 60})
	if err := e.Start(); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if e.State() != StateIdle {
		t.Fatalf("expected idle, got %v", e.State())
	}
	e = New(Lesson{Words: []string{"as"}})
	if err := e.Start(); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	e.Keystroke(RuneKey('a'))
	e.Tick()
	if e.Input() != "" || e.Elapsed() != 0 {
		t.Fatalf("expected idle engine to ignore events")
	}
}

func TestZeroLengthWord(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"as", "", "df"}, Duration: 60, Mode: ModeConstrained, Loop: true})
	typeString(e, "as ")
	typeString(e, "x")
	if e.Input() != "" {
		t.Fatalf("expected no input for empty target, got %q", e.Input())
	}
	if e.NextRune() != ' ' {
		t.Fatalf("expected boundary guidance for empty target")
	}
	e.Keystroke(SpaceKey())
	if e.Index() != 2 {
		t.Fatalf("expected empty word completed immediately, index=%d", e.Index())
	}
	if !e.Words()[1].Correct {
		t.Fatalf("expected empty word to match empty input")
	}
}

func TestMetricsRecompute(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"hello", "world"}, Duration: 60, Loop: true})
	if e.Accuracy() != 100 || e.WPM() != 0 {
		t.Fatalf("expected initial 100%%/0, got %d/%d", e.Accuracy(), e.WPM())
	}
	typeString(e, "hellp ")
	// completed incorrect word: 5 total, 0 correct
	if e.Accuracy() != 0 {
		t.Fatalf("expected 0 accuracy, got %d", e.Accuracy())
	}
	typeString(e, "wor")
	// 8 total, 3 correct
	if e.Accuracy() != 38 {
		t.Fatalf("expected 38 accuracy, got %d", e.Accuracy())
	}
	for i := 0; i < 6; i++ {
		e.Tick()
	}
	// 3 correct chars in 6 seconds
	if e.WPM() != 6 {
		t.Fatalf("expected 6 wpm, got %d", e.WPM())
	}
	if e.WPM() < 0 || e.Accuracy() < 0 || e.Accuracy() > 100 {
		t.Fatalf("metrics out of range")
	}
}

func TestMetricsSurviveWrap(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Loop: true})
	typeString(e, "as ax ")
	if e.Index() != 0 {
		t.Fatalf("expected wrap, index=%d", e.Index())
	}
	if e.Accuracy() != 50 {
		t.Fatalf("expected accuracy over both passes, got %d", e.Accuracy())
	}
	if e.MistakeCount() != 1 {
		t.Fatalf("expected mistake log kept across wrap, got %d", e.MistakeCount())
	}
}

func TestGuidance(t *testing.T) {
	e := startEngine(t, Lesson{Words: []string{"Fig", "1"}, Duration: 60, Loop: true})
	next, info, ok := e.Guidance()
	if next != 'F' || !ok || info.Finger != keyboard.LeftIndex {
		t.Fatalf("unexpected guidance %q %+v %v", next, info, ok)
	}
	typeString(e, "Fig")
	next, info, ok = e.Guidance()
	if next != ' ' || !ok || info.Finger != keyboard.Thumb {
		t.Fatalf("expected space guidance, got %q %+v %v", next, info, ok)
	}
	e.Keystroke(SpaceKey())
	if _, _, ok := e.Guidance(); ok {
		t.Fatalf("expected no guidance for unmapped key")
	}
}

func TestCompleteAndClose(t *testing.T) {
	results := 0
	timer := &fakeTimer{}
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Loop: true},
		WithTimer(timer), WithHooks(Hooks{OnComplete: func(Result) { results++ }}))
	e.Complete()
	e.Complete()
	if results != 1 || e.State() != StateCompleted {
		t.Fatalf("expected one completion, got %d (%v)", results, e.State())
	}
	if err := e.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	e.Close()
	if timer.active != 0 {
		t.Fatalf("expected close to release timer")
	}
	if err := e.Start(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	e.Complete()
	if results != 1 {
		t.Fatalf("expected closed engine not to emit")
	}
}

func TestLoadResets(t *testing.T) {
	timer := &fakeTimer{}
	e := startEngine(t, Lesson{Words: []string{"as"}, Duration: 60, Loop: true}, WithTimer(timer))
	typeString(e, "a")
	e.Load(Lesson{Words: []string{"jk", "l;"}, Duration: 30})
	if e.State() != StateIdle || e.Input() != "" || len(e.Words()) != 2 {
		t.Fatalf("expected fresh idle engine after load")
	}
	if timer.active != 0 {
		t.Fatalf("expected load to release timer")
	}
}

func TestParseKey(t *testing.T) {
	cases := map[string]KeyEvent{
		"a":         {Kind: KeyRune, Rune: 'a'},
		" ":         SpaceKey(),
		"Space":     SpaceKey(),
		"Backspace": BackspaceKey(),
		"Shift":     {Kind: KeyOther},
		"ArrowLeft": {Kind: KeyOther},
	}
	for name, want := range cases {
		if got := ParseKey(name); got != want {
			t.Fatalf("ParseKey(%q) = %+v, want %+v", name, got, want)
		}
	}
}
