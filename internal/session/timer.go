package session

// Timer delivers the once-per-second tick that drives an active session.
// Schedule calls fn once per second on the host's event thread until the
// returned cancel func runs. Cancel must be safe to call more than once
// and from inside fn.
type Timer interface {
	Schedule(fn func()) (cancel func())
}

// Hooks are the host callbacks fired by the engine. Nil hooks are skipped.
type Hooks struct {
	// OnTypingStart fires on the first accepted keystroke of an active period.
	OnTypingStart func()
	// OnProgress fires after each tick with the recorded sample.
	OnProgress func(sample ProgressSample)
	// OnComplete fires once per transition into Completed.
	OnComplete func(result Result)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimer sets the tick source registered on every Start.
func WithTimer(t Timer) Option {
	return func(e *Engine) {
		e.timer = t
	}
}

// WithHooks sets the host callbacks.
func WithHooks(h Hooks) Option {
	return func(e *Engine) {
		e.hooks = h
	}
}
