// Package cooldown implements the OTP resend cooldown: a countdown that
// starts at a fixed window, ticks down once per interval, and cancels its
// own ticker when it reaches zero.
//
// At most one countdown runs at a time. Start cancels and joins the previous
// countdown before the new one begins, and Stop (teardown) guarantees no
// further ticks are observed.
package cooldown

import (
	"sync"
	"time"
)

// DefaultWindow is the number of ticks a resend blocks further resends for.
const DefaultWindow = 60

// Ticker is the subset of *time.Ticker the timer needs; tests replace it
// with a manually driven implementation.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewStdTicker wraps time.NewTicker.
func NewStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

type Option func(*Timer)

// WithTicker overrides how tickers are created.
func WithTicker(f TickerFunc) Option {
	return func(t *Timer) { t.newTicker = f }
}

// WithInterval overrides the one-second tick interval.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) { t.interval = d }
}

// WithOnChange registers a callback invoked with the remaining count after
// every change. It runs outside the timer's lock.
func WithOnChange(fn func(remaining int)) Option {
	return func(t *Timer) { t.onChange = fn }
}

type Timer struct {
	window    int
	interval  time.Duration
	newTicker TickerFunc
	onChange  func(int)

	mu        sync.Mutex
	remaining int
	gen       uint64
	stop      chan struct{}
	done      chan struct{}
}

// New returns an idle timer with remaining == 0. A window <= 0 selects
// DefaultWindow.
func New(window int, opts ...Option) *Timer {
	if window <= 0 {
		window = DefaultWindow
	}
	t := &Timer{
		window:    window,
		interval:  time.Second,
		newTicker: NewStdTicker,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Window returns the configured window length in ticks.
func (t *Timer) Window() int {
	return t.window
}

// Remaining returns the number of ticks left; 0 means a resend is allowed.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Active reports whether a countdown goroutine is running.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done != nil
}

// Start resets the countdown to the full window and (re)starts ticking.
func (t *Timer) Start() {
	t.mu.Lock()
	prevStop, prevDone := t.detach()
	t.gen++
	gen := t.gen
	t.remaining = t.window
	stop, done := make(chan struct{}), make(chan struct{})
	t.stop, t.done = stop, done
	tk := t.newTicker(t.interval)
	t.mu.Unlock()

	join(prevStop, prevDone)
	t.changed(t.window)

	go t.run(gen, tk, stop, done)
}

// Stop cancels the running countdown, if any, and waits for it to exit.
// Remaining keeps its current value.
func (t *Timer) Stop() {
	t.mu.Lock()
	stop, done := t.detach()
	t.gen++
	t.mu.Unlock()

	join(stop, done)
}

// Reset stops the countdown and sets remaining to 0, as at the start of a
// fresh verification context.
func (t *Timer) Reset() {
	t.Stop()

	t.mu.Lock()
	was := t.remaining
	t.remaining = 0
	t.mu.Unlock()

	if was != 0 {
		t.changed(0)
	}
}

func (t *Timer) run(gen uint64, tk Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tk.C():
			if !t.tick(gen) {
				return
			}
		}
	}
}

// tick decrements remaining and reports whether the countdown goes on.
func (t *Timer) tick(gen uint64) bool {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	r := t.remaining
	if r == 0 {
		t.stop, t.done = nil, nil
	}
	t.mu.Unlock()

	t.changed(r)
	return r > 0
}

// detach must be called with mu held.
func (t *Timer) detach() (chan struct{}, chan struct{}) {
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	return stop, done
}

func (t *Timer) changed(remaining int) {
	if t.onChange != nil {
		t.onChange(remaining)
	}
}

func join(stop, done chan struct{}) {
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
