package cooldown

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

type tickerSource struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (s *tickerSource) New(time.Duration) Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()
	ft := &fakeTicker{ch: make(chan time.Time)}
	s.tickers = append(s.tickers, ft)
	return ft
}

func (s *tickerSource) At(i int) *fakeTicker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickers[i]
}

func (s *tickerSource) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

func newTestTimer(t *testing.T, opts ...Option) (*Timer, *tickerSource) {
	t.Helper()
	src := &tickerSource{}
	tm := New(DefaultWindow, append([]Option{WithTicker(src.New)}, opts...)...)
	t.Cleanup(tm.Stop)
	return tm, src
}

func TestTimer_IdleByDefault(t *testing.T) {
	tm, src := newTestTimer(t)
	assert.Equal(t, 0, tm.Remaining())
	assert.False(t, tm.Active())
	assert.Equal(t, 0, src.Len())
	assert.Equal(t, DefaultWindow, tm.Window())
}

func TestNew_NonPositiveWindowUsesDefault(t *testing.T) {
	assert.Equal(t, DefaultWindow, New(0).Window())
	assert.Equal(t, DefaultWindow, New(-3).Window())
	assert.Equal(t, 5, New(5).Window())
}

func TestTimer_StartSetsFullWindow(t *testing.T) {
	tm, src := newTestTimer(t)
	tm.Start()

	assert.Equal(t, 60, tm.Remaining())
	assert.True(t, tm.Active())
	assert.Equal(t, 1, src.Len())
}

func TestTimer_TickDecrements(t *testing.T) {
	tm, src := newTestTimer(t)
	tm.Start()

	src.At(0).ch <- time.Now()
	require.Eventually(t, func() bool { return tm.Remaining() == 59 }, time.Second, time.Millisecond)
}

func TestTimer_CountsDownToZeroAndStopsTicker(t *testing.T) {
	tm, src := newTestTimer(t)
	tm.Start()
	ft := src.At(0)

	for i := 0; i < 60; i++ {
		ft.ch <- time.Now()
	}

	require.Eventually(t, func() bool {
		return tm.Remaining() == 0 && ft.stopped.Load() && !tm.Active()
	}, time.Second, time.Millisecond)

	// nobody listens once the countdown is over
	select {
	case ft.ch <- time.Now():
		t.Fatal("tick consumed after countdown reached zero")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 0, tm.Remaining())
}

func TestTimer_RestartReplacesRunningCountdown(t *testing.T) {
	tm, src := newTestTimer(t)
	tm.Start()
	first := src.At(0)

	for i := 0; i < 5; i++ {
		first.ch <- time.Now()
	}
	require.Eventually(t, func() bool { return tm.Remaining() == 55 }, time.Second, time.Millisecond)

	tm.Start()
	assert.True(t, first.stopped.Load())
	assert.Equal(t, 60, tm.Remaining())
	require.Equal(t, 2, src.Len())

	second := src.At(1)
	second.ch <- time.Now()
	require.Eventually(t, func() bool { return tm.Remaining() == 59 }, time.Second, time.Millisecond)

	select {
	case first.ch <- time.Now():
		t.Fatal("old ticker still consumed")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimer_StopKeepsRemaining(t *testing.T) {
	tm, src := newTestTimer(t)
	tm.Start()
	tm.Stop()

	assert.True(t, src.At(0).stopped.Load())
	assert.False(t, tm.Active())
	assert.Equal(t, 60, tm.Remaining())

	// idempotent
	tm.Stop()
}

func TestTimer_ResetZeroes(t *testing.T) {
	tm, src := newTestTimer(t)
	tm.Start()
	tm.Reset()

	assert.True(t, src.At(0).stopped.Load())
	assert.False(t, tm.Active())
	assert.Equal(t, 0, tm.Remaining())
}

func TestTimer_OnChange(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	tm, src := newTestTimer(t, WithOnChange(func(r int) {
		mu.Lock()
		seen = append(seen, r)
		mu.Unlock()
	}))

	tm.Start()
	src.At(0).ch <- time.Now()
	require.Eventually(t, func() bool { return tm.Remaining() == 59 }, time.Second, time.Millisecond)
	tm.Reset()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{60, 59, 0}, seen)
}
