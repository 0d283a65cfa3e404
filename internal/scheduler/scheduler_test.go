// internal/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTicker - тикер с ручным управлением.
// Канал с буфером 1 повторяет поведение time.Ticker: при
// затянувшемся цикле тик не теряется, но и не накапливается.
type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (c *fakeClock) Now() time.Time { return time.Now().UTC() }

func (c *fakeClock) NewTicker(_ time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// tick посылает один тик первому зарегистрированному тикеру,
// дождавшись его создания
func (c *fakeClock) tick(t *testing.T) {
	deadline := time.After(time.Second)
	for {
		c.mu.Lock()
		if len(c.tickers) > 0 {
			ticker := c.tickers[0]
			c.mu.Unlock()
			ticker.ch <- time.Now()
			return
		}
		c.mu.Unlock()

		select {
		case <-deadline:
			t.Fatal("ticker was never created")
		case <-time.After(time.Millisecond):
		}
	}
}

func waitRun(t *testing.T, runs <-chan struct{}) {
	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("job did not run in time")
	}
}

func TestScheduler_RunsImmediatelyAndOnTicks(t *testing.T) {
	clock := &fakeClock{}
	s := NewWithClock(clock)

	runs := make(chan struct{}, 10)
	s.Register(&Job{
		Name:     "test",
		Interval: time.Hour,
		Handler: func(_ context.Context) error {
			runs <- struct{}{}
			return nil
		},
	})

	s.Start()
	defer s.Stop()

	// Первый запуск происходит сразу, без ожидания тика
	waitRun(t, runs)

	clock.tick(t)
	waitRun(t, runs)

	clock.tick(t)
	waitRun(t, runs)
}

func TestScheduler_NoOverlap(t *testing.T) {
	clock := &fakeClock{}
	s := NewWithClock(clock)

	started := make(chan struct{})
	release := make(chan struct{})
	s.Register(&Job{
		Name:     "slow",
		Interval: time.Hour,
		Handler: func(_ context.Context) error {
			started <- struct{}{}
			<-release
			return nil
		},
	})

	s.Start()

	// Первый цикл начался и завис
	waitRun(t, started)

	// Тик пришел, пока цикл еще выполняется
	clock.tick(t)

	// Второй запуск не должен стартовать параллельно
	select {
	case <-started:
		t.Fatal("job cycles overlapped")
	case <-time.After(50 * time.Millisecond):
	}

	// Отпускаем первый цикл - отложенный тик запускает второй
	release <- struct{}{}
	waitRun(t, started)
	release <- struct{}{}

	s.Stop()
}

func TestScheduler_PanicDoesNotKillLoop(t *testing.T) {
	clock := &fakeClock{}
	s := NewWithClock(clock)

	runs := make(chan struct{}, 10)
	first := true
	job := &Job{
		Name:     "flaky",
		Interval: time.Hour,
		Handler: func(_ context.Context) error {
			runs <- struct{}{}
			if first {
				first = false
				panic("boom")
			}
			return nil
		},
	}
	s.Register(job)

	s.Start()
	defer s.Stop()

	waitRun(t, runs)

	// Цикл пережил панику и работает дальше
	clock.tick(t)
	waitRun(t, runs)
}

func TestScheduler_StatusTracksRuns(t *testing.T) {
	clock := &fakeClock{}
	s := NewWithClock(clock)

	done := make(chan struct{}, 10)
	job := &Job{
		Name:     "failing",
		Interval: time.Hour,
		Handler: func(_ context.Context) error {
			defer func() { done <- struct{}{} }()
			return errors.New("cycle failed")
		},
	}
	s.Register(job)

	s.Start()
	waitRun(t, done)
	s.Stop()

	st := job.Status()
	assert.Equal(t, "failing", st.Name)
	assert.GreaterOrEqual(t, st.Runs, 1)
	require.Error(t, st.LastErr)
	assert.False(t, st.LastRun.IsZero())
}

func TestScheduler_StopWaitsForRunningCycle(t *testing.T) {
	clock := &fakeClock{}
	s := NewWithClock(clock)

	started := make(chan struct{})
	finished := make(chan struct{})
	s.Register(&Job{
		Name:     "graceful",
		Interval: time.Hour,
		Handler: func(_ context.Context) error {
			started <- struct{}{}
			time.Sleep(50 * time.Millisecond)
			close(finished)
			return nil
		},
	})

	s.Start()
	waitRun(t, started)

	s.Stop()

	// Stop вернулся только после завершения цикла
	select {
	case <-finished:
	default:
		t.Fatal("Stop returned before running cycle finished")
	}
}
