// internal/scheduler/clock.go
package scheduler

import "time"

// Clock - источник времени и тикеров. Абстракция нужна, чтобы
// тестировать планировщик без реальных задержек.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker - абстракция над time.Ticker
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock - системное время
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *realTicker) Stop() {
	t.ticker.Stop()
}
