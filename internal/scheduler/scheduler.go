// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"air-quality-alert-bot/pkg/logger"
)

// Job описывает одну периодическую задачу
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	// Timeout контекста одного запуска; 0 означает Interval
	Timeout time.Duration
	Handler func(ctx context.Context) error

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
	runs    int
}

// Status возвращает текущее состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		Name:        j.Name,
		Description: j.Description,
		LastRun:     j.lastRun,
		LastErr:     j.lastErr,
		Runs:        j.runs,
	}
}

// JobStatus снапшот состояния задачи
type JobStatus struct {
	Name        string
	Description string
	LastRun     time.Time
	LastErr     error
	Runs        int
}

// Scheduler управляет периодическими задачами приложения.
//
// Каждая задача выполняется в собственной горутине строго
// последовательно: пока цикл не завершился (включая фиксацию
// состояния), следующий тик той же задачи не обрабатывается.
// Если цикл затянулся дольше интервала, следующий запуск
// откладывается, а не пропускается и не распараллеливается.
type Scheduler struct {
	clock    Clock
	jobs     []*Job
	mu       sync.RWMutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New создает планировщик с системными часами
func New() *Scheduler {
	return NewWithClock(RealClock{})
}

// NewWithClock создает планировщик с заданным источником времени
func NewWithClock(clock Clock) *Scheduler {
	return &Scheduler{
		clock:    clock,
		stopChan: make(chan struct{}),
	}
}

// Register добавляет задачу в планировщик.
// Должен вызываться до Start().
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)

	logger.Info("📋 [Scheduler] Зарегистрирована задача %q — интервал %s", job.Name, job.Interval)
}

// Start запускает по горутине на каждую задачу
func (s *Scheduler) Start() {
	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	for _, job := range jobs {
		s.wg.Add(1)
		go func(j *Job) {
			defer s.wg.Done()
			s.runLoop(j)
		}(job)
	}

	logger.Info("✅ [Scheduler] Запущен (%d задач)", len(jobs))
}

// Stop останавливает планировщик. Циклы, уже начавшие выполнение,
// завершаются до конца - состояние не остается наполовину записанным.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	logger.Info("🛑 [Scheduler] Остановлен")
}

// Jobs возвращает статус всех задач
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	statuses := make([]JobStatus, len(jobs))
	for i, j := range jobs {
		statuses[i] = j.Status()
	}
	return statuses
}

// runLoop - цикл одной задачи: первый запуск сразу, дальше по тикам
func (s *Scheduler) runLoop(job *Job) {
	ticker := s.clock.NewTicker(job.Interval)
	defer ticker.Stop()

	s.run(job)

	for {
		select {
		case <-ticker.C():
			s.run(job)
		case <-s.stopChan:
			return
		}
	}
}

// run выполняет один цикл задачи и обновляет её состояние
func (s *Scheduler) run(job *Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = job.Interval
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Debug("▶️  [Scheduler] Запуск задачи %q", job.Name)
	start := s.clock.Now()

	err := s.safeCall(job, ctx)

	elapsed := s.clock.Now().Sub(start)

	job.mu.Lock()
	job.lastRun = start
	job.lastErr = err
	job.runs++
	job.mu.Unlock()

	if err != nil {
		logger.Error("❌ [Scheduler] Задача %q завершилась с ошибкой за %v: %v", job.Name, elapsed, err)
	} else {
		logger.Debug("✅ [Scheduler] Задача %q выполнена за %v", job.Name, elapsed)
	}
}

// safeCall вызывает обработчик, превращая панику в ошибку:
// сбой одного цикла не должен останавливать будущие циклы
func (s *Scheduler) safeCall(job *Job, ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job %q: %v", job.Name, r)
		}
	}()
	return job.Handler(ctx)
}
