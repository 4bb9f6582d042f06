package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval matches the 5-minute dispatch cadence the block
// grid is quantized for.
const DefaultInterval = 5 * time.Minute

// Scheduler runs the dispatch service on a fixed cadence.
type Scheduler struct {
	service  *Service
	interval time.Duration
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewScheduler creates a scheduler around the dispatch service.
func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		service:  service,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   slog.Default(),
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("reminder scheduler started", "interval", s.interval)
}

// Stop gracefully stops the scheduler and waits for the running cycle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("reminder scheduler stopped")
}

// SetLogger replaces the scheduler's logger.
func (s *Scheduler) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// IsRunning reports whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.processCycle(ctx)

	// Wait out the partial slot so subsequent ticks land on the
	// wall-clock grid and "now" reminders fire at the block minute
	// instead of a process-start offset.
	align := time.NewTimer(gridDelay(time.Now(), s.interval))
	defer align.Stop()
	select {
	case <-ctx.Done():
		return
	case <-s.stopCh:
		return
	case <-align.C:
	}
	s.processCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.processCycle(ctx)
		}
	}
}

func (s *Scheduler) processCycle(ctx context.Context) {
	dispatched, err := s.service.ProcessDueReminders(ctx)
	if err != nil {
		s.logger.Error("reminder dispatch cycle failed", "error", err)
		return
	}
	if dispatched > 0 {
		s.logger.Info("reminder dispatch cycle finished", "dispatched", dispatched)
	}
}

// gridDelay returns how long to wait from now until the next interval
// boundary on the wall clock.
func gridDelay(now time.Time, interval time.Duration) time.Duration {
	return now.Truncate(interval).Add(interval).Sub(now)
}

// RunOnce runs a single dispatch cycle outside the loop.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	return s.service.ProcessDueReminders(ctx)
}
