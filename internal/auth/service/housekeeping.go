package service

import (
	"context"
	"log/slog"
	"time"
)

// Pruner drops expired entries from an in-process store.
type Pruner interface {
	Prune(ctx context.Context) int
}

// HousekeepingService periodically prunes expired revocations and replay
// steps from the in-memory session store. Redis expires keys by itself, so it
// is only started for the memory backend.
type HousekeepingService struct {
	Pruner   Pruner
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 10 minutes.
func NewHousekeepingService(p Pruner, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Pruner:   p,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	n := s.Pruner.Prune(context.Background())
	s.Logger.Debug("housekeeping cleanup completed", "pruned", n)
}
