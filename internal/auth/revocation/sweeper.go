package revocation

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically purges expired revocation entries so a long-lived
// single-instance deployment doesn't accumulate dead blacklist state.
// Purging has no observable behavior difference; it only bounds memory.
type Sweeper struct {
	Store    Purger
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeper creates a sweeper with the given interval.
// If interval is 0 or negative, defaults to 15 minutes.
func NewSweeper(store Purger, logger *slog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &Sweeper{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut it
// down gracefully.
func (s *Sweeper) Start() {
	go s.run()
	s.Logger.Info("revocation sweeper started", "interval", s.Interval)
}

// Stop shuts down the background worker, blocking until any in-progress
// sweep has finished.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("revocation sweeper stopped")
}

func (s *Sweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	removed, err := s.Store.PurgeExpired(context.Background())
	if err != nil {
		s.Logger.Error("revocation sweep failed", "error", err)
		return
	}
	s.Logger.Debug("revocation sweep completed", "removed", removed)
}
