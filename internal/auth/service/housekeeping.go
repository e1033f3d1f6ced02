package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/store"
)

// HousekeepingService periodically purges expired sessions and login codes
// so neither table grows without bound.
type HousekeepingService struct {
	Store    store.Store
	Sessions store.Sessions
	Logger   *slog.Logger
	Interval time.Duration
	Clock    Clock

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. sessions may differ
// from st.Sessions() when sessions live in redis. A non-positive interval
// defaults to 1 hour.
func NewHousekeepingService(st store.Store, sessions store.Sessions, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if sessions == nil {
		sessions = st.Sessions()
	}

	return &HousekeepingService{
		Store:    st,
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs each purge independently; one failing does not skip the rest.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := s.Clock.now()

	sessions, err := s.Sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
	}

	codes, err := s.Store.Users().DeleteExpiredOTPChallenges(ctx, now)
	if err != nil {
		s.Logger.Error("failed to clear expired login codes", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed", "sessions_deleted", sessions, "codes_cleared", codes)
}
