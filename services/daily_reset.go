// services/daily_reset.go - Background day rollover and housekeeping
package services

import (
	"context"
	"sync"
	"time"

	"f1cards/achievements"
	"f1cards/utils"

	"go.uber.org/zap"
)

// DailyResetService watches for the reference-zone day to change. Each
// player's daily achievements are reset lazily on their next request, so
// the worker only logs the rollover. On every tick it also expires old
// notifications and settles marketplace payouts left pending.
type DailyResetService struct {
	tracker  *achievements.Tracker
	notifier *Notifier
	market   *MarketService
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	lastDay string
	cancel  context.CancelFunc
	done    chan struct{}
}

var dailyResetService *DailyResetService

// InitDailyResetService initializes the singleton reset service.
func InitDailyResetService(tracker *achievements.Tracker, notifier *Notifier, market *MarketService, log *zap.Logger) {
	dailyResetService = NewDailyResetService(tracker, notifier, market, time.Minute, log)
}

// GetDailyResetService returns the initialized reset service.
func GetDailyResetService() *DailyResetService {
	return dailyResetService
}

func NewDailyResetService(tracker *achievements.Tracker, notifier *Notifier, market *MarketService, interval time.Duration, log *zap.Logger) *DailyResetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DailyResetService{
		tracker:  tracker,
		notifier: notifier,
		market:   market,
		interval: interval,
		log:      log,
		lastDay:  tracker.Today(),
	}
}

// Start runs the worker until Stop is called. Calling Start twice is a
// no-op.
func (s *DailyResetService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}(s.done)

	s.log.Info("daily_reset_service_started",
		zap.String("zone", s.tracker.Location().String()),
		zap.Time("next_reset", s.tracker.NextReset()))
}

// Stop halts the worker and waits for the current tick to finish.
func (s *DailyResetService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Tick runs one round of work. It reports whether the day rolled over.
func (s *DailyResetService) Tick(ctx context.Context) bool {
	rolled := false
	today := s.tracker.Today()
	s.mu.Lock()
	if today != s.lastDay {
		s.log.Info("daily_rollover", zap.String("from", s.lastDay), zap.String("to", today))
		s.lastDay = today
		rolled = true
	}
	s.mu.Unlock()
	if rolled {
		utils.DailyRollovers.Inc()
	}

	if s.notifier != nil {
		if n := s.notifier.Prune(); n > 0 {
			s.log.Debug("notifications_pruned", zap.Int("count", n))
		}
	}
	if s.market != nil {
		n, err := s.market.SettlePending(ctx)
		if err != nil {
			s.log.Error("settle_pending_failed", zap.Error(err))
		} else if n > 0 {
			s.log.Info("listings_settled", zap.Int("count", n))
		}
	}
	return rolled
}
