// Package sweeper periodically refreshes the stored state hint: pending
// kendala whose deadline has passed are flagged overdue in the store. The
// hint keeps SQL-level filters roughly right between requests; anything
// user-facing still re-derives from timestamps.
package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kendala-hub/config"
	"kendala-hub/core/store"
	"kendala-hub/core/utils"

	"github.com/robfig/cron/v3"
)

type Sweeper struct {
	cfg    config.SweeperConfig
	window time.Duration
	store  store.KendalaStore
	logger *utils.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func New(cfg config.SweeperConfig, window time.Duration, ks store.KendalaStore, logger *utils.Logger) *Sweeper {
	if window <= 0 {
		window = 2 * time.Hour
	}
	return &Sweeper{cfg: cfg, window: window, store: ks, logger: logger}
}

func (s *Sweeper) StartWithContext(ctx context.Context) {
	if s == nil || s.store == nil || !s.cfg.Enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	interval := s.cfg.IntervalMinutes
	if interval <= 0 {
		interval = 5
	}
	c := cron.New()
	spec := fmt.Sprintf("@every %dm", interval)
	_, err := c.AddFunc(spec, func() {
		if err := s.RunOnce(ctx, utils.NowUTC()); err != nil && s.logger != nil {
			s.logger.Errorf("sweep failed: %v", err)
		}
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Errorf("sweeper schedule %q: %v", spec, err)
		}
		return
	}
	c.Start()
	s.cron = c
	s.running = true
	if s.logger != nil {
		s.logger.Printf("SWEEPER started interval=%dm window=%s", interval, s.window)
	}
}

func (s *Sweeper) StopWithContext(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()
	if !wasRunning || c == nil {
		return nil
	}
	stopped := c.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep at the captured instant now.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-s.window)
	n, err := s.store.MarkOverdue(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 && s.logger != nil {
		s.logger.Printf("SWEEP flagged %d kendala overdue", n)
	}
	return nil
}
