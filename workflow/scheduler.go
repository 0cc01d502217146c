package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs a cycle and drains the posting queue on a fixed interval.
type Scheduler struct {
	orchestrator *Orchestrator
	publisher    *Publisher
	interval     time.Duration
	drainLimit   int
	logger       *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewScheduler builds a scheduler. A nil publisher drains without delivering.
func NewScheduler(o *Orchestrator, p *Publisher, interval time.Duration, drainLimit int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: o,
		publisher:    p,
		interval:     interval,
		drainLimit:   drainLimit,
		logger:       logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}
	if s.interval <= 0 {
		return errors.New("scheduler interval must be > 0")
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true
	go s.loop(ctx, s.done)
	return nil
}

// Stop cancels the loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.started = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	rep := s.orchestrator.RunCycle(ctx)
	records := s.orchestrator.DrainPostingQueue(ctx, s.drainLimit)
	if s.publisher != nil && len(records) > 0 {
		records = s.publisher.Publish(ctx, records)
	}
	s.logger.Info("scheduled cycle complete",
		zap.Int("fetched", rep.Fetched),
		zap.Int("drained", len(records)),
	)
}
