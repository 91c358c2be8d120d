// Package processor drains the event queue in the background: each event is
// persisted to the event store and then evaluated against the active rules.
// Events are serialized per user; distinct users progress in parallel.
package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/concurrency"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/evaluator"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/metrics"
	"github.com/osmith/BadgeForge_Go/internal/queue"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

// Processor lifecycle states.
const (
	StateIdle     = "idle"
	StateRunning  = "running"
	StateStopping = "stopping"
	StateStopped  = "stopped"
)

// Config tunes the processor.
type Config struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// Invalidator receives cache eviction hints after an event mutated state.
// The leaderboard projector implements it.
type Invalidator interface {
	InvalidateCategory(category string)
	InvalidateKind(kind domain.LeaderboardKind)
}

// Processor runs the dequeue-store-evaluate loop on a pool of workers.
type Processor struct {
	queue      *queue.Queue
	events     repository.Event
	evaluator  *evaluator.Evaluator
	locks      *concurrency.LockManager
	deadLetter *DeadLetterWriter
	boards     Invalidator
	cfg        Config

	mu     sync.Mutex
	state  string
	cancel context.CancelFunc
	wg     sync.WaitGroup

	processed atomic.Int64
	errored   atomic.Int64
}

// New creates an idle processor. deadLetter may be nil, in which case events
// that exhaust the retry budget are dropped with a log entry.
func New(q *queue.Queue, events repository.Event, ev *evaluator.Evaluator, locks *concurrency.LockManager, deadLetter *DeadLetterWriter, cfg Config) *Processor {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	return &Processor{
		queue:      q,
		events:     events,
		evaluator:  ev,
		locks:      locks,
		deadLetter: deadLetter,
		cfg:        cfg,
		state:      StateIdle,
	}
}

// SetInvalidator wires leaderboard cache eviction. Optional.
func (p *Processor) SetInvalidator(inv Invalidator) {
	p.boards = inv
}

// Start transitions Idle to Running and spawns the worker pool.
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return fmt.Errorf("%w: processor is %s, expected %s", domain.ErrInvalidInput, p.state, StateIdle)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state = StateRunning
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	logger.Info("queue processor started", "workers", p.cfg.Workers)
	return nil
}

// Stop transitions Running to Stopping, waits for in-flight events to finish
// and lands in Stopped. Safe to call once.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return
	}
	p.state = StateStopping
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()

	p.mu.Lock()
	p.state = StateStopped
	p.mu.Unlock()
	logger.Info("queue processor stopped",
		"processed", p.processed.Load(), "errors", p.errored.Load())
}

// State returns the current lifecycle state.
func (p *Processor) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ProcessedCount returns the number of successfully processed events.
func (p *Processor) ProcessedCount() int64 { return p.processed.Load() }

// ErrorCount returns the number of events that failed all retries.
func (p *Processor) ErrorCount() int64 { return p.errored.Load() }

// QueueDepth returns the number of events waiting in the queue.
func (p *Processor) QueueDepth() int { return p.queue.Size() }

func (p *Processor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		event, ok := p.queue.Dequeue(ctx)
		if !ok {
			return
		}
		metrics.EventQueueDepth.Set(float64(p.queue.Size()))
		// The event is processed to completion even if Stop was called
		// mid-flight.
		p.process(context.WithoutCancel(ctx), event)
	}
}

// process stores the event and evaluates it under the user's lock, retrying
// with exponential backoff on repository failures. After the budget the
// event goes to the dead-letter file and processing continues.
func (p *Processor) process(ctx context.Context, event domain.Event) {
	ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
	log := logger.FromContext(ctx)

	var lastErr error
	p.locks.WithLock(event.UserID, func() {
		for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
			if attempt > 0 {
				time.Sleep(p.cfg.RetryDelay * time.Duration(1<<(attempt-1)))
			}
			lastErr = p.storeAndEvaluate(ctx, event)
			if lastErr == nil {
				return
			}
			log.Warn("event processing attempt failed",
				"eventId", event.ID, "attempt", attempt+1, "error", lastErr)
		}
	})

	if lastErr != nil {
		p.errored.Add(1)
		metrics.EventErrors.WithLabelValues(event.Type).Inc()
		if p.deadLetter != nil {
			metrics.EventsDeadLettered.Inc()
			if err := p.deadLetter.Write(event, p.cfg.MaxRetries+1, lastErr); err != nil {
				log.Error("failed to write dead-letter entry", "eventId", event.ID, "error", err)
			}
		} else {
			log.Error("event dropped after retries", "eventId", event.ID, "error", lastErr)
		}
		return
	}

	p.processed.Add(1)
	metrics.EventsProcessed.WithLabelValues(event.Type).Inc()
}

func (p *Processor) storeAndEvaluate(ctx context.Context, event domain.Event) error {
	// Store before evaluate: conditions must see the trigger in history.
	if err := p.events.Store(ctx, event); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEventStorage, err)
	}

	result, err := p.evaluator.Execute(ctx, event)
	if err != nil {
		return err
	}

	if len(result.MatchedRuleIDs) > 0 {
		metrics.RulesFired.WithLabelValues(event.Type).Add(float64(len(result.MatchedRuleIDs)))
	}
	for _, rw := range result.ExecutedRewards {
		if rw.Success {
			metrics.RewardsIssued.WithLabelValues(rw.Type).Inc()
		} else {
			metrics.RewardFailures.WithLabelValues(rw.Type).Inc()
		}
	}
	for _, sp := range result.ExecutedSpendings {
		if !sp.Success {
			metrics.SpendingFailures.Inc()
		}
	}
	p.invalidateBoards(result)
	return nil
}

// invalidateBoards evicts the leaderboard tuples the evaluation touched.
func (p *Processor) invalidateBoards(result domain.RuleEvaluationResult) {
	if p.boards == nil {
		return
	}
	categories := make(map[string]struct{})
	kinds := make(map[domain.LeaderboardKind]struct{})
	for _, rw := range result.ExecutedRewards {
		if !rw.Success {
			continue
		}
		switch rw.Type {
		case domain.RewardPoints, domain.RewardPenalty:
			if rw.Target != "" {
				categories[rw.Target] = struct{}{}
			}
		case domain.RewardBadge:
			kinds[domain.LeaderboardBadges] = struct{}{}
		case domain.RewardTrophy:
			kinds[domain.LeaderboardTrophies] = struct{}{}
		}
	}
	for _, sp := range result.ExecutedSpendings {
		if sp.Success {
			categories[sp.Category] = struct{}{}
		}
	}
	for category := range categories {
		p.boards.InvalidateCategory(category)
	}
	for kind := range kinds {
		p.boards.InvalidateKind(kind)
	}
}
