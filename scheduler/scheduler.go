// Package scheduler fires the scheduled trigger on a cron schedule
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/logger"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

// DefaultSpec runs the scheduled trigger hourly
const DefaultSpec = "@every 1h"

// Processor runs events through the rule engine. Implemented by *rules.Engine.
type Processor interface {
	ProcessEvent(ctx context.Context, trigger rules.Trigger, payload rules.Payload) *rules.ProcessResult
}

// PayloadSource supplies the payloads of one tick, one event per payload
type PayloadSource interface {
	Payloads(ctx context.Context, now time.Time) ([]rules.Payload, error)
}

// TickReport summarizes one tick
type TickReport struct {
	Events        int `json:"events"`
	RulesExecuted int `json:"rules_executed"`
	Failures      int `json:"failures"`
}

// Scheduler fires rules.TriggerScheduled events on a cron schedule
type Scheduler struct {
	processor Processor
	source    PayloadSource
	spec      string
	timeout   time.Duration
	now       func() time.Time

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock overrides the time source passed to the payload source
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithTickTimeout bounds each tick. Zero means no bound.
func WithTickTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New creates a scheduler. An empty spec uses DefaultSpec. A nil source
// fires a single event per tick carrying tick_at.
func New(processor Processor, spec string, source PayloadSource, opts ...Option) (*Scheduler, error) {
	if processor == nil {
		return nil, errors.New("scheduler: processor is required")
	}
	if spec == "" {
		spec = DefaultSpec
	}

	s := &Scheduler{
		processor: processor,
		source:    source,
		spec:      spec,
		now:       time.Now,
		cron:      cron.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Spec returns the cron expression the scheduler runs on
func (s *Scheduler) Spec() string {
	return s.spec
}

// Start begins firing ticks in the background. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	logger.Info("scheduler started", "schedule", s.spec)
}

// Stop stops firing ticks and waits for a running tick until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.Tick(ctx)
	if err != nil {
		logger.Error("scheduled tick failed", "error", err)
		return
	}
	logger.Debug("scheduled tick completed",
		"events", report.Events,
		"rules_executed", report.RulesExecuted,
		"failures", report.Failures,
	)
}

// Tick fires the scheduled trigger once for every payload the source yields
func (s *Scheduler) Tick(ctx context.Context) (TickReport, error) {
	now := s.now()

	payloads := []rules.Payload{{"tick_at": now.UTC().Format(time.RFC3339)}}
	if s.source != nil {
		var err error
		payloads, err = s.source.Payloads(ctx, now)
		if err != nil {
			return TickReport{}, fmt.Errorf("load scheduled payloads: %w", err)
		}
	}

	var report TickReport
	for _, payload := range payloads {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := s.processor.ProcessEvent(ctx, rules.TriggerScheduled, payload)
		report.Events++
		report.RulesExecuted += result.RulesExecuted
		if !result.Success {
			report.Failures++
			logger.Warn("scheduled event failed", "order_id", payload["order_id"], "error", result.Error)
		}
	}
	return report, nil
}
