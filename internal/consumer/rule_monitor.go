package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/evaluator"
	"github.com/wilsondesouza/AlertSystem/internal/metrics"

	"go.uber.org/zap"
)

// TickEvaluator runs one evaluation pass
type TickEvaluator interface {
	EvaluateTick(ctx context.Context) (evaluator.TickResult, error)
}

// TickStatus snapshot of the most recent tick, served by /healthz
type TickStatus struct {
	Ticks      uint64    `json:"ticks"`
	LastTickAt time.Time `json:"last_tick_at"`
	LastError  string    `json:"last_error,omitempty"`
	Rules      int       `json:"rules"`
	Readings   int       `json:"readings"`
	Fired      int       `json:"fired"`
}

// RuleMonitor polls the evaluator on a fixed interval. Ticks never overlap:
// the interval is measured from the end of one tick to the start of the next.
type RuleMonitor struct {
	interval  time.Duration
	evaluator TickEvaluator
	logger    *zap.Logger

	mu     sync.RWMutex
	status TickStatus
}

// NewRuleMonitor creates the polling loop
func NewRuleMonitor(interval time.Duration, eval TickEvaluator, logger *zap.Logger) *RuleMonitor {
	return &RuleMonitor{
		interval:  interval,
		evaluator: eval,
		logger:    logger,
	}
}

// Start runs ticks until ctx is cancelled. The first tick runs immediately.
// Cancellation never interrupts a tick in flight; the loop returns once it finishes.
func (m *RuleMonitor) Start(ctx context.Context) error {
	m.logger.Info("Rule monitor started",
		zap.Duration("interval", m.interval),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Rule monitor stopped")
			return nil
		case <-timer.C:
			m.runTick(context.WithoutCancel(ctx))
			timer.Reset(m.interval)
		}
	}
}

// Status returns the last tick snapshot
func (m *RuleMonitor) Status() TickStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *RuleMonitor) runTick(ctx context.Context) {
	start := time.Now()
	result, err := m.evaluator.EvaluateTick(ctx)
	elapsed := time.Since(start)

	metrics.TickDuration.Observe(elapsed.Seconds())
	metrics.LastTickTimestamp.SetToCurrentTime()

	m.mu.Lock()
	m.status.Ticks++
	m.status.LastTickAt = time.Now()
	m.status.Rules = result.Rules
	m.status.Readings = result.Readings
	m.status.Fired = result.Count(evaluator.OutcomeFired)
	m.status.LastError = ""
	if err != nil {
		m.status.LastError = err.Error()
	}
	m.mu.Unlock()

	if err != nil {
		metrics.TicksTotal.WithLabelValues("error").Inc()
		m.logger.Error("Tick abandoned",
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}

	metrics.TicksTotal.WithLabelValues("ok").Inc()
	m.logger.Debug("Tick finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("rules", result.Rules),
		zap.Int("readings", result.Readings),
		zap.Int("fired", result.Count(evaluator.OutcomeFired)),
		zap.Int("cooldown", result.Count(evaluator.OutcomeCooldown)),
		zap.Int("failed", result.Count(evaluator.OutcomeFailed)),
	)
}
