package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/config"
	"github.com/wilsondesouza/AlertSystem/internal/localtime"
	"github.com/wilsondesouza/AlertSystem/internal/metrics"
	"github.com/wilsondesouza/AlertSystem/internal/models"

	"go.uber.org/zap"
)

// RuleSource provides the rules evaluated on each tick
type RuleSource interface {
	ListActive(ctx context.Context) ([]models.AlertRule, error)
}

// ReadingSource provides readings within a trailing window
type ReadingSource interface {
	ListRecent(ctx context.Context, window time.Duration) ([]models.Reading, error)
}

// HistoryStore is the notification log and cooldown ledger
type HistoryStore interface {
	LastSentAt(ctx context.Context, ruleID int64) (time.Time, bool, error)
	Append(ctx context.Context, entry *models.AlertHistoryEntry) (int64, error)
}

// Notifier delivers one notification and reports whether it succeeded
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) bool
}

// CooldownCache is an optional read-through cache in front of HistoryStore.LastSentAt
type CooldownCache interface {
	LastSentAt(ctx context.Context, ruleID int64) (time.Time, bool, error)
	Remember(ctx context.Context, ruleID int64, sentAt time.Time, ttl time.Duration) error
}

// Publisher receives every recorded history entry
type Publisher interface {
	Publish(ctx context.Context, rule models.AlertRule, entry models.AlertHistoryEntry) error
}

// Outcome of evaluating one rule in one tick
type Outcome string

const (
	OutcomeFired    Outcome = "fired"
	OutcomeNoMatch  Outcome = "no_match"
	OutcomeCooldown Outcome = "cooldown"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// TickResult summarizes one tick
type TickResult struct {
	Rules    int
	Readings int
	Outcomes map[Outcome]int
}

// Count returns how many rules ended with o
func (r TickResult) Count(o Outcome) int {
	return r.Outcomes[o]
}

// Evaluator runs one tick at a time: load rules and readings, then gate,
// scan and dispatch each rule independently.
type Evaluator struct {
	rules       RuleSource
	readings    ReadingSource
	history     HistoryStore
	notifier    Notifier
	cache       CooldownCache
	publisher   Publisher
	window      time.Duration
	sendTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewEvaluator creates an evaluator from the monitor settings
func NewEvaluator(
	cfg config.MonitorConfig,
	rules RuleSource,
	readings ReadingSource,
	history HistoryStore,
	notifier Notifier,
	logger *zap.Logger,
) *Evaluator {
	return &Evaluator{
		rules:       rules,
		readings:    readings,
		history:     history,
		notifier:    notifier,
		window:      cfg.Window(),
		sendTimeout: cfg.Timeout(),
		logger:      logger,
		now:         localtime.Now,
	}
}

// SetCooldownCache installs the optional cooldown cache
func (e *Evaluator) SetCooldownCache(cache CooldownCache) {
	e.cache = cache
}

// SetPublisher installs the optional alert event publisher
func (e *Evaluator) SetPublisher(publisher Publisher) {
	e.publisher = publisher
}

// EvaluateTick runs one full pass. A returned error means the tick was
// abandoned while loading; per-rule failures are counted, logged and never returned.
func (e *Evaluator) EvaluateTick(ctx context.Context) (TickResult, error) {
	result := TickResult{Outcomes: make(map[Outcome]int)}

	rules, err := e.rules.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load active rules: %w", err)
	}
	result.Rules = len(rules)
	if len(rules) == 0 {
		e.logger.Debug("No active rules")
		return result, nil
	}

	readings, err := e.readings.ListRecent(ctx, e.window)
	if err != nil {
		return result, fmt.Errorf("failed to load recent readings: %w", err)
	}
	result.Readings = len(readings)
	if len(readings) == 0 {
		e.logger.Debug("No recent readings",
			zap.Int("rule_count", len(rules)),
		)
		return result, nil
	}

	e.logger.Debug("Checking rules against readings",
		zap.Int("rule_count", len(rules)),
		zap.Int("reading_count", len(readings)),
	)

	for _, rule := range rules {
		outcome, err := e.evaluateRule(ctx, rule, readings)
		if err != nil {
			e.logger.Error("Failed to evaluate rule",
				zap.Int64("rule_id", rule.ID),
				zap.String("metric", rule.Metric),
				zap.Error(err),
			)
			outcome = OutcomeFailed
		}
		result.Outcomes[outcome]++
		metrics.RuleEvaluationsTotal.WithLabelValues(string(outcome)).Inc()
	}

	return result, nil
}

func (e *Evaluator) evaluateRule(ctx context.Context, rule models.AlertRule, readings []models.Reading) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeFailed
			err = fmt.Errorf("panic evaluating rule %d: %v", rule.ID, r)
		}
	}()

	metric, ok := models.ParseMetric(rule.Metric)
	if !ok {
		e.logger.Warn("Skipping rule with unknown metric",
			zap.Int64("rule_id", rule.ID),
			zap.String("metric", rule.Metric),
		)
		return OutcomeSkipped, nil
	}
	if !rule.Condition.Valid() || (rule.Condition.NeedsRange() && rule.ThresholdMax == nil) {
		e.logger.Warn("Skipping rule that can never match",
			zap.Int64("rule_id", rule.ID),
			zap.String("condition", string(rule.Condition)),
		)
		return OutcomeSkipped, nil
	}

	open, err := e.cooldownOpen(ctx, rule)
	if err != nil {
		return OutcomeFailed, err
	}
	if !open {
		e.logger.Debug("Rule in cooldown",
			zap.Int64("rule_id", rule.ID),
		)
		return OutcomeCooldown, nil
	}

	for _, reading := range readings {
		value, ok := reading.Value(metric)
		if !ok {
			continue
		}
		if !Matches(value, rule.Condition, rule.ThresholdValue, rule.ThresholdMax) {
			continue
		}
		if err := e.dispatch(ctx, rule, value, reading); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeFired, nil
	}

	return OutcomeNoMatch, nil
}

// cooldownOpen reports whether the rule may notify now. The gate is closed
// while now < last sent_at + cooldown.
func (e *Evaluator) cooldownOpen(ctx context.Context, rule models.AlertRule) (bool, error) {
	last, ok, err := e.lastSentAt(ctx, rule.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if !ok {
		return true, nil
	}
	return !e.now().Before(last.Add(rule.Cooldown())), nil
}

func (e *Evaluator) lastSentAt(ctx context.Context, ruleID int64) (time.Time, bool, error) {
	if e.cache != nil {
		last, ok, err := e.cache.LastSentAt(ctx, ruleID)
		if err != nil {
			e.logger.Warn("Cooldown cache read failed, falling back to history",
				zap.Int64("rule_id", ruleID),
				zap.Error(err),
			)
		} else if ok {
			return last, true, nil
		}
	}
	return e.history.LastSentAt(ctx, ruleID)
}

// dispatch sends the notification and always records the attempt
func (e *Evaluator) dispatch(ctx context.Context, rule models.AlertRule, value float64, reading models.Reading) error {
	subject, body := BuildNotification(rule, value, reading)

	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	delivered := e.notifier.Send(sendCtx, rule.RecipientEmail, subject, body)
	cancel()

	sentAt := e.now()
	entry := &models.AlertHistoryEntry{
		RuleID:      rule.ID,
		SensorValue: value,
		Message:     body,
		SentAt:      localtime.Format(sentAt),
		EmailStatus: models.StatusFor(delivered),
	}
	if _, err := e.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to record alert history: %w", err)
	}
	metrics.NotificationsTotal.WithLabelValues(string(entry.EmailStatus)).Inc()

	e.logger.Info("Alert triggered",
		zap.Int64("rule_id", rule.ID),
		zap.Int64("history_id", entry.ID),
		zap.String("metric", rule.Metric),
		zap.Float64("sensor_value", value),
		zap.String("reading_timestamp", reading.Timestamp),
		zap.String("email_status", string(entry.EmailStatus)),
	)

	if e.cache != nil {
		if err := e.cache.Remember(ctx, rule.ID, sentAt, rule.Cooldown()); err != nil {
			e.logger.Warn("Failed to update cooldown cache",
				zap.Int64("rule_id", rule.ID),
				zap.Error(err),
			)
		}
	}

	if e.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
		err := e.publisher.Publish(pubCtx, rule, *entry)
		cancel()
		if err != nil {
			e.logger.Warn("Failed to publish alert event",
				zap.Int64("rule_id", rule.ID),
				zap.Int64("history_id", entry.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}
