package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/wilsondesouza/AlertSystem/internal/metrics"
	"github.com/wilsondesouza/AlertSystem/internal/models"

	"go.uber.org/zap"
)

// AlertEvent payload published for every recorded notification attempt
type AlertEvent struct {
	HistoryID      int64              `json:"history_id"`
	RuleID         int64              `json:"rule_id"`
	SensorType     string             `json:"sensor_type"`
	Metric         string             `json:"metric"`
	Condition      models.Condition   `json:"condition"`
	ThresholdValue float64            `json:"threshold_value"`
	ThresholdMax   *float64           `json:"threshold_max,omitempty"`
	SensorValue    float64            `json:"sensor_value"`
	RecipientEmail string             `json:"recipient_email"`
	EmailStatus    models.EmailStatus `json:"email_status"`
	SentAt         string             `json:"sent_at"`
}

// NewAlertEvent builds the event from a rule and its history entry
func NewAlertEvent(rule models.AlertRule, entry models.AlertHistoryEntry) AlertEvent {
	return AlertEvent{
		HistoryID:      entry.ID,
		RuleID:         rule.ID,
		SensorType:     rule.SensorType,
		Metric:         rule.Metric,
		Condition:      rule.Condition,
		ThresholdValue: rule.ThresholdValue,
		ThresholdMax:   rule.ThresholdMax,
		SensorValue:    entry.SensorValue,
		RecipientEmail: rule.RecipientEmail,
		EmailStatus:    entry.EmailStatus,
		SentAt:         entry.SentAt,
	}
}

// Sink one publishing destination
type Sink interface {
	Name() string
	PublishEvent(ctx context.Context, event AlertEvent) error
}

// Multi fans an event out to every sink. One failing sink does not stop the others.
type Multi struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewMulti creates a fan-out publisher
func NewMulti(logger *zap.Logger, sinks ...Sink) *Multi {
	return &Multi{
		sinks:  sinks,
		logger: logger,
	}
}

// Len returns the number of sinks
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Publish sends the event to all sinks and joins their errors
func (m *Multi) Publish(ctx context.Context, rule models.AlertRule, entry models.AlertHistoryEntry) error {
	event := NewAlertEvent(rule, entry)

	var errs []error
	for _, sink := range m.sinks {
		if err := sink.PublishEvent(ctx, event); err != nil {
			metrics.PublishErrorsTotal.WithLabelValues(sink.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		m.logger.Debug("Alert event published",
			zap.String("sink", sink.Name()),
			zap.Int64("history_id", event.HistoryID),
		)
	}
	return errors.Join(errs...)
}
