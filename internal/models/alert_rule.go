package models

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"
)

// ErrInvalidRule is wrapped by every rule validation error
var ErrInvalidRule = errors.New("invalid alert rule")

// DefaultCooldownMinutes applies when a rule is created without a cooldown
const DefaultCooldownMinutes = 30

// MaxCooldownMinutes is the largest cooldown representable as a time.Duration
const MaxCooldownMinutes = int(math.MaxInt64 / int64(time.Minute))

// Condition comparison applied to a reading value
type Condition string

const (
	ConditionGreaterThan Condition = "greater_than"
	ConditionLessThan    Condition = "less_than"
	ConditionBetween     Condition = "between"
	ConditionOutside     Condition = "outside"
)

// Valid reports whether c is one of the known conditions
func (c Condition) Valid() bool {
	switch c {
	case ConditionGreaterThan, ConditionLessThan, ConditionBetween, ConditionOutside:
		return true
	}
	return false
}

// NeedsRange reports whether c uses both threshold bounds
func (c Condition) NeedsRange() bool {
	return c == ConditionBetween || c == ConditionOutside
}

// AlertRule alert_rules row
type AlertRule struct {
	ID              int64     `json:"id" db:"id"`
	SensorType      string    `json:"sensor_type" db:"sensor_type"`
	Metric          string    `json:"metric" db:"metric"`
	Condition       Condition `json:"condition" db:"condition"`
	ThresholdValue  float64   `json:"threshold_value" db:"threshold_value"`
	ThresholdMax    *float64  `json:"threshold_max" db:"threshold_max"` // between / outside only
	RecipientEmail  string    `json:"recipient_email" db:"recipient_email"`
	CooldownMinutes int       `json:"cooldown_minutes" db:"cooldown_minutes"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       string    `json:"created_at" db:"created_at"` // UTC-3 text
}

// Validate checks a rule before it is written. Rules already stored are not
// re-validated by the monitor; a range condition without an upper bound stays inert there.
func (r *AlertRule) Validate() error {
	if strings.TrimSpace(r.SensorType) == "" {
		return fmt.Errorf("%w: sensor_type is required", ErrInvalidRule)
	}
	if _, ok := ParseMetric(r.Metric); !ok {
		return fmt.Errorf("%w: unknown metric %q", ErrInvalidRule, r.Metric)
	}
	if !r.Condition.Valid() {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidRule, r.Condition)
	}
	if r.Condition.NeedsRange() {
		if r.ThresholdMax == nil {
			return fmt.Errorf("%w: threshold_max is required for %s", ErrInvalidRule, r.Condition)
		}
		if *r.ThresholdMax < r.ThresholdValue {
			return fmt.Errorf("%w: threshold_max must be >= threshold_value", ErrInvalidRule)
		}
	}
	if _, err := mail.ParseAddress(r.RecipientEmail); err != nil {
		return fmt.Errorf("%w: invalid recipient_email %q", ErrInvalidRule, r.RecipientEmail)
	}
	if r.CooldownMinutes < 0 {
		return fmt.Errorf("%w: cooldown_minutes must not be negative", ErrInvalidRule)
	}
	if r.CooldownMinutes > MaxCooldownMinutes {
		return fmt.Errorf("%w: cooldown_minutes must not exceed %d", ErrInvalidRule, MaxCooldownMinutes)
	}
	return nil
}

// Cooldown returns the cooldown as a duration. Stored values above
// MaxCooldownMinutes saturate instead of wrapping negative.
func (r AlertRule) Cooldown() time.Duration {
	switch {
	case r.CooldownMinutes <= 0:
		return 0
	case r.CooldownMinutes > MaxCooldownMinutes:
		return time.Duration(math.MaxInt64)
	default:
		return time.Duration(r.CooldownMinutes) * time.Minute
	}
}
