package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func validRule() AlertRule {
	return AlertRule{
		SensorType:      "orangepi",
		Metric:          "cpu",
		Condition:       ConditionGreaterThan,
		ThresholdValue:  90,
		RecipientEmail:  "ops@example.com",
		CooldownMinutes: 30,
		IsActive:        true,
	}
}

func TestParseMetric(t *testing.T) {
	cases := map[string]Metric{
		"cpu":         MetricCPU,
		"CPU":         MetricCPU,
		"ram":         MetricRAM,
		"Temperatura": MetricTemperature,
		"temperature": MetricTemperature,
		"POTENCIA":    MetricPower,
		" power ":     MetricPower,
	}
	for name, want := range cases {
		got, ok := ParseMetric(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseMetric("humidity")
	assert.False(t, ok)
	_, ok = ParseMetric("")
	assert.False(t, ok)
}

func TestReadingValue(t *testing.T) {
	r := Reading{CPU: floatPtr(95), Power: floatPtr(0)}

	v, ok := r.Value(MetricCPU)
	assert.True(t, ok)
	assert.Equal(t, 95.0, v)

	v, ok = r.Value(MetricPower)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = r.Value(MetricTemperature)
	assert.False(t, ok)
	_, ok = r.Value(Metric("unknown"))
	assert.False(t, ok)
}

func TestAlertRuleValidate_OK(t *testing.T) {
	rule := validRule()
	require.NoError(t, rule.Validate())

	rule.Condition = ConditionBetween
	rule.ThresholdValue = 20
	rule.ThresholdMax = floatPtr(30)
	require.NoError(t, rule.Validate())

	rule.ThresholdMax = floatPtr(20)
	require.NoError(t, rule.Validate(), "equal bounds are a valid degenerate range")
}

func TestAlertRuleValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *AlertRule)
		msg    string
	}{
		{"missing sensor type", func(r *AlertRule) { r.SensorType = " " }, "sensor_type"},
		{"unknown metric", func(r *AlertRule) { r.Metric = "humidity" }, "unknown metric"},
		{"unknown condition", func(r *AlertRule) { r.Condition = "equals" }, "unknown condition"},
		{"between without max", func(r *AlertRule) { r.Condition = ConditionBetween }, "threshold_max is required"},
		{"outside inverted", func(r *AlertRule) {
			r.Condition = ConditionOutside
			r.ThresholdMax = floatPtr(10)
		}, "threshold_max must be"},
		{"bad email", func(r *AlertRule) { r.RecipientEmail = "not-an-email" }, "recipient_email"},
		{"negative cooldown", func(r *AlertRule) { r.CooldownMinutes = -1 }, "cooldown_minutes"},
		{"cooldown too large", func(r *AlertRule) { r.CooldownMinutes = 200000000 }, "must not exceed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := validRule()
			tc.mutate(&rule)
			err := rule.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRule))
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestAlertRuleCooldown(t *testing.T) {
	rule := validRule()
	assert.Equal(t, 30*time.Minute, rule.Cooldown())

	rule.CooldownMinutes = 0
	assert.Equal(t, time.Duration(0), rule.Cooldown())

	rule.CooldownMinutes = MaxCooldownMinutes
	assert.Greater(t, rule.Cooldown(), time.Duration(0))
	require.NoError(t, rule.Validate())

	// legacy rows written before validation saturate instead of wrapping
	rule.CooldownMinutes = 200000000
	assert.Equal(t, time.Duration(math.MaxInt64), rule.Cooldown())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, EmailStatusSent, StatusFor(true))
	assert.Equal(t, EmailStatusFailed, StatusFor(false))
}
