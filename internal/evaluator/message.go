package evaluator

import (
	"fmt"
	"strings"

	"github.com/wilsondesouza/AlertSystem/internal/models"
)

// BuildNotification renders the email subject and body for a violating reading
func BuildNotification(rule models.AlertRule, value float64, reading models.Reading) (subject, body string) {
	subject = fmt.Sprintf("Alert: %s %s threshold exceeded", rule.SensorType, rule.Metric)

	var b strings.Builder
	b.WriteString("Alert Triggered!\n\n")
	fmt.Fprintf(&b, "Sensor Type: %s\n", rule.SensorType)
	fmt.Fprintf(&b, "Metric: %s\n", rule.Metric)
	fmt.Fprintf(&b, "Current Value: %s\n", formatValue(value))
	fmt.Fprintf(&b, "Condition: %s\n", DescribeCondition(rule.Condition, rule.ThresholdValue, rule.ThresholdMax))
	fmt.Fprintf(&b, "Timestamp: %s\n\n", reading.Timestamp)
	fmt.Fprintf(&b, "This alert will not be sent again for %d minutes.\n", rule.CooldownMinutes)

	return subject, b.String()
}
