package evaluator

import (
	"fmt"
	"strconv"

	"github.com/wilsondesouza/AlertSystem/internal/models"
)

// Matches reports whether value violates the condition.
// Range conditions without an upper bound and unknown conditions never match,
// and NaN never satisfies a comparison.
func Matches(value float64, condition models.Condition, threshold float64, thresholdMax *float64) bool {
	switch condition {
	case models.ConditionGreaterThan:
		return value > threshold
	case models.ConditionLessThan:
		return value < threshold
	case models.ConditionBetween:
		if thresholdMax == nil {
			return false
		}
		return threshold <= value && value <= *thresholdMax
	case models.ConditionOutside:
		if thresholdMax == nil {
			return false
		}
		return value < threshold || value > *thresholdMax
	}
	return false
}

// DescribeCondition renders the condition for notification bodies
func DescribeCondition(condition models.Condition, threshold float64, thresholdMax *float64) string {
	switch condition {
	case models.ConditionGreaterThan:
		return "> " + formatValue(threshold)
	case models.ConditionLessThan:
		return "< " + formatValue(threshold)
	case models.ConditionBetween:
		return fmt.Sprintf("between %s and %s", formatValue(threshold), formatBound(thresholdMax))
	case models.ConditionOutside:
		return fmt.Sprintf("outside %s - %s", formatValue(threshold), formatBound(thresholdMax))
	}
	return ""
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBound(v *float64) string {
	if v == nil {
		return "?"
	}
	return formatValue(*v)
}
