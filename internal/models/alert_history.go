package models

// EmailStatus delivery outcome recorded with each history entry
type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// StatusFor maps a notifier outcome to an EmailStatus
func StatusFor(delivered bool) EmailStatus {
	if delivered {
		return EmailStatusSent
	}
	return EmailStatusFailed
}

// AlertHistoryEntry alert_history row. Written once per triggered rule per tick.
type AlertHistoryEntry struct {
	ID          int64       `json:"id" db:"id"`
	RuleID      int64       `json:"rule_id" db:"rule_id"`
	SensorValue float64     `json:"sensor_value" db:"sensor_value"`
	Message     string      `json:"message" db:"message"`
	SentAt      string      `json:"sent_at" db:"sent_at"` // UTC-3 text
	EmailStatus EmailStatus `json:"email_status" db:"email_status"`
}

// AlertHistoryView history entry joined with its rule, as listed by the dashboard
type AlertHistoryView struct {
	AlertHistoryEntry
	SensorType     string    `json:"sensor_type"`
	Metric         string    `json:"metric"`
	Condition      Condition `json:"condition"`
	ThresholdValue float64   `json:"threshold_value"`
	RecipientEmail string    `json:"recipient_email"`
}

// SensorAlertCount alerts grouped by rule sensor type
type SensorAlertCount struct {
	SensorType string `json:"sensor_type"`
	Count      int    `json:"count"`
}

// AlertStatistics dashboard counters
type AlertStatistics struct {
	TotalRules     int                `json:"total_rules"`
	ActiveRules    int                `json:"active_rules"`
	TotalAlerts    int                `json:"total_alerts"`
	AlertsToday    int                `json:"alerts_today"`
	AlertsBySensor []SensorAlertCount `json:"alerts_by_sensor"`
}
