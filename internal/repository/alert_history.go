package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/localtime"
	"github.com/wilsondesouza/AlertSystem/internal/models"

	"go.uber.org/zap"
)

// DefaultHistoryLimit is used when the caller does not pass a positive limit
const DefaultHistoryLimit = 100

// AlertHistoryRepository alert_history table; doubles as the cooldown ledger
type AlertHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewAlertHistoryRepository creates the history repository
func NewAlertHistoryRepository(db *sql.DB, logger *zap.Logger) *AlertHistoryRepository {
	return &AlertHistoryRepository{
		db:     db,
		logger: logger,
		now:    localtime.Now,
	}
}

// Append records one notification attempt. sent_at is stamped in UTC-3 when empty.
func (r *AlertHistoryRepository) Append(ctx context.Context, entry *models.AlertHistoryEntry) (int64, error) {
	if entry.SentAt == "" {
		entry.SentAt = localtime.Format(r.now())
	}

	query := `
		INSERT INTO alert_history (
			rule_id,
			sensor_value,
			message,
			email_status,
			sent_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		entry.RuleID,
		entry.SensorValue,
		entry.Message,
		string(entry.EmailStatus),
		entry.SentAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert history: %w", err)
	}

	entry.ID = id
	return id, nil
}

// LastSentAt returns the most recent sent_at for a rule; false when the rule
// has never been notified.
func (r *AlertHistoryRepository) LastSentAt(ctx context.Context, ruleID int64) (time.Time, bool, error) {
	query := `
		SELECT sent_at
		FROM alert_history
		WHERE rule_id = $1
		ORDER BY sent_at DESC
		LIMIT 1
	`

	var sentAt sql.NullString
	err := r.db.QueryRowContext(ctx, query, ruleID).Scan(&sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to query last alert time: %w", err)
	}
	if !sentAt.Valid || sentAt.String == "" {
		return time.Time{}, false, nil
	}

	t, err := localtime.Parse(sentAt.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse last alert time: %w", err)
	}
	return t, true, nil
}

// List returns the newest history entries joined with their rule
func (r *AlertHistoryRepository) List(ctx context.Context, limit int) ([]models.AlertHistoryView, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT
			ah.id,
			ah.rule_id,
			ah.sensor_value,
			ah.message,
			ah.sent_at,
			ah.email_status,
			ar.sensor_type,
			ar.metric,
			ar.condition,
			ar.threshold_value,
			ar.recipient_email
		FROM alert_history ah
		JOIN alert_rules ar ON ah.rule_id = ar.id
		ORDER BY ah.sent_at DESC, ah.id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer rows.Close()

	history := make([]models.AlertHistoryView, 0)
	for rows.Next() {
		var (
			view              models.AlertHistoryView
			status, condition string
		)
		err := rows.Scan(
			&view.ID,
			&view.RuleID,
			&view.SensorValue,
			&view.Message,
			&view.SentAt,
			&status,
			&view.SensorType,
			&view.Metric,
			&condition,
			&view.ThresholdValue,
			&view.RecipientEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert history: %w", err)
		}
		view.EmailStatus = models.EmailStatus(status)
		view.Condition = models.Condition(condition)
		history = append(history, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert history: %w", err)
	}
	return history, nil
}

// Statistics returns the dashboard counters; "today" is the current UTC-3 date
func (r *AlertHistoryRepository) Statistics(ctx context.Context) (*models.AlertStatistics, error) {
	stats := &models.AlertStatistics{AlertsBySensor: make([]models.SensorAlertCount, 0)}

	counters := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.TotalRules, `SELECT COUNT(*) FROM alert_rules`, nil},
		{&stats.ActiveRules, `SELECT COUNT(*) FROM alert_rules WHERE is_active = TRUE`, nil},
		{&stats.TotalAlerts, `SELECT COUNT(*) FROM alert_history`, nil},
		{&stats.AlertsToday, `SELECT COUNT(*) FROM alert_history WHERE LEFT(sent_at, 10) = $1`, []any{localtime.Date(r.now())}},
	}
	for _, c := range counters {
		if err := r.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count alert statistics: %w", err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ar.sensor_type, COUNT(ah.id)
		FROM alert_history ah
		JOIN alert_rules ar ON ah.rule_id = ar.id
		GROUP BY ar.sensor_type
		ORDER BY ar.sensor_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts by sensor: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.SensorAlertCount
		if err := rows.Scan(&c.SensorType, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan alerts by sensor: %w", err)
		}
		stats.AlertsBySensor = append(stats.AlertsBySensor, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts by sensor: %w", err)
	}
	return stats, nil
}
