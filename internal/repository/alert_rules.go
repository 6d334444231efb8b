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

// ErrRuleNotFound is returned when no alert_rules row matches the id
var ErrRuleNotFound = errors.New("alert rule not found")

const ruleColumns = `
	id,
	sensor_type,
	metric,
	condition,
	threshold_value,
	threshold_max,
	recipient_email,
	cooldown_minutes,
	is_active,
	created_at`

// AlertRuleRepository alert_rules table
type AlertRuleRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewAlertRuleRepository creates the rule repository
func NewAlertRuleRepository(db *sql.DB, logger *zap.Logger) *AlertRuleRepository {
	return &AlertRuleRepository{
		db:     db,
		logger: logger,
		now:    localtime.Now,
	}
}

// Create inserts a rule, stamping created_at in UTC-3, and returns its id
func (r *AlertRuleRepository) Create(ctx context.Context, rule *models.AlertRule) (int64, error) {
	rule.CreatedAt = localtime.Format(r.now())

	query := `
		INSERT INTO alert_rules (
			sensor_type,
			metric,
			condition,
			threshold_value,
			threshold_max,
			recipient_email,
			cooldown_minutes,
			is_active,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		rule.SensorType,
		rule.Metric,
		string(rule.Condition),
		rule.ThresholdValue,
		nullFloat(rule.ThresholdMax),
		rule.RecipientEmail,
		rule.CooldownMinutes,
		rule.IsActive,
		rule.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert rule: %w", err)
	}

	rule.ID = id
	r.logger.Info("Alert rule created",
		zap.Int64("rule_id", id),
		zap.String("metric", rule.Metric),
		zap.String("condition", string(rule.Condition)),
	)
	return id, nil
}

// List returns every rule, newest first
func (r *AlertRuleRepository) List(ctx context.Context) ([]models.AlertRule, error) {
	query := `SELECT` + ruleColumns + `
		FROM alert_rules
		ORDER BY created_at DESC, id DESC
	`
	return r.query(ctx, query)
}

// ListActive returns the rules the monitor evaluates, in id order
func (r *AlertRuleRepository) ListActive(ctx context.Context) ([]models.AlertRule, error) {
	query := `SELECT` + ruleColumns + `
		FROM alert_rules
		WHERE is_active = TRUE
		ORDER BY id
	`
	return r.query(ctx, query)
}

// Get returns a single rule
func (r *AlertRuleRepository) Get(ctx context.Context, id int64) (*models.AlertRule, error) {
	query := `SELECT` + ruleColumns + `
		FROM alert_rules
		WHERE id = $1
	`
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrRuleNotFound, id)
		}
		return nil, fmt.Errorf("failed to query alert rule: %w", err)
	}
	return rule, nil
}

// Update overwrites the editable fields of a rule
func (r *AlertRuleRepository) Update(ctx context.Context, rule *models.AlertRule) error {
	query := `
		UPDATE alert_rules
		SET sensor_type = $1,
			metric = $2,
			condition = $3,
			threshold_value = $4,
			threshold_max = $5,
			recipient_email = $6,
			cooldown_minutes = $7,
			is_active = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		rule.SensorType,
		rule.Metric,
		string(rule.Condition),
		rule.ThresholdValue,
		nullFloat(rule.ThresholdMax),
		rule.RecipientEmail,
		rule.CooldownMinutes,
		rule.IsActive,
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert rule: %w", err)
	}
	return expectOneRow(result, rule.ID)
}

// SetActive toggles whether the monitor evaluates a rule
func (r *AlertRuleRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE alert_rules SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to toggle alert rule: %w", err)
	}
	return expectOneRow(result, id)
}

// Delete removes a rule; its history goes with it (ON DELETE CASCADE)
func (r *AlertRuleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alert_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert rule: %w", err)
	}
	if err := expectOneRow(result, id); err != nil {
		return err
	}
	r.logger.Info("Alert rule deleted", zap.Int64("rule_id", id))
	return nil
}

func (r *AlertRuleRepository) query(ctx context.Context, query string, args ...any) ([]models.AlertRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert rules: %w", err)
	}
	defer rows.Close()

	rules := make([]models.AlertRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert rules: %w", err)
	}
	return rules, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.AlertRule, error) {
	var (
		rule         models.AlertRule
		condition    string
		thresholdMax sql.NullFloat64
	)
	err := row.Scan(
		&rule.ID,
		&rule.SensorType,
		&rule.Metric,
		&condition,
		&rule.ThresholdValue,
		&thresholdMax,
		&rule.RecipientEmail,
		&rule.CooldownMinutes,
		&rule.IsActive,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.Condition = models.Condition(condition)
	if thresholdMax.Valid {
		v := thresholdMax.Float64
		rule.ThresholdMax = &v
	}
	return &rule, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func expectOneRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRuleNotFound, id)
	}
	return nil
}
