package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Timestamps are TEXT in the fixed UTC-3 "YYYY-MM-DD HH:MM:SS" layout so they
// compare lexically in the same zone the monitor uses.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS alert_rules (
		id BIGSERIAL PRIMARY KEY,
		sensor_type TEXT NOT NULL,
		metric TEXT NOT NULL,
		condition TEXT NOT NULL,
		threshold_value DOUBLE PRECISION NOT NULL,
		threshold_max DOUBLE PRECISION,
		recipient_email TEXT NOT NULL,
		cooldown_minutes INTEGER NOT NULL DEFAULT 30,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alert_history (
		id BIGSERIAL PRIMARY KEY,
		rule_id BIGINT NOT NULL REFERENCES alert_rules(id) ON DELETE CASCADE,
		sensor_value DOUBLE PRECISION NOT NULL,
		message TEXT NOT NULL,
		sent_at TEXT NOT NULL,
		email_status TEXT NOT NULL DEFAULT 'sent'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_history_rule_sent_at
		ON alert_history (rule_id, sent_at DESC)`,
}

// InitSchema creates the alert tables when missing. The readings table belongs
// to the collector and is never created here.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize alert schema: %w", err)
		}
	}
	return nil
}
