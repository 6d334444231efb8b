package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/localtime"
	"github.com/wilsondesouza/AlertSystem/internal/models"

	"go.uber.org/zap"
)

// ReadingRepository read-only access to the collector's readings table
// (columns timestamp, cpu, ram, temperatura, potencia).
type ReadingRepository struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
	now    func() time.Time
}

// NewReadingRepository creates the readings repository. table must already be a
// validated identifier (see config.Validate).
func NewReadingRepository(db *sql.DB, table string, logger *zap.Logger) *ReadingRepository {
	return &ReadingRepository{
		db:     db,
		table:  table,
		logger: logger,
		now:    localtime.Now,
	}
}

// ListRecent returns readings with timestamp >= now-window, newest first.
// The first violating reading a rule meets is therefore the most recent one.
func (r *ReadingRepository) ListRecent(ctx context.Context, window time.Duration) ([]models.Reading, error) {
	cutoff := localtime.Format(r.now().Add(-window))

	query := fmt.Sprintf(`
		SELECT
			timestamp,
			cpu,
			ram,
			temperatura,
			potencia
		FROM %s
		WHERE timestamp >= $1
		ORDER BY timestamp DESC
	`, r.table)

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent readings: %w", err)
	}
	defer rows.Close()

	readings := make([]models.Reading, 0)
	for rows.Next() {
		var (
			reading               models.Reading
			cpu, ram, temp, power sql.NullFloat64
		)
		if err := rows.Scan(&reading.Timestamp, &cpu, &ram, &temp, &power); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		reading.CPU = floatOrNil(cpu)
		reading.RAM = floatOrNil(ram)
		reading.Temperature = floatOrNil(temp)
		reading.Power = floatOrNil(power)
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	r.logger.Debug("Loaded recent readings",
		zap.String("cutoff", cutoff),
		zap.Int("reading_count", len(readings)),
	)
	return readings, nil
}

func floatOrNil(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
