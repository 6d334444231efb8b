package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/wilsondesouza/AlertSystem/internal/models"
)

type fakeHistoryStore struct {
	history   []models.AlertHistoryView
	stats     *models.AlertStatistics
	err       error
	lastLimit int
}

func (f *fakeHistoryStore) List(ctx context.Context, limit int) ([]models.AlertHistoryView, error) {
	f.lastLimit = limit
	return f.history, f.err
}

func (f *fakeHistoryStore) Statistics(ctx context.Context) (*models.AlertStatistics, error) {
	return f.stats, f.err
}

func sampleHistory() []models.AlertHistoryView {
	return []models.AlertHistoryView{
		{
			AlertHistoryEntry: models.AlertHistoryEntry{
				ID:          2,
				RuleID:      1,
				SensorValue: 95,
				Message:     "Alert Triggered!",
				SentAt:      "2024-05-10 12:00:00",
				EmailStatus: models.EmailStatusSent,
			},
			SensorType:     "server-01",
			Metric:         "cpu",
			Condition:      models.ConditionGreaterThan,
			ThresholdValue: 90,
			RecipientEmail: "ops@example.com",
		},
		{
			AlertHistoryEntry: models.AlertHistoryEntry{
				ID:          1,
				RuleID:      1,
				SensorValue: 91.5,
				SentAt:      "2024-05-10 11:00:00",
				EmailStatus: models.EmailStatusFailed,
			},
			SensorType:     "server-01",
			Metric:         "cpu",
			Condition:      models.ConditionGreaterThan,
			ThresholdValue: 90,
			RecipientEmail: "ops@example.com",
		},
	}
}

func newHistoryRouter(store *fakeHistoryStore) *Router {
	router := NewRouter(zap.NewNop())
	router.RegisterAlertHistoryRoutes(NewAlertHistoryHandler(store, zap.NewNop()))
	return router
}

func TestListHistory(t *testing.T) {
	store := &fakeHistoryStore{history: sampleHistory()}
	router := newHistoryRouter(store)

	rec, out := doRequest(t, router, http.MethodGet, "/api/alert-history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, store.lastLimit)

	data := out["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, "server-01", first["sensor_type"])
	assert.Equal(t, "sent", first["email_status"])
	assert.Equal(t, float64(95), first["sensor_value"])

	_, _ = doRequest(t, router, http.MethodGet, "/api/alert-history?limit=5", "")
	assert.Equal(t, 5, store.lastLimit)

	_, _ = doRequest(t, router, http.MethodGet, "/api/alert-history?limit=abc", "")
	assert.Equal(t, 100, store.lastLimit)
}

func TestListHistory_EmptyAndError(t *testing.T) {
	store := &fakeHistoryStore{}
	router := newHistoryRouter(store)

	rec, out := doRequest(t, router, http.MethodGet, "/api/alert-history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, out["data"])

	store.err = errors.New("db down")
	rec, out = doRequest(t, router, http.MethodGet, "/api/alert-history", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, out["success"])

	rec, _ = doRequest(t, router, http.MethodPost, "/api/alert-history", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetStatistics(t *testing.T) {
	store := &fakeHistoryStore{stats: &models.AlertStatistics{
		TotalRules:  3,
		ActiveRules: 2,
		TotalAlerts: 10,
		AlertsToday: 4,
	}}

	rec, out := doRequest(t, newHistoryRouter(store), http.MethodGet, "/api/alert-statistics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, float64(3), data["total_rules"])
	assert.Equal(t, float64(2), data["active_rules"])
	assert.Equal(t, float64(10), data["total_alerts"])
	assert.Equal(t, float64(4), data["alerts_today"])
	assert.Equal(t, []any{}, data["alerts_by_sensor"])
}

func TestExportHistory(t *testing.T) {
	store := &fakeHistoryStore{history: sampleHistory()}

	req := httptest.NewRequest(http.MethodGet, "/api/alert-history/export?limit=50", nil)
	rec := httptest.NewRecorder()
	newHistoryRouter(store).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, store.lastLimit)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "alert_history_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(alertHistorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, AlertHistoryExportHeader, rows[0])
	assert.Equal(t, "2024-05-10 12:00:00", rows[1][1])
	assert.Equal(t, "greater_than", rows[1][5])
	assert.Equal(t, "95", rows[1][7])
	assert.Equal(t, "failed", rows[2][9])
}

func TestGenerateAlertHistoryExport_Empty(t *testing.T) {
	data, err := GenerateAlertHistoryExport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{alertHistorySheet}, f.GetSheetList())
	rows, err := f.GetRows(alertHistorySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
