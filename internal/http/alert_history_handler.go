package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wilsondesouza/AlertSystem/internal/localtime"
	"github.com/wilsondesouza/AlertSystem/internal/models"
	"github.com/wilsondesouza/AlertSystem/internal/repository"

	"go.uber.org/zap"
)

// AlertHistoryStore history reads used by the API
type AlertHistoryStore interface {
	List(ctx context.Context, limit int) ([]models.AlertHistoryView, error)
	Statistics(ctx context.Context) (*models.AlertStatistics, error)
}

// AlertHistoryHandler /api/alert-history and /api/alert-statistics
type AlertHistoryHandler struct {
	store  AlertHistoryStore
	logger *zap.Logger
}

func NewAlertHistoryHandler(store AlertHistoryStore, logger *zap.Logger) *AlertHistoryHandler {
	return &AlertHistoryHandler{store: store, logger: logger}
}

func (h *AlertHistoryHandler) listHistory(r *http.Request) ([]models.AlertHistoryView, error) {
	limit := parseInt(r.URL.Query().Get("limit"), repository.DefaultHistoryLimit)
	history, err := h.store.List(r.Context(), limit)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.AlertHistoryView{}
	}
	return history, nil
}

func (h *AlertHistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.listHistory(r)
	if err != nil {
		h.logger.Error("Failed to list alert history", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(history))
}

// ExportHistory downloads the history as an xlsx workbook
func (h *AlertHistoryHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.listHistory(r)
	if err != nil {
		h.logger.Error("Failed to list alert history for export", zap.Error(err))
		writeError(w, err)
		return
	}

	data, err := GenerateAlertHistoryExport(history)
	if err != nil {
		h.logger.Error("Failed to generate alert history export", zap.Error(err))
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("alert_history_%s.xlsx", localtime.Date(localtime.Now()))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *AlertHistoryHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Statistics(r.Context())
	if err != nil {
		h.logger.Error("Failed to load alert statistics", zap.Error(err))
		writeError(w, err)
		return
	}
	if stats.AlertsBySensor == nil {
		stats.AlertsBySensor = []models.SensorAlertCount{}
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}
