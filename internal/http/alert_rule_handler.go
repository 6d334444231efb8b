package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wilsondesouza/AlertSystem/internal/models"

	"go.uber.org/zap"
)

// AlertRuleStore rule persistence used by the API
type AlertRuleStore interface {
	Create(ctx context.Context, rule *models.AlertRule) (int64, error)
	List(ctx context.Context) ([]models.AlertRule, error)
	Update(ctx context.Context, rule *models.AlertRule) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// alertRuleRequest body of create and update. Numbers may arrive as strings
// and is_active as 0/1 or a boolean.
type alertRuleRequest struct {
	SensorType      string     `json:"sensor_type"`
	Metric          string     `json:"metric"`
	Condition       string     `json:"condition"`
	ThresholdValue  flexNumber `json:"threshold_value"`
	ThresholdMax    flexNumber `json:"threshold_max"`
	RecipientEmail  string     `json:"recipient_email"`
	CooldownMinutes flexNumber `json:"cooldown_minutes"`
	IsActive        flexNumber `json:"is_active"`
}

func (req alertRuleRequest) toRule() (*models.AlertRule, error) {
	if !req.ThresholdValue.set {
		return nil, fmt.Errorf("%w: threshold_value is required", models.ErrInvalidRule)
	}

	cooldown := models.DefaultCooldownMinutes
	if req.CooldownMinutes.set {
		v, ok := req.CooldownMinutes.intValue()
		if !ok {
			return nil, fmt.Errorf("%w: cooldown_minutes must be a whole number", models.ErrInvalidRule)
		}
		cooldown = v
	}

	active := true
	if req.IsActive.set {
		active = req.IsActive.value != 0
	}

	rule := &models.AlertRule{
		SensorType:      strings.TrimSpace(req.SensorType),
		Metric:          strings.TrimSpace(req.Metric),
		Condition:       models.Condition(strings.TrimSpace(req.Condition)),
		ThresholdValue:  req.ThresholdValue.value,
		RecipientEmail:  strings.TrimSpace(req.RecipientEmail),
		CooldownMinutes: cooldown,
		IsActive:        active,
	}
	// threshold_max only means something for range conditions
	if rule.Condition.NeedsRange() {
		rule.ThresholdMax = req.ThresholdMax.ptr()
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

// alertRuleResponse rule as the dashboard reads it (is_active as 0/1)
type alertRuleResponse struct {
	ID              int64            `json:"id"`
	SensorType      string           `json:"sensor_type"`
	Metric          string           `json:"metric"`
	Condition       models.Condition `json:"condition"`
	ThresholdValue  float64          `json:"threshold_value"`
	ThresholdMax    *float64         `json:"threshold_max"`
	RecipientEmail  string           `json:"recipient_email"`
	CooldownMinutes int              `json:"cooldown_minutes"`
	IsActive        int              `json:"is_active"`
	CreatedAt       string           `json:"created_at"`
}

func newAlertRuleResponse(rule models.AlertRule) alertRuleResponse {
	active := 0
	if rule.IsActive {
		active = 1
	}
	return alertRuleResponse{
		ID:              rule.ID,
		SensorType:      rule.SensorType,
		Metric:          rule.Metric,
		Condition:       rule.Condition,
		ThresholdValue:  rule.ThresholdValue,
		ThresholdMax:    rule.ThresholdMax,
		RecipientEmail:  rule.RecipientEmail,
		CooldownMinutes: rule.CooldownMinutes,
		IsActive:        active,
		CreatedAt:       rule.CreatedAt,
	}
}

// AlertRuleHandler /api/alert-rules
type AlertRuleHandler struct {
	store  AlertRuleStore
	logger *zap.Logger
}

func NewAlertRuleHandler(store AlertRuleStore, logger *zap.Logger) *AlertRuleHandler {
	return &AlertRuleHandler{store: store, logger: logger}
}

func (h *AlertRuleHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list alert rules", zap.Error(err))
		writeError(w, err)
		return
	}

	out := make([]alertRuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, newAlertRuleResponse(rule))
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

func (h *AlertRuleHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req alertRuleRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body: "+err.Error()))
		return
	}

	rule, err := req.toRule()
	if err != nil {
		writeError(w, err)
		return
	}
	rule.IsActive = true

	id, err := h.store.Create(r.Context(), rule)
	if err != nil {
		h.logger.Error("Failed to create alert rule", zap.Error(err))
		writeError(w, err)
		return
	}

	h.logger.Info("Alert rule created",
		zap.Int64("rule_id", id),
		zap.String("sensor_type", rule.SensorType),
		zap.String("metric", rule.Metric),
	)
	writeJSON(w, http.StatusOK, Result{Success: true, RuleID: id})
}

func (h *AlertRuleHandler) UpdateRule(w http.ResponseWriter, r *http.Request, id int64) {
	var req alertRuleRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body: "+err.Error()))
		return
	}

	rule, err := req.toRule()
	if err != nil {
		writeError(w, err)
		return
	}
	rule.ID = id

	if err := h.store.Update(r.Context(), rule); err != nil {
		h.logger.Error("Failed to update alert rule", zap.Int64("rule_id", id), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true})
}

func (h *AlertRuleHandler) ToggleRule(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		IsActive flexNumber `json:"is_active"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body: "+err.Error()))
		return
	}
	if !req.IsActive.set {
		writeJSON(w, http.StatusBadRequest, Fail("is_active is required"))
		return
	}

	active := req.IsActive.value != 0
	if err := h.store.SetActive(r.Context(), id, active); err != nil {
		h.logger.Error("Failed to toggle alert rule", zap.Int64("rule_id", id), zap.Error(err))
		writeError(w, err)
		return
	}

	h.logger.Info("Alert rule toggled", zap.Int64("rule_id", id), zap.Bool("is_active", active))
	writeJSON(w, http.StatusOK, Result{Success: true})
}

func (h *AlertRuleHandler) DeleteRule(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete alert rule", zap.Int64("rule_id", id), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true})
}

// parseRuleID reads a positive rule id from a path segment
func parseRuleID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
