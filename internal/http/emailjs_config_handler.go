package httpapi

import (
	"net/http"

	"github.com/wilsondesouza/AlertSystem/internal/config"

	"go.uber.org/zap"
)

// EmailJSConfigHandler exposes the non-secret EmailJS settings.
// Credentials come from the environment; POST only acknowledges.
type EmailJSConfigHandler struct {
	config config.EmailJSConfig
	logger *zap.Logger
}

func NewEmailJSConfigHandler(cfg config.EmailJSConfig, logger *zap.Logger) *EmailJSConfigHandler {
	return &EmailJSConfigHandler{config: cfg, logger: logger}
}

func (h *EmailJSConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"service_id":  h.config.ServiceID,
		"template_id": h.config.TemplateID,
		"public_key":  h.config.PublicKey,
		"configured":  h.config.Configured(),
	}))
}

func (h *EmailJSConfigHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body: "+err.Error()))
		return
	}

	h.logger.Info("EmailJS configuration submitted through the API; not persisted")
	writeJSON(w, http.StatusOK, Result{
		Success: true,
		Message: "Configuration saved. Please set environment variables: EMAILJS_SERVICE_ID, EMAILJS_TEMPLATE_ID, EMAILJS_PUBLIC_KEY",
	})
}
