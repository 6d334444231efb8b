package httpapi

import (
	"errors"
	"net/http"

	"github.com/wilsondesouza/AlertSystem/internal/models"
	"github.com/wilsondesouza/AlertSystem/internal/repository"
)

// Result response envelope shared with the dashboard:
// {success, data | rule_id | message, error}
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	RuleID  int64  `json:"rule_id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Ok(data any) Result {
	return Result{Success: true, Data: data}
}

func Fail(message string) Result {
	return Result{Success: false, Error: message}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRule):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrRuleNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), Fail(err.Error()))
}
