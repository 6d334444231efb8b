package httpapi

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router wraps http.ServeMux; every route is instrumented
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, instrument(pattern, r.logger, h))
}

// HandleHandler registers an http.Handler under a fixed metrics route label
func (r *Router) HandleHandler(pattern, route string, h http.Handler) {
	r.mux.Handle(pattern, instrument(route, r.logger, h))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	withCORS(r.mux).ServeHTTP(w, req)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
}

// RegisterAlertRuleRoutes /api/alert-rules, /api/alert-rules/{id}, /api/alert-rules/{id}/toggle
func (r *Router) RegisterAlertRuleRoutes(h *AlertRuleHandler) {
	r.Handle("/api/alert-rules", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.ListRules(w, req)
		case http.MethodPost:
			h.CreateRule(w, req)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle("/api/alert-rules/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/alert-rules/")
		idPart, action, _ := strings.Cut(rest, "/")

		id, ok := parseRuleID(idPart)
		if !ok {
			writeJSON(w, http.StatusNotFound, Fail("invalid rule id"))
			return
		}

		switch action {
		case "":
			switch req.Method {
			case http.MethodPut:
				h.UpdateRule(w, req, id)
			case http.MethodDelete:
				h.DeleteRule(w, req, id)
			default:
				methodNotAllowed(w)
			}
		case "toggle":
			if req.Method != http.MethodPatch {
				methodNotAllowed(w)
				return
			}
			h.ToggleRule(w, req, id)
		default:
			writeJSON(w, http.StatusNotFound, Fail("not found"))
		}
	})
}

// RegisterAlertHistoryRoutes history, export and statistics
func (r *Router) RegisterAlertHistoryRoutes(h *AlertHistoryHandler) {
	r.Handle("/api/alert-history", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.ListHistory(w, req)
	})

	r.Handle("/api/alert-history/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.ExportHistory(w, req)
	})

	r.Handle("/api/alert-statistics", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.GetStatistics(w, req)
	})
}

func (r *Router) RegisterEmailJSConfigRoutes(h *EmailJSConfigHandler) {
	r.Handle("/api/emailjs-config", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.GetConfig(w, req)
		case http.MethodPost:
			h.SaveConfig(w, req)
		default:
			methodNotAllowed(w)
		}
	})
}

// HealthFunc reports process health; an error turns /healthz into a 503
type HealthFunc func() (any, error)

// RegisterSystemRoutes /healthz and /metrics
func (r *Router) RegisterSystemRoutes(health HealthFunc) {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status, err := health()
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, Result{Success: false, Data: status, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, Ok(status))
	})

	r.HandleHandler("/metrics", "/metrics", promhttp.Handler())
}

// RegisterStaticRoutes serves the dashboard from dir for every unmatched path
func (r *Router) RegisterStaticRoutes(dir string) {
	r.HandleHandler("/", "static", newSPAHandler(dir))
}
