package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/config"
	"github.com/wilsondesouza/AlertSystem/internal/database"
	httpapi "github.com/wilsondesouza/AlertSystem/internal/http"
	"github.com/wilsondesouza/AlertSystem/internal/repository"

	"go.uber.org/zap"
)

// APIService serves the rule/history REST API and the dashboard
type APIService struct {
	db     *sql.DB
	server *Server
	logger *zap.Logger
}

// NewAPIService connects to PostgreSQL, ensures the schema and builds the router
func NewAPIService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*APIService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &APIService{db: db, logger: logger}
	s.server = NewServer("api", cfg.HTTP.Addr, NewAPIRouter(cfg, db, logger), logger)
	return s, nil
}

// NewAPIRouter registers every API route against db
func NewAPIRouter(cfg *config.Config, db *sql.DB, logger *zap.Logger) *httpapi.Router {
	ruleRepo := repository.NewAlertRuleRepository(db, logger)
	historyRepo := repository.NewAlertHistoryRepository(db, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterAlertRuleRoutes(httpapi.NewAlertRuleHandler(ruleRepo, logger))
	router.RegisterAlertHistoryRoutes(httpapi.NewAlertHistoryHandler(historyRepo, logger))
	router.RegisterEmailJSConfigRoutes(httpapi.NewEmailJSConfigHandler(cfg.EmailJS, logger))
	router.RegisterSystemRoutes(func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return map[string]string{"database": "down"}, fmt.Errorf("database unreachable: %w", err)
		}
		return map[string]string{"database": "up"}, nil
	})
	router.RegisterStaticRoutes(cfg.HTTP.StaticDir)
	return router
}

// Start blocks serving requests until Stop
func (s *APIService) Start() error {
	return s.server.Start()
}

// Stop shuts the server down and closes the database
func (s *APIService) Stop(ctx context.Context) error {
	var errs []error
	if err := s.server.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}
	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	return errors.Join(errs...)
}
