package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/config"
	"github.com/wilsondesouza/AlertSystem/internal/consumer"
	"github.com/wilsondesouza/AlertSystem/internal/database"
	"github.com/wilsondesouza/AlertSystem/internal/evaluator"
	httpapi "github.com/wilsondesouza/AlertSystem/internal/http"
	"github.com/wilsondesouza/AlertSystem/internal/notifier"
	"github.com/wilsondesouza/AlertSystem/internal/publisher"
	"github.com/wilsondesouza/AlertSystem/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// staleTicks is how many intervals may pass without a tick before /healthz fails
const staleTicks = 3

// MonitorService wires the evaluation loop to its stores, notifier and sinks
type MonitorService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	mqttSink    *publisher.MQTTSink
	logger      *zap.Logger

	evaluator *evaluator.Evaluator
	monitor   *consumer.RuleMonitor
	admin     *Server
	now       func() time.Time
}

// NewMonitorService connects to PostgreSQL (required) and to Redis and MQTT
// when enabled. Optional sinks that fail to connect are logged and skipped.
func NewMonitorService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	// 1. PostgreSQL
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	// 2. Repository layer
	ruleRepo := repository.NewAlertRuleRepository(db, logger)
	readingRepo := repository.NewReadingRepository(db, cfg.Monitor.ReadingsTable, logger)
	historyRepo := repository.NewAlertHistoryRepository(db, logger)

	// 3. Evaluator
	emailNotifier := notifier.NewEmailJSNotifier(cfg.EmailJS, cfg.Monitor.Timeout(), logger)
	if !emailNotifier.Configured() {
		logger.Warn("EmailJS credentials missing; every alert will be recorded as failed")
	}
	eval := evaluator.NewEvaluator(cfg.Monitor, ruleRepo, readingRepo, historyRepo, emailNotifier, logger)

	s := &MonitorService{
		config:    cfg,
		db:        db,
		logger:    logger,
		evaluator: eval,
		now:       time.Now,
	}

	// 4. Optional Redis cooldown cache and alert stream, MQTT alert topic
	var sinks []publisher.Sink
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, cooldown cache and alert stream disabled",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
			redisClient.Close()
		} else {
			s.redisClient = redisClient
			if cfg.Monitor.CooldownCache {
				eval.SetCooldownCache(consumer.NewCooldownCache(redisClient, cfg.Monitor.CooldownKeyPrefix, logger))
			}
			if cfg.Monitor.AlertStream != "" {
				sinks = append(sinks, publisher.NewRedisStreamSink(redisClient, cfg.Monitor.AlertStream))
			}
		}
	}

	if cfg.MQTT.Enabled {
		mqttSink, err := publisher.NewMQTTSink(&cfg.MQTT)
		if err != nil {
			logger.Warn("MQTT broker unreachable, alert topic disabled",
				zap.String("broker", cfg.MQTT.Broker),
				zap.Error(err),
			)
		} else {
			s.mqttSink = mqttSink
			sinks = append(sinks, mqttSink)
		}
	}

	if len(sinks) > 0 {
		multi := publisher.NewMulti(logger, sinks...)
		eval.SetPublisher(multi)
		logger.Info("Alert event publishing enabled", zap.Int("sinks", multi.Len()))
	}

	// 5. Loop and admin server
	s.monitor = consumer.NewRuleMonitor(cfg.Monitor.Interval(), eval, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterSystemRoutes(s.Health)
	s.admin = NewServer("monitor-admin", cfg.Monitor.AdminAddr, router, logger)

	return s, nil
}

// Start runs the admin server in the background and the loop until ctx is done
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Starting alert monitor",
		zap.Int("check_interval", s.config.Monitor.CheckInterval),
		zap.Int("reading_window_minutes", s.config.Monitor.ReadingWindowMinutes),
		zap.String("readings_table", s.config.Monitor.ReadingsTable),
	)

	go func() {
		if err := s.admin.Start(); err != nil {
			s.logger.Error("Monitor admin server failed", zap.Error(err))
		}
	}()

	if err := s.monitor.Start(ctx); err != nil {
		return fmt.Errorf("rule monitor stopped: %w", err)
	}
	return nil
}

// Stop releases connections and returns every close error joined.
// Call after Start has returned.
func (s *MonitorService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping alert monitor")

	var errs []error
	if s.admin != nil {
		if err := s.admin.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop admin server: %w", err))
		}
	}
	if s.mqttSink != nil {
		s.mqttSink.Close()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	return errors.Join(errs...)
}

// Health reports the last tick and fails when the database is unreachable
// or ticks have stopped.
func (s *MonitorService) Health() (any, error) {
	status := s.monitor.Status()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return status, fmt.Errorf("database unreachable: %w", err)
	}

	if status.Ticks > 0 {
		limit := staleTicks*s.config.Monitor.Interval() + s.config.Monitor.Timeout()
		if age := s.now().Sub(status.LastTickAt); age > limit {
			return status, fmt.Errorf("no tick for %s", age.Round(time.Second))
		}
	}
	return status, nil
}
