package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tambo-herd/internal/application/query"
	"tambo-herd/internal/application/services"
	"tambo-herd/internal/config"
)

// Scheduler runs the daily herd summary: alerts, active heats and the
// withholding picture, logged for the morning shift.
type Scheduler struct {
	cron    *cron.Cron
	herdSvc *services.HerdService
	cfg     config.Config
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, herdSvc *services.HerdService, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(),
		herdSvc: herdSvc,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Scheduler.DailySummaryCron))

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.DailySummaryCron, s.logDailySummary); err != nil {
		s.logger.Error("failed to schedule daily summary", zap.Error(err))
	}
	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) logDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	scope := query.Scope{EstablishmentID: s.cfg.Herd.EstablishmentID}
	alerts := s.herdSvc.Alerts(ctx, scope)
	heats := s.herdSvc.ActiveHeats(ctx, scope)
	forecasts := s.herdSvc.UpcomingHeats(ctx, scope)
	medical := s.herdSvc.MedicalSummary(ctx, scope)

	s.logger.Info("daily herd summary",
		zap.Int("alerts", len(alerts)),
		zap.Int("active_heats", len(heats)),
		zap.Int("upcoming_heats", len(forecasts)),
		zap.Int("under_withholding", medical.InTreatment),
	)
	for _, alert := range alerts {
		s.logger.Info("alert",
			zap.String("severity", string(alert.Severity)),
			zap.String("message", alert.Message),
			zap.String("action", alert.Action),
		)
	}
	for _, heat := range heats {
		s.logger.Info("active heat",
			zap.String("animal_id", heat.Animal.ID),
			zap.String("action", heat.Recommendation.Action),
			zap.String("window", heat.Recommendation.Window),
		)
	}
}
