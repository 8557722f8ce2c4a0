// Package scheduler runs the nightly audit log retention purge.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"go-stock-ledger/internal/service"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron          *cron.Cron
	reportService service.ReportService
	retentionDays int
	logger        *zap.Logger
}

// NewScheduler creates a new scheduler. retentionDays <= 0 disables the purge.
func NewScheduler(reportService service.ReportService, retentionDays int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:          cron.New(),
		reportService: reportService,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	if s.retentionDays <= 0 {
		s.logger.Info("retention purge disabled")
		return
	}

	s.logger.Info("starting scheduler", zap.Int("retention_days", s.retentionDays))

	// Nightly at 03:00, after the day's trading is long done.
	if _, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredEntries); err != nil {
		s.logger.Error("failed to schedule retention purge", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) purgeExpiredEntries() {
	removed, err := s.reportService.PurgeOlderThan(s.retentionDays)
	if err != nil {
		s.logger.Error("retention purge failed", zap.Error(err))
		return
	}
	s.logger.Info("retention purge completed", zap.Int64("removed", removed))
}
