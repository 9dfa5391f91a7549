package services

import (
	"context"
	"log/slog"
	"time"

	"logsight/internal/repository"

	"github.com/robfig/cron/v3"
)

// Notifier pushes a named event to connected dashboard clients.
type Notifier interface {
	Notify(event string)
}

// CleanupService deletes application and audit logs past the configured
// retention on a cron schedule.
type CleanupService struct {
	appLogRepo *repository.ApplicationLogRepository
	auditRepo  *repository.AuditLogRepository
	settings   *SettingsService
	logger     *slog.Logger
	notifier   Notifier
	schedule   string
	cron       *cron.Cron
	now        func() time.Time
}

func NewCleanupService(
	appLogRepo *repository.ApplicationLogRepository,
	auditRepo *repository.AuditLogRepository,
	settings *SettingsService,
	logger *slog.Logger,
	notifier Notifier,
	schedule string,
) *CleanupService {
	return &CleanupService{
		appLogRepo: appLogRepo,
		auditRepo:  auditRepo,
		settings:   settings,
		logger:     logger,
		notifier:   notifier,
		schedule:   schedule,
		now:        time.Now,
	}
}

// Start registers the cron job and runs it until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return err
	}
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.cron.Stop()
		s.logger.Info("Cleanup scheduler stopping")
	}()
	return nil
}

// RunOnce applies the retention policy immediately.
func (s *CleanupService) RunOnce(ctx context.Context) {
	settings := s.settings.Get(ctx)
	cutoff := s.now().AddDate(0, 0, -settings.RetentionDays)

	appDeleted, err := s.appLogRepo.DeleteOlderThan(cutoff)
	if err != nil {
		s.logger.Error("Retention cleanup failed for application logs", "error", err)
	}

	auditDeleted, err := s.auditRepo.DeleteOlderThan(cutoff)
	if err != nil {
		s.logger.Error("Retention cleanup failed for audit logs", "error", err)
	}

	s.logger.Info("Retention cleanup finished",
		"cutoff", cutoff,
		"application_logs_deleted", appDeleted,
		"audit_logs_deleted", auditDeleted,
	)

	if s.notifier != nil && (appDeleted > 0 || auditDeleted > 0) {
		s.notifier.Notify("logs-cleaned")
	}
}
