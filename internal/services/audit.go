package services

import (
	"context"
	"log/slog"

	"logsight/internal/models"
	"logsight/internal/repository"
)

// AuditService persists audit rows off the request path. Records are pushed
// onto a buffered channel and written by a single worker goroutine; when the
// channel is full the record is dropped rather than blocking a request.
type AuditService struct {
	repo   *repository.AuditLogRepository
	logger *slog.Logger
	ch     chan models.AuditLog
}

func NewAuditService(repo *repository.AuditLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
		ch:     make(chan models.AuditLog, 1000),
	}
}

func (s *AuditService) Start(ctx context.Context) {
	s.logger.Info("Audit worker starting")
	for {
		select {
		case entry := <-s.ch:
			if err := s.repo.Create(&entry); err != nil {
				s.logger.Error("Failed to write audit log", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Audit worker stopping")
			return
		}
	}
}

// RecordAsync queues an audit row for persistence.
func (s *AuditService) RecordAsync(entry models.AuditLog) {
	select {
	case s.ch <- entry:
	default:
		s.logger.Warn("Audit channel full, dropping record")
	}
}
