package services

import (
	"context"
	"log/slog"

	"logsight/internal/models"
	"logsight/internal/repository"
)

// RequestLogService writes structured request logs to application_logs the
// same way the audit worker writes audit rows: buffered channel, one writer,
// drop on overflow.
type RequestLogService struct {
	repo   *repository.ApplicationLogRepository
	logger *slog.Logger
	ch     chan models.ApplicationLog
}

func NewRequestLogService(repo *repository.ApplicationLogRepository, logger *slog.Logger) *RequestLogService {
	return &RequestLogService{
		repo:   repo,
		logger: logger,
		ch:     make(chan models.ApplicationLog, 1000),
	}
}

func (s *RequestLogService) Start(ctx context.Context) {
	s.logger.Info("Request log worker starting")
	for {
		select {
		case entry := <-s.ch:
			if err := s.repo.Create(&entry); err != nil {
				s.logger.Error("Failed to write application log", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Request log worker stopping")
			return
		}
	}
}

func (s *RequestLogService) RecordAsync(entry models.ApplicationLog) {
	select {
	case s.ch <- entry:
	default:
		s.logger.Warn("Request log channel full, dropping entry")
	}
}
