package services

import (
	"log/slog"
	"math/rand"
	"time"

	"logsight/internal/models"
	"logsight/internal/repository"
	"logsight/pkg/utils"
)

var sampleMessages = []struct {
	message   string
	level     string
	exception string
}{
	{"Request completed", models.LevelInformation, ""},
	{"Request completed", models.LevelInformation, ""},
	{"Cache miss for dashboard window", models.LevelDebug, ""},
	{"Upstream responded slowly", models.LevelWarning, ""},
	{"Query failed", models.LevelError, "TimeoutError: context deadline exceeded"},
	{"Unhandled panic recovered", models.LevelCritical, "RuntimeError: index out of range"},
}

var sampleApps = []string{"billing", "inventory", "identity", "reporting"}

// SeedSampleLogs fills an empty application_logs table with generated rows so
// local dashboards have something to show. Uses the raw bulk insert path.
func SeedSampleLogs(repo *repository.ApplicationLogRepository, logger *slog.Logger, count int) error {
	_, existing, err := repo.Search(repository.LogFilter{Take: 1})
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	batch := make([]models.ApplicationLog, 0, count)
	for i := 0; i < count; i++ {
		sample := sampleMessages[rng.Intn(len(sampleMessages))]
		batch = append(batch, models.ApplicationLog{
			Message:       sample.message,
			Level:         sample.level,
			Exception:     sample.exception,
			Timestamp:     now.Add(-time.Duration(rng.Intn(72)) * time.Hour),
			Application:   sampleApps[rng.Intn(len(sampleApps))],
			HTTPMethod:    "GET",
			RequestPath:   "/api/sample",
			StatusCode:    200 + 100*rng.Intn(4),
			DurationMs:    float64(5 + rng.Intn(500)),
			CorrelationID: utils.GenerateCorrelationID(),
		})
	}

	if err := repo.BulkInsert(batch); err != nil {
		return err
	}
	logger.Info("Seeded sample application logs", "count", count)
	return nil
}
