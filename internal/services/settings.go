package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"logsight/internal/config"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "logsight:settings"

// Settings are the operator-tunable knobs behind ManageConfiguration.
type Settings struct {
	RetentionDays   int `json:"retention_days"`
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
}

// SettingsService keeps settings in Redis so all instances see updates;
// config values act as defaults when nothing has been stored yet or Redis is
// down.
type SettingsService struct {
	rdb      *redis.Client
	logger   *slog.Logger
	defaults Settings
}

func NewSettingsService(rdb *redis.Client, logger *slog.Logger, cfg config.Config) *SettingsService {
	return &SettingsService{
		rdb:    rdb,
		logger: logger,
		defaults: Settings{
			RetentionDays:   cfg.RetentionDays,
			CacheTTLSeconds: cfg.DashboardCacheTTL,
		},
	}
}

func (s *SettingsService) Get(ctx context.Context) Settings {
	if s.rdb == nil {
		return s.defaults
	}
	data, err := s.rdb.Get(ctx, settingsKey).Bytes()
	if err != nil {
		return s.defaults
	}
	var stored Settings
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("Stored settings unreadable, using defaults", "error", err)
		return s.defaults
	}
	if stored.RetentionDays <= 0 {
		stored.RetentionDays = s.defaults.RetentionDays
	}
	if stored.CacheTTLSeconds <= 0 {
		stored.CacheTTLSeconds = s.defaults.CacheTTLSeconds
	}
	return stored
}

// CacheTTL resolves the dashboard cache TTL from the stored settings, so a
// ManageConfiguration update takes effect on the next cache write.
func (s *SettingsService) CacheTTL(ctx context.Context) time.Duration {
	return time.Duration(s.Get(ctx).CacheTTLSeconds) * time.Second
}

func (s *SettingsService) Update(ctx context.Context, settings Settings) (Settings, error) {
	if settings.RetentionDays <= 0 {
		settings.RetentionDays = s.defaults.RetentionDays
	}
	if settings.CacheTTLSeconds <= 0 {
		settings.CacheTTLSeconds = s.defaults.CacheTTLSeconds
	}
	if s.rdb == nil {
		return settings, nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return settings, err
	}
	if err := s.rdb.Set(ctx, settingsKey, data, 0).Err(); err != nil {
		return settings, err
	}
	return settings, nil
}
