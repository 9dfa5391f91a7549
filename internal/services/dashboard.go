package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"logsight/internal/models"
	"logsight/internal/repository"
	"logsight/pkg/analytics"

	"github.com/redis/go-redis/v9"
)

// NamedCount is one top-N row of any dashboard grouping.
type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// HourlyBucket is one hour of activity, timestamps truncated to the hour.
type HourlyBucket struct {
	Hour       time.Time `json:"hour"`
	Count      int64     `json:"count"`
	ErrorCount int64     `json:"error_count"`
}

// AuditDashboard is the aggregated audit-log view served to operators.
type AuditDashboard struct {
	TotalCount    int64          `json:"total_count"`
	TodayCount    int64          `json:"today_count"`
	SuccessCount  int64          `json:"success_count"`
	FailureCount  int64          `json:"failure_count"`
	SuccessRate   float64        `json:"success_rate"`
	AvgDurationMs float64        `json:"avg_duration_ms"`
	StatusClasses []NamedCount   `json:"status_classes"`
	HourlyBuckets []HourlyBucket `json:"hourly_buckets"`
	TopErrors     []NamedCount   `json:"top_errors"`
	TopClients    []NamedCount   `json:"top_clients"`
	TopMethods    []NamedCount   `json:"top_methods"`
	TopBrowsers   []NamedCount   `json:"top_browsers"`
	TopCountries  []NamedCount   `json:"top_countries"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

const topN = 10

// TTLProvider resolves the cache TTL at write time, so settings updates take
// effect without a restart.
type TTLProvider func(ctx context.Context) time.Duration

// FixedTTL is a provider that always yields d.
func FixedTTL(d time.Duration) TTLProvider {
	return func(context.Context) time.Duration { return d }
}

// DashboardService aggregates audit rows into the operator dashboard.
// Results are cached in Redis for a short TTL; cache failures degrade to
// recomputing.
type DashboardService struct {
	repo     *repository.AuditLogRepository
	rdb      *redis.Client
	logger   *slog.Logger
	cacheTTL TTLProvider
	now      func() time.Time
}

func NewDashboardService(repo *repository.AuditLogRepository, rdb *redis.Client, logger *slog.Logger, cacheTTL TTLProvider) *DashboardService {
	return &DashboardService{
		repo:     repo,
		rdb:      rdb,
		logger:   logger,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// cacheKey rounds the range to five minutes so close-together requests share
// a cache slot.
func cacheKey(kind string, start, end time.Time) string {
	const slot = 5 * time.Minute
	return fmt.Sprintf("logsight:dashboard:%s:%d:%d",
		kind, start.Truncate(slot).Unix(), end.Truncate(slot).Unix())
}

func (s *DashboardService) GetDashboard(ctx context.Context, start, end time.Time) (*AuditDashboard, error) {
	now := s.now()
	start, end = analytics.ValidateDateRange(start, end, now)

	key := cacheKey("audit", start, end)
	if cached := s.readCache(ctx, key); cached != nil {
		var dash AuditDashboard
		if err := json.Unmarshal(cached, &dash); err == nil {
			return &dash, nil
		}
	}

	// Queries run one after another over the shared handle.
	total, err := s.repo.CountInRange(start, end)
	if err != nil {
		return nil, err
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.repo.CountInRange(todayStart, now)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindInRange(start, end)
	if err != nil {
		return nil, err
	}

	dash := s.aggregate(rows, start, end, now)
	dash.TotalCount = total
	dash.TodayCount = today

	s.writeCache(ctx, key, dash)
	return dash, nil
}

func (s *DashboardService) aggregate(rows []models.AuditLog, start, end, now time.Time) *AuditDashboard {
	dash := &AuditDashboard{
		StartTime:   start,
		EndTime:     end,
		GeneratedAt: now,
	}

	statusClasses := map[string]int64{}
	errors := map[string]int64{}
	clients := map[string]int64{}
	methods := map[string]int64{}
	browsers := map[string]int64{}
	countries := map[string]int64{}
	buckets := map[time.Time]*HourlyBucket{}

	var durationSum float64
	for _, row := range rows {
		if row.Succeeded() {
			dash.SuccessCount++
		} else {
			dash.FailureCount++
		}
		durationSum += row.DurationMs

		statusClasses[statusClass(row.HTTPStatus)]++

		hour := analytics.TruncateToHour(row.ExecutionTime)
		bucket, ok := buckets[hour]
		if !ok {
			bucket = &HourlyBucket{Hour: hour}
			buckets[hour] = bucket
		}
		bucket.Count++
		if !row.Succeeded() {
			bucket.ErrorCount++
		}

		if row.Exception != "" {
			errors[analytics.FirstLine(row.Exception)]++
		}
		if row.ClientName != "" {
			clients[row.ClientName]++
		}
		if row.BrowserInfo != "" {
			browsers[row.BrowserInfo]++
		}
		if row.Country != "" {
			countries[row.Country]++
		}
		for _, action := range row.Actions {
			methods[action.ServiceName+"."+action.MethodName]++
		}
	}

	if len(rows) > 0 {
		dash.AvgDurationMs = durationSum / float64(len(rows))
	}
	dash.SuccessRate = analytics.Percentage(dash.SuccessCount, dash.SuccessCount+dash.FailureCount)
	dash.StatusClasses = topCounts(statusClasses, len(statusClasses))
	dash.TopErrors = topCounts(errors, topN)
	dash.TopClients = topCounts(clients, topN)
	dash.TopMethods = topCounts(methods, topN)
	dash.TopBrowsers = topCounts(browsers, topN)
	dash.TopCountries = topCounts(countries, topN)
	dash.HourlyBuckets = sortBuckets(buckets)
	return dash
}

// GetApplications derives application names from recorded action service
// names: the segment before the first dot, or the whole name when there is
// none. This is a string heuristic, not a modeled relationship.
func (s *DashboardService) GetApplications() ([]string, error) {
	names, err := s.repo.ActionServiceNames()
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var apps []string
	for _, name := range names {
		app := name
		if idx := strings.Index(name, "."); idx > 0 {
			app = name[:idx]
		}
		if !seen[app] {
			seen[app] = true
			apps = append(apps, app)
		}
	}
	sort.Strings(apps)
	return apps, nil
}

// DeleteOlderThan removes audit rows past the given age in days.
func (s *DashboardService) DeleteOlderThan(days int) (int64, error) {
	if days <= 0 {
		days = 1
	}
	cutoff := s.now().AddDate(0, 0, -days)
	return s.repo.DeleteOlderThan(cutoff)
}

func (s *DashboardService) readCache(ctx context.Context, key string) []byte {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	return data
}

func (s *DashboardService) writeCache(ctx context.Context, key string, v any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.cacheTTL(ctx)).Err(); err != nil {
		s.logger.Warn("Dashboard cache write failed", "key", key, "error", err)
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

// topCounts flattens a counter map into its n largest entries, ties broken
// by name for stable output.
func topCounts(counts map[string]int64, n int) []NamedCount {
	out := make([]NamedCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NamedCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortBuckets(buckets map[time.Time]*HourlyBucket) []HourlyBucket {
	out := make([]HourlyBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out
}
