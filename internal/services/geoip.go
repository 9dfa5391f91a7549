package services

import (
	"log/slog"
	"net"
	"os"
	"sync"

	"logsight/internal/config"

	"github.com/oschwald/geoip2-golang"
)

// GeoIPService resolves client IPs to country names for audit enrichment.
// The MaxMind database is optional: without one every lookup returns
// "Unknown" and the rest of the pipeline is unaffected.
type GeoIPService struct {
	cfg       config.Config
	logger    *slog.Logger
	geoReader *geoip2.Reader
	geoLock   sync.RWMutex
}

func NewGeoIPService(cfg config.Config, logger *slog.Logger) *GeoIPService {
	return &GeoIPService{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *GeoIPService) Init() {
	path := s.cfg.MaxMindDBPath
	if path == "" {
		s.logger.Warn("GeoIP: no database path configured, lookups disabled")
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.logger.Warn("GeoIP: database missing, lookups disabled", "path", path)
		return
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		s.logger.Error("GeoIP: failed to open database", "path", path, "error", err)
		return
	}

	s.geoLock.Lock()
	if s.geoReader != nil {
		s.geoReader.Close()
	}
	s.geoReader = reader
	s.geoLock.Unlock()

	s.logger.Info("GeoIP: loaded database", "epoch", reader.Metadata().BuildEpoch)
}

func (s *GeoIPService) Close() {
	s.geoLock.Lock()
	defer s.geoLock.Unlock()
	if s.geoReader != nil {
		s.geoReader.Close()
		s.geoReader = nil
	}
}

// GetCountry resolves an IP to an English country name.
func (s *GeoIPService) GetCountry(ipStr string) string {
	if ipStr == "127.0.0.1" || ipStr == "::1" {
		return "Localhost"
	}

	s.geoLock.RLock()
	reader := s.geoReader
	s.geoLock.RUnlock()

	if reader == nil {
		return "Unknown"
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "Unknown"
	}

	record, err := reader.Country(ip)
	if err != nil {
		s.logger.Error("GeoIP: lookup error", "ip", ipStr, "error", err)
		return "Unknown"
	}

	if name, ok := record.Country.Names["en"]; ok && name != "" {
		return name
	}
	if record.Country.IsoCode != "" {
		return record.Country.IsoCode
	}
	return "Unknown"
}
