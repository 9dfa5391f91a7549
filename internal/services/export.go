package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"logsight/internal/models"
	"logsight/pkg/analytics"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// NormalizeFormat maps the requested export format onto a supported one.
// Anything unrecognized silently falls back to CSV.
func NormalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		return FormatJSON
	}
	return FormatCSV
}

// ExportService renders search results as downloadable CSV or JSON bytes.
type ExportService struct {
	now func() time.Time
}

func NewExportService() *ExportService {
	return &ExportService{now: time.Now}
}

// ExportFile is a rendered download: bytes plus the headers to serve them with.
type ExportFile struct {
	Data        []byte
	FileName    string
	ContentType string
}

func (s *ExportService) fileName(prefix, format string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, s.now().Format("20060102-150405"), format)
}

func (s *ExportService) ExportApplicationLogs(logs []models.ApplicationLog, format string) (*ExportFile, error) {
	format = NormalizeFormat(format)
	if format == FormatJSON {
		data, err := json.MarshalIndent(logs, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: data, FileName: s.fileName("logs", format), ContentType: "application/json"}, nil
	}

	var buf bytes.Buffer
	writeCSVRow(&buf, "Timestamp", "Level", "Application", "Message", "Exception", "HttpMethod", "RequestPath", "StatusCode", "DurationMs", "CorrelationId")
	for _, l := range logs {
		writeCSVRow(&buf,
			l.Timestamp.Format(time.RFC3339),
			l.Level,
			l.Application,
			l.Message,
			l.Exception,
			l.HTTPMethod,
			l.RequestPath,
			strconv.Itoa(l.StatusCode),
			strconv.FormatFloat(l.DurationMs, 'f', 2, 64),
			l.CorrelationID,
		)
	}
	return &ExportFile{Data: buf.Bytes(), FileName: s.fileName("logs", format), ContentType: "text/csv"}, nil
}

func (s *ExportService) ExportAuditLogs(logs []models.AuditLog, format string) (*ExportFile, error) {
	format = NormalizeFormat(format)
	if format == FormatJSON {
		data, err := json.MarshalIndent(logs, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: data, FileName: s.fileName("audit-logs", format), ContentType: "application/json"}, nil
	}

	var buf bytes.Buffer
	writeCSVRow(&buf, "ExecutionTime", "ClientName", "HttpMethod", "Url", "HttpStatus", "DurationMs", "ClientIp", "BrowserInfo", "Country", "Exception")
	for _, l := range logs {
		writeCSVRow(&buf,
			l.ExecutionTime.Format(time.RFC3339),
			l.ClientName,
			l.HTTPMethod,
			l.URL,
			strconv.Itoa(l.HTTPStatus),
			strconv.FormatFloat(l.DurationMs, 'f', 2, 64),
			l.ClientIP,
			l.BrowserInfo,
			l.Country,
			l.Exception,
		)
	}
	return &ExportFile{Data: buf.Bytes(), FileName: s.fileName("audit-logs", format), ContentType: "text/csv"}, nil
}

func (s *ExportService) ExportSerilogEntries(entries []models.SerilogEntry, format string) (*ExportFile, error) {
	format = NormalizeFormat(format)
	if format == FormatJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: data, FileName: s.fileName("serilog", format), ContentType: "application/json"}, nil
	}

	var buf bytes.Buffer
	writeCSVRow(&buf, "Timestamp", "Level", "Message", "Exception")
	for _, e := range entries {
		writeCSVRow(&buf,
			e.Timestamp.Format(time.RFC3339),
			e.LevelName(),
			e.Message,
			e.Exception,
		)
	}
	return &ExportFile{Data: buf.Bytes(), FileName: s.fileName("serilog", format), ContentType: "text/csv"}, nil
}

func writeCSVRow(buf *bytes.Buffer, fields ...string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(analytics.EscapeCSV(field))
	}
	buf.WriteByte('\n')
}
