package models

import (
	"time"
)

// Serilog numeric level codes as written by the sink.
const (
	SerilogVerbose = 0
	SerilogDebug   = 1
	SerilogInfo    = 2
	SerilogWarning = 3
	SerilogError   = 4
	SerilogFatal   = 5
)

// SerilogEntry is a read-only projection over the table an external logging
// sink populates. This codebase never writes it.
type SerilogEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Message    string    `gorm:"type:text" json:"message"`
	Level      int       `gorm:"index" json:"level"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	Exception  string    `gorm:"type:text" json:"exception,omitempty"`
	Properties string    `gorm:"type:text" json:"properties,omitempty"`
}

func (SerilogEntry) TableName() string {
	return "serilog_entries"
}

var serilogLevelNames = map[int]string{
	SerilogVerbose: "Verbose",
	SerilogDebug:   "Debug",
	SerilogInfo:    "Information",
	SerilogWarning: "Warning",
	SerilogError:   "Error",
	SerilogFatal:   "Fatal",
}

// LevelName maps the numeric sink code to its display name.
func (e SerilogEntry) LevelName() string {
	if name, ok := serilogLevelNames[e.Level]; ok {
		return name
	}
	return "Unknown"
}
