package app

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const sysLogMaxEntries = 500

// SysLogEntry is a single system log line.
type SysLogEntry struct {
	Time    time.Time
	Package string
	Message string
}

var (
	sysLogMu      sync.Mutex
	sysLogEntries []*SysLogEntry

	logger = zap.NewNop().Sugar()
)

// SetupLogger configures the process logger. The dev environment gets
// human readable console output, everything else JSON.
func SetupLogger(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	if env == "dev" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	sysLogMu.Lock()
	logger = l.Sugar()
	sysLogMu.Unlock()
	return nil
}

// Log writes a message for the given package to the process logger
// and the in-memory system log.
func Log(pkg, format string, args ...interface{}) {
	entry := appendSysLog(pkg, format, args...)

	sysLogMu.Lock()
	l := logger
	sysLogMu.Unlock()

	l.Named(pkg).Info(entry.Message)
}

// appendSysLog stores a log message in the in-memory ring buffer.
func appendSysLog(pkg, format string, args ...interface{}) *SysLogEntry {
	entry := &SysLogEntry{
		Time:    time.Now(),
		Package: pkg,
		Message: fmt.Sprintf(format, args...),
	}
	sysLogMu.Lock()
	sysLogEntries = append(sysLogEntries, entry)
	if len(sysLogEntries) > sysLogMaxEntries {
		sysLogEntries = sysLogEntries[len(sysLogEntries)-sysLogMaxEntries:]
	}
	sysLogMu.Unlock()
	return entry
}

// GetSysLog returns a copy of the system log in reverse-chronological order.
func GetSysLog() []*SysLogEntry {
	sysLogMu.Lock()
	defer sysLogMu.Unlock()
	result := make([]*SysLogEntry, len(sysLogEntries))
	for i, e := range sysLogEntries {
		result[len(sysLogEntries)-1-i] = e
	}
	return result
}

// Sync flushes any buffered log entries.
func Sync() {
	sysLogMu.Lock()
	l := logger
	sysLogMu.Unlock()
	_ = l.Sync()
}
