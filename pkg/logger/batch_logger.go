package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// BatchLogger writes a human-readable log for one import batch
type BatchLogger struct {
	batchID   string
	logPath   string
	file      *os.File
	mu        sync.Mutex
	startTime time.Time
}

// BatchLogPath returns where the log for batchID lives under dir
func BatchLogPath(dir, batchID string) string {
	return filepath.Join(dir, "imports", batchID+".log")
}

// NewBatchLogger opens the log for batchID, appending when a previous run left one
func NewBatchLogger(dir, batchID string) (*BatchLogger, error) {
	logPath := BatchLogPath(dir, batchID)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	bl := &BatchLogger{
		batchID:   batchID,
		logPath:   logPath,
		file:      file,
		startTime: time.Now(),
	}
	bl.writeHeader()

	return bl, nil
}

func (bl *BatchLogger) writeHeader() {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	header := fmt.Sprintf(`================================================================================
VIOLA FLOW - IMPORT LOG
Batch: %s
Started: %s
================================================================================

`, bl.batchID, bl.startTime.Format("2006-01-02 15:04:05 MST"))

	bl.file.WriteString(header)
}

// Row logs the outcome of one row
func (bl *BatchLogger) Row(index int, url, status, detail string) {
	if detail != "" {
		bl.log("ROW", "#%d %s -> %s (%s)", index+1, url, status, detail)
		return
	}
	bl.log("ROW", "#%d %s -> %s", index+1, url, status)
}

// Info logs an informational message
func (bl *BatchLogger) Info(format string, args ...interface{}) {
	bl.log("INFO", format, args...)
}

// Error logs an error message
func (bl *BatchLogger) Error(format string, args ...interface{}) {
	bl.log("ERROR", format, args...)
}

func (bl *BatchLogger) log(level string, format string, args ...interface{}) {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	elapsed := time.Since(bl.startTime).Round(time.Millisecond)
	message := fmt.Sprintf(format, args...)
	bl.file.WriteString(fmt.Sprintf("[%s] %s: %s\n", elapsed, level, message))
}

// Close writes the footer and closes the file
func (bl *BatchLogger) Close(summary string) error {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	elapsed := time.Since(bl.startTime).Round(time.Millisecond)
	footer := fmt.Sprintf(`
================================================================================
RUN FINISHED
Duration: %s
%s
================================================================================
`, elapsed, summary)

	bl.file.WriteString(footer)
	if err := bl.file.Sync(); err != nil {
		bl.file.Close()
		return err
	}
	return bl.file.Close()
}

// Path returns the path to the log file
func (bl *BatchLogger) Path() string {
	return bl.logPath
}
