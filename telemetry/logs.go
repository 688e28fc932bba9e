package telemetry

import (
	"io"
	"strings"
	"sync"
	"time"
)

type LogEntry struct {
	Timestamp time.Time
	Message   string
}

// LogCapture is an io.Writer that keeps the last maxSize log lines in memory
// and forwards every write to its attached writers.
type LogCapture struct {
	mu      sync.RWMutex
	entries []LogEntry
	maxSize int
	writers []io.Writer
	onLog   func(LogEntry)
}

func NewLogCapture(maxSize int) *LogCapture {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LogCapture{
		entries: make([]LogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Write records one entry per line in p
func (lc *LogCapture) Write(p []byte) (int, error) {
	now := time.Now()
	lines := strings.Split(strings.TrimRight(string(p), "\n"), "\n")

	lc.mu.Lock()
	added := make([]LogEntry, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		entry := LogEntry{Timestamp: now, Message: line}
		if len(lc.entries) >= lc.maxSize {
			lc.entries = lc.entries[1:]
		}
		lc.entries = append(lc.entries, entry)
		added = append(added, entry)
	}
	onLog := lc.onLog
	writers := lc.writers
	lc.mu.Unlock()

	if onLog != nil {
		for _, entry := range added {
			onLog(entry)
		}
	}

	for _, w := range writers {
		w.Write(p)
	}

	return len(p), nil
}

func (lc *LogCapture) AddWriter(w io.Writer) {
	lc.mu.Lock()
	lc.writers = append(lc.writers, w)
	lc.mu.Unlock()
}

// SetLogCallback registers a func called for every captured line; nil clears it
func (lc *LogCapture) SetLogCallback(callback func(LogEntry)) {
	lc.mu.Lock()
	lc.onLog = callback
	lc.mu.Unlock()
}

func (lc *LogCapture) GetRecentLogs(limit int) []LogEntry {
	lc.mu.RLock()
	defer lc.mu.RUnlock()

	start := 0
	if limit >= 0 && len(lc.entries) > limit {
		start = len(lc.entries) - limit
	}

	result := make([]LogEntry, len(lc.entries)-start)
	copy(result, lc.entries[start:])
	return result
}

func (lc *LogCapture) GetAllLogs() []LogEntry {
	return lc.GetRecentLogs(-1)
}
