package telemetry

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/brunoscheufler/pocketnotes/constants"
	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/lmittmann/tint"
)

// Telemetry provides centralized logging and stats collection
type Telemetry struct {
	LogCapture     *LogCapture
	StatsCollector *StatsCollector
	logger         *slog.Logger
}

type Options struct {
	Level slog.Level
	// Console receives a copy of every log line; nil keeps logs in memory only
	Console io.Writer
	NoColor bool
}

// New creates a telemetry instance. The stores may be nil.
func New(accountStore store.AccountStore, noteStore store.NoteStore, opts Options) *Telemetry {
	logCapture := NewLogCapture(constants.DefaultLogBufferSize)
	if opts.Console != nil {
		logCapture.AddWriter(opts.Console)
	}

	handler := tint.NewHandler(logCapture, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor,
	})

	return &Telemetry{
		LogCapture:     logCapture,
		StatsCollector: NewStatsCollector(accountStore, noteStore),
		logger:         slog.New(handler),
	}
}

func (t *Telemetry) GetLogger() *slog.Logger {
	return t.logger
}

func (t *Telemetry) GetStatsCollector() *StatsCollector {
	return t.StatsCollector
}

// SetupLogging routes the slog default logger and the standard log package
// through the capture
func (t *Telemetry) SetupLogging() {
	slog.SetDefault(t.logger)
	log.SetOutput(t.LogCapture)
}

// Start begins background telemetry collection
func (t *Telemetry) Start() {
	t.StatsCollector.StartRateCalculation()
}

func (t *Telemetry) Stop() {
	t.StatsCollector.Stop()
}

// ParseLevel accepts debug, info, warn and error (any case); empty means info
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
