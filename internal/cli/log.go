package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of an operation when it is done.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Loaded 42 projects (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks forwards pipeline and cache events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLoadStart(_ context.Context, companyID string) {
	h.logger.Debug("load start", "company", companyID)
}

func (h *logHooks) OnLoadComplete(_ context.Context, companyID string, projects int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "company", companyID, "err", err)
		return
	}
	h.logger.Debug("load done", "company", companyID, "projects", projects, "duration", d)
}

func (h *logHooks) OnLayoutStart(_ context.Context, strategy string, nodes int) {
	h.logger.Debug("layout start", "strategy", strategy, "nodes", nodes)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, strategy string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "strategy", strategy, "err", err)
		return
	}
	h.logger.Debug("layout done", "strategy", strategy, "duration", d)
}

func (h *logHooks) OnCollision(_ context.Context, iterations, corrections int, converged bool) {
	h.logger.Debug("collisions", "iterations", iterations, "corrections", corrections, "converged", converged)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
