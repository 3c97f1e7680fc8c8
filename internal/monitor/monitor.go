// Package monitor re-runs a configured batch of checks on an interval and
// keeps the most recent report for the presentation layer.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazz-dev/stackmon/internal/probe"
	"github.com/hazz-dev/stackmon/internal/report"
)

// Runner runs a batch of checks. Satisfied by dispatch.Dispatcher.
type Runner interface {
	CheckBatch(ctx context.Context, reqs []probe.Request) report.Report
}

// Monitor drives periodic batch runs.
type Monitor struct {
	requests []probe.Request
	interval time.Duration
	runner   Runner
	logger   *slog.Logger

	mu   sync.RWMutex
	last *report.Report

	wg sync.WaitGroup
}

// New creates a Monitor. Pass nil logger to use the default logger.
func New(requests []probe.Request, interval time.Duration, runner Runner, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		requests: requests,
		interval: interval,
		runner:   runner,
		logger:   logger,
	}
}

// Start spawns the monitoring goroutine. It is non-blocking; the first
// batch runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.run(ctx)
}

// Wait blocks until the monitoring goroutine has exited.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// Latest returns the most recent report, if any batch has completed yet.
func (m *Monitor) Latest() (report.Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return report.Report{}, false
	}
	return *m.last, true
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	m.runBatch(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runBatch(ctx)
		}
	}
}

func (m *Monitor) runBatch(ctx context.Context) {
	rep := m.runner.CheckBatch(ctx, m.requests)

	m.logger.Info("batch completed",
		"overall_status", rep.OverallStatus,
		"summary", rep.Summary,
	)

	m.mu.Lock()
	m.last = &rep
	m.mu.Unlock()
}
