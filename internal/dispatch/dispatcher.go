// Package dispatch fans a batch of heterogeneous checks out over a bounded
// worker pool, records every result into history, and aggregates the batch
// into a report.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazz-dev/stackmon/internal/history"
	"github.com/hazz-dev/stackmon/internal/metrics"
	"github.com/hazz-dev/stackmon/internal/probe"
	"github.com/hazz-dev/stackmon/internal/report"
)

const (
	// MaxConcurrentChecks bounds how many checks run in parallel.
	MaxConcurrentChecks = 10

	// CollectTimeout is the ceiling wait per check. A check that has not
	// completed by then is reported as an error result; the batch never
	// hangs on one member.
	CollectTimeout = 30 * time.Second
)

// Factory creates a Checker for a request. It exists so tests can stub
// checkers out.
type Factory func(probe.Request) (probe.Checker, error)

// Dispatcher runs checks and owns their recording into the store.
type Dispatcher struct {
	store          *history.Store
	factory        Factory
	logger         *slog.Logger
	maxConcurrent  int
	collectTimeout time.Duration
}

// New creates a Dispatcher. Pass nil factory to use probe.New and nil
// logger to use the default logger.
func New(store *history.Store, factory Factory, logger *slog.Logger) *Dispatcher {
	if factory == nil {
		factory = probe.New
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:          store,
		factory:        factory,
		logger:         logger,
		maxConcurrent:  MaxConcurrentChecks,
		collectTimeout: CollectTimeout,
	}
}

// CheckPort runs one TCP port check synchronously, records it, and returns
// the classified result.
func (d *Dispatcher) CheckPort(ctx context.Context, host string, port int, timeout time.Duration) probe.Result {
	return d.runOne(ctx, probe.Request{
		Kind:    probe.KindPort,
		Host:    host,
		Port:    port,
		Timeout: timeout,
	})
}

// CheckHTTP runs one HTTP check synchronously, records it, and returns the
// classified result.
func (d *Dispatcher) CheckHTTP(ctx context.Context, url string, timeout time.Duration, expectedStatus int, method string) probe.Result {
	return d.runOne(ctx, probe.Request{
		Kind:           probe.KindHTTP,
		URL:            url,
		Timeout:        timeout,
		ExpectedStatus: expectedStatus,
		Method:         method,
	})
}

// CheckBatch runs all requests concurrently and returns the aggregated
// report. It always yields exactly one result per request: malformed
// entries and checks exceeding the collection ceiling become synthetic
// error results. Result order is completion order, not input order.
func (d *Dispatcher) CheckBatch(ctx context.Context, reqs []probe.Request) report.Report {
	metrics.BatchesTotal.Inc()

	resCh := make(chan probe.Result, len(reqs))
	sem := make(chan struct{}, d.maxConcurrent)

	for _, req := range reqs {
		go func(req probe.Request) {
			sem <- struct{}{}
			defer func() { <-sem }()
			resCh <- d.runOne(ctx, req)
		}(req)
	}

	results := make([]probe.Result, 0, len(reqs))
	for range reqs {
		results = append(results, <-resCh)
	}
	return report.Summarize(results)
}

// runOne executes a single request end to end: validate, check under the
// collection ceiling, record, instrument.
func (d *Dispatcher) runOne(ctx context.Context, req probe.Request) probe.Result {
	result := d.execute(ctx, req)

	d.logger.Info("check completed",
		"name", result.Name,
		"kind", string(req.Kind),
		"status", string(result.Status),
		"response_time", result.ResponseTime,
		"error", result.Error,
	)

	metrics.ChecksTotal.WithLabelValues(string(req.Kind), string(result.Status)).Inc()
	if result.ResponseTime > 0 {
		metrics.CheckDuration.WithLabelValues(string(req.Kind)).Observe(result.ResponseTime.Seconds())
	}

	d.store.Add(result)
	return result
}

func (d *Dispatcher) execute(ctx context.Context, req probe.Request) probe.Result {
	checker, err := d.factory(req)
	if err != nil {
		return syntheticError(req, fmt.Sprintf("invalid check request: %v", err))
	}

	done := make(chan probe.Result, 1)
	go func() {
		done <- checker.Check(ctx)
	}()

	// There is no mid-flight cancellation of a started check: on ceiling
	// expiry the goroutine is abandoned to finish on its own and the
	// batch moves on with a synthetic result.
	select {
	case r := <-done:
		return r
	case <-time.After(d.collectTimeout):
		return syntheticError(req, fmt.Sprintf("check did not complete within %s", d.collectTimeout))
	}
}

func syntheticError(req probe.Request, msg string) probe.Result {
	return probe.Result{
		Name:      req.DisplayName(),
		Status:    probe.StatusError,
		Error:     msg,
		CheckedAt: time.Now(),
	}
}
