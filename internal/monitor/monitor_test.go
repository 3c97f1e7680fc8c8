package monitor_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazz-dev/stackmon/internal/monitor"
	"github.com/hazz-dev/stackmon/internal/probe"
	"github.com/hazz-dev/stackmon/internal/report"
)

// stubRunner counts batch runs and returns a canned report.
type stubRunner struct {
	runs int64
}

func (s *stubRunner) CheckBatch(_ context.Context, reqs []probe.Request) report.Report {
	atomic.AddInt64(&s.runs, 1)
	return report.Summarize([]probe.Result{
		{Name: "api", Status: probe.StatusUp, CheckedAt: time.Now()},
	})
}

func requests() []probe.Request {
	return []probe.Request{{Kind: probe.KindPort, Name: "api", Port: 80}}
}

func TestMonitor_RunsImmediately(t *testing.T) {
	runner := &stubRunner{}
	m := monitor.New(requests(), time.Hour, runner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&runner.runs) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	m.Wait()

	if atomic.LoadInt64(&runner.runs) != 1 {
		t.Errorf("expected exactly 1 immediate run, got %d", runner.runs)
	}
}

func TestMonitor_LatestReport(t *testing.T) {
	runner := &stubRunner{}
	m := monitor.New(requests(), time.Hour, runner, nil)

	if _, ok := m.Latest(); ok {
		t.Error("expected no report before the first run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	var rep report.Report
	var ok bool
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rep, ok = m.Latest(); ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	m.Wait()

	if !ok {
		t.Fatal("no report after 2s")
	}
	if rep.OverallStatus != "healthy" {
		t.Errorf("expected healthy report, got %q", rep.OverallStatus)
	}
}

func TestMonitor_RepeatsOnInterval(t *testing.T) {
	runner := &stubRunner{}
	m := monitor.New(requests(), 20*time.Millisecond, runner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&runner.runs) < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	m.Wait()

	if got := atomic.LoadInt64(&runner.runs); got < 3 {
		t.Errorf("expected at least 3 runs, got %d", got)
	}
}
