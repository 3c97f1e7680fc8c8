// Package report turns a batch of check results into summary statistics.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/hazz-dev/stackmon/internal/probe"
)

// Stats holds the aggregate counters for a batch.
type Stats struct {
	Total         int                  `json:"total_services"`
	Healthy       int                  `json:"healthy_count"`
	Unhealthy     int                  `json:"unhealthy_count"`
	ByStatus      map[probe.Status]int `json:"status_distribution"`
	AvgResponseMs *float64             `json:"average_response_time_ms"`
}

// Report is the summarized outcome of one batch of checks.
type Report struct {
	OverallStatus string         `json:"overall_status"`
	Services      []probe.Result `json:"services"`
	Stats         Stats          `json:"statistics"`
	Summary       string         `json:"summary"`
	GeneratedAt   time.Time      `json:"timestamp"`
}

// Summarize aggregates a completed batch. It is pure: the input slice is
// not modified. An empty batch is reported healthy.
func Summarize(results []probe.Result) Report {
	stats := Stats{
		Total:    len(results),
		ByStatus: make(map[probe.Status]int, len(results)),
	}

	var timedSum float64
	var timedCount int
	for _, r := range results {
		stats.ByStatus[r.Status]++
		if r.Status.Healthy() {
			stats.Healthy++
		} else {
			stats.Unhealthy++
		}
		if r.ResponseTime > 0 {
			timedSum += float64(r.ResponseTime) / float64(time.Millisecond)
			timedCount++
		}
	}
	if timedCount > 0 {
		avg := math.Round(timedSum/float64(timedCount)*100) / 100
		stats.AvgResponseMs = &avg
	}

	overall := "healthy"
	if stats.Unhealthy > 0 {
		overall = "unhealthy"
	}

	return Report{
		OverallStatus: overall,
		Services:      results,
		Stats:         stats,
		Summary:       fmt.Sprintf("%d/%d services healthy", stats.Healthy, stats.Total),
		GeneratedAt:   time.Now(),
	}
}
