package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/stackmon/internal/config"
	"github.com/hazz-dev/stackmon/internal/dispatch"
	"github.com/hazz-dev/stackmon/internal/history"
	"github.com/hazz-dev/stackmon/internal/probe"
	"github.com/hazz-dev/stackmon/internal/report"
)

func checkCmd() *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run all configured checks once and print the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var checks []probe.Request
			if preset != "" {
				p, ok := presets[preset]
				if !ok {
					return fmt.Errorf("unknown preset %q (available: %s)", preset, presetNames())
				}
				checks = p
			} else {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				checks = cfg.Checks
			}
			return runChecks(cmd.OutOrStdout(), checks)
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "run a built-in check group instead of the config file")
	return cmd
}

func runChecks(out io.Writer, checks []probe.Request) error {
	store := history.NewStore()
	dispatcher := dispatch.New(store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rep := dispatcher.CheckBatch(context.Background(), checks)
	printReport(out, rep)

	if rep.OverallStatus != "healthy" {
		return fmt.Errorf("one or more services are unhealthy")
	}
	return nil
}

func printReport(out io.Writer, rep report.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tSTATUS\tRESPONSE\tDETAILS\tERROR")
	for _, r := range rep.Services {
		resp := "-"
		if r.ResponseTime > 0 {
			resp = r.ResponseTime.Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Name,
			r.Status,
			resp,
			r.Details,
			r.Error,
		)
	}
	w.Flush()
	fmt.Fprintln(out, rep.Summary)
}

// presets are common local development stacks, usable without a config
// file.
var presets = map[string][]probe.Request{
	"databases": {
		{Kind: probe.KindPort, Name: "PostgreSQL", Port: 5432},
		{Kind: probe.KindPort, Name: "MySQL", Port: 3306},
		{Kind: probe.KindPort, Name: "MongoDB", Port: 27017},
		{Kind: probe.KindPort, Name: "Redis", Port: 6379},
	},
	"web-dev": {
		{Kind: probe.KindHTTP, Name: "React Dev Server", URL: "http://localhost:3000"},
		{Kind: probe.KindHTTP, Name: "Vue Dev Server", URL: "http://localhost:8080"},
		{Kind: probe.KindHTTP, Name: "Angular Dev Server", URL: "http://localhost:4200"},
	},
	"backend": {
		{Kind: probe.KindHTTP, Name: "Django/FastAPI Server", URL: "http://localhost:8000"},
		{Kind: probe.KindHTTP, Name: "Flask Dev Server", URL: "http://localhost:5000"},
		{Kind: probe.KindHTTP, Name: "Express Server", URL: "http://localhost:3000"},
	},
	"tools": {
		{Kind: probe.KindHTTP, Name: "Elasticsearch", URL: "http://localhost:9200"},
		{Kind: probe.KindHTTP, Name: "RabbitMQ Management", URL: "http://localhost:15672"},
		{Kind: probe.KindHTTP, Name: "MailHog", URL: "http://localhost:8025"},
	},
}

func presetNames() string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
