package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/stackmon/internal/dispatch"
	"github.com/hazz-dev/stackmon/internal/history"
	"github.com/hazz-dev/stackmon/internal/probe"
)

func portCmd() *cobra.Command {
	var host string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "port <port>",
		Short: "Check a single TCP port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid port %q", args[0])
			}
			dispatcher := quietDispatcher()
			result := dispatcher.CheckPort(context.Background(), host, port, timeout)
			printResult(cmd, result)
			if !result.Status.Healthy() {
				return fmt.Errorf("port %d is not reachable", port)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "localhost", "host to check")
	cmd.Flags().DurationVar(&timeout, "timeout", probe.DefaultTimeout, "connection timeout")
	return cmd
}

func httpCmd() *cobra.Command {
	var timeout time.Duration
	var expect int
	var method string
	cmd := &cobra.Command{
		Use:   "http <url>",
		Short: "Check a single HTTP endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatcher := quietDispatcher()
			result := dispatcher.CheckHTTP(context.Background(), args[0], timeout, expect, method)
			printResult(cmd, result)
			if !result.Status.Healthy() {
				return fmt.Errorf("endpoint %s is not healthy", args[0])
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", probe.DefaultTimeout, "request timeout")
	cmd.Flags().IntVar(&expect, "expect", 0, "expected HTTP status (default 200)")
	cmd.Flags().StringVar(&method, "method", "", "HTTP method (default GET)")
	return cmd
}

func quietDispatcher() *dispatch.Dispatcher {
	return dispatch.New(history.NewStore(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func printResult(cmd *cobra.Command, r probe.Result) {
	out := cmd.OutOrStdout()
	resp := "-"
	if r.ResponseTime > 0 {
		resp = r.ResponseTime.Round(time.Millisecond).String()
	}
	fmt.Fprintf(out, "%s: %s (%s)\n", r.Name, r.Status, resp)
	if r.Details != "" {
		fmt.Fprintf(out, "  %s\n", r.Details)
	}
	if r.Error != "" {
		fmt.Fprintf(out, "  error: %s\n", r.Error)
	}
}
