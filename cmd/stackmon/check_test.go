package main

import (
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hazz-dev/stackmon/internal/probe"
)

func TestRunChecks_AllHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := runChecks(&out, []probe.Request{
		{Kind: probe.KindHTTP, Name: "api", URL: srv.URL, Timeout: 2 * time.Second},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "api") || !strings.Contains(output, "up") {
		t.Errorf("expected healthy table row, got:\n%s", output)
	}
	if !strings.Contains(output, "1/1 services healthy") {
		t.Errorf("expected summary line, got:\n%s", output)
	}
}

func TestRunChecks_UnhealthyReturnsError(t *testing.T) {
	// Bind and immediately close to get a dead port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	var out bytes.Buffer
	err = runChecks(&out, []probe.Request{
		{Kind: probe.KindPort, Name: "dead", Host: "127.0.0.1", Port: port, Timeout: 500 * time.Millisecond},
	})
	if err == nil {
		t.Fatal("expected error for unhealthy batch")
	}
	if !strings.Contains(out.String(), "0/1 services healthy") {
		t.Errorf("expected summary line, got:\n%s", out.String())
	}
}

func TestPresets_AllEntriesWellFormed(t *testing.T) {
	for name, checks := range presets {
		if len(checks) == 0 {
			t.Errorf("preset %q is empty", name)
		}
		for _, c := range checks {
			if err := c.Validate(); err != nil {
				t.Errorf("preset %q has invalid entry %q: %v", name, c.Name, err)
			}
		}
	}
}
